// SPDX-License-Identifier: GPL-3.0-or-later

package happyeyeballs

import (
	"net/netip"
	"time"
)

// nat64State tracks the supplemented last-resort NAT64 synthesis feature:
// on an Ipv6Only target that only ever resolves an A record, the engine
// waits [LastResortSynthesisDelay] before asking the caller to synthesize
// a NAT64 address rather than failing outright.
type nat64State struct {
	detectedAt time.Time
	requested  bool
}

// v4OnlyBlackhole reports whether the DNS ledger currently shows an
// IPv6-only black hole for target: HTTPS, AAAA, and A are all complete, no
// IPv6 evidence (AAAA addresses or HTTPS ipv6 hints) was ever observed,
// and at least one A address was. Returns the first such address.
func v4OnlyBlackhole(cfg NetworkConfig, target TargetName, ledger *dnsLedger) (netip.Addr, bool) {
	if cfg.IP != Ipv6Only {
		return netip.Addr{}, false
	}

	httpsQ := ledger.find(target, RecordTypeHTTPS)
	aaaaQ := ledger.find(target, RecordTypeAAAA)
	aQ := ledger.find(target, RecordTypeA)
	if httpsQ == nil || httpsQ.status != dnsQueryCompleted {
		return netip.Addr{}, false
	}
	if aaaaQ == nil || aaaaQ.status != dnsQueryCompleted {
		return netip.Addr{}, false
	}
	if aQ == nil || aQ.status != dnsQueryCompleted {
		return netip.Addr{}, false
	}

	if len(aaaaQ.result.addrs) > 0 {
		return netip.Addr{}, false
	}
	for _, si := range httpsQ.result.https {
		if len(si.IPv6Hints) > 0 {
			return netip.Addr{}, false
		}
	}
	if len(aQ.result.addrs) == 0 {
		return netip.Addr{}, false
	}
	return aQ.result.addrs[0], true
}

// observe arms or disarms the detection clock based on current ledger
// evidence. Call this before consulting [nat64State.ready] or
// [nat64State.remaining].
func (s *nat64State) observe(cfg NetworkConfig, target TargetName, ledger *dnsLedger, now time.Time) {
	if s.requested {
		return
	}
	if _, ok := v4OnlyBlackhole(cfg, target, ledger); !ok {
		s.detectedAt = time.Time{}
		return
	}
	if s.detectedAt.IsZero() {
		s.detectedAt = now
	}
}

// ready reports whether [LastResortSynthesisDelay] has elapsed since
// detection and the request has not already been emitted.
func (s *nat64State) ready(now time.Time) bool {
	if s.requested || s.detectedAt.IsZero() {
		return false
	}
	return now.Sub(s.detectedAt) >= LastResortSynthesisDelay
}

// remaining returns the time left before [nat64State.ready] becomes true.
func (s *nat64State) remaining(now time.Time) (time.Duration, bool) {
	if s.requested || s.detectedAt.IsZero() {
		return 0, false
	}
	d := LastResortSynthesisDelay - now.Sub(s.detectedAt)
	if d < 0 {
		d = 0
	}
	return d, true
}
