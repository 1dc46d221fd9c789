// SPDX-License-Identifier: GPL-3.0-or-later

package happyeyeballs

import (
	"net/netip"
	"sort"
)

// planEndpoint computes the single next candidate [Endpoint] for target, or
// false if none remains. Callers must first have confirmed readiness. port
// is the target's port, applied to every candidate address.
func planEndpoint(cfg NetworkConfig, target TargetName, h host, port uint16, ledger *dnsLedger, attempts *attemptLedger) (Endpoint, bool) {
	protocols := effectiveProtocolSet(cfg, ledger, target)

	if h.isLiteral {
		p := strongestProtocol(protocols)
		ep := Endpoint{Address: netip.AddrPortFrom(h.literal, port), Protocol: p}
		if attempts.hasEndpoint(ep) {
			return Endpoint{}, false
		}
		return ep, true
	}

	ech := effectiveECHConfig(ledger, target)

	candidates := buildCandidates(target, ledger, protocols, ech, port)
	candidates = filterAttempted(candidates, attempts)
	sortCandidates(candidates, cfg.IP)

	if len(candidates) == 0 {
		return Endpoint{}, false
	}
	return candidates[0], true
}

// effectiveProtocolSet implements draft §4.2's protocol-set assembly.
func effectiveProtocolSet(cfg NetworkConfig, ledger *dnsLedger, target TargetName) map[Protocol]bool {
	set := map[Protocol]bool{}

	observedALPN := false
	if q := ledger.find(target, RecordTypeHTTPS); q != nil && q.status == dnsQueryCompleted && q.result.ok {
		for _, si := range q.result.https {
			if len(si.ALPN) > 0 {
				observedALPN = true
			}
			for p, ok := range si.ALPN {
				if ok {
					set[p] = true
				}
			}
		}
	}
	if !observedALPN {
		set[ProtocolH2] = true
		set[ProtocolH1] = true
	}

	for _, hint := range cfg.AltSvc {
		set[hint.Protocol] = true
	}

	if !cfg.HTTPVersions.H1 {
		delete(set, ProtocolH1)
	}
	if !cfg.HTTPVersions.H2 {
		delete(set, ProtocolH2)
	}
	if !cfg.HTTPVersions.H3 {
		delete(set, ProtocolH3)
	}

	return set
}

// compoundProtocols collapses a protocol set into the distinct
// [ConnectionAttemptProtocol] values it implies.
func compoundProtocols(set map[Protocol]bool) []ConnectionAttemptProtocol {
	var out []ConnectionAttemptProtocol
	if set[ProtocolH3] {
		out = append(out, AttemptH3)
	}
	switch {
	case set[ProtocolH2] && set[ProtocolH1]:
		out = append(out, AttemptH2OrH1)
	case set[ProtocolH2]:
		out = append(out, AttemptH2)
	case set[ProtocolH1]:
		out = append(out, AttemptH1)
	}
	return out
}

// strongestProtocol returns the highest-priority compound protocol in set,
// defaulting to AttemptH2OrH1 if the set is empty (e.g. an IP literal with
// no HTTPS evidence at all).
func strongestProtocol(set map[Protocol]bool) ConnectionAttemptProtocol {
	compounds := compoundProtocols(set)
	if len(compounds) == 0 {
		return AttemptH2OrH1
	}
	return compounds[0]
}

// effectiveECHConfig implements the "first ech_config found on a positive
// HTTPS record at the primary target" open-question resolution.
func effectiveECHConfig(ledger *dnsLedger, target TargetName) []byte {
	q := ledger.find(target, RecordTypeHTTPS)
	if q == nil || q.status != dnsQueryCompleted || !q.result.ok {
		return nil
	}
	for _, si := range q.result.https {
		if si.TargetName == target && len(si.ECHConfig) > 0 {
			return si.ECHConfig
		}
	}
	return nil
}

// buildCandidates implements draft §4.2.1's hint/address merge and
// substitution rule.
func buildCandidates(target TargetName, ledger *dnsLedger, protocols map[Protocol]bool, ech []byte, port uint16) []Endpoint {
	compounds := compoundProtocols(protocols)
	var out []Endpoint

	haveV6Addr := positiveFamily(target, ledger, RecordTypeAAAA)
	haveV4Addr := positiveFamily(target, ledger, RecordTypeA)

	if q := ledger.find(target, RecordTypeHTTPS); q != nil && q.status == dnsQueryCompleted && q.result.ok {
		for _, si := range q.result.https {
			if !haveV6Addr {
				for _, addr := range si.IPv6Hints {
					for _, p := range compounds {
						out = append(out, Endpoint{Address: netip.AddrPortFrom(addr, port), Protocol: p, ECHConfig: ech})
					}
				}
			}
			if !haveV4Addr {
				for _, addr := range si.IPv4Hints {
					for _, p := range compounds {
						out = append(out, Endpoint{Address: netip.AddrPortFrom(addr, port), Protocol: p, ECHConfig: ech})
					}
				}
			}
		}
	}

	for _, rt := range [...]DnsRecordType{RecordTypeAAAA, RecordTypeA} {
		q := ledger.find(target, rt)
		if q == nil || q.status != dnsQueryCompleted || !q.result.ok {
			continue
		}
		for _, addr := range q.result.addrs {
			for _, p := range compounds {
				out = append(out, Endpoint{Address: netip.AddrPortFrom(addr, port), Protocol: p, ECHConfig: ech})
			}
		}
	}

	return out
}

func positiveFamily(target TargetName, ledger *dnsLedger, rt DnsRecordType) bool {
	q := ledger.find(target, rt)
	return q != nil && q.status == dnsQueryCompleted && q.result.ok && len(q.result.addrs) > 0
}

func filterAttempted(candidates []Endpoint, attempts *attemptLedger) []Endpoint {
	var out []Endpoint
	for _, c := range candidates {
		if !attempts.hasEndpoint(c) {
			out = append(out, c)
		}
	}
	return out
}

func sortCandidates(candidates []Endpoint, pref IPPreference) {
	v6First := pref != DualStackPreferV4 && pref != Ipv4Only
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Protocol != b.Protocol {
			return a.Protocol < b.Protocol
		}
		aV6, bV6 := a.Address.Addr().Is6() && !a.Address.Addr().Is4In6(), b.Address.Addr().Is6() && !b.Address.Addr().Is4In6()
		if aV6 != bV6 {
			if v6First {
				return aV6
			}
			return !aV6
		}
		return false
	})
}
