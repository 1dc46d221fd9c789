// SPDX-License-Identifier: GPL-3.0-or-later

package happyeyeballs

import "time"

// ready decides whether the engine may transition from "still gathering
// DNS" into "may issue the next attempt" for target. Either rule set
// suffices: non-timeout readiness (draft §4.2) or timeout readiness.
func ready(cfg NetworkConfig, target TargetName, ledger *dnsLedger, isLiteral bool, now time.Time) bool {
	if isLiteral {
		return true
	}
	return nonTimeoutReady(cfg, target, ledger) || timeoutReady(ledger, now)
}

// nonTimeoutReady implements draft §4.2's three conditions, all of which
// must hold against the primary target: a positive address answer, a
// completed answer for the preferred family, and a completed HTTPS answer.
func nonTimeoutReady(cfg NetworkConfig, target TargetName, ledger *dnsLedger) bool {
	if !hasPositiveAddressAnswer(target, ledger) {
		return false
	}

	preferred := RecordTypeAAAA
	if cfg.IP == DualStackPreferV4 || cfg.IP == Ipv4Only {
		preferred = RecordTypeA
	}
	if q := ledger.find(target, preferred); q == nil || q.status != dnsQueryCompleted {
		return false
	}

	if q := ledger.find(target, RecordTypeHTTPS); q == nil || q.status != dnsQueryCompleted {
		return false
	}

	return true
}

// timeoutReady requires some positive A/AAAA answer (hints alone do not
// suffice) and that the Resolution Delay has elapsed since the first DNS
// response arrived, not since queries were issued.
func timeoutReady(ledger *dnsLedger, now time.Time) bool {
	if !hasPositiveAddrRecord(ledger) {
		return false
	}
	earliest, ok := ledger.earliestCompletion()
	if !ok {
		return false
	}
	return now.Sub(earliest) >= ResolutionDelay
}

// hasPositiveAddressAnswer reports whether target has a completed AAAA/A
// with a non-empty address vector, or a completed HTTPS whose service-info
// list contains at least one non-empty address-hint vector.
func hasPositiveAddressAnswer(target TargetName, ledger *dnsLedger) bool {
	if hasPositiveAddrRecordFor(target, ledger) {
		return true
	}
	q := ledger.find(target, RecordTypeHTTPS)
	if q == nil || q.status != dnsQueryCompleted || !q.result.ok {
		return false
	}
	for _, si := range q.result.https {
		if len(si.IPv4Hints) > 0 || len(si.IPv6Hints) > 0 {
			return true
		}
	}
	return false
}

func hasPositiveAddrRecordFor(target TargetName, ledger *dnsLedger) bool {
	for _, rt := range [...]DnsRecordType{RecordTypeAAAA, RecordTypeA} {
		q := ledger.find(target, rt)
		if q != nil && q.status == dnsQueryCompleted && q.result.ok && len(q.result.addrs) > 0 {
			return true
		}
	}
	return false
}

// hasPositiveAddrRecord reports whether any query in ledger (for any
// target name) is a completed positive AAAA or A.
func hasPositiveAddrRecord(ledger *dnsLedger) bool {
	for _, q := range ledger.queries {
		if q.recordType != RecordTypeAAAA && q.recordType != RecordTypeA {
			continue
		}
		if q.status == dnsQueryCompleted && q.result.ok && len(q.result.addrs) > 0 {
			return true
		}
	}
	return false
}
