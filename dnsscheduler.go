// SPDX-License-Identifier: GPL-3.0-or-later

package happyeyeballs

import "time"

// dnsQueryOrder is the fixed per-target emission order (draft §4.1).
var dnsQueryOrder = [...]DnsRecordType{RecordTypeHTTPS, RecordTypeAAAA, RecordTypeA}

// scheduleDnsQuery emits the next missing DNS query for target, appending
// an in-progress [dnsQuery] to ledger and returning the corresponding
// [SendDnsQueryOutput]. It returns false if every query for target has
// already been issued.
func scheduleDnsQuery(ids *idAllocator, ledger *dnsLedger, target TargetName, now time.Time) (Output, bool) {
	for _, rt := range dnsQueryOrder {
		if ledger.find(target, rt) != nil {
			continue
		}
		id := ids.allocate()
		ledger.append(&dnsQuery{
			id:         id,
			target:     target,
			recordType: rt,
			status:     dnsQueryInProgress,
			started:    now,
		})
		return SendDnsQueryOutput{ID: id, Hostname: target, RecordType: rt}, true
	}
	return nil, false
}

// scheduleDiscoveredTargetQuery emits the next missing AAAA/A query (in
// that order) for any target name discovered via a completed positive
// HTTPS response and not equal to primary. HTTPS recursion is not
// performed for discovered names.
func scheduleDiscoveredTargetQuery(ids *idAllocator, ledger *dnsLedger, primary TargetName, now time.Time) (Output, bool) {
	httpsQ := ledger.find(primary, RecordTypeHTTPS)
	if httpsQ == nil || httpsQ.status != dnsQueryCompleted || !httpsQ.result.ok {
		return nil, false
	}

	for _, si := range httpsQ.result.https {
		if si.TargetName == primary || si.TargetName == "" {
			continue
		}
		for _, rt := range [...]DnsRecordType{RecordTypeAAAA, RecordTypeA} {
			if ledger.find(si.TargetName, rt) != nil {
				continue
			}
			id := ids.allocate()
			ledger.append(&dnsQuery{
				id:         id,
				target:     si.TargetName,
				recordType: rt,
				status:     dnsQueryInProgress,
				started:    now,
			})
			return SendDnsQueryOutput{ID: id, Hostname: si.TargetName, RecordType: rt}, true
		}
	}
	return nil, false
}
