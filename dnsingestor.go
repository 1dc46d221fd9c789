// SPDX-License-Identifier: GPL-3.0-or-later

package happyeyeballs

import "time"

// ingestDnsResult merges in a [DnsResultInput]. If the matching [dnsQuery]
// does not exist or is already completed, the event is dropped: this is a
// protocol violation by the caller, never a terminal transition.
func ingestDnsResult(ledger *dnsLedger, in DnsResultInput, now time.Time) {
	q := ledger.findByID(in.ID)
	if q == nil || q.status == dnsQueryCompleted {
		return
	}

	q.status = dnsQueryCompleted
	q.completed = now
	q.result = dnsResult{
		ok:    in.Ok,
		https: in.HTTPSRecords,
		addrs: in.Addresses,
	}
}
