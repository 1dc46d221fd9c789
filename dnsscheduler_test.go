// SPDX-License-Identifier: GPL-3.0-or-later

package happyeyeballs

import (
	"testing"
	"time"
)

func TestScheduleDnsQueryOrder(t *testing.T) {
	var ids idAllocator
	var ledger dnsLedger
	now := time.Unix(0, 0)

	var got []DnsRecordType
	for {
		out, ok := scheduleDnsQuery(&ids, &ledger, "example.com", now)
		if !ok {
			break
		}
		got = append(got, out.(SendDnsQueryOutput).RecordType)
	}

	want := []DnsRecordType{RecordTypeHTTPS, RecordTypeAAAA, RecordTypeA}
	if len(got) != len(want) {
		t.Fatalf("expected %d queries, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("query %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestScheduleDnsQueryOneAtATime(t *testing.T) {
	var ids idAllocator
	var ledger dnsLedger
	now := time.Unix(0, 0)

	_, ok := scheduleDnsQuery(&ids, &ledger, "example.com", now)
	if !ok {
		t.Fatalf("expected a first query")
	}
	if len(ledger.queries) != 1 {
		t.Fatalf("expected exactly one ledger entry after one call")
	}
}

func TestScheduleDiscoveredTargetQuery(t *testing.T) {
	var ids idAllocator
	var ledger dnsLedger
	now := time.Unix(0, 0)

	ledger.append(&dnsQuery{
		id: ids.allocate(), target: "example.com", recordType: RecordTypeHTTPS,
		status: dnsQueryCompleted,
		result: dnsResult{ok: true, https: []ServiceInfo{{TargetName: "cdn.example.net"}}},
	})

	out, ok := scheduleDiscoveredTargetQuery(&ids, &ledger, "example.com", now)
	if !ok {
		t.Fatalf("expected a discovered-target query")
	}
	q := out.(SendDnsQueryOutput)
	if q.Hostname != "cdn.example.net" || q.RecordType != RecordTypeAAAA {
		t.Fatalf("unexpected output: %+v", q)
	}

	out, ok = scheduleDiscoveredTargetQuery(&ids, &ledger, "example.com", now)
	if !ok {
		t.Fatalf("expected the A query for the discovered name next")
	}
	q = out.(SendDnsQueryOutput)
	if q.RecordType != RecordTypeA {
		t.Fatalf("expected A after AAAA, got %v", q.RecordType)
	}

	if _, ok := scheduleDiscoveredTargetQuery(&ids, &ledger, "example.com", now); ok {
		t.Fatalf("expected no further discovered-target queries")
	}
}
