// SPDX-License-Identifier: GPL-3.0-or-later

package happyeyeballs

import (
	"testing"
	"time"
)

func TestDnsLedgerFindAndAppend(t *testing.T) {
	var l dnsLedger
	if l.find("example.com", RecordTypeHTTPS) != nil {
		t.Fatalf("expected no entry in an empty ledger")
	}
	q := &dnsQuery{id: 1, target: "example.com", recordType: RecordTypeHTTPS, status: dnsQueryInProgress}
	l.append(q)
	if l.find("example.com", RecordTypeHTTPS) != q {
		t.Fatalf("expected to find the appended query")
	}
	if l.findByID(1) != q {
		t.Fatalf("expected to find the query by id")
	}
	if !l.anyInProgress() {
		t.Fatalf("expected anyInProgress to be true")
	}
}

func TestDnsLedgerEarliestCompletion(t *testing.T) {
	var l dnsLedger
	t0 := time.Unix(0, 0)
	l.append(&dnsQuery{id: 1, target: "a", recordType: RecordTypeAAAA, status: dnsQueryCompleted, completed: t0.Add(20 * time.Millisecond)})
	l.append(&dnsQuery{id: 2, target: "a", recordType: RecordTypeA, status: dnsQueryCompleted, completed: t0.Add(5 * time.Millisecond)})
	l.append(&dnsQuery{id: 3, target: "a", recordType: RecordTypeHTTPS, status: dnsQueryInProgress})

	earliest, ok := l.earliestCompletion()
	if !ok {
		t.Fatalf("expected at least one completion")
	}
	if !earliest.Equal(t0.Add(5 * time.Millisecond)) {
		t.Fatalf("expected the earliest completion, got %v", earliest)
	}
}

func TestAttemptLedgerHasEndpointAndSucceeded(t *testing.T) {
	var l attemptLedger
	ep := Endpoint{Protocol: AttemptH3}
	if l.hasEndpoint(ep) {
		t.Fatalf("expected no endpoint in an empty ledger")
	}
	l.append(&connectionAttempt{id: 1, endpoint: ep, status: attemptInProgress})
	if !l.hasEndpoint(ep) {
		t.Fatalf("expected to find the appended endpoint")
	}
	if l.hasSucceeded() {
		t.Fatalf("expected no success yet")
	}
	if len(l.inProgress()) != 1 {
		t.Fatalf("expected one in-progress attempt")
	}

	l.attempts[0].status = attemptSucceeded
	if !l.hasSucceeded() {
		t.Fatalf("expected hasSucceeded to be true")
	}
	if len(l.inProgress()) != 0 {
		t.Fatalf("expected no in-progress attempts after success")
	}
}

func TestAttemptLedgerNewestInProgressStart(t *testing.T) {
	var l attemptLedger
	t0 := time.Unix(0, 0)
	l.append(&connectionAttempt{id: 1, started: t0, status: attemptInProgress})
	l.append(&connectionAttempt{id: 2, started: t0.Add(10 * time.Millisecond), status: attemptInProgress})
	l.append(&connectionAttempt{id: 3, started: t0.Add(100 * time.Millisecond), status: attemptFailed})

	newest, ok := l.newestInProgressStart()
	if !ok {
		t.Fatalf("expected an in-progress attempt")
	}
	if !newest.Equal(t0.Add(10 * time.Millisecond)) {
		t.Fatalf("expected the newest in-progress start, got %v", newest)
	}
}
