// SPDX-License-Identifier: GPL-3.0-or-later

package happyeyeballs

import (
	"net/netip"
	"time"
)

// dnsQueryStatus is the state of one [dnsQuery].
type dnsQueryStatus int

const (
	dnsQueryInProgress dnsQueryStatus = iota
	dnsQueryCompleted
)

// dnsResult is the payload of a completed [dnsQuery]. Exactly one of
// https/addrs is meaningful, selected by the owning query's RecordType.
// ok is false for a negative answer or resolution error; either way this
// is still evidence, never an error condition for the engine.
type dnsResult struct {
	ok    bool
	https []ServiceInfo
	addrs []netip.Addr
}

// dnsQuery is one query the engine has issued, at most one per (target,
// record type) pair.
type dnsQuery struct {
	id         Id
	target     TargetName
	recordType DnsRecordType
	status     dnsQueryStatus
	started    time.Time
	completed  time.Time
	result     dnsResult
}

// dnsLedger is the append-only log of DNS queries issued for this target
// and any additional target names discovered via HTTPS records.
type dnsLedger struct {
	queries []*dnsQuery
}

func (l *dnsLedger) find(target TargetName, recordType DnsRecordType) *dnsQuery {
	for _, q := range l.queries {
		if q.target == target && q.recordType == recordType {
			return q
		}
	}
	return nil
}

func (l *dnsLedger) findByID(id Id) *dnsQuery {
	for _, q := range l.queries {
		if q.id == id {
			return q
		}
	}
	return nil
}

func (l *dnsLedger) append(q *dnsQuery) {
	l.queries = append(l.queries, q)
}

// anyInProgress reports whether any query is still awaiting a result.
func (l *dnsLedger) anyInProgress() bool {
	for _, q := range l.queries {
		if q.status == dnsQueryInProgress {
			return true
		}
	}
	return false
}

// earliestCompletion returns the earliest completion timestamp across all
// completed queries, and whether any query has completed at all.
func (l *dnsLedger) earliestCompletion() (time.Time, bool) {
	var earliest time.Time
	found := false
	for _, q := range l.queries {
		if q.status != dnsQueryCompleted {
			continue
		}
		if !found || q.completed.Before(earliest) {
			earliest = q.completed
			found = true
		}
	}
	return earliest, found
}

// attemptStatus is the state of one [connectionAttempt].
type attemptStatus int

const (
	attemptInProgress attemptStatus = iota
	attemptSucceeded
	attemptFailed
)

// connectionAttempt is one connection attempt the engine has issued.
type connectionAttempt struct {
	id       Id
	endpoint Endpoint
	started  time.Time
	status   attemptStatus
}

// attemptLedger is the append-only log of connection attempts issued for
// this target.
type attemptLedger struct {
	attempts []*connectionAttempt
}

func (l *attemptLedger) findByID(id Id) *connectionAttempt {
	for _, a := range l.attempts {
		if a.id == id {
			return a
		}
	}
	return nil
}

func (l *attemptLedger) append(a *connectionAttempt) {
	l.attempts = append(l.attempts, a)
}

// hasEndpoint reports whether an attempt already exists for e, by full
// (address, protocol, ech) value equality.
func (l *attemptLedger) hasEndpoint(e Endpoint) bool {
	for _, a := range l.attempts {
		if a.endpoint.equal(e) {
			return true
		}
	}
	return false
}

func (l *attemptLedger) hasSucceeded() bool {
	for _, a := range l.attempts {
		if a.status == attemptSucceeded {
			return true
		}
	}
	return false
}

// inProgress returns every attempt still awaiting a result.
func (l *attemptLedger) inProgress() []*connectionAttempt {
	var out []*connectionAttempt
	for _, a := range l.attempts {
		if a.status == attemptInProgress {
			out = append(out, a)
		}
	}
	return out
}

// newestInProgressStart returns the started time of the most recently
// started in-progress attempt, and whether one exists.
func (l *attemptLedger) newestInProgressStart() (time.Time, bool) {
	var newest time.Time
	found := false
	for _, a := range l.attempts {
		if a.status != attemptInProgress {
			continue
		}
		if !found || a.started.After(newest) {
			newest = a.started
			found = true
		}
	}
	return newest, found
}
