// SPDX-License-Identifier: GPL-3.0-or-later

package happyeyeballs

import (
	"errors"
	"net/netip"
	"testing"
	"time"
)

// drainOutputs repeatedly calls ProcessOutput until it returns false,
// collecting every emitted output.
func drainOutputs(e *Engine, now time.Time) []Output {
	var out []Output
	for {
		o, ok := e.ProcessOutput(now)
		if !ok {
			return out
		}
		out = append(out, o)
	}
}

func mustNewEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New("example.com", 443, nil)
	if err != nil {
		t.Fatalf("unexpected error constructing engine: %v", err)
	}
	return e
}

// Scenario 1: query order.
func TestScenarioQueryOrder(t *testing.T) {
	e := mustNewEngine(t)
	now := time.Unix(0, 0)

	outs := drainOutputs(e, now)
	if len(outs) != 3 {
		t.Fatalf("expected exactly three DNS queries drained, got %d", len(outs))
	}
	want := []DnsRecordType{RecordTypeHTTPS, RecordTypeAAAA, RecordTypeA}
	for i, o := range outs {
		q := o.(SendDnsQueryOutput)
		if q.RecordType != want[i] {
			t.Fatalf("query %d: got %v, want %v", i, q.RecordType, want[i])
		}
	}
}

func issueAllQueries(t *testing.T, e *Engine, now time.Time) map[DnsRecordType]Id {
	t.Helper()
	ids := map[DnsRecordType]Id{}
	for _, o := range drainOutputs(e, now) {
		q := o.(SendDnsQueryOutput)
		ids[q.RecordType] = q.ID
	}
	return ids
}

// Scenario 2: early fire on preferred family.
func TestScenarioEarlyFireOnPreferredFamily(t *testing.T) {
	e := mustNewEngine(t)
	now := time.Unix(0, 0)
	ids := issueAllQueries(t, e, now)

	e.ProcessInput(DnsResultInput{
		ID: ids[RecordTypeAAAA], Target: "example.com", RecordType: RecordTypeAAAA, Ok: true,
		Addresses: []netip.Addr{netip.MustParseAddr("2001:db8::1")},
	}, now)
	e.ProcessInput(DnsResultInput{
		ID: ids[RecordTypeHTTPS], Target: "example.com", RecordType: RecordTypeHTTPS, Ok: true,
		HTTPSRecords: []ServiceInfo{{
			TargetName: "example.com",
			ALPN:       map[Protocol]bool{ProtocolH2: true, ProtocolH3: true},
		}},
	}, now)

	out, ok := e.ProcessOutput(now)
	if !ok {
		t.Fatalf("expected an attempt to fire")
	}
	attempt := out.(AttemptConnectionOutput)
	want := Endpoint{Address: netip.MustParseAddrPort("[2001:db8::1]:443"), Protocol: AttemptH3}
	if !attempt.Endpoint.equal(want) {
		t.Fatalf("got endpoint %+v, want %+v", attempt.Endpoint, want)
	}
}

// Scenario 3/4: resolution delay fallback, and the clock starting at the
// first response rather than at query issuance.
func TestScenarioResolutionDelayFallback(t *testing.T) {
	e := mustNewEngine(t)
	t0 := time.Unix(0, 0)
	ids := issueAllQueries(t, e, t0)

	firstResponseAt := t0.Add(10 * time.Millisecond)
	e.ProcessInput(DnsResultInput{
		ID: ids[RecordTypeA], Target: "example.com", RecordType: RecordTypeA, Ok: true,
		Addresses: []netip.Addr{netip.MustParseAddr("192.0.2.1")},
	}, firstResponseAt)

	out, ok := e.ProcessOutput(firstResponseAt)
	if timer, isTimer := out.(TimerOutput); !ok || !isTimer || timer.Duration != ResolutionDelay {
		t.Fatalf("expected no attempt before the resolution delay elapses, only a %v timer; got %#v", ResolutionDelay, out)
	}

	tooEarly := firstResponseAt.Add(ResolutionDelay - time.Millisecond)
	out, ok = e.ProcessOutput(tooEarly)
	if timer, isTimer := out.(TimerOutput); !ok || !isTimer || timer.Duration != time.Millisecond {
		t.Fatalf("expected no attempt at 59ms (delay measured from first response, not from t0), only a 1ms timer; got %#v", out)
	}

	exactly := firstResponseAt.Add(ResolutionDelay)
	out, ok = e.ProcessOutput(exactly)
	if !ok {
		t.Fatalf("expected an attempt once the resolution delay elapses from the first response")
	}
	attempt := out.(AttemptConnectionOutput)
	if attempt.Endpoint.Address.Addr().String() != "192.0.2.1" {
		t.Fatalf("unexpected endpoint: %+v", attempt.Endpoint)
	}
}

// Scenario 5: IPv6 black hole exhausts every candidate and then fails.
func TestScenarioIPv6BlackHole(t *testing.T) {
	e := mustNewEngine(t)
	now := time.Unix(0, 0)
	ids := issueAllQueries(t, e, now)

	e.ProcessInput(DnsResultInput{
		ID: ids[RecordTypeHTTPS], Target: "example.com", RecordType: RecordTypeHTTPS, Ok: true,
		HTTPSRecords: []ServiceInfo{{
			TargetName: "example.com",
			ALPN:       map[Protocol]bool{ProtocolH3: true, ProtocolH2: true},
		}},
	}, now)
	e.ProcessInput(DnsResultInput{
		ID: ids[RecordTypeAAAA], Target: "example.com", RecordType: RecordTypeAAAA, Ok: true,
		Addresses: []netip.Addr{netip.MustParseAddr("2001:db8::1")},
	}, now)
	e.ProcessInput(DnsResultInput{
		ID: ids[RecordTypeA], Target: "example.com", RecordType: RecordTypeA, Ok: true,
		Addresses: []netip.Addr{netip.MustParseAddr("192.0.2.1")},
	}, now)

	out, ok := e.ProcessOutput(now)
	if !ok {
		t.Fatalf("expected the first attempt")
	}
	attempt := out.(AttemptConnectionOutput)
	if !attempt.Endpoint.Address.Addr().Is6() || attempt.Endpoint.Protocol != AttemptH3 {
		t.Fatalf("expected the v6/H3 endpoint first, got %+v", attempt.Endpoint)
	}

	t1 := now
	for {
		t1 = t1.Add(ConnectionAttemptDelay)
		e.ProcessInput(ConnectionResultInput{ID: attempt.ID, Err: errors.New("refused")}, t1)
		out, ok = e.ProcessOutput(t1)
		if !ok {
			t.Fatalf("expected either another attempt or a terminal Failed")
		}
		if _, isFailed := out.(FailedOutput); isFailed {
			break
		}
		attempt = out.(AttemptConnectionOutput)
	}
}

// Scenario 6: HTTPS hints substitute for A/AAAA only when missing.
func TestScenarioHTTPSHintsSubstituteWhenMissing(t *testing.T) {
	e := mustNewEngine(t)
	now := time.Unix(0, 0)
	ids := issueAllQueries(t, e, now)

	e.ProcessInput(DnsResultInput{ID: ids[RecordTypeAAAA], Target: "example.com", RecordType: RecordTypeAAAA, Ok: false}, now)
	e.ProcessInput(DnsResultInput{ID: ids[RecordTypeA], Target: "example.com", RecordType: RecordTypeA, Ok: false}, now)
	e.ProcessInput(DnsResultInput{
		ID: ids[RecordTypeHTTPS], Target: "example.com", RecordType: RecordTypeHTTPS, Ok: true,
		HTTPSRecords: []ServiceInfo{{
			TargetName: "example.com",
			ALPN:       map[Protocol]bool{ProtocolH2: true, ProtocolH3: true},
			IPv6Hints:  []netip.Addr{netip.MustParseAddr("2001:db8::1")},
		}},
	}, now)

	out, ok := e.ProcessOutput(now)
	if !ok {
		t.Fatalf("expected an attempt")
	}
	attempt := out.(AttemptConnectionOutput)
	want := Endpoint{Address: netip.MustParseAddrPort("[2001:db8::1]:443"), Protocol: AttemptH3}
	if !attempt.Endpoint.equal(want) {
		t.Fatalf("got endpoint %+v, want %+v", attempt.Endpoint, want)
	}
}

// Scenario 7: ECH propagation.
func TestScenarioECHPropagation(t *testing.T) {
	e := mustNewEngine(t)
	now := time.Unix(0, 0)
	ids := issueAllQueries(t, e, now)

	ech := []byte{0x01, 0x02, 0x03, 0x04, 0x05}
	e.ProcessInput(DnsResultInput{
		ID: ids[RecordTypeHTTPS], Target: "example.com", RecordType: RecordTypeHTTPS, Ok: true,
		HTTPSRecords: []ServiceInfo{{
			TargetName: "example.com",
			ALPN:       map[Protocol]bool{ProtocolH3: true, ProtocolH2: true},
			ECHConfig:  ech,
		}},
	}, now)
	e.ProcessInput(DnsResultInput{
		ID: ids[RecordTypeAAAA], Target: "example.com", RecordType: RecordTypeAAAA, Ok: true,
		Addresses: []netip.Addr{netip.MustParseAddr("2001:db8::1")},
	}, now)

	out, ok := e.ProcessOutput(now)
	if !ok {
		t.Fatalf("expected an attempt")
	}
	attempt := out.(AttemptConnectionOutput)
	if string(attempt.Endpoint.ECHConfig) != string(ech) {
		t.Fatalf("expected the ECH config to propagate, got %v", attempt.Endpoint.ECHConfig)
	}
}

// Scenario 8: success cancels siblings.
func TestScenarioSuccessCancelsSiblings(t *testing.T) {
	e := mustNewEngine(t)
	now := time.Unix(0, 0)
	ids := issueAllQueries(t, e, now)

	e.ProcessInput(DnsResultInput{
		ID: ids[RecordTypeHTTPS], Target: "example.com", RecordType: RecordTypeHTTPS, Ok: true,
		HTTPSRecords: []ServiceInfo{{
			TargetName: "example.com",
			ALPN:       map[Protocol]bool{ProtocolH2: true, ProtocolH3: true},
		}},
	}, now)
	e.ProcessInput(DnsResultInput{
		ID: ids[RecordTypeAAAA], Target: "example.com", RecordType: RecordTypeAAAA, Ok: true,
		Addresses: []netip.Addr{netip.MustParseAddr("2001:db8::1")},
	}, now)
	e.ProcessInput(DnsResultInput{
		ID: ids[RecordTypeA], Target: "example.com", RecordType: RecordTypeA, Ok: true,
		Addresses: []netip.Addr{netip.MustParseAddr("192.0.2.1")},
	}, now)

	out, ok := e.ProcessOutput(now)
	if !ok {
		t.Fatalf("expected the v6 attempt")
	}
	idA := out.(AttemptConnectionOutput).ID

	t1 := now.Add(ConnectionAttemptDelay)
	out, ok = e.ProcessOutput(t1)
	if !ok {
		t.Fatalf("expected the v4 attempt after the stagger")
	}
	attemptB := out.(AttemptConnectionOutput)

	e.ProcessInput(ConnectionResultInput{ID: idA}, t1)

	out, ok = e.ProcessOutput(t1)
	if !ok {
		t.Fatalf("expected a cancellation for the sibling")
	}
	cancel := out.(CancelConnectionOutput)
	if cancel.Address != attemptB.Endpoint.Address {
		t.Fatalf("expected to cancel the sibling's address, got %v", cancel.Address)
	}

	out, ok = e.ProcessOutput(t1)
	if !ok {
		t.Fatalf("expected a terminal Succeeded after the sibling is cancelled")
	}
	if _, ok := out.(SucceededOutput); !ok {
		t.Fatalf("expected SucceededOutput, got %T", out)
	}
}
