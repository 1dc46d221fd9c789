// SPDX-License-Identifier: GPL-3.0-or-later

package happyeyeballs

import (
	"testing"
	"time"
)

func TestPlanTimerAttemptStagger(t *testing.T) {
	var ledger dnsLedger
	var attempts attemptLedger
	var nat64 nat64State
	t0 := time.Unix(0, 0)
	attempts.append(&connectionAttempt{id: 1, started: t0, status: attemptInProgress})

	out, ok := planTimer(NewNetworkConfig(), &attempts, &ledger, &nat64, t0.Add(10*time.Millisecond))
	if !ok {
		t.Fatalf("expected a timer while an attempt is within its stagger window")
	}
	timer := out.(TimerOutput)
	want := ConnectionAttemptDelay - 10*time.Millisecond
	if timer.Duration != want {
		t.Fatalf("expected remaining duration %v, got %v", want, timer.Duration)
	}
}

func TestPlanTimerResolutionDelay(t *testing.T) {
	var ledger dnsLedger
	var attempts attemptLedger
	var nat64 nat64State
	t0 := time.Unix(0, 0)
	ledger.append(&dnsQuery{target: "example.com", recordType: RecordTypeHTTPS, status: dnsQueryInProgress})
	ledger.append(&dnsQuery{target: "example.com", recordType: RecordTypeAAAA, status: dnsQueryCompleted, completed: t0})

	out, ok := planTimer(NewNetworkConfig(), &attempts, &ledger, &nat64, t0.Add(10*time.Millisecond))
	if !ok {
		t.Fatalf("expected a resolution-delay timer")
	}
	timer := out.(TimerOutput)
	want := ResolutionDelay - 10*time.Millisecond
	if timer.Duration != want {
		t.Fatalf("expected remaining duration %v, got %v", want, timer.Duration)
	}
}

func TestPlanTimerNoneWhenIdle(t *testing.T) {
	var ledger dnsLedger
	var attempts attemptLedger
	var nat64 nat64State
	if _, ok := planTimer(NewNetworkConfig(), &attempts, &ledger, &nat64, time.Unix(0, 0)); ok {
		t.Fatalf("expected no timer with nothing pending")
	}
}
