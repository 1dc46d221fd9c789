// SPDX-License-Identifier: GPL-3.0-or-later

// Package happyeyeballs implements the Happy Eyeballs v3 connection-racing
// algorithm (IETF draft-ietf-happy-happyeyeballs-v3-02) as a pure, I/O-free
// state machine for a single target host/port.
//
// # Core Abstraction
//
// The package owns no sockets, no clocks, and no resolver. It is a single
// passive object, [*Engine], driven entirely by its caller:
//
//	engine, err := happyeyeballs.New("example.com", 443, nil)
//	engine.ProcessInput(someInput, now)
//	for {
//		output, ok := engine.ProcessOutput(now)
//		if !ok {
//			break
//		}
//		if _, isTimer := output.(happyeyeballs.TimerOutput); isTimer {
//			break // wait for the timer or a new input, then call again
//		}
//		// dispatch output to the DNS resolver / connector collaborators
//	}
//
// [*Engine.ProcessInput] folds external evidence (a DNS result or a
// connection outcome) into the engine's ledgers. [*Engine.ProcessOutput]
// drains one action at a time — a DNS query to issue, a connection to
// attempt, a loser to cancel, a timer to wait on, or a terminal
// [SucceededOutput]/[FailedOutput] — until it returns false or a
// [TimerOutput] for the given instant; a terminal output is returned
// again on every later call. All time is supplied by the caller as the now argument; the
// engine never reads a clock.
//
// # Ledgers, Not a State Enum
//
// Internally the engine keeps two append-only ledgers: the DNS ledger
// (queries issued for HTTPS, AAAA, and A, per target name) and the attempt
// ledger (connection attempts issued, per endpoint). Readiness to attempt a
// connection is a predicate over partial evidence across both ledgers, not
// a transition in a handful of named states — see [*Engine.ProcessOutput]
// and the unexported readiness/planner helpers it calls in priority order.
//
// # Collaborators
//
// This package never performs DNS resolution, opens a socket, or negotiates
// TLS. Those concerns live in the sibling resolver and connector packages,
// which a runner glues to the engine's Input/Output event vocabulary.
package happyeyeballs
