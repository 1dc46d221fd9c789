// SPDX-License-Identifier: GPL-3.0-or-later

// Package happyeyeballs implements the Happy Eyeballs v3 connection racing
// algorithm as a pure, I/O-free state machine for a single target
// host:port.
package happyeyeballs

import "time"

// Engine drives one racing attempt against one target. It owns no sockets,
// no clocks, no resolver: every input and output crosses the boundary
// explicitly through [*Engine.ProcessInput] and [*Engine.ProcessOutput].
//
// An Engine is not safe for concurrent use. Callers must not invoke it
// reentrantly from within a call to either method.
type Engine struct {
	target TargetName
	host   host
	port   uint16
	cfg    NetworkConfig

	ids      idAllocator
	dns      dnsLedger
	attempts attemptLedger
	nat64    nat64State

	succeeded bool
	failed    bool
}

// New constructs an [Engine] for host:port. host may be a DNS name, a
// bracketed IPv6 literal (e.g. "[2001:db8::1]"), or a bare IPv4/IPv6
// literal. cfg may be nil, in which case [NewNetworkConfig] defaults apply.
//
// New fails only when host is syntactically invalid, or when cfg declares
// an unsupported alt-svc host/port override.
func New(hostStr string, port uint16, cfg *NetworkConfig) (*Engine, error) {
	h, err := parseHost(hostStr)
	if err != nil {
		return nil, err
	}

	effective := NewNetworkConfig()
	if cfg != nil {
		effective = *cfg
	}
	if effective.hasUnsupportedAltSvc() {
		for _, hint := range effective.AltSvc {
			if hint.Host != "" || hint.Port != 0 {
				return nil, &ErrUnsupportedAltSvc{Hint: hint}
			}
		}
	}

	target := h.name
	if h.isLiteral {
		target = TargetName(hostStr)
	}

	return &Engine{
		target: target,
		host:   h,
		port:   port,
		cfg:    effective,
	}, nil
}

// ProcessInput folds one external event into the engine's ledgers. Pass nil
// to advance time without delivering any new evidence.
func (e *Engine) ProcessInput(in Input, now time.Time) {
	switch v := in.(type) {
	case nil:
		return
	case DnsResultInput:
		ingestDnsResult(&e.dns, v, now)
	case ConnectionResultInput:
		ingestConnectionResult(&e.attempts, v)
	}
	e.nat64.observe(e.cfg, e.target, &e.dns, now)
}

// ProcessOutput drains the next output the engine wants acted on, following
// the fixed top-level priority order: cancel losers, DNS query for the
// primary target, connection attempt, DNS query for a discovered target
// name, NAT64 synthesis request, timer, terminal Failed. Returns false once the engine has nothing
// further to say for this instant (the caller should wait for the timer or
// for a new input).
func (e *Engine) ProcessOutput(now time.Time) (Output, bool) {
	if e.succeeded {
		if out, ok := cancelLoser(&e.attempts); ok {
			return out, true
		}
		return SucceededOutput{}, true
	}
	if e.failed {
		return FailedOutput{}, true
	}

	if out, ok := cancelLoser(&e.attempts); ok {
		return out, true
	}
	if e.attempts.hasSucceeded() {
		e.succeeded = true
		return SucceededOutput{}, true
	}

	if !e.host.isLiteral {
		if out, ok := scheduleDnsQuery(&e.ids, &e.dns, e.target, now); ok {
			return out, true
		}
	}

	if ready(e.cfg, e.target, &e.dns, e.host.isLiteral, now) {
		if out, ok := scheduleAttempt(e.cfg, &e.ids, e.target, e.host, e.port, &e.dns, &e.attempts, now); ok {
			return out, true
		}
	}

	if !e.host.isLiteral {
		if out, ok := scheduleDiscoveredTargetQuery(&e.ids, &e.dns, e.target, now); ok {
			return out, true
		}
	}

	e.nat64.observe(e.cfg, e.target, &e.dns, now)
	if e.nat64.ready(now) {
		if addr, ok := v4OnlyBlackhole(e.cfg, e.target, &e.dns); ok {
			e.nat64.requested = true
			return SynthesizeNat64Output{Address: addr}, true
		}
	}

	if out, ok := planTimer(e.cfg, &e.attempts, &e.dns, &e.nat64, now); ok {
		return out, true
	}

	if exhausted(e.cfg, e.target, e.host, e.port, &e.dns, &e.attempts) {
		e.failed = true
		return FailedOutput{}, true
	}

	return nil, false
}
