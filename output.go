// SPDX-License-Identifier: GPL-3.0-or-later

package happyeyeballs

import (
	"net/netip"
	"time"
)

// Output is the sum type of actions the engine asks the caller to perform,
// drained one at a time via [*Engine.ProcessOutput].
type Output interface {
	isOutput()
}

// SendDnsQueryOutput asks the caller to issue a DNS query and report back
// via [DnsResultInput] carrying the same ID.
type SendDnsQueryOutput struct {
	ID         Id
	Hostname   TargetName
	RecordType DnsRecordType
}

func (SendDnsQueryOutput) isOutput() {}

// AttemptConnectionOutput asks the caller to attempt a connection and
// report back via [ConnectionResultInput] carrying the same ID.
type AttemptConnectionOutput struct {
	ID       Id
	Endpoint Endpoint
}

func (AttemptConnectionOutput) isOutput() {}

// CancelConnectionOutput asks the caller to abort a previously requested
// attempt. No reply is expected.
type CancelConnectionOutput struct {
	Address netip.AddrPort
}

func (CancelConnectionOutput) isOutput() {}

// TimerOutput asks the caller to wake the engine no later than Duration
// from the now passed to the call that produced it.
type TimerOutput struct {
	Duration time.Duration
}

func (TimerOutput) isOutput() {}

// SucceededOutput is terminal: a connection was established. The engine
// keeps re-emitting this on every subsequent drain.
type SucceededOutput struct{}

func (SucceededOutput) isOutput() {}

// FailedOutput is terminal: all avenues were exhausted.
type FailedOutput struct{}

func (FailedOutput) isOutput() {}

// SynthesizeNat64Output asks the caller to request NAT64 synthesis for
// Address. This is a supplemented, non-terminal output: it fires only for
// an Ipv6Only target that resolved an A record but never any IPv6
// evidence, after [LastResortSynthesisDelay] has elapsed. It does not
// replace Failed; if no connection ever succeeds the engine still
// eventually emits [FailedOutput].
type SynthesizeNat64Output struct {
	Address netip.Addr
}

func (SynthesizeNat64Output) isOutput() {}
