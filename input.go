// SPDX-License-Identifier: GPL-3.0-or-later

package happyeyeballs

import "net/netip"

// Input is the sum type of events the caller feeds into the engine via
// [*Engine.ProcessInput].
type Input interface {
	isInput()
}

// DnsResultInput reports the outcome of a previously issued
// [SendDnsQueryOutput]. Ok is false for a negative answer or a resolution
// error; both are evidence, never an error condition for the engine.
type DnsResultInput struct {
	ID     Id
	Target TargetName

	// RecordType identifies which of HTTPS, AAAA, A this completes.
	RecordType DnsRecordType

	Ok bool

	// HTTPSRecords is meaningful only when RecordType is RecordTypeHTTPS
	// and Ok is true.
	HTTPSRecords []ServiceInfo

	// Addresses is meaningful only when RecordType is RecordTypeAAAA or
	// RecordTypeA and Ok is true.
	Addresses []netip.Addr
}

func (DnsResultInput) isInput() {}

// ConnectionResultInput reports the outcome of a previously issued
// [AttemptConnectionOutput]. Err is nil on success.
type ConnectionResultInput struct {
	ID  Id
	Err error
}

func (ConnectionResultInput) isInput() {}
