// SPDX-License-Identifier: GPL-3.0-or-later

package happyeyeballs

import "net/netip"

// TargetName is a normalized hostname: either the primary target or a name
// discovered via an SVCB/HTTPS record's target name field.
type TargetName string

// DnsRecordType identifies which of the three record types a [dnsQuery] is for.
type DnsRecordType int

const (
	RecordTypeHTTPS DnsRecordType = iota
	RecordTypeAAAA
	RecordTypeA
)

// String implements [fmt.Stringer].
func (t DnsRecordType) String() string {
	switch t {
	case RecordTypeHTTPS:
		return "HTTPS"
	case RecordTypeAAAA:
		return "AAAA"
	case RecordTypeA:
		return "A"
	default:
		return "unknown"
	}
}

// Protocol is a single ALPN-level HTTP protocol token.
type Protocol int

const (
	ProtocolH1 Protocol = iota
	ProtocolH2
	ProtocolH3
)

// String implements [fmt.Stringer].
func (p Protocol) String() string {
	switch p {
	case ProtocolH1:
		return "h1"
	case ProtocolH2:
		return "h2"
	case ProtocolH3:
		return "h3"
	default:
		return "unknown"
	}
}

// ConnectionAttemptProtocol is the compound protocol value attached to an
// [Endpoint]. H3 only ever travels over QUIC; a single TCP+TLS attempt may
// negotiate either H2 or H1 via ALPN, represented by the AttemptH2OrH1
// compound rather than duplicating the attempt schedule per protocol.
//
// Ordering is the declared order: AttemptH3 is strongest/first.
type ConnectionAttemptProtocol int

const (
	AttemptH3 ConnectionAttemptProtocol = iota
	AttemptH2OrH1
	AttemptH2
	AttemptH1
)

// String implements [fmt.Stringer].
func (p ConnectionAttemptProtocol) String() string {
	switch p {
	case AttemptH3:
		return "h3"
	case AttemptH2OrH1:
		return "h2-or-h1"
	case AttemptH2:
		return "h2"
	case AttemptH1:
		return "h1"
	default:
		return "unknown"
	}
}

// ServiceInfo is one parsed SVCB/HTTPS record.
type ServiceInfo struct {
	// Priority is the record's SvcPriority.
	Priority uint16

	// TargetName is the record's SvcDomainName.
	TargetName TargetName

	// ALPN is the set of protocols advertised via the "alpn" SvcParam.
	ALPN map[Protocol]bool

	// ECHConfig is the opaque "ech" SvcParam value, or nil if absent.
	ECHConfig []byte

	// IPv4Hints are the addresses in the "ipv4hint" SvcParam.
	IPv4Hints []netip.Addr

	// IPv6Hints are the addresses in the "ipv6hint" SvcParam.
	IPv6Hints []netip.Addr
}

// Endpoint is a candidate attempt target: an address, a compound protocol,
// and an optional ECH configuration sufficient to attempt one connection.
//
// Two endpoints are equal iff all three fields are equal; the attempt-dedup
// filter in the endpoint planner relies on this tuple equality.
type Endpoint struct {
	Address   netip.AddrPort
	Protocol  ConnectionAttemptProtocol
	ECHConfig []byte
}

func (e Endpoint) equal(other Endpoint) bool {
	if e.Address != other.Address || e.Protocol != other.Protocol {
		return false
	}
	return string(e.ECHConfig) == string(other.ECHConfig)
}
