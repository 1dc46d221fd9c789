// SPDX-License-Identifier: GPL-3.0-or-later

package happyeyeballs

import "time"

const (
	// ResolutionDelay is the default time the engine waits for additional
	// DNS responses after the first one arrives before acting on a partial
	// picture (draft §4.2 default).
	ResolutionDelay = 50 * time.Millisecond

	// ConnectionAttemptDelay is the default minimum spacing between
	// successive connection attempts (draft §5/§6 default).
	ConnectionAttemptDelay = 250 * time.Millisecond

	// MinConnectionAttemptDelay and MaxConnectionAttemptDelay bound a
	// caller-supplied [NetworkConfig.ConnectionAttemptDelay] override.
	MinConnectionAttemptDelay = 100 * time.Millisecond
	MaxConnectionAttemptDelay = 2 * time.Second

	// LastResortSynthesisDelay is how long the engine waits, once an
	// Ipv6Only target has shown evidence of an IPv4-only answer, before
	// emitting [SynthesizeNat64Output].
	LastResortSynthesisDelay = 2 * time.Second
)

// IPPreference controls which address family the engine prefers when both
// are available, or restricts the engine to a single family.
type IPPreference int

const (
	DualStackPreferV6 IPPreference = iota
	DualStackPreferV4
	Ipv6Only
	Ipv4Only
)

// HTTPVersions is a mask of which HTTP versions, and thus which transport
// protocols, the caller is willing to use.
type HTTPVersions struct {
	H1 bool
	H2 bool
	H3 bool
}

// DefaultHTTPVersions allows all three versions.
func DefaultHTTPVersions() HTTPVersions {
	return HTTPVersions{H1: true, H2: true, H3: true}
}

// AltSvcHint is a caller-supplied alternative service hint contributing a
// [Protocol] to the effective protocol set. Entries with a non-empty Host
// or Port are currently unsupported: [New] rejects them.
type AltSvcHint struct {
	Host     string
	Port     uint16
	Protocol Protocol
}

// NetworkConfig is the engine's immutable operating configuration.
type NetworkConfig struct {
	// HTTPVersions masks which protocols the caller allows.
	//
	// Defaults to [DefaultHTTPVersions].
	HTTPVersions HTTPVersions

	// IP selects the address-family preference.
	//
	// Defaults to [DualStackPreferV6].
	IP IPPreference

	// AltSvc lists caller-supplied alt-service hints. A Host/Port override
	// in any entry is currently unsupported.
	AltSvc []AltSvcHint

	// ConnectionAttemptDelay overrides [ConnectionAttemptDelay].
	//
	// Zero means use the default. Always clamped via
	// [ClampConnectionAttemptDelay] before use.
	ConnectionAttemptDelay time.Duration
}

// NewNetworkConfig returns a [NetworkConfig] with the draft's defaults.
func NewNetworkConfig() NetworkConfig {
	return NetworkConfig{
		HTTPVersions:           DefaultHTTPVersions(),
		IP:                     DualStackPreferV6,
		ConnectionAttemptDelay: ConnectionAttemptDelay,
	}
}

// ClampConnectionAttemptDelay clamps d to the closed interval
// [MinConnectionAttemptDelay, MaxConnectionAttemptDelay].
//
// Callers validating a user-supplied override before constructing the
// engine should call this directly; the attempt scheduler also applies it
// defensively to [NetworkConfig.ConnectionAttemptDelay].
func ClampConnectionAttemptDelay(d time.Duration) time.Duration {
	switch {
	case d < MinConnectionAttemptDelay:
		return MinConnectionAttemptDelay
	case d > MaxConnectionAttemptDelay:
		return MaxConnectionAttemptDelay
	default:
		return d
	}
}

func (c NetworkConfig) connectionAttemptDelay() time.Duration {
	d := c.ConnectionAttemptDelay
	if d == 0 {
		d = ConnectionAttemptDelay
	}
	return ClampConnectionAttemptDelay(d)
}

func (c NetworkConfig) hasUnsupportedAltSvc() bool {
	for _, hint := range c.AltSvc {
		if hint.Host != "" || hint.Port != 0 {
			return true
		}
	}
	return false
}
