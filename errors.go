// SPDX-License-Identifier: GPL-3.0-or-later

package happyeyeballs

import "fmt"

// ErrInvalidHost is returned by [New] when the host string is neither a
// syntactically valid domain name nor a valid IPv4/IPv6 literal.
type ErrInvalidHost struct {
	Host string
}

// Error implements [error].
func (e *ErrInvalidHost) Error() string {
	return fmt.Sprintf("happyeyeballs: invalid host: %q", e.Host)
}

// ErrUnsupportedAltSvc is returned by [New] when a [NetworkConfig.AltSvc]
// entry specifies a non-empty Host or Port override (draft §4.2, open
// question: not implemented here).
type ErrUnsupportedAltSvc struct {
	Hint AltSvcHint
}

// Error implements [error].
func (e *ErrUnsupportedAltSvc) Error() string {
	return fmt.Sprintf("happyeyeballs: unsupported alt-svc host/port override: %+v", e.Hint)
}
