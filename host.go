// SPDX-License-Identifier: GPL-3.0-or-later

package happyeyeballs

import (
	"net/netip"
	"strings"
)

// host is the parsed form of the string passed to [New]: either a domain
// name to resolve via DNS, or an IP literal to connect to directly.
type host struct {
	name      TargetName
	literal   netip.Addr
	isLiteral bool
}

// parseHost accepts a DNS name, a bracketed IPv6 literal (e.g.
// "[2001:db8::1]"), or a bare IPv4/IPv6 literal.
func parseHost(s string) (host, error) {
	if s == "" {
		return host{}, &ErrInvalidHost{Host: s}
	}

	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		inner := s[1 : len(s)-1]
		addr, err := netip.ParseAddr(inner)
		if err != nil || !addr.Is6() {
			return host{}, &ErrInvalidHost{Host: s}
		}
		return host{literal: addr, isLiteral: true}, nil
	}

	if addr, err := netip.ParseAddr(s); err == nil {
		return host{literal: addr, isLiteral: true}, nil
	}

	if !isValidDomainName(s) {
		return host{}, &ErrInvalidHost{Host: s}
	}
	return host{name: TargetName(s)}, nil
}

// isValidDomainName applies the classic label-length and character-set
// rules (RFC 1035 §2.3.1, relaxed to also allow leading digits per RFC 1123).
func isValidDomainName(s string) bool {
	if len(s) == 0 || len(s) > 253 {
		return false
	}
	labels := strings.Split(strings.TrimSuffix(s, "."), ".")
	for _, label := range labels {
		if len(label) == 0 || len(label) > 63 {
			return false
		}
		for i, r := range label {
			switch {
			case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
				continue
			case r == '-' && i != 0 && i != len(label)-1:
				continue
			default:
				return false
			}
		}
	}
	return true
}
