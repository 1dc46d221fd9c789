// SPDX-License-Identifier: GPL-3.0-or-later

package connector

import "net/netip"

// NewEndpointFunc returns a [Func] that always returns the given [netip.AddrPort].
//
// This is a convenience wrapper around [ConstFunc] for the common case of
// injecting a network endpoint into a pipeline. The runner package uses it
// to source the per-attempt TCP dial pipeline from the [netip.AddrPort] the
// engine chose for that attempt, so the pipeline as a whole can be built
// with [Compose5] and invoked with a bare [Unit] rather than threading the
// address through as an explicit call argument.
func NewEndpointFunc(endpoint netip.AddrPort) Func[Unit, netip.AddrPort] {
	return ConstFunc(endpoint)
}
