// SPDX-License-Identifier: GPL-3.0-or-later

package connector

// Unit is a type not containing any value (analogous to an
// explicit `void` type in C and C++).
//
// Use this type to construct [Func] that take no argument
// or return no value to the caller. The runner package's per-attempt
// TCP dial pipeline is one such Func: [NewEndpointFunc] sources the
// [netip.AddrPort] internally, so the pipeline's Call takes a bare Unit.
type Unit struct{}
