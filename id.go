// SPDX-License-Identifier: GPL-3.0-or-later

package happyeyeballs

// Id is an opaque correlator minted for a single issued request: a DNS
// query or a connection attempt. The engine requires a total order of
// issued-by-output then completed-by-input for every Id; collaborators
// must never reuse one across inputs or outputs.
type Id uint64

// idAllocator mints monotonically increasing [Id] values.
type idAllocator struct {
	next Id
}

// allocate returns a fresh [Id]. Wrapping arithmetic on a 64-bit counter;
// overflow is not observable in practice.
func (a *idAllocator) allocate() Id {
	id := a.next
	a.next++
	return id
}
