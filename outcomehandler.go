// SPDX-License-Identifier: GPL-3.0-or-later

package happyeyeballs

// ingestConnectionResult merges in a [ConnectionResultInput]. If the
// matching attempt does not exist or is no longer in-progress, the event is
// dropped: a protocol violation by the caller, never a terminal transition.
func ingestConnectionResult(attempts *attemptLedger, in ConnectionResultInput) {
	a := attempts.findByID(in.ID)
	if a == nil || a.status != attemptInProgress {
		return
	}
	if in.Err == nil {
		a.status = attemptSucceeded
	} else {
		a.status = attemptFailed
	}
}

// cancelLoser emits one [CancelConnectionOutput] per call for a remaining
// in-progress attempt, once the attempt ledger holds a success. Returns
// false once none remain.
func cancelLoser(attempts *attemptLedger) (Output, bool) {
	if !attempts.hasSucceeded() {
		return nil, false
	}
	inProgress := attempts.inProgress()
	if len(inProgress) == 0 {
		return nil, false
	}
	loser := inProgress[0]
	loser.status = attemptFailed
	return CancelConnectionOutput{Address: loser.endpoint.Address}, true
}

// exhausted reports whether no further progress is possible: no DNS query
// is pending and no connection attempt is in-progress and no candidate
// endpoint remains to plan.
func exhausted(cfg NetworkConfig, target TargetName, h host, port uint16, ledger *dnsLedger, attempts *attemptLedger) bool {
	if ledger.anyInProgress() {
		return false
	}
	if len(attempts.inProgress()) > 0 {
		return false
	}
	if _, ok := planEndpoint(cfg, target, h, port, ledger, attempts); ok {
		return false
	}
	return true
}
