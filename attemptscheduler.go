// SPDX-License-Identifier: GPL-3.0-or-later

package happyeyeballs

import "time"

// scheduleAttempt implements the Connection Attempt Delay stagger (draft
// §5/§6): no new attempt is emitted while an in-progress attempt is younger
// than cfg's connection attempt delay. Otherwise it consults the endpoint
// planner and, if a candidate exists, allocates an Id, appends it as
// in-progress, and returns the corresponding [AttemptConnectionOutput].
func scheduleAttempt(cfg NetworkConfig, ids *idAllocator, target TargetName, h host, port uint16, ledger *dnsLedger, attempts *attemptLedger, now time.Time) (Output, bool) {
	if newest, ok := attempts.newestInProgressStart(); ok {
		if now.Sub(newest) < cfg.connectionAttemptDelay() {
			return nil, false
		}
	}

	ep, ok := planEndpoint(cfg, target, h, port, ledger, attempts)
	if !ok {
		return nil, false
	}

	id := ids.allocate()
	attempts.append(&connectionAttempt{
		id:       id,
		endpoint: ep,
		started:  now,
		status:   attemptInProgress,
	})
	return AttemptConnectionOutput{ID: id, Endpoint: ep}, true
}
