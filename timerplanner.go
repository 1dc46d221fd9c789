// SPDX-License-Identifier: GPL-3.0-or-later

package happyeyeballs

import "time"

// planTimer computes the nearest deadline worth waking the caller for
// (draft §4.8), folding in the supplemented NAT64 synthesis deadline.
func planTimer(cfg NetworkConfig, attempts *attemptLedger, ledger *dnsLedger, nat64 *nat64State, now time.Time) (Output, bool) {
	best, ok := time.Duration(0), false

	if newest, have := attempts.newestInProgressStart(); have {
		if remaining := cfg.connectionAttemptDelay() - now.Sub(newest); remaining > 0 {
			best, ok = remaining, true
		}
	}

	if ledger.anyInProgress() {
		if earliest, have := ledger.earliestCompletion(); have {
			remaining := ResolutionDelay - now.Sub(earliest)
			if remaining > 0 && (!ok || remaining < best) {
				best, ok = remaining, true
			}
		}
	}

	if remaining, have := nat64.remaining(now); have {
		if !ok || remaining < best {
			best, ok = remaining, true
		}
	}

	if !ok {
		return nil, false
	}
	return TimerOutput{Duration: best}, true
}
