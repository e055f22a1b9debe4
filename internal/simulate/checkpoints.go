// Eventrec - Event Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventrec

package simulate

import "time"

// checkpointInterval is the number of days between checkpoints.
const checkpointInterval = 7

// WeeklyCheckpoints returns the as-of dates replayed for the window
// [start, end]: start+7, start+14, ... for every offset smaller than the
// window's length in days, counting both ends. start itself is never a
// checkpoint, so a 14-day window yields exactly start+7.
func WeeklyCheckpoints(start, end time.Time) []time.Time {
	if end.Before(start) {
		return nil
	}
	numDays := int(end.Sub(start).Hours()/24) + 1

	var checkpoints []time.Time
	for offset := checkpointInterval; offset < numDays; offset += checkpointInterval {
		checkpoints = append(checkpoints, start.AddDate(0, 0, offset))
	}
	return checkpoints
}
