package selection

import "time"

// IsRefreshDue reports whether interval has elapsed since lastUpdate. A nil
// lastUpdate (never refreshed) is always due.
func IsRefreshDue(lastUpdate *time.Time, interval time.Duration, now time.Time) bool {
	if lastUpdate == nil {
		return true
	}
	return now.Sub(*lastUpdate) >= interval
}

// NextRefreshTime is when the factlet shown at now may change.
func NextRefreshTime(now time.Time, interval time.Duration) time.Time {
	return now.Add(interval)
}

// SlotStart returns the start of the refresh slot containing at, counting
// whole intervals forward from lastUpdate. Instants before lastUpdate, a nil
// lastUpdate or a non-positive interval yield at truncated to the interval.
func SlotStart(at time.Time, lastUpdate *time.Time, interval time.Duration) time.Time {
	if interval <= 0 {
		return at
	}
	if lastUpdate == nil || at.Before(*lastUpdate) {
		return at.Truncate(interval)
	}
	n := at.Sub(*lastUpdate) / interval
	return lastUpdate.Add(n * interval)
}
