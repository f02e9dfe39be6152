package weather

import "time"

// FreshnessThreshold is how long a fetched payload may be served without a refresh.
// It also drives the polling interval.
const FreshnessThreshold = 10 * time.Minute

// IsFresh reports whether an entry fetched at fetchedAt can still be served at now.
func IsFresh(fetchedAt, now time.Time) bool {
	return now.Sub(fetchedAt) < FreshnessThreshold
}
