package subscription

import (
	"fmt"
	"math"
	"time"

	"clipfeed_backend/internal/model"
)

const day = 24 * time.Hour

// Duration converts a package term into a fixed span. Months are 30 days and years 365 days;
// expiry dates are computed with this arithmetic, not the calendar. Terms too long to fit in a
// time.Duration (about 292 years) are rejected.
func Duration(unit model.DurationUnit, n int) (time.Duration, error) {
	if n <= 0 {
		return 0, fmt.Errorf("%w: duration number %d", ErrInvalidDurationUnit, n)
	}
	var span time.Duration
	switch unit {
	case model.DurationDay:
		span = day
	case model.DurationMonth:
		span = 30 * day
	case model.DurationYear:
		span = 365 * day
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidDurationUnit, string(unit))
	}
	if int64(n) > math.MaxInt64/int64(span) {
		return 0, fmt.Errorf("%w: %d %s is too long", ErrInvalidDurationUnit, n, string(unit))
	}
	return time.Duration(n) * span, nil
}

// extend applies the shared renewal rule: a term still running is pushed forward from its
// current end, anything else starts over at now.
func extend(join, end *time.Time, now time.Time, d time.Duration) (time.Time, time.Time) {
	if join != nil && end != nil && end.After(now) {
		return *join, end.Add(d)
	}
	return now, now.Add(d)
}
