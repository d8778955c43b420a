package subscription

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"clipfeed_backend/internal/model"
)

func TestDuration(t *testing.T) {
	tests := []struct {
		name string
		unit model.DurationUnit
		n    int
		want time.Duration
		err  error
	}{
		{"one day", model.DurationDay, 1, 86400000 * time.Millisecond, nil},
		{"seven days", model.DurationDay, 7, 7 * 86400000 * time.Millisecond, nil},
		{"month is thirty days", model.DurationMonth, 1, 30 * 86400000 * time.Millisecond, nil},
		{"three months", model.DurationMonth, 3, 90 * 24 * time.Hour, nil},
		{"year is 365 days", model.DurationYear, 1, 365 * 86400000 * time.Millisecond, nil},
		{"unknown unit", model.DurationUnit("WEEK"), 1, 0, ErrInvalidDurationUnit},
		{"zero count", model.DurationDay, 0, 0, ErrInvalidDurationUnit},
		{"negative count", model.DurationMonth, -1, 0, ErrInvalidDurationUnit},
		{"longest day term", model.DurationDay, 106751, 106751 * day, nil},
		{"day term past the limit", model.DurationDay, 106752, 0, ErrInvalidDurationUnit},
		{"300 years", model.DurationYear, 300, 0, ErrInvalidDurationUnit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Duration(tt.unit, tt.n)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtend(t *testing.T) {
	now := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	joined := now.Add(-5 * day)
	d := 7 * day

	future := now.Add(2 * day)
	join, end := extend(&joined, &future, now, d)
	assert.Equal(t, joined, join)
	assert.Equal(t, future.Add(d), end)

	past := now.Add(-time.Hour)
	join, end = extend(&joined, &past, now, d)
	assert.Equal(t, now, join)
	assert.Equal(t, now.Add(d), end)

	join, end = extend(nil, nil, now, d)
	assert.Equal(t, now, join)
	assert.Equal(t, now.Add(d), end)
}
