package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDaysLate(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		due  time.Time
		want int
	}{
		{"on time", now.Add(24 * time.Hour), 0},
		{"due exactly now", now, 0},
		{"hours past due counts as one day", now.Add(-2 * time.Hour), 1},
		{"one full day", now.Add(-24 * time.Hour), 1},
		{"three and a half days", now.Add(-84 * time.Hour), 3},
		{"ten days", now.Add(-240 * time.Hour), 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DaysLate(tt.due, now))
		})
	}
}

func TestLateFee(t *testing.T) {
	assert.Zero(t, LateFee(0, 5))
	assert.Zero(t, LateFee(-1, 5))
	assert.InDelta(t, 15.0, LateFee(3, 5), 0.001)
	assert.InDelta(t, 12.5, LateFee(5, 2.5), 0.001)
}
