package feeder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSchedule(t *testing.T) {
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		expr string
		next time.Time
	}{
		{"@every 5s", base.Add(5 * time.Second)},
		{"30s", base.Add(30 * time.Second)},
		{"250ms", base.Add(250 * time.Millisecond)},
		{"*/10 * * * * *", base.Add(10 * time.Second)},
		{"*/5 * * * *", base.Add(5 * time.Minute)},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			sched, err := ParseSchedule(tt.expr)
			require.NoError(t, err)
			assert.WithinDuration(t, tt.next, sched.Next(base), 0)
		})
	}
}

func TestParseScheduleInvalid(t *testing.T) {
	for _, expr := range []string{"", "soon", "-5s", "0s"} {
		_, err := ParseSchedule(expr)
		assert.Error(t, err, expr)
	}
}
