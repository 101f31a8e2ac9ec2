package macos

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/actionsum/activitymon/pkg/window"
)

func TestSnapshotFor(t *testing.T) {
	snap := snapshotFor("Safari")
	assert.Equal(t, "Safari", snap.AppName)
	assert.Equal(t, "Safari Window", snap.WindowTitle)

	snap = snapshotFor("")
	assert.Equal(t, window.UnknownApplication, snap.AppName)
	assert.Equal(t, window.UnknownApplication+" Window", snap.WindowTitle)
}

func TestSecondsToIdle(t *testing.T) {
	tests := []struct {
		name    string
		seconds float64
		want    time.Duration
	}{
		{"fractional seconds", 2.5, 2500 * time.Millisecond},
		{"zero", 0, 0},
		{"negative", -1, 0},
		{"nan", math.NaN(), 0},
		{"infinite", math.Inf(1), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, secondsToIdle(tt.seconds))
		})
	}
}
