package unsupported

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/actionsum/activitymon/pkg/window"
)

func TestProbeAlwaysSucceeds(t *testing.T) {
	var p window.Probe = NewProbe()

	for i := 0; i < 3; i++ {
		snap, err := p.ActiveWindow()
		require.NoError(t, err)
		assert.Equal(t, window.UnsupportedPlatform, snap.AppName)
		assert.Equal(t, window.UnsupportedPlatform, snap.WindowTitle)

		idle, err := p.IdleDuration()
		require.NoError(t, err)
		assert.Equal(t, time.Duration(0), idle)
	}
	assert.Equal(t, "unsupported", p.Platform())
}
