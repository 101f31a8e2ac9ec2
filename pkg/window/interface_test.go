package window

import (
	"fmt"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockProbe struct {
	snapshot Snapshot
	idle     time.Duration
	err      error
}

func (m *MockProbe) ActiveWindow() (Snapshot, error) {
	return m.snapshot, m.err
}

func (m *MockProbe) IdleDuration() (time.Duration, error) {
	return m.idle, m.err
}

func (m *MockProbe) Platform() string {
	return "mock"
}

func TestMockProbe(t *testing.T) {
	var _ Probe = (*MockProbe)(nil)

	mock := &MockProbe{
		snapshot: Snapshot{AppName: "Code", WindowTitle: "main.go"},
		idle:     1500 * time.Millisecond,
	}

	snap, err := mock.ActiveWindow()
	require.NoError(t, err)
	assert.Equal(t, "Code", snap.AppName)
	assert.Equal(t, "main.go", snap.WindowTitle)

	idle, err := mock.IdleDuration()
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, idle)
}

func TestOrSentinel(t *testing.T) {
	assert.Equal(t, UnknownWindow, OrSentinel("", UnknownWindow))
	assert.Equal(t, "Terminal", OrSentinel("Terminal", UnknownApplication))
}

func TestClampIdle(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want time.Duration
	}{
		{-5 * time.Second, 0},
		{0, 0},
		{3 * time.Second, 3 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.in.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, ClampIdle(tt.in))
		})
	}
}

func TestProbeErrorMatchesKind(t *testing.T) {
	err := NewProbeError(DisplayUnavailable, "x11.ActiveWindow", fmt.Errorf("connection refused"))
	wrapped := errors.Wrap(err, "tick")

	assert.True(t, errors.Is(wrapped, ErrDisplayUnavailable))
	assert.False(t, errors.Is(wrapped, ErrNoForegroundWindow))
	assert.Contains(t, err.Error(), "x11.ActiveWindow: display unavailable: connection refused")

	var pe *ProbeError
	require.True(t, errors.As(wrapped, &pe))
	assert.Equal(t, DisplayUnavailable, pe.Kind)
}

func TestIsPresenceFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"no foreground window", NewProbeError(NoForegroundWindow, "op", nil), true},
		{"no frontmost app", NewProbeError(NoFrontmostApplication, "op", nil), true},
		{"display unavailable", NewProbeError(DisplayUnavailable, "op", nil), true},
		{"api failure", NewProbeError(APIFailure, "op", nil), false},
		{"plain error", fmt.Errorf("boom"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsPresenceFailure(tt.err))
		})
	}
}
