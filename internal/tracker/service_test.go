package tracker

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/actionsum/activitymon/internal/config"
	"github.com/actionsum/activitymon/internal/models"
	"github.com/actionsum/activitymon/internal/state"
	"github.com/actionsum/activitymon/pkg/window"
)

type fakeProbe struct {
	mu        sync.Mutex
	snap      window.Snapshot
	idle      time.Duration
	windowErr error
	calls     int
}

func (f *fakeProbe) ActiveWindow() (window.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.snap, f.windowErr
}

func (f *fakeProbe) IdleDuration() (time.Duration, error) {
	return f.idle, nil
}

func (f *fakeProbe) Platform() string { return "fake" }

func (f *fakeProbe) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type recordingPublisher struct {
	mu      sync.Mutex
	samples []models.Sample
}

func (r *recordingPublisher) Publish(ctx context.Context, sample models.Sample) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples = append(r.samples, sample)
}

func (r *recordingPublisher) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.samples)
}

type recordingJournal struct {
	sources []string
	errs    []error
}

func (r *recordingJournal) Record(source, sessionID string, err error) {
	r.sources = append(r.sources, source)
	r.errs = append(r.errs, err)
}

func newTestService(probe window.Probe) (*Service, *state.TrackingState, *recordingPublisher, *recordingJournal) {
	st := state.New()
	pub := &recordingPublisher{}
	journal := &recordingJournal{}
	svc := NewService(config.Default(), st, probe, pub, journal, zap.NewNop())

	clock := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return svc, st, pub, journal
}

var identity = models.Identity{UserID: "alice", TeamID: "team-1", Token: "tok-abc"}

func TestTickWhileDisabledDoesNothing(t *testing.T) {
	probe := &fakeProbe{snap: window.Snapshot{AppName: "Code", WindowTitle: "main.go"}}
	svc, st, pub, _ := newTestService(probe)

	sample, err := svc.trackOnce(context.Background())
	require.NoError(t, err)
	assert.Nil(t, sample)
	assert.Zero(t, probe.Calls())
	assert.Nil(t, st.Snapshot().LastSample)
	assert.Zero(t, pub.Len())
}

func TestConsecutiveTicksHaveIncreasingTimestamps(t *testing.T) {
	probe := &fakeProbe{snap: window.Snapshot{AppName: "Code", WindowTitle: "main.go"}, idle: 1500 * time.Millisecond}
	svc, st, pub, _ := newTestService(probe)
	st.Start(identity)

	first, err := svc.trackOnce(context.Background())
	require.NoError(t, err)
	second, err := svc.trackOnce(context.Background())
	require.NoError(t, err)

	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Greater(t, second.Timestamp, first.Timestamp)
	assert.Equal(t, 1.5, second.IdleSeconds)
	assert.Equal(t, *second, *st.Snapshot().LastSample)
	assert.Equal(t, []models.Sample{*first, *second}, pub.samples)
}

func TestPresenceFailureSkipsTick(t *testing.T) {
	probe := &fakeProbe{snap: window.Snapshot{AppName: "Code", WindowTitle: "main.go"}}
	svc, st, pub, journal := newTestService(probe)
	st.Start(identity)

	previous, err := svc.trackOnce(context.Background())
	require.NoError(t, err)

	probe.windowErr = window.NewProbeError(window.NoForegroundWindow, "GetForegroundWindow", nil)
	svc.tick(context.Background())

	assert.Equal(t, *previous, *st.Snapshot().LastSample)
	assert.Equal(t, 1, pub.Len(), "no event for the failed tick")
	require.Len(t, journal.errs, 1)
	assert.Equal(t, models.SourceProbe, journal.sources[0])
	assert.ErrorIs(t, journal.errs[0], window.ErrNoForegroundWindow)
}

func TestStopDuringProbeDiscardsSample(t *testing.T) {
	st := state.New()
	st.Start(identity)
	probe := &stoppingProbe{state: st}
	pub := &recordingPublisher{}
	svc := NewService(config.Default(), st, probe, pub, nil, zap.NewNop())

	sample, err := svc.trackOnce(context.Background())
	require.NoError(t, err)
	assert.Nil(t, sample)
	assert.Zero(t, pub.Len())
}

type stoppingProbe struct {
	state *state.TrackingState
}

func (s *stoppingProbe) ActiveWindow() (window.Snapshot, error) {
	s.state.Stop()
	return window.Snapshot{AppName: "Code", WindowTitle: "x"}, nil
}

func (s *stoppingProbe) IdleDuration() (time.Duration, error) { return 0, nil }

func (s *stoppingProbe) Platform() string { return "fake" }

func TestStartRunsImmediatelyAndStops(t *testing.T) {
	probe := &fakeProbe{snap: window.Snapshot{AppName: "Code", WindowTitle: "main.go"}}
	svc, st, pub, _ := newTestService(probe)
	st.Start(identity)

	done := make(chan error, 1)
	go func() { done <- svc.Start(context.Background()) }()

	require.Eventually(t, func() bool { return pub.Len() == 1 }, time.Second, 5*time.Millisecond)
	assert.True(t, svc.IsRunning())
	assert.ErrorIs(t, svc.Start(context.Background()), ErrAlreadyRunning)

	svc.Stop()
	svc.Stop()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("loop did not stop")
	}
	assert.False(t, svc.IsRunning())
}

func TestRestartAfterStop(t *testing.T) {
	probe := &fakeProbe{snap: window.Snapshot{AppName: "Code", WindowTitle: "main.go"}}
	svc, st, pub, _ := newTestService(probe)
	st.Start(identity)

	for round := 1; round <= 2; round++ {
		done := make(chan error, 1)
		go func() { done <- svc.Start(context.Background()) }()

		require.Eventually(t, func() bool { return pub.Len() == round }, time.Second, 5*time.Millisecond)
		require.Eventually(t, svc.IsRunning, time.Second, 5*time.Millisecond)

		svc.Stop()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(time.Second):
			t.Fatalf("loop did not stop in round %d", round)
		}
		assert.False(t, svc.IsRunning())
	}
}

func TestStopWhenIdleIsNoop(t *testing.T) {
	svc, _, _, _ := newTestService(&fakeProbe{})
	assert.NotPanics(t, svc.Stop)
	assert.False(t, svc.IsRunning())
}

func TestStartHonorsContext(t *testing.T) {
	svc, _, _, _ := newTestService(&fakeProbe{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- svc.Start(ctx) }()
	require.Eventually(t, svc.IsRunning, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("loop ignored cancellation")
	}
}

func TestAPIFailureIsJournaled(t *testing.T) {
	probe := &fakeProbe{windowErr: window.NewProbeError(window.APIFailure, "GetLastInputInfo", fmt.Errorf("access denied"))}
	svc, st, _, journal := newTestService(probe)
	st.Start(identity)

	svc.tick(context.Background())
	require.Len(t, journal.errs, 1)
	assert.ErrorIs(t, journal.errs[0], window.ErrAPIFailure)
	assert.Nil(t, st.Snapshot().LastSample)
}
