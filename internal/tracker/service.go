// Package tracker runs the periodic sampling loop.
package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/actionsum/activitymon/internal/commands"
	"github.com/actionsum/activitymon/internal/config"
	"github.com/actionsum/activitymon/internal/models"
	"github.com/actionsum/activitymon/internal/state"
	"github.com/actionsum/activitymon/pkg/window"
)

// ErrAlreadyRunning is returned when Start is called on a running service.
var ErrAlreadyRunning = errors.New("tracker is already running")

// State is the part of the tracking state the loop reads and writes.
type State interface {
	Enabled() bool
	RecordSample(sample models.Sample) bool
	Snapshot() state.Snapshot
}

// Publisher receives every sample recorded by a tick.
type Publisher interface {
	Publish(ctx context.Context, sample models.Sample)
}

// Service samples the active window once per poll interval while tracking
// is enabled.
type Service struct {
	config    *config.Config
	state     State
	probe     window.Probe
	publisher Publisher
	journal   commands.Journal
	logger    *zap.Logger
	now       func() time.Time

	mu       sync.Mutex
	running  bool
	stopChan chan struct{} // nil unless a loop is running
}

// NewService creates the sampling loop. publisher and journal may be nil.
func NewService(cfg *config.Config, st State, probe window.Probe, publisher Publisher, journal commands.Journal, logger *zap.Logger) *Service {
	return &Service{
		config:    cfg,
		state:     st,
		probe:     probe,
		publisher: publisher,
		journal:   journal,
		logger:    logger,
		now:       time.Now,
	}
}

// Start runs the loop until ctx is cancelled or Stop is called. The first
// tick runs immediately. Ticks never overlap; a slow tick delays the next.
// A stopped service can be started again.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	stop := make(chan struct{})
	s.running = true
	s.stopChan = stop
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		if s.stopChan == stop {
			s.stopChan = nil
		}
		s.mu.Unlock()
	}()

	interval := s.config.Tracker.PollInterval
	s.logger.Info("starting tracker", zap.Duration("poll_interval", interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("tracker stopped by context")
			return ctx.Err()

		case <-stop:
			s.logger.Info("tracker stopped")
			return nil

		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// Stop ends the running loop, if any. It is safe to call more than once.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopChan != nil {
		close(s.stopChan)
		s.stopChan = nil
	}
}

func (s *Service) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Service) tick(ctx context.Context) {
	sample, err := s.trackOnce(ctx)
	if err != nil {
		s.storeError(err)
		return
	}
	if sample != nil {
		s.logger.Debug("tracked",
			zap.String("app", sample.AppName),
			zap.Float64("idle_seconds", sample.IdleSeconds))
	}
}

// trackOnce performs one tick. It returns a nil sample when tracking is
// disabled, in which case the probe is not called.
func (s *Service) trackOnce(ctx context.Context) (*models.Sample, error) {
	if !s.state.Enabled() {
		return nil, nil
	}

	sample, err := commands.Capture(s.probe, s.now())
	if err != nil {
		return nil, errors.Wrap(err, "failed to sample active window")
	}

	if !s.state.RecordSample(sample) {
		// Tracking was stopped while probing.
		return nil, nil
	}

	if s.publisher != nil {
		s.publisher.Publish(ctx, sample)
	}
	return &sample, nil
}

func (s *Service) storeError(err error) {
	level := s.logger.Error
	if window.IsPresenceFailure(err) {
		level = s.logger.Warn
	}
	level("tick skipped", zap.Error(err))

	if s.journal != nil {
		s.journal.Record(models.SourceProbe, s.state.Snapshot().SessionID, err)
	}
}
