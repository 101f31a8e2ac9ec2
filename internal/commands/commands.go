// Package commands implements the operations the desktop shell invokes:
// start and stop tracking, read the current activity and submit a sample.
package commands

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/actionsum/activitymon/internal/models"
	"github.com/actionsum/activitymon/internal/state"
	"github.com/actionsum/activitymon/pkg/window"
)

var (
	// ErrNotTracking is returned by SendActivityData while tracking is off.
	ErrNotTracking = errors.New("tracking is not active")
	// ErrMissingIdentity is returned when tracking is on without an identity.
	ErrMissingIdentity = errors.New("tracking identity is not set")
	// ErrIncompleteIdentity is returned by StartTracking when a credential
	// field is empty.
	ErrIncompleteIdentity = errors.New("user id, team id and token are all required")
)

// Store is the tracking state the commands mutate.
type Store interface {
	Start(identity models.Identity) string
	Stop()
	Snapshot() state.Snapshot
}

// Submitter sends a sample to the remote service.
type Submitter interface {
	Report(ctx context.Context, identity models.Identity, sample models.Sample) error
}

// Journal records failures for later diagnosis.
type Journal interface {
	Record(source, sessionID string, err error)
}

// Commands binds the command surface to its collaborators.
type Commands struct {
	store     Store
	probe     window.Probe
	submitter Submitter
	journal   Journal
	logger    *zap.Logger
	now       func() time.Time
}

// New creates the command surface. journal may be nil.
func New(store Store, probe window.Probe, submitter Submitter, journal Journal, logger *zap.Logger) *Commands {
	return &Commands{
		store:     store,
		probe:     probe,
		submitter: submitter,
		journal:   journal,
		logger:    logger,
		now:       time.Now,
	}
}

// Capture runs both probe operations and builds a sample stamped at.
func Capture(p window.Probe, at time.Time) (models.Sample, error) {
	snap, err := p.ActiveWindow()
	if err != nil {
		return models.Sample{}, err
	}
	idle, err := p.IdleDuration()
	if err != nil {
		return models.Sample{}, err
	}
	return models.NewSample(snap, idle, at), nil
}

// StartTracking enables tracking for the given identity and returns the new
// session id.
func (c *Commands) StartTracking(ctx context.Context, userID, teamID, token string) (string, error) {
	identity := models.Identity{UserID: userID, TeamID: teamID, Token: token}
	if !identity.Complete() {
		return "", ErrIncompleteIdentity
	}

	sessionID := c.store.Start(identity)
	c.logger.Info("tracking started",
		zap.String("user_id", userID),
		zap.String("team_id", teamID),
		zap.String("session_id", sessionID))
	return sessionID, nil
}

// StopTracking disables tracking and forgets the identity.
func (c *Commands) StopTracking(ctx context.Context) error {
	c.store.Stop()
	c.logger.Info("tracking stopped")
	return nil
}

// GetCurrentActivity probes the platform now; it does not read the cached
// sample.
func (c *Commands) GetCurrentActivity(ctx context.Context) (models.Sample, error) {
	return Capture(c.probe, c.now())
}

// LastActivity returns the most recent scheduled sample, if any.
func (c *Commands) LastActivity(ctx context.Context) (*models.Sample, bool) {
	snap := c.store.Snapshot()
	return snap.LastSample, snap.LastSample != nil
}

// SendActivityData submits sample with the current identity. The state lock
// is released before the network call.
func (c *Commands) SendActivityData(ctx context.Context, sample models.Sample) error {
	snap := c.store.Snapshot()
	if !snap.Enabled {
		return ErrNotTracking
	}
	if snap.Identity == nil {
		return ErrMissingIdentity
	}

	if err := c.submitter.Report(ctx, *snap.Identity, sample); err != nil {
		c.logger.Warn("activity submission failed",
			zap.String("session_id", snap.SessionID),
			zap.Error(err))
		if c.journal != nil {
			c.journal.Record(models.SourceReport, snap.SessionID, err)
		}
		return err
	}
	return nil
}
