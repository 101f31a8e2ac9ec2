// Package state holds the tracking state shared by the scheduler and the
// command handlers.
package state

import (
	"sync"

	"github.com/google/uuid"

	"github.com/actionsum/activitymon/internal/models"
)

// Snapshot is a copy of the tracking state. Mutating it has no effect on the
// shared record.
type Snapshot struct {
	Enabled    bool
	Identity   *models.Identity
	SessionID  string
	LastSample *models.Sample
}

// TrackingState is the single shared record. One mutex guards every field,
// and no slow work happens while it is held.
type TrackingState struct {
	mu         sync.Mutex
	enabled    bool
	identity   *models.Identity
	sessionID  string
	lastSample *models.Sample
}

// New returns a disabled state with no identity and no sample.
func New() *TrackingState {
	return &TrackingState{}
}

// Start enables tracking under identity and opens a new session. Calling it
// again replaces the identity.
func (s *TrackingState) Start(identity models.Identity) string {
	id := identity
	sessionID := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = true
	s.identity = &id
	s.sessionID = sessionID
	return sessionID
}

// Stop disables tracking and clears the identity. The last sample is kept.
func (s *TrackingState) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = false
	s.identity = nil
	s.sessionID = ""
}

// Enabled reports whether tracking is on.
func (s *TrackingState) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// RecordSample stores sample as the last sample if tracking is still enabled.
// It reports whether the sample was stored.
func (s *TrackingState) RecordSample(sample models.Sample) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enabled {
		return false
	}
	s.lastSample = &sample
	return true
}

// Snapshot returns a copy of the full state.
func (s *TrackingState) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Enabled:   s.enabled,
		SessionID: s.sessionID,
	}
	if s.identity != nil {
		id := *s.identity
		snap.Identity = &id
	}
	if s.lastSample != nil {
		sample := *s.lastSample
		snap.LastSample = &sample
	}
	return snap
}
