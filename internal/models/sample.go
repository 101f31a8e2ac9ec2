package models

import (
	"time"

	"github.com/actionsum/activitymon/pkg/window"
)

// Sample is a timestamped activity snapshot. It is immutable once built; the
// JSON names match the payload the desktop UI consumes.
type Sample struct {
	AppName     string  `json:"active_app"`
	WindowTitle string  `json:"window_title"`
	IdleSeconds float64 `json:"idle_time"`
	Timestamp   int64   `json:"timestamp"` // seconds since epoch
}

// NewSample builds a Sample from a probe result. Negative idle durations are
// clamped to zero.
func NewSample(snap window.Snapshot, idle time.Duration, at time.Time) Sample {
	return Sample{
		AppName:     snap.AppName,
		WindowTitle: snap.WindowTitle,
		IdleSeconds: window.ClampIdle(idle).Seconds(),
		Timestamp:   at.Unix(),
	}
}

// Identity is the credential bundle required to submit samples.
type Identity struct {
	UserID string `json:"user_id"`
	TeamID string `json:"team_id"`
	Token  string `json:"-"`
}

// Complete reports whether all three fields are set.
func (i Identity) Complete() bool {
	return i.UserID != "" && i.TeamID != "" && i.Token != ""
}
