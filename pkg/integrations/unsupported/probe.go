// Package unsupported provides a probe for platforms without an integration.
// It always succeeds so callers never need platform checks.
package unsupported

import (
	"time"

	"github.com/actionsum/activitymon/pkg/window"
)

type Probe struct{}

func NewProbe() *Probe {
	return &Probe{}
}

func (p *Probe) Platform() string {
	return "unsupported"
}

func (p *Probe) ActiveWindow() (window.Snapshot, error) {
	return window.Snapshot{
		AppName:     window.UnsupportedPlatform,
		WindowTitle: window.UnsupportedPlatform,
	}, nil
}

func (p *Probe) IdleDuration() (time.Duration, error) {
	return 0, nil
}
