// Package x11 implements window.Probe over the X11 protocol.
package x11

import (
	"time"

	"github.com/actionsum/activitymon/pkg/window"
)

// Probe talks to the X server through a connection opened and closed within
// each call.
type Probe struct {
	dial func() (display, error)
}

// NewProbe creates a probe connecting to $DISPLAY.
func NewProbe() *Probe {
	return &Probe{dial: dialXGB}
}

// Platform returns "x11".
func (p *Probe) Platform() string {
	return "x11"
}

// ActiveWindow returns the focused window. It fails only when the display
// cannot be opened; a missing focus or missing properties yield sentinels.
func (p *Probe) ActiveWindow() (window.Snapshot, error) {
	d, err := p.dial()
	if err != nil {
		return window.Snapshot{}, window.NewProbeError(window.DisplayUnavailable, "x11.ActiveWindow", err)
	}
	defer d.close()

	snap := window.Snapshot{
		AppName:     window.UnknownApplication,
		WindowTitle: window.UnknownWindow,
	}

	w := d.focusedWindow()
	if w == 0 {
		return snap, nil
	}

	title, class := d.windowTitle(w), d.windowClass(w)
	if title == "" && class == "" {
		// Focus often lands on an unnamed child of the client window.
		if top := d.topLevel(w); top != w {
			title, class = d.windowTitle(top), d.windowClass(top)
		}
	}

	snap.WindowTitle = window.OrSentinel(title, window.UnknownWindow)
	snap.AppName = window.OrSentinel(class, window.UnknownApplication)
	return snap, nil
}

// IdleDuration reads the MIT-SCREEN-SAVER idle counter. A missing extension
// reports zero.
func (p *Probe) IdleDuration() (time.Duration, error) {
	d, err := p.dial()
	if err != nil {
		return 0, window.NewProbeError(window.DisplayUnavailable, "x11.IdleDuration", err)
	}
	defer d.close()

	ms, err := d.idleMillis()
	if err != nil {
		return 0, nil
	}
	return time.Duration(ms) * time.Millisecond, nil
}
