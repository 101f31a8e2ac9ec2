// Package detector selects the window.Probe compiled for the target platform.
package detector

import (
	"os"

	"github.com/actionsum/activitymon/pkg/window"
)

// New returns the probe for the platform this binary was built for.
func New() window.Probe {
	return newPlatformProbe()
}

// SessionType reports the desktop session kind from the environment:
// "wayland", "x11" or "unknown". It is informational only; probe selection
// happens at build time.
func SessionType() string {
	sessionType := os.Getenv("XDG_SESSION_TYPE")
	waylandDisplay := os.Getenv("WAYLAND_DISPLAY")
	x11Display := os.Getenv("DISPLAY")

	if sessionType == "wayland" || waylandDisplay != "" {
		return "wayland"
	}

	if sessionType == "x11" || x11Display != "" {
		return "x11"
	}

	return "unknown"
}
