package window

import "time"

// Sentinel values used when a window is present but one of its attributes
// cannot be read.
const (
	UnknownApplication  = "Unknown Application"
	UnknownWindow       = "Unknown Window"
	UnsupportedPlatform = "Unsupported Platform"
)

// Snapshot describes the window the user is interacting with. It is produced
// fresh on every probe call and is owned by the caller.
type Snapshot struct {
	AppName     string
	WindowTitle string
}

// Probe extracts the active window and the input idle time from the running
// operating system. Exactly one implementation is compiled into a binary.
type Probe interface {
	// ActiveWindow returns the application and window that currently have focus.
	ActiveWindow() (Snapshot, error)

	// IdleDuration returns the time since the last user input event. It is
	// never negative.
	IdleDuration() (time.Duration, error)

	// Platform names the integration, e.g. "x11" or "win32".
	Platform() string
}

// OrSentinel returns value unless it is empty, in which case fallback is used.
func OrSentinel(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// ClampIdle forces negative durations to zero.
func ClampIdle(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}
