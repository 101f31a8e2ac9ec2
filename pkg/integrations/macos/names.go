// Package macos implements window.Probe with NSWorkspace and the HID event
// source. The workspace API exposes the frontmost application but not its
// window title, so the title is derived from the application name.
package macos

import (
	"math"
	"time"

	"github.com/actionsum/activitymon/pkg/window"
)

// synthesizeTitle builds the window title reported for an application.
func synthesizeTitle(appName string) string {
	return appName + " Window"
}

// snapshotFor builds the snapshot for a frontmost application whose
// localized name may be empty.
func snapshotFor(localizedName string) window.Snapshot {
	app := window.OrSentinel(localizedName, window.UnknownApplication)
	return window.Snapshot{
		AppName:     app,
		WindowTitle: synthesizeTitle(app),
	}
}

// secondsToIdle converts the HID idle counter to a duration. Values the
// event source could not produce collapse to zero.
func secondsToIdle(seconds float64) time.Duration {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds <= 0 {
		return 0
	}
	return time.Duration(seconds * float64(time.Second))
}
