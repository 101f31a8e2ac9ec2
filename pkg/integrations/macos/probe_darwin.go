//go:build darwin && cgo

package macos

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework AppKit -framework CoreGraphics
#import <AppKit/AppKit.h>
#import <CoreGraphics/CoreGraphics.h>

// frontmostAppName copies the localized name of the frontmost application
// into buf. It returns 0 when there is no frontmost application.
static int frontmostAppName(char *buf, int cap) {
	@autoreleasepool {
		NSRunningApplication *app = [[NSWorkspace sharedWorkspace] frontmostApplication];
		if (app == nil) {
			return 0;
		}
		buf[0] = 0;
		NSString *name = [app localizedName];
		if (name != nil && ![name getCString:buf maxLength:cap encoding:NSUTF8StringEncoding]) {
			buf[0] = 0;
		}
		return 1;
	}
}

static double secondsSinceLastInput(void) {
	return CGEventSourceSecondsSinceLastEventType(kCGEventSourceStateHIDSystemState, kCGAnyInputEventType);
}
*/
import "C"

import (
	"time"
	"unsafe"

	"github.com/actionsum/activitymon/pkg/window"
)

const nameCapacity = 1024

// Probe reads the frontmost application from NSWorkspace.
type Probe struct{}

// NewProbe creates a macOS probe.
func NewProbe() *Probe {
	return &Probe{}
}

// Platform returns "macos".
func (p *Probe) Platform() string {
	return "macos"
}

// ActiveWindow fails only when the workspace reports no frontmost application.
func (p *Probe) ActiveWindow() (window.Snapshot, error) {
	buf := make([]byte, nameCapacity)
	if C.frontmostAppName((*C.char)(unsafe.Pointer(&buf[0])), C.int(len(buf))) == 0 {
		return window.Snapshot{}, window.NewProbeError(window.NoFrontmostApplication, "macos.ActiveWindow", nil)
	}
	return snapshotFor(C.GoString((*C.char)(unsafe.Pointer(&buf[0])))), nil
}

// IdleDuration never fails; an unreadable counter reports zero.
func (p *Probe) IdleDuration() (time.Duration, error) {
	return secondsToIdle(float64(C.secondsSinceLastInput())), nil
}
