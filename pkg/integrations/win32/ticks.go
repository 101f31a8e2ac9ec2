// Package win32 implements window.Probe with the Win32 foreground-window API.
package win32

import (
	"time"
	"unicode/utf16"
)

// titleCapacity is the size, in UTF-16 units, of the window title buffer.
// Longer titles are truncated by the OS.
const titleCapacity = 512

// idleFromTicks converts the current tick count and the tick of the last
// input event into an idle duration. A last-input tick ahead of now (the
// counter wrapped, or the two reads raced) yields zero.
func idleFromTicks(now, lastInput uint32) time.Duration {
	if now < lastInput {
		return 0
	}
	return time.Duration(now-lastInput) * time.Millisecond
}

// decodeTitle decodes the first n units of buf. n is the length reported by
// GetWindowTextW and is clamped to the buffer.
func decodeTitle(buf []uint16, n int) string {
	if n <= 0 {
		return ""
	}
	if n > len(buf) {
		n = len(buf)
	}
	return string(utf16.Decode(buf[:n]))
}
