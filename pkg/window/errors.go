package window

import (
	"fmt"

	"github.com/pkg/errors"
)

// ProbeErrorKind classifies probe failures.
type ProbeErrorKind int

const (
	// NoForegroundWindow means the OS reports no foreground window at all.
	NoForegroundWindow ProbeErrorKind = iota + 1
	// NoFrontmostApplication means the workspace has no frontmost application.
	NoFrontmostApplication
	// DisplayUnavailable means the windowing server could not be reached.
	DisplayUnavailable
	// APIFailure means presence was established but a platform call failed.
	APIFailure
)

func (k ProbeErrorKind) String() string {
	switch k {
	case NoForegroundWindow:
		return "no foreground window"
	case NoFrontmostApplication:
		return "no frontmost application"
	case DisplayUnavailable:
		return "display unavailable"
	case APIFailure:
		return "platform api failure"
	default:
		return "unknown probe failure"
	}
}

// ProbeError is returned by Probe implementations.
type ProbeError struct {
	Kind ProbeErrorKind
	Op   string
	Err  error
}

var (
	ErrNoForegroundWindow     = &ProbeError{Kind: NoForegroundWindow}
	ErrNoFrontmostApplication = &ProbeError{Kind: NoFrontmostApplication}
	ErrDisplayUnavailable     = &ProbeError{Kind: DisplayUnavailable}
	ErrAPIFailure             = &ProbeError{Kind: APIFailure}
)

// NewProbeError builds a ProbeError for operation op.
func NewProbeError(kind ProbeErrorKind, op string, err error) *ProbeError {
	return &ProbeError{Kind: kind, Op: op, Err: err}
}

func (e *ProbeError) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = fmt.Sprintf("%s: %s", e.Op, msg)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ProbeError) Unwrap() error {
	return e.Err
}

// Is matches any ProbeError of the same kind, so callers can write
// errors.Is(err, window.ErrDisplayUnavailable).
func (e *ProbeError) Is(target error) bool {
	t, ok := target.(*ProbeError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// IsPresenceFailure reports whether err says the window, application or
// display itself does not exist, as opposed to a failed platform call.
func IsPresenceFailure(err error) bool {
	var pe *ProbeError
	if !errors.As(err, &pe) {
		return false
	}
	return pe.Kind != APIFailure
}
