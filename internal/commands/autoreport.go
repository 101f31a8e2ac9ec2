package commands

import (
	"context"

	"github.com/pkg/errors"

	"github.com/actionsum/activitymon/internal/models"
)

// AutoReporter submits every published sample. Register it on the event bus
// to report automatically after each tick.
type AutoReporter struct {
	commands *Commands
}

// NewAutoReporter creates an AutoReporter.
func NewAutoReporter(c *Commands) *AutoReporter {
	return &AutoReporter{commands: c}
}

func (a *AutoReporter) Name() string {
	return "auto-report"
}

// Deliver submits sample. Tracking stopping between the tick and delivery is
// not an error.
func (a *AutoReporter) Deliver(ctx context.Context, sample models.Sample) error {
	err := a.commands.SendActivityData(ctx, sample)
	if errors.Is(err, ErrNotTracking) {
		return nil
	}
	return err
}
