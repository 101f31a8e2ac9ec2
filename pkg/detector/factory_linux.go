//go:build linux

package detector

import (
	"github.com/actionsum/activitymon/pkg/integrations/x11"
	"github.com/actionsum/activitymon/pkg/window"
)

func newPlatformProbe() window.Probe {
	return x11.NewProbe()
}
