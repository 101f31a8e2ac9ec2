//go:build windows

package detector

import (
	"github.com/actionsum/activitymon/pkg/integrations/win32"
	"github.com/actionsum/activitymon/pkg/window"
)

func newPlatformProbe() window.Probe {
	return win32.NewProbe()
}
