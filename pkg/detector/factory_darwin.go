//go:build darwin && cgo

package detector

import (
	"github.com/actionsum/activitymon/pkg/integrations/macos"
	"github.com/actionsum/activitymon/pkg/window"
)

func newPlatformProbe() window.Probe {
	return macos.NewProbe()
}
