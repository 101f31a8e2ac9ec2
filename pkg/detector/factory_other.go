//go:build !linux && !windows && !(darwin && cgo)

package detector

import (
	"github.com/actionsum/activitymon/pkg/integrations/unsupported"
	"github.com/actionsum/activitymon/pkg/window"
)

func newPlatformProbe() window.Probe {
	return unsupported.NewProbe()
}
