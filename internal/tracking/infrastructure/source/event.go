// Package source adapts external event producers to the tracker's
// SystemEvent stream.
package source

import (
	"fmt"
	"time"

	"github.com/felixgeelhaar/kafeel/internal/tracking/domain"
	"github.com/felixgeelhaar/kafeel/pkg/watchersdk"
)

// ToSystemEvent converts a wire event. A missing timestamp is filled with now.
func ToSystemEvent(e watchersdk.Event, now func() time.Time) (domain.SystemEvent, error) {
	at := e.At
	if at.IsZero() {
		at = now()
	}

	switch e.Type {
	case watchersdk.EventForeground:
		if e.AppID == "" {
			return nil, fmt.Errorf("foreground event without app_id")
		}
		return domain.ForegroundChanged{
			App: domain.App{
				ID:          e.AppID,
				DisplayName: e.DisplayName,
				WindowTitle: e.WindowTitle,
			},
			At: at,
		}, nil
	case watchersdk.EventLock:
		return domain.ScreenLocked{At: at}, nil
	case watchersdk.EventUnlock:
		return domain.ScreenUnlocked{At: at}, nil
	default:
		return nil, fmt.Errorf("unknown event type %q", e.Type)
	}
}
