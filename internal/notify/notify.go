// Package notify delivers booking notifications to the external dispatcher.
// Delivery is best-effort by contract: callers log failures and move on, so
// implementations must never panic and should bound their own work by the
// caller's context.
package notify

import (
	"context"
	"log"

	"github.com/mapsensemedia/betterrental-sub002/internal/app"
)

// LogNotifier writes notifications to the log. It is the fallback when no
// broker is configured and the implementation handler tests use.
type LogNotifier struct {
	logger *log.Logger
}

func NewLogNotifier(logger *log.Logger) *LogNotifier {
	if logger == nil {
		logger = log.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Dispatch(ctx context.Context, notification app.Notification) error {
	n.logger.Printf("notify event=%s booking=%s code=%s vehicle=%s",
		notification.EventType, notification.BookingID, notification.BookingCode, notification.VehicleName)
	return nil
}
