package worker

import (
	"context"

	"github.com/spec-kit/complaint-service/internal/service"
)

// Start registers notification handlers and launches the SLA monitor in the
// background. Either argument may be nil.
func Start(ctx context.Context, notificationService *service.NotificationService, monitor *SLAMonitor) {
	if notificationService != nil {
		notificationService.RegisterHandlers()
	}
	if monitor != nil {
		go monitor.Run(ctx)
	}
}
