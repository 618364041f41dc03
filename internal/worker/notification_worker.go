package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/gadgetarian/service-tracker/internal/events"
	"github.com/gadgetarian/service-tracker/internal/service"
)

// StartNotificationWorker registers notification handlers and an activity
// logger for every service event.
func StartNotificationWorker(dispatcher events.Dispatcher, notificationService *service.NotificationService, logger *zap.Logger) {
	if dispatcher == nil {
		return
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if notificationService != nil {
		notificationService.RegisterHandlers()
	}

	activity := activityLogger(logger.Named("activity"))
	for _, eventType := range []events.EventType{
		events.EventServiceCreated,
		events.EventServiceUpdated,
		events.EventServiceDeleted,
		events.EventServiceStatusChanged,
	} {
		dispatcher.Subscribe(eventType, activity)
	}
}

func activityLogger(logger *zap.Logger) events.EventHandler {
	return func(_ context.Context, event events.Event) error {
		fields := []zap.Field{
			zap.String("event_id", event.ID),
			zap.String("service_id", event.ServiceID),
			zap.String("service_code", event.ServiceCode),
			zap.String("actor", event.Actor),
		}
		switch payload := event.Payload.(type) {
		case events.ServiceStatusChangedPayload:
			fields = append(fields,
				zap.String("old_status", string(payload.OldStatus)),
				zap.String("new_status", string(payload.NewStatus)))
		case events.ServiceUpdatedPayload:
			fields = append(fields, zap.Strings("fields", payload.Fields))
		}
		logger.Info(string(event.Type), fields...)
		return nil
	}
}
