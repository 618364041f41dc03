package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/gadgetarian/service-tracker/internal/events"
	"github.com/gadgetarian/service-tracker/internal/notification"
	"github.com/gadgetarian/service-tracker/internal/observability"
	"github.com/gadgetarian/service-tracker/internal/repository"
)

// NotificationService tracks which service codes the viewer follows and
// turns status changed events into platform notifications.
type NotificationService struct {
	subscriptions repository.SubscriptionRepository
	notifier      notification.PlatformNotifier
	dispatcher    events.Dispatcher
	metrics       *observability.Metrics
	logger        *zap.Logger
}

// NotificationDependencies bundles collaborators for NotificationService.
type NotificationDependencies struct {
	Subscriptions repository.SubscriptionRepository
	Notifier      notification.PlatformNotifier
	Dispatcher    events.Dispatcher
	Metrics       *observability.Metrics
	Logger        *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(deps NotificationDependencies) *NotificationService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		subscriptions: deps.Subscriptions,
		notifier:      deps.Notifier,
		dispatcher:    deps.Dispatcher,
		metrics:       deps.Metrics,
		logger:        logger,
	}
}

// RegisterHandlers subscribes to status changed events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventServiceStatusChanged, n.handleStatusChanged)
}

// Subscribe follows code. A pending platform permission is requested first;
// the code is followed only once the platform has granted it.
func (n *NotificationService) Subscribe(ctx context.Context, code string) error {
	code = strings.TrimSpace(code)
	permission := n.notifier.Permission()
	if permission == notification.PermissionDefault {
		var err error
		if permission, err = n.notifier.RequestPermission(ctx); err != nil {
			return fmt.Errorf("request notification permission: %w", err)
		}
	}
	if permission != notification.PermissionGranted {
		return ErrNotificationsBlocked
	}
	return n.subscriptions.Add(ctx, code)
}

// Unsubscribe stops following code. Unknown codes are ignored.
func (n *NotificationService) Unsubscribe(ctx context.Context, code string) error {
	return n.subscriptions.Remove(ctx, strings.TrimSpace(code))
}

// IsSubscribed reports whether code is followed.
func (n *NotificationService) IsSubscribed(ctx context.Context, code string) (bool, error) {
	return n.subscriptions.Contains(ctx, strings.TrimSpace(code))
}

// Subscriptions lists followed codes.
func (n *NotificationService) Subscriptions(ctx context.Context) ([]string, error) {
	return n.subscriptions.List(ctx)
}

func (n *NotificationService) handleStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ServiceStatusChangedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	subscribed, err := n.subscriptions.Contains(ctx, event.ServiceCode)
	if err != nil {
		return err
	}
	if !subscribed {
		return nil
	}
	if n.notifier.Permission() != notification.PermissionGranted {
		n.metrics.RecordNotification("skipped")
		return nil
	}

	title := notification.Title(event.ServiceCode)
	body := notification.Body(payload.DeviceName, string(payload.NewStatus), payload.Description)
	if err := n.notifier.Show(ctx, title, body); err != nil {
		n.metrics.RecordNotification("failed")
		n.logger.Warn("notification not delivered",
			zap.String("code", event.ServiceCode),
			zap.Error(err))
		return nil
	}
	n.metrics.RecordNotification("sent")
	return nil
}
