// Package notification delivers status-change alerts to viewers who opted in.
package notification

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Permission mirrors the tri-state permission model of desktop notification
// platforms.
type Permission string

const (
	PermissionDefault Permission = "default"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// ParsePermission converts a configuration value, falling back to default.
func ParsePermission(raw string) Permission {
	switch Permission(strings.ToLower(strings.TrimSpace(raw))) {
	case PermissionGranted:
		return PermissionGranted
	case PermissionDenied:
		return PermissionDenied
	default:
		return PermissionDefault
	}
}

// PlatformNotifier is the delivery surface. RequestPermission may block on
// the platform; Show is best-effort.
type PlatformNotifier interface {
	Permission() Permission
	RequestPermission(ctx context.Context) (Permission, error)
	Show(ctx context.Context, title, body string) error
}

// Title builds the notification title for a service code.
func Title(code string) string {
	return "Update Service " + code
}

// Body builds the notification body.
func Body(deviceName, status, description string) string {
	return fmt.Sprintf("%s - Status: %s\n%s", deviceName, status, description)
}

// permissionState is embedded by notifiers that resolve a pending prompt by
// applying a configured answer.
type permissionState struct {
	mu      sync.RWMutex
	current Permission
	answer  Permission
}

func promptAnswer(initial Permission) Permission {
	if initial == PermissionDefault {
		return PermissionGranted
	}
	return initial
}

func (p *permissionState) Permission() Permission {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

func (p *permissionState) RequestPermission(ctx context.Context) (Permission, error) {
	if err := ctx.Err(); err != nil {
		return PermissionDefault, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == PermissionDefault {
		p.current = p.answer
	}
	return p.current, nil
}

// LogNotifier writes notifications to the application log.
type LogNotifier struct {
	permissionState
	logger *zap.Logger
}

// NewLogNotifier returns a notifier that starts with the given permission.
// A pending (default) permission is granted on first request.
func NewLogNotifier(logger *zap.Logger, initial Permission) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{
		permissionState: permissionState{current: initial, answer: promptAnswer(initial)},
		logger:          logger,
	}
}

// Show logs the notification.
func (n *LogNotifier) Show(_ context.Context, title, body string) error {
	n.logger.Info("notification", zap.String("title", title), zap.String("body", body))
	return nil
}
