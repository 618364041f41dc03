package events

import (
	"time"

	"github.com/gadgetarian/service-tracker/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventServiceCreated       EventType = "service_created"
	EventServiceUpdated       EventType = "service_updated"
	EventServiceDeleted       EventType = "service_deleted"
	EventServiceStatusChanged EventType = "service_status_changed"
)

// Event represents a domain event emitted by the service store.
type Event struct {
	ID          string      `json:"id"`
	Type        EventType   `json:"type"`
	ServiceID   string      `json:"service_id"`
	ServiceCode string      `json:"service_code"`
	Actor       string      `json:"actor"`
	Timestamp   time.Time   `json:"timestamp"`
	Payload     interface{} `json:"payload"`
}

// ServiceCreatedPayload payload.
type ServiceCreatedPayload struct {
	DeviceName string          `json:"device_name"`
	Category   domain.Category `json:"category"`
	Status     domain.Status   `json:"status"`
}

// ServiceUpdatedPayload lists the fields a patch touched.
type ServiceUpdatedPayload struct {
	Fields []string `json:"fields"`
}

// ServiceStatusChangedPayload payload.
type ServiceStatusChangedPayload struct {
	DeviceName  string        `json:"device_name"`
	OldStatus   domain.Status `json:"old_status"`
	NewStatus   domain.Status `json:"new_status"`
	Description string        `json:"description"`
	EntryID     string        `json:"entry_id"`
}
