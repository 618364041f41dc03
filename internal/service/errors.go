package service

import (
	"errors"

	"github.com/gadgetarian/service-tracker/internal/repository"
)

var (
	// ErrServiceNotFound is returned by mutations addressed to a missing id.
	ErrServiceNotFound = errors.New("service not found")
	// ErrVersionConflict reports a stale expected version.
	ErrVersionConflict = repository.ErrVersionConflict
	// ErrInvalidTransition is wrapped by transition validators.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrInvalidStatus rejects values outside the ticket status enumeration.
	ErrInvalidStatus = errors.New("invalid service status")
	// ErrInvalidSparePart rejects parts without a name or a positive price.
	ErrInvalidSparePart = errors.New("spare part requires a name and a positive price")
	// ErrCodeSpaceExhausted is returned when every generated code collided.
	ErrCodeSpaceExhausted = errors.New("could not generate a unique service code")
	// ErrDuplicateID is returned when a caller supplied id is already taken.
	ErrDuplicateID = repository.ErrDuplicateID
	// ErrNotificationsBlocked is returned when the platform has not granted notifications.
	ErrNotificationsBlocked = errors.New("notifications are blocked for this viewer")
)
