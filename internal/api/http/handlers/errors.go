package handlers

import (
	"errors"

	"github.com/gadgetarian/service-tracker/internal/client"
	"github.com/gadgetarian/service-tracker/internal/service"
	apperrors "github.com/gadgetarian/service-tracker/pkg/util/errorutil"
)

// mapServiceError translates store and notification errors into HTTP-aware
// domain errors. Unknown errors pass through to the error middleware.
func mapServiceError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, service.ErrServiceNotFound):
		return apperrors.NewNotFound("service", nil)
	case errors.Is(err, service.ErrVersionConflict):
		return apperrors.NewConflict("service was modified by someone else", nil)
	case errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrInvalidSparePart):
		return apperrors.NewValidationError(err.Error(), nil)
	case errors.Is(err, service.ErrNotificationsBlocked):
		return apperrors.NewForbidden(err.Error())
	case errors.Is(err, service.ErrDuplicateID):
		return apperrors.NewConflict("service id already exists", nil)
	case errors.Is(err, service.ErrCodeSpaceExhausted):
		return apperrors.NewConflict(err.Error(), nil)
	case errors.Is(err, client.ErrUpstream):
		return apperrors.NewBadGateway("technician backend unavailable", err)
	}
	return err
}
