package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/gadgetarian/service-tracker/internal/api/dto"
	"github.com/gadgetarian/service-tracker/internal/service"
	apperrors "github.com/gadgetarian/service-tracker/pkg/util/errorutil"
)

// PublicHandler serves the customer tracking page: lookup by code and
// notification subscriptions. No authentication is required.
type PublicHandler struct {
	store         *service.ServiceStore
	notifications *service.NotificationService
}

// NewPublicHandler constructs the handler.
func NewPublicHandler(store *service.ServiceStore, notifications *service.NotificationService) *PublicHandler {
	return &PublicHandler{store: store, notifications: notifications}
}

// Track GET /public/services/:code.
func (h *PublicHandler) Track(c *fiber.Ctx) error {
	code := strings.TrimSpace(c.Params("code"))
	if code == "" {
		return apperrors.NewValidationError("service code required", nil)
	}
	ticket, found, err := h.store.GetByCode(c.UserContext(), code)
	if err != nil {
		return err
	}
	if !found {
		return apperrors.NewNotFound("service", map[string]any{"code": code})
	}
	subscribed, err := h.notifications.IsSubscribed(c.UserContext(), ticket.Code)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data":       dto.NewServiceDetail(ticket),
		"subscribed": subscribed,
	})
}

// Subscription GET /public/services/:code/subscription.
func (h *PublicHandler) Subscription(c *fiber.Ctx) error {
	code := strings.TrimSpace(c.Params("code"))
	subscribed, err := h.notifications.IsSubscribed(c.UserContext(), code)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.SubscriptionResponse{Code: code, Subscribed: subscribed}})
}

// Subscribe POST /public/services/:code/subscription.
func (h *PublicHandler) Subscribe(c *fiber.Ctx) error {
	code := strings.TrimSpace(c.Params("code"))
	if code == "" {
		return apperrors.NewValidationError("service code required", nil)
	}
	if err := h.notifications.Subscribe(c.UserContext(), code); err != nil {
		return mapServiceError(err)
	}
	return c.JSON(fiber.Map{"data": dto.SubscriptionResponse{Code: code, Subscribed: true}})
}

// Unsubscribe DELETE /public/services/:code/subscription.
func (h *PublicHandler) Unsubscribe(c *fiber.Ctx) error {
	code := strings.TrimSpace(c.Params("code"))
	if err := h.notifications.Unsubscribe(c.UserContext(), code); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.SubscriptionResponse{Code: code, Subscribed: false}})
}
