package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/gadgetarian/service-tracker/internal/api/dto"
	"github.com/gadgetarian/service-tracker/internal/auth"
	apperrors "github.com/gadgetarian/service-tracker/pkg/util/errorutil"
)

// AuthHandler exposes staff login.
type AuthHandler struct {
	gate   *auth.Gate
	tokens *auth.TokenManager
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(gate *auth.Gate, tokens *auth.TokenManager) *AuthHandler {
	return &AuthHandler{gate: gate, tokens: tokens}
}

// Login POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		return apperrors.NewValidationError("username and password are required", nil)
	}

	account, ok := h.gate.Login(strings.TrimSpace(req.Username), req.Password)
	if !ok {
		return apperrors.NewUnauthorized("invalid username or password")
	}
	token, expiresAt, err := h.tokens.Issue(account)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.JSON(fiber.Map{"data": dto.LoginResponse{
		Account: dto.NewAccountResponse(account),
		Auth:    dto.AuthTokenResponse{Token: token, ExpiresAt: expiresAt},
	}})
}

// Logout POST /auth/logout. Only the caller's own session is ended.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	account, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	h.gate.EndSession(account.ID)
	return c.SendStatus(fiber.StatusNoContent)
}

// Me GET /auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	account, ok := auth.AccountFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	current, hasSession := h.gate.Current()
	return c.JSON(fiber.Map{
		"data":    dto.NewAccountResponse(account),
		"session": hasSession && current.ID == account.ID,
	})
}
