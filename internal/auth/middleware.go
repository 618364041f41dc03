package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/gadgetarian/service-tracker/internal/domain"
	apperrors "github.com/gadgetarian/service-tracker/pkg/util/errorutil"
)

const accountKey = "auth_account"

// Middleware authenticates bearer tokens against the gate's accounts.
type Middleware struct {
	tokens *TokenManager
	gate   *Gate
}

// NewMiddleware constructs middleware.
func NewMiddleware(tokens *TokenManager, gate *Gate) *Middleware {
	return &Middleware{tokens: tokens, gate: gate}
}

// Handle rejects requests without a valid token for a known account.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.Parse(strings.TrimSpace(token))
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}
	account, ok := m.gate.Account(claims.Subject)
	if !ok {
		return apperrors.NewUnauthorized("account not found")
	}

	c.Locals(accountKey, account)
	return c.Next()
}

// AccountFromContext returns the authenticated account.
func AccountFromContext(c *fiber.Ctx) (domain.Account, bool) {
	account, ok := c.Locals(accountKey).(domain.Account)
	return account, ok
}
