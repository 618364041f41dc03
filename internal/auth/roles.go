package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gadgetarian/service-tracker/internal/domain"
	apperrors "github.com/gadgetarian/service-tracker/pkg/util/errorutil"
)

// RequireRole lets the request through only for the listed roles. With no
// roles any authenticated account passes.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}
	return func(c *fiber.Ctx) error {
		account, ok := AccountFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, ok := allowedSet[account.Role]; !ok {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}
