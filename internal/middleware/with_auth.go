package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/gema-tutor-api/internal/utils"
)

// Auth role constants used by WithAuth helper.
const (
	AuthRoleAny     = "any"
	AuthRoleTeacher = "teacher"
	AuthRoleStudent = "student"
)

// AuthOptions configures the WithAuth helper. Roles lists the accepted roles;
// AuthRoleAny accepts every authenticated user.
type AuthOptions struct {
	Roles []string
}

// WithAuth wraps a single handler with an authentication and role guard.
func WithAuth(handler fiber.Handler, opts AuthOptions) fiber.Handler {
	allowed := map[string]struct{}{}
	for _, role := range opts.Roles {
		normalized := strings.ToLower(strings.TrimSpace(role))
		if normalized != "" {
			allowed[normalized] = struct{}{}
		}
	}
	if len(allowed) == 0 {
		allowed[AuthRoleAny] = struct{}{}
	}
	_, anyRole := allowed[AuthRoleAny]

	return func(c *fiber.Ctx) error {
		if _, ok := UserID(c); !ok {
			return utils.Fail(c, fiber.StatusUnauthorized, "authentication required", nil)
		}

		role := UserRole(c)
		if anyRole {
			if role != AuthRoleTeacher && role != AuthRoleStudent {
				return utils.Fail(c, fiber.StatusForbidden, "insufficient permissions", nil)
			}
			return handler(c)
		}

		if _, ok := allowed[role]; !ok {
			return utils.Fail(c, fiber.StatusForbidden, "insufficient permissions", nil)
		}

		return handler(c)
	}
}
