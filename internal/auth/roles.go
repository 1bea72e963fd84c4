package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

// Role is the caller's permission level.
type Role string

const (
	// RoleOperator may change complaint status and delete complaints.
	RoleOperator Role = "operator"
	// RoleViewer may only read; it is useful for dashboards behind the guard.
	RoleViewer Role = "viewer"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleOperator || r == RoleViewer
}

// RequireRole ensures the authenticated principal has one of the allowed roles.
func RequireRole(allowed ...Role) fiber.Handler {
	allowedSet := make(map[Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[principal.Role]; !exists {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}
