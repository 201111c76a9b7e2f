package usercontext

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bantay-ph/bantay-api/app/models"
)

// ContextKey is the fiber Locals key the principal is stored under.
const ContextKey = "USER_CONTEXT"

// UserContext is the authenticated principal attached to every request by
// the auth middleware. Authentication itself lives outside this service.
type UserContext struct {
	UserID     uint   `json:"user_id"`
	Role       string `json:"role"`
	StationID  uint   `json:"station_id,omitempty"`
	IsLoggedIn bool   `json:"is_logged_in"`
}

// GetUserContext retrieves the user context from fiber context
// Returns a default anonymous context if none is set
func GetUserContext(c *fiber.Ctx) UserContext {
	if ctx := c.Locals(ContextKey); ctx != nil {
		return ctx.(UserContext)
	}
	return UserContext{IsLoggedIn: false}
}

// SetUserContext stores the principal for downstream handlers
func SetUserContext(c *fiber.Ctx, uctx UserContext) {
	c.Locals(ContextKey, uctx)
}

// IsPolice reports whether the principal holds a police role.
func (u UserContext) IsPolice() bool {
	return u.Role == models.ROLE_OFFICER || u.Role == models.ROLE_POLICE_ADMIN
}

// IsSuperAdmin reports whether the principal is a super admin.
func (u UserContext) IsSuperAdmin() bool {
	return u.Role == models.ROLE_SUPER_ADMIN
}
