package middleware

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/bantay-ph/bantay-api/internal/pkg/usercontext"
)

// InstallUserContext reads the principal forwarded by the auth gateway
// (X-User-Id, X-User-Role, X-User-Station) and stores it in Locals. The
// gateway has already verified the session; this service trusts the headers.
func InstallUserContext(c *fiber.Ctx) error {
	idHeader := c.Get("X-User-Id")
	if idHeader == "" {
		return c.Next()
	}

	id, err := strconv.ParseUint(idHeader, 10, 64)
	if err != nil || id == 0 {
		return c.Next()
	}

	uctx := usercontext.UserContext{
		UserID:     uint(id),
		Role:       c.Get("X-User-Role"),
		IsLoggedIn: true,
	}
	if stationHeader := c.Get("X-User-Station"); stationHeader != "" {
		if sid, err := strconv.ParseUint(stationHeader, 10, 64); err == nil {
			uctx.StationID = uint(sid)
		}
	}

	usercontext.SetUserContext(c, uctx)
	return c.Next()
}

// RequireAuth ensures a logged-in principal and returns JSON 401 otherwise.
func RequireAuth(c *fiber.Ctx) error {
	if !usercontext.GetUserContext(c).IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   "unauthorized",
			"message": "login required",
		})
	}
	return c.Next()
}
