package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bantay-ph/bantay-api/app/models"
	"github.com/bantay-ph/bantay-api/internal/pkg/usercontext"
)

// Capability names the operations guarded at the authorization boundary.
// Roles map to capabilities through a closed table instead of ad-hoc role
// string checks inside handlers.
type Capability string

const (
	CapFileReport     Capability = "file_report"
	CapEditOwnReport  Capability = "edit_own_report"
	CapUpdateStatus   Capability = "update_status"
	CapAssignStation  Capability = "assign_station"
	CapAssignOfficer  Capability = "assign_officer"
	CapPublishReport  Capability = "publish_report"
	CapTransferReport Capability = "transfer_report"
	CapDeleteReport   Capability = "delete_report"
	CapVerifyFinder   Capability = "verify_finder"
	CapManageStations Capability = "manage_stations"
	CapViewHotspots   Capability = "view_hotspots"
)

var roleCapabilities = map[string]map[Capability]bool{
	models.ROLE_USER: {
		CapFileReport:    true,
		CapEditOwnReport: true,
	},
	models.ROLE_OFFICER: {
		CapUpdateStatus: true,
		CapVerifyFinder: true,
	},
	models.ROLE_POLICE_ADMIN: {
		CapUpdateStatus:   true,
		CapAssignStation:  true,
		CapAssignOfficer:  true,
		CapPublishReport:  true,
		CapTransferReport: true,
		CapVerifyFinder:   true,
		CapViewHotspots:   true,
	},
	models.ROLE_CITY_ADMIN: {
		CapUpdateStatus:   true,
		CapAssignStation:  true,
		CapAssignOfficer:  true,
		CapPublishReport:  true,
		CapTransferReport: true,
		CapManageStations: true,
		CapViewHotspots:   true,
	},
	models.ROLE_SUPER_ADMIN: {
		CapFileReport:     true,
		CapEditOwnReport:  true,
		CapUpdateStatus:   true,
		CapAssignStation:  true,
		CapAssignOfficer:  true,
		CapPublishReport:  true,
		CapTransferReport: true,
		CapDeleteReport:   true,
		CapVerifyFinder:   true,
		CapManageStations: true,
		CapViewHotspots:   true,
	},
}

// HasCapability checks the role/capability table.
func HasCapability(role string, cap Capability) bool {
	return roleCapabilities[role][cap]
}

// RequireCapability guards a route group with one capability.
func RequireCapability(cap Capability) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uctx := usercontext.GetUserContext(c)
		if !uctx.IsLoggedIn {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":   "unauthorized",
				"message": "login required",
			})
		}
		if !HasCapability(uctx.Role, cap) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error":   "forbidden",
				"message": "missing permission: " + string(cap),
			})
		}
		return c.Next()
	}
}
