package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/bantay-ph/bantay-api/internal/pkg/broadcast"
	"github.com/bantay-ph/bantay-api/internal/pkg/usercontext"
)

// HandlePublishReport broadcasts a report immediately or schedules it.
// POST /api/v1/reports/:id/publish
func HandlePublishReport(c *fiber.Ctx) error {
	user := usercontext.GetUserContext(c)
	id, err := paramID(c, "id")
	if err != nil {
		return jsonError(c, err)
	}

	var body struct {
		Channels    []string   `json:"channels"`
		ScheduledAt *time.Time `json:"scheduled_at"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "malformed request body")
	}

	result, err := broadcastScheduler.Publish(c.Context(), user.UserID, id, body.Channels, body.ScheduledAt)
	if err != nil {
		return jsonError(c, err)
	}

	status := fiber.StatusOK
	if result.Outcome == broadcast.OutcomeScheduled {
		status = fiber.StatusAccepted
	}
	return c.Status(status).JSON(result)
}

// HandleUnpublishReport takes a report off the public channels.
// POST /api/v1/reports/:id/unpublish
func HandleUnpublishReport(c *fiber.Ctx) error {
	user := usercontext.GetUserContext(c)
	id, err := paramID(c, "id")
	if err != nil {
		return jsonError(c, err)
	}

	if err := broadcastScheduler.Unpublish(c.Context(), user.UserID, id); err != nil {
		return jsonError(c, err)
	}
	return c.JSON(fiber.Map{"message": "report unpublished"})
}
