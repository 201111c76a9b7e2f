package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/bantay-ph/bantay-api/app/repository"
)

// HandleHotspots returns the ranked area risk report.
// GET /api/v1/analytics/hotspots
func HandleHotspots(c *fiber.Ctx) error {
	filter := repository.ReportFilter{
		Type: c.Query("type"),
		City: c.Query("city"),
	}
	if from := c.Query("from"); from != "" {
		if t, err := time.Parse("2006-01-02", from); err == nil {
			filter.From = &t
		}
	}
	if to := c.Query("to"); to != "" {
		if t, err := time.Parse("2006-01-02", to); err == nil {
			filter.To = &t
		}
	}

	analysis, err := hotspotAnalyzer.Analyze(c.Context(), filter)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(analysis)
}
