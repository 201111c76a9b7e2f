package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bantay-ph/bantay-api/internal/pkg/reportstore"
	"github.com/bantay-ph/bantay-api/internal/pkg/usercontext"
)

// HandleCreateFinderReport files a sighting against an existing report.
// POST /api/v1/reports/:id/finder-reports
func HandleCreateFinderReport(c *fiber.Ctx) error {
	user := usercontext.GetUserContext(c)
	reportID, err := paramID(c, "id")
	if err != nil {
		return jsonError(c, err)
	}

	var input reportstore.FinderReportInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "malformed request body")
	}

	finder, err := reportService.CreateFinderReport(c.Context(), user, reportID, input)
	if err != nil {
		return jsonError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(finder)
}

// HandleListFinderReports lists the sightings filed against a report.
// GET /api/v1/reports/:id/finder-reports
func HandleListFinderReports(c *fiber.Ctx) error {
	reportID, err := paramID(c, "id")
	if err != nil {
		return jsonError(c, err)
	}

	finders, err := reportService.ListFinderReports(c.Context(), reportID)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(fiber.Map{"finder_reports": finders})
}

// HandleVerifyFinderReport decides a pending sighting.
// PATCH /api/v1/finder-reports/:id/verify
func HandleVerifyFinderReport(c *fiber.Ctx) error {
	user := usercontext.GetUserContext(c)
	finderID, err := paramID(c, "id")
	if err != nil {
		return jsonError(c, err)
	}

	var body struct {
		Verdict string `json:"verdict"`
	}
	if err := c.BodyParser(&body); err != nil || body.Verdict == "" {
		return badRequest(c, "verdict must be set")
	}

	finder, err := reportService.VerifyFinderReport(c.Context(), user, finderID, body.Verdict)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(finder)
}
