package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/bantay-ph/bantay-api/app/models"
	"github.com/bantay-ph/bantay-api/app/repository"
	"github.com/bantay-ph/bantay-api/internal/pkg/apperrors"
	"github.com/bantay-ph/bantay-api/internal/pkg/reportstore"
	"github.com/bantay-ph/bantay-api/internal/pkg/usercontext"
)

// HandleCreateReport files a new incident report.
// POST /api/v1/reports
func HandleCreateReport(c *fiber.Ctx) error {
	user := usercontext.GetUserContext(c)

	var input reportstore.CreateInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "malformed request body")
	}

	report, err := reportService.Create(c.Context(), user, input)
	if err != nil {
		return jsonError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(report)
}

// HandleListReports lists reports, scoped by role: citizens see their own,
// station staff see their station's, higher roles see everything.
// GET /api/v1/reports
func HandleListReports(c *fiber.Ctx) error {
	user := usercontext.GetUserContext(c)

	filter := repository.ReportFilter{
		Status:   c.Query("status"),
		Type:     c.Query("type"),
		Barangay: c.Query("barangay"),
		City:     c.Query("city"),
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

	switch user.Role {
	case models.ROLE_USER:
		filter.ReporterID = user.UserID
	case models.ROLE_OFFICER, models.ROLE_POLICE_ADMIN:
		filter.StationID = user.StationID
	}

	offset, limit := pagination(c)
	reports, total, err := reportService.List(c.Context(), filter, offset, limit)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(fiber.Map{"reports": reports, "total": total})
}

// HandleGetReport returns one report. Citizens may only read their own.
// GET /api/v1/reports/:id
func HandleGetReport(c *fiber.Ctx) error {
	user := usercontext.GetUserContext(c)
	id, err := paramID(c, "id")
	if err != nil {
		return jsonError(c, err)
	}

	report, err := reportService.Get(c.Context(), id)
	if err != nil {
		return jsonError(c, err)
	}
	if user.Role == models.ROLE_USER && report.ReporterID != user.UserID {
		// do not leak existence
		return jsonError(c, apperrors.E(apperrors.KindNotFound, "report %d not found", id))
	}
	return c.JSON(report)
}

// HandleOwnerEditReport applies a full reporter edit (pending only).
// PUT /api/v1/reports/:id
func HandleOwnerEditReport(c *fiber.Ctx) error {
	user := usercontext.GetUserContext(c)
	id, err := paramID(c, "id")
	if err != nil {
		return jsonError(c, err)
	}

	var input reportstore.OwnerEditInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "malformed request body")
	}

	report, err := reportService.OwnerEdit(c.Context(), user, id, input)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(report)
}

// HandleUpdateConsent flips broadcast consent.
// PATCH /api/v1/reports/:id/consent
func HandleUpdateConsent(c *fiber.Ctx) error {
	user := usercontext.GetUserContext(c)
	id, err := paramID(c, "id")
	if err != nil {
		return jsonError(c, err)
	}

	var body struct {
		BroadcastConsent *bool `json:"broadcast_consent"`
	}
	if err := c.BodyParser(&body); err != nil || body.BroadcastConsent == nil {
		return badRequest(c, "broadcast_consent must be set")
	}

	report, err := reportService.UpdateConsent(c.Context(), user, id, *body.BroadcastConsent)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(report)
}

// HandleUpdateStatus moves a report forward through the lifecycle.
// PATCH /api/v1/reports/:id/status
func HandleUpdateStatus(c *fiber.Ctx) error {
	user := usercontext.GetUserContext(c)
	id, err := paramID(c, "id")
	if err != nil {
		return jsonError(c, err)
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&body); err != nil || body.Status == "" {
		return badRequest(c, "status must be set")
	}

	report, err := reportService.UpdateStatus(c.Context(), user, id, body.Status)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(report)
}

// HandleAssignStation assigns a pending report to a station.
// POST /api/v1/reports/:id/assign-station
func HandleAssignStation(c *fiber.Ctx) error {
	user := usercontext.GetUserContext(c)
	id, err := paramID(c, "id")
	if err != nil {
		return jsonError(c, err)
	}

	var body struct {
		StationID uint `json:"station_id"`
	}
	if err := c.BodyParser(&body); err != nil || body.StationID == 0 {
		return badRequest(c, "station_id must be set")
	}

	report, err := reportService.AssignStation(c.Context(), user, id, body.StationID)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(report)
}

// HandleAssignOfficer puts a station officer onto a case.
// POST /api/v1/reports/:id/assign-officer
func HandleAssignOfficer(c *fiber.Ctx) error {
	user := usercontext.GetUserContext(c)
	id, err := paramID(c, "id")
	if err != nil {
		return jsonError(c, err)
	}

	var body struct {
		OfficerID uint `json:"officer_id"`
	}
	if err := c.BodyParser(&body); err != nil || body.OfficerID == 0 {
		return badRequest(c, "officer_id must be set")
	}

	report, err := reportService.AssignOfficer(c.Context(), user, id, body.OfficerID)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(report)
}

// HandleTransferReport archives a report to another agency.
// POST /api/v1/reports/:id/transfer
func HandleTransferReport(c *fiber.Ctx) error {
	user := usercontext.GetUserContext(c)
	id, err := paramID(c, "id")
	if err != nil {
		return jsonError(c, err)
	}

	var input reportstore.TransferInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "malformed request body")
	}

	archived, err := reportService.Transfer(c.Context(), user.UserID, id, input)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(archived)
}

// HandleDeleteReport hard-deletes a report and its media.
// DELETE /api/v1/reports/:id
func HandleDeleteReport(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return jsonError(c, err)
	}
	if err := reportService.Delete(c.Context(), id); err != nil {
		return jsonError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleListTransferredReports lists the transfer archive.
// GET /api/v1/transferred-reports
func HandleListTransferredReports(c *fiber.Ctx) error {
	offset, limit := pagination(c)
	archived, err := repository.GetGlobalFactory().GetTransferredReportRepository().List(offset, limit)
	if err != nil {
		return jsonError(c, apperrors.Wrap(apperrors.KindStorage, err, "failed to list transferred reports"))
	}
	return c.JSON(fiber.Map{"transferred_reports": archived})
}
