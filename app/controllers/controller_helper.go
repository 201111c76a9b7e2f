package controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/bantay-ph/bantay-api/internal/pkg/apperrors"
	"github.com/bantay-ph/bantay-api/internal/pkg/blobstore"
	"github.com/bantay-ph/bantay-api/internal/pkg/broadcast"
	"github.com/bantay-ph/bantay-api/internal/pkg/hotspot"
	"github.com/bantay-ph/bantay-api/internal/pkg/reportstore"
)

// Services are injected once at startup; handlers are package-level
// functions in the fiber style.
var (
	reportService      *reportstore.Service
	broadcastScheduler *broadcast.Scheduler
	hotspotAnalyzer    *hotspot.Analyzer
	mediaStore         blobstore.Store
)

// Setup wires the handler package to its services. Call once from main
// before the router is installed.
func Setup(reports *reportstore.Service, scheduler *broadcast.Scheduler, analyzer *hotspot.Analyzer, blobs blobstore.Store) {
	reportService = reports
	broadcastScheduler = scheduler
	hotspotAnalyzer = analyzer
	mediaStore = blobs
}

// jsonError renders a kinded error with its mapped status and machine tag.
func jsonError(c *fiber.Ctx, err error) error {
	status := apperrors.HTTPStatus(err)
	message := err.Error()
	if status == fiber.StatusInternalServerError {
		// never leak storage internals
		message = "internal server error"
	}
	return c.Status(status).JSON(fiber.Map{
		"error":   apperrors.Code(err),
		"message": message,
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":   "bad_request",
		"message": message,
	})
}

// paramID parses a numeric path parameter.
func paramID(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, apperrors.E(apperrors.KindValidation, "invalid %s %q", name, raw)
	}
	return uint(id), nil
}

// pagination reads page/per_page query params with sane bounds.
func pagination(c *fiber.Ctx) (offset, limit int) {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	perPage := c.QueryInt("per_page", 20)
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	return (page - 1) * perPage, perPage
}
