package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/bantay-ph/bantay-api/app/controllers"
	"github.com/bantay-ph/bantay-api/internal/pkg/middleware"
)

type ApiRouter struct {
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New(limiter.Config{Max: 120}))
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "bantay api",
		})
	})

	v1 := api.Group("/v1", middleware.RequireAuth)

	reports := v1.Group("/reports")
	reports.Post("/", middleware.RequireCapability(middleware.CapFileReport), controllers.HandleCreateReport)
	reports.Get("/", controllers.HandleListReports)
	reports.Get("/:id", controllers.HandleGetReport)
	reports.Put("/:id", middleware.RequireCapability(middleware.CapEditOwnReport), controllers.HandleOwnerEditReport)
	reports.Patch("/:id/consent", middleware.RequireCapability(middleware.CapEditOwnReport), controllers.HandleUpdateConsent)
	reports.Patch("/:id/status", middleware.RequireCapability(middleware.CapUpdateStatus), controllers.HandleUpdateStatus)
	reports.Post("/:id/assign-station", middleware.RequireCapability(middleware.CapAssignStation), controllers.HandleAssignStation)
	reports.Post("/:id/assign-officer", middleware.RequireCapability(middleware.CapAssignOfficer), controllers.HandleAssignOfficer)
	reports.Post("/:id/transfer", middleware.RequireCapability(middleware.CapTransferReport), controllers.HandleTransferReport)
	reports.Delete("/:id", middleware.RequireCapability(middleware.CapDeleteReport), controllers.HandleDeleteReport)

	reports.Post("/:id/publish", middleware.RequireCapability(middleware.CapPublishReport), controllers.HandlePublishReport)
	reports.Post("/:id/unpublish", middleware.RequireCapability(middleware.CapPublishReport), controllers.HandleUnpublishReport)

	reports.Post("/:id/finder-reports", controllers.HandleCreateFinderReport)
	reports.Get("/:id/finder-reports", middleware.RequireCapability(middleware.CapVerifyFinder), controllers.HandleListFinderReports)
	v1.Patch("/finder-reports/:id/verify", middleware.RequireCapability(middleware.CapVerifyFinder), controllers.HandleVerifyFinderReport)

	v1.Get("/transferred-reports", middleware.RequireCapability(middleware.CapTransferReport), controllers.HandleListTransferredReports)

	// any authenticated principal can upload, finder images included
	v1.Post("/media", controllers.HandleUploadMedia)

	stations := v1.Group("/stations")
	stations.Get("/", controllers.HandleListStations)
	stations.Get("/:id", controllers.HandleGetStation)
	stations.Post("/", middleware.RequireCapability(middleware.CapManageStations), controllers.HandleCreateStation)
	stations.Put("/:id", middleware.RequireCapability(middleware.CapManageStations), controllers.HandleUpdateStation)

	notifications := v1.Group("/notifications")
	notifications.Get("/", controllers.HandleListNotifications)
	notifications.Patch("/:id/read", controllers.HandleMarkNotificationRead)

	v1.Get("/analytics/hotspots", middleware.RequireCapability(middleware.CapViewHotspots), controllers.HandleHotspots)
}
