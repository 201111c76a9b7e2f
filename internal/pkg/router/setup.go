package router

import (
	"github.com/gofiber/fiber/v2"
)

type Router interface {
	InstallRouter(app *fiber.App)
}

// InstallRouter registers every route group. The ops router goes first so
// health and metrics stay reachable even if API middleware misbehaves.
func InstallRouter(app *fiber.App) {
	setup(app, NewOpsRouter(), NewApiRouter())
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}
