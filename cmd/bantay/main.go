package main

import (
	"fmt"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/bantay-ph/bantay-api/app/controllers"
	"github.com/bantay-ph/bantay-api/app/repository"
	"github.com/bantay-ph/bantay-api/internal/pkg/blobstore"
	"github.com/bantay-ph/bantay-api/internal/pkg/broadcast"
	"github.com/bantay-ph/bantay-api/internal/pkg/cache"
	"github.com/bantay-ph/bantay-api/internal/pkg/database"
	"github.com/bantay-ph/bantay-api/internal/pkg/dispatch"
	"github.com/bantay-ph/bantay-api/internal/pkg/env"
	"github.com/bantay-ph/bantay-api/internal/pkg/geocode"
	"github.com/bantay-ph/bantay-api/internal/pkg/hotspot"
	"github.com/bantay-ph/bantay-api/internal/pkg/metrics"
	"github.com/bantay-ph/bantay-api/internal/pkg/middleware"
	"github.com/bantay-ph/bantay-api/internal/pkg/push"
	"github.com/bantay-ph/bantay-api/internal/pkg/reportstore"
	"github.com/bantay-ph/bantay-api/internal/pkg/router"
	"github.com/bantay-ph/bantay-api/internal/pkg/social"
	"github.com/bantay-ph/bantay-api/internal/pkg/stationlocator"
)

func main() {
	app, sweeper := NewApplication()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Info("shutting down")
		sweeper.Stop()
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "0.0.0.0"), env.GetEnv("APP_PORT", "4000"))
	if err := app.Listen(addr); err != nil {
		stdlog.Fatal(err)
	}
}

// NewApplication wires the full service graph and returns the fiber app
// plus the broadcast sweeper so main can stop it on shutdown.
func NewApplication() (*fiber.App, *broadcast.Sweeper) {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()
	metrics.Register()

	db := database.GetDB()
	repository.InitializeFactory(db)
	repos := repository.GetGlobalFactory().GetRepositories()

	blobs, err := blobstore.NewClient()
	if err != nil {
		stdlog.Fatalf("blob store setup failed: %v", err)
	}

	dispatcher := dispatch.New(repos.User, repos.Notification, push.New(), social.New())
	locator := stationlocator.New(repos.Station)
	reports := reportstore.New(repos, locator, geocode.New(), blobs, dispatcher)
	scheduler := broadcast.NewScheduler(repos.Report, dispatcher)
	analyzer := hotspot.New(repos.Report)

	controllers.Setup(reports, scheduler, analyzer, blobs)

	sweeper := broadcast.NewSweeper(scheduler)
	sweeper.Start()

	app := fiber.New(fiber.Config{
		AppName:   "bantay-api",
		BodyLimit: 10 * 1024 * 1024,
	})
	app.Use(recover.New(), logger.New())
	app.Use(middleware.InstallUserContext)

	router.InstallRouter(app)

	return app, sweeper
}
