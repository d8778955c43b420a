package main

import (
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"clipfeed_backend/internal/controller"
	"clipfeed_backend/internal/model"
	"clipfeed_backend/pkg/config"
	"clipfeed_backend/pkg/cron"
	"clipfeed_backend/pkg/database"
	"clipfeed_backend/pkg/logger"
	"clipfeed_backend/pkg/seed"
	"clipfeed_backend/pkg/subscription"
	"clipfeed_backend/pkg/utils/jwt"
	"clipfeed_backend/pkg/visibility"
	"clipfeed_backend/pkg/wallet"
)

func main() {
	cfg := config.Load()
	logr := logger.NewLogger()

	db := database.InitDB(cfg.Database)
	if err := database.MigrateDatabase(db, model.All()...); err != nil {
		log.Fatal("Migration failed: ", err)
	}
	if cfg.Database.SeedPackages {
		if _, err := seed.SeedPackages(db); err != nil {
			log.Fatal("Seeding packages failed: ", err)
		}
	}

	jwt.InitJwtSecret(cfg.JWT.Secret, cfg.JWT.TTL)

	tx := database.NewTransactor(db,
		database.WithIsolation(&sql.TxOptions{Isolation: sql.LevelSerializable}),
		database.WithRetries(cfg.Database.TxMaxRetries, cfg.Database.TxBackoff),
	)
	ledger := wallet.NewLedger()
	engine := subscription.NewEngine(tx, ledger, subscription.WithLogger(logr))
	likes := visibility.NewLikeHistory(db)

	controller.InitAuthController(db)
	controller.InitWalletController(tx, ledger, cfg.Wallet.ExchangeRate)
	controller.InitSubscriptionController(subscription.NewCatalog(db), engine)
	controller.InitContentController(visibility.NewCatalog(db), visibility.NewGate(engine, likes), likes)

	sweeper := cron.NewSweeper(db,
		cron.WithWorkers(cfg.Sweep.Workers),
		cron.WithEntityTimeout(cfg.Sweep.EntityTimeout),
		cron.WithLogger(logr),
	)
	scheduler, err := cron.NewScheduler(sweeper, cfg.Sweep.Interval, cron.WithSchedulerLogger(logr))
	if err != nil {
		log.Fatal("Could not schedule expiration sweep: ", err)
	}
	scheduler.Start()

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New())

	controller.SetupRoutes(app)

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		<-stop

		logr.Info("shutting down")
		scheduler.Stop()
		if err := app.Shutdown(); err != nil {
			logr.Error("shutdown failed", "error", err)
		}
	}()

	log.Printf("Server is running on port %s", cfg.Server.Port)
	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		log.Fatal(err)
	}
}
