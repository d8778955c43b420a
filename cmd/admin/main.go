package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"clipfeed_backend/internal/model"
	"clipfeed_backend/pkg/config"
	"clipfeed_backend/pkg/cron"
	"clipfeed_backend/pkg/database"
	"clipfeed_backend/pkg/logger"
	"clipfeed_backend/pkg/seed"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	if len(os.Args) < 2 {
		log.Println("[ERROR] Expected subcommand: sweep | seed")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "sweep":
		runSweep()
	case "seed":
		runSeed()
	default:
		log.Println("[ERROR] Unknown command")
		os.Exit(1)
	}
}

// runSweep runs one expiration sweep, for example after the server was down for a while.
func runSweep() {
	sweepCmd := flag.NewFlagSet("sweep", flag.ExitOnError)
	timeout := sweepCmd.Duration("timeout", 5*time.Minute, "Give up after this long")
	if err := sweepCmd.Parse(os.Args[2:]); err != nil {
		log.Println("[ERROR] Failed to parse flags:", err)
		os.Exit(1)
	}

	cfg := config.Load()
	db := database.InitDB(cfg.Database)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	sweeper := cron.NewSweeper(db,
		cron.WithWorkers(cfg.Sweep.Workers),
		cron.WithEntityTimeout(cfg.Sweep.EntityTimeout),
		cron.WithLogger(logger.NewLogger()),
	)
	res, err := sweeper.RunExpirationSweep(ctx)
	if err != nil {
		log.Println("[ERROR] Sweep failed:", err)
		os.Exit(1)
	}

	log.Printf("[INFO] Sweep finished: %d evicted, %d failed\n", res.Evicted, res.Failed)
	if res.Failed > 0 {
		os.Exit(2)
	}
}

func runSeed() {
	cfg := config.Load()
	db := database.InitDB(cfg.Database)

	if err := database.MigrateDatabase(db, model.All()...); err != nil {
		log.Println("[ERROR] Migration failed:", err)
		os.Exit(1)
	}

	created, err := seed.SeedPackages(db)
	if err != nil {
		log.Println("[ERROR] Seeding failed:", err)
		os.Exit(1)
	}
	log.Printf("[INFO] Seeded %d packages\n", created)
}
