package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/yigit/degreetracker/internal/bootstrap"
	"github.com/yigit/degreetracker/internal/db"
	"github.com/yigit/degreetracker/internal/pkg/logger"
	"github.com/yigit/degreetracker/internal/seed"
)

func main() {
	configPath := flag.String("config", bootstrap.DefaultConfigPath, "path to the config file")
	majorsPath := flag.String("file", "data/majors.json", "path to the majors data file")
	flag.Parse()

	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(*configPath)
	if err != nil {
		os.Exit(1)
	}

	majors, err := seed.ReadMajorsFile(*majorsPath)
	if err != nil {
		lgr.Error().Err(err).Str("file", *majorsPath).Msg("Failed to read majors")
		os.Exit(1)
	}

	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		os.Exit(1)
	}
	defer database.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	seeder := seed.NewSeeder(database.Pool, seed.StoreForTx, logger.WithComponent("seed"))
	result, err := seeder.Run(ctx, majors)
	if err != nil {
		lgr.Error().Err(err).Msg("Seeding failed")
		database.Close()
		os.Exit(1)
	}

	lgr.Info().
		Int64("deleted", result.Deleted).
		Int("programs", result.Programs).
		Int("requirements", result.Requirements).
		Strs("skipped", result.SkippedPrograms).
		Msg("Seeding complete")
}
