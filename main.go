package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-coursesim/pkg/config"
	"github.com/ekaya-inc/ekaya-coursesim/pkg/database"
	"github.com/ekaya-inc/ekaya-coursesim/pkg/export"
	"github.com/ekaya-inc/ekaya-coursesim/pkg/logging"
	"github.com/ekaya-inc/ekaya-coursesim/pkg/models"
	"github.com/ekaya-inc/ekaya-coursesim/pkg/repositories"
	"github.com/ekaya-inc/ekaya-coursesim/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to config.yaml (optional)")
	seed := flag.Uint64("seed", 0, "random seed (overrides config)")
	students := flag.Int("students", 0, "number of students to generate (overrides config)")
	resumeFrom := flag.String("resume-from", "", "CSV dataset directory to append new students and enrollments to")
	flag.Parse()

	cfg, err := config.Load(*configPath, Version)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "seed":
			cfg.Generation.Seed = *seed
		case "students":
			cfg.Generation.StudentCount = *students
		}
	})

	logger, err := logging.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck // sync on stderr is best-effort

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *resumeFrom, logger); err != nil {
		logger.Error("Generation failed", zap.Error(err))
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, resumeFrom string, logger *zap.Logger) error {
	logger.Info("Configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("version", cfg.Version),
		zap.Uint64("seed", cfg.Generation.Seed),
		zap.Int("students", cfg.Generation.StudentCount),
		zap.Strings("formats", cfg.Output.Formats),
		zap.String("output_dir", cfg.Output.Dir))

	if cfg.Generation.StudentCount < 1 {
		return fmt.Errorf("student count must be at least 1, got %d", cfg.Generation.StudentCount)
	}

	var base *models.Dataset
	if resumeFrom != "" {
		var err error
		base, err = export.ReadCSVDataset(resumeFrom)
		if err != nil {
			return fmt.Errorf("read existing dataset: %w", err)
		}
		logger.Info("Appending to existing dataset",
			zap.String("from", resumeFrom),
			zap.Int("students", len(base.Students)),
			zap.Int("enrollments", len(base.Enrollments)))
	}

	var db *database.DB
	runRepo := repositories.NewMemoryRunRepository()
	if cfg.Output.Has(config.FormatPostgres) {
		var err error
		db, err = database.NewConnection(ctx, &cfg.Database, logger)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := database.RunMigrations(db.Pool, logger); err != nil {
			return err
		}
		runRepo = repositories.NewPostgresRunRepository(db.Pool)
	}

	dagService := services.NewGenerationDAGService(runRepo, logger)
	ds, err := dagService.Run(ctx, services.RunRequest{
		Seed:              cfg.Generation.Seed,
		StudentCount:      cfg.Generation.StudentCount,
		EnrichPreferences: cfg.Generation.EnrichPreferences,
		Base:              base,
	})
	if err != nil {
		return err
	}

	writers, cleanup, err := buildWriters(ctx, cfg, db, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	dispatcher := export.NewDispatcher(logger, writers...)
	if err := dispatcher.Write(ctx, ds); err != nil {
		return err
	}

	manifest := export.BuildManifest(ds, cfg.Version, dispatcher.Sinks(), time.Now())
	if err := export.WriteManifest(cfg.Output.Dir, manifest); err != nil {
		return err
	}

	logger.Info("Dataset written",
		zap.String("run_id", ds.RunID.String()),
		zap.String("output_dir", cfg.Output.Dir),
		zap.Int("students", len(ds.Students)),
		zap.Int("enrollments", len(ds.Enrollments)),
		zap.Int("preferences", len(ds.Preferences)))
	return nil
}

// buildWriters creates one writer per configured output format.
func buildWriters(ctx context.Context, cfg *config.Config, db *database.DB, logger *zap.Logger) ([]export.Writer, func(), error) {
	var writers []export.Writer
	cleanup := func() {}

	for _, format := range cfg.Output.Formats {
		switch format {
		case config.FormatCSV:
			writers = append(writers, export.NewCSVWriter(cfg.Output.Dir))
		case config.FormatXLSX:
			writers = append(writers, export.NewXLSXWriter(cfg.Output.Dir))
		case config.FormatPostgres:
			writers = append(writers, export.NewPostgresWriter(db.Pool, logger))
		case config.FormatRedis:
			client, err := database.NewRedisClient(ctx, &cfg.Redis, logger)
			if err != nil {
				return nil, cleanup, err
			}
			cleanup = func() { _ = client.Close() }
			writers = append(writers, export.NewRedisWriter(client, cfg.Redis.KeyPrefix, logger))
		default:
			return nil, cleanup, fmt.Errorf("unsupported output format %q", format)
		}
	}
	return writers, cleanup, nil
}
