package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/meltforce/fithome/internal/catalog"
	"github.com/meltforce/fithome/internal/config"
	"github.com/meltforce/fithome/internal/storage"
)

func main() {
	configPath := flag.String("config", "", "path to config file (defaults and FITHOME_* env when empty)")
	catalogPath := flag.String("path", "", "YAML workout plan to import (built-in plan when empty)")
	dryRun := flag.Bool("dry-run", false, "validate the plan without writing to the database")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	// Load the plan first so a bad file fails before touching the database.
	ctx := context.Background()
	var src catalog.Source = catalog.BuiltinSource{}
	if *catalogPath != "" {
		src = catalog.FileSource{Path: *catalogPath}
	}
	cat, err := catalog.Load(ctx, src)
	if err != nil {
		log.Error("invalid workout plan", "error", err)
		os.Exit(1)
	}
	printPlan(log, cat)

	if *dryRun {
		log.Info("DRY RUN mode, nothing written")
		return
	}

	cfg, err := config.LoadEnv()
	if *configPath != "" {
		cfg, err = config.Load(*configPath)
	}
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.ValidateDatabase(); err != nil {
		log.Error("invalid database config", "error", err)
		os.Exit(1)
	}

	// Run migrations
	if err := storage.RunMigrations(cfg.Database.MigrateURL()); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied")

	// Connect database
	store, err := storage.Open(ctx, cfg.Database.Driver, cfg.Database.DSN())
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	log.Info("database connected", "driver", cfg.Database.Driver)

	if err := store.ReplaceCatalog(ctx, cat.Days()); err != nil {
		log.Error("import failed", "error", err)
		os.Exit(1)
	}
	log.Info("import complete", "days", cat.Len())
}

func printPlan(log *slog.Logger, cat *catalog.Catalog) {
	for _, d := range cat.Days() {
		log.Info("day", "id", d.ID, "name", d.Name, "exercises", len(d.Exercises))
	}
	fmt.Fprintf(os.Stderr, "%d workout days\n", cat.Len())
}
