package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	"vrhub/internal/aggregate"
	"vrhub/internal/games"
	"vrhub/internal/manifest"
	"vrhub/internal/oculus"
	"vrhub/internal/translate"
	"vrhub/pkg/database"
	"vrhub/pkg/utils"
)

func main() {
	// Ctrl-C stops the run between titles; whatever was imported stays
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	cfg := utils.LoadImportConfig()

	tables, err := translate.LoadTables(cfg.TokenTablesPath)
	if err != nil {
		log.Printf("token tables: %v (using defaults)", err)
	}

	client, err := oculus.NewGraphQLClient(log.Default())
	if err != nil {
		log.Fatalf("oculus client: %v", err)
	}

	manifests := manifest.NewRepository(manifest.StaticPaths{
		Libraries: cfg.LibraryPaths,
		Install:   cfg.OculusPath,
	}, log.Default())

	agg := aggregate.New(manifests, client, translate.New(tables, log.Default()), log.Default())
	agg.Store = games.NewRepo(db)

	result, err := agg.Import(ctx, cfg)
	if err != nil {
		if errors.Is(err, oculus.ErrNotAuthenticated) {
			log.Printf("store session expired: run a browser login, then re-import for online titles")
		} else {
			log.Fatalf("import failed: %v", err)
		}
	}

	if ctx.Err() != nil {
		log.Printf("interrupted, kept %d titles", len(result))
		return
	}
	log.Printf("imported %d titles", len(result))
}
