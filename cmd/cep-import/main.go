// Command cep-import loads postal code workbooks into the postgres store.
//
//	cep-import [base.xlsx [user.xlsx]]
//
// Paths default to BASE_WORKBOOK and USER_WORKBOOK. Rows already present
// are not deduplicated; run it against an empty table.
package main

import (
	"context"
	"os"

	"cep_lookup/internal/postalcode/repository"
	"cep_lookup/platform/config"
	"cep_lookup/platform/db"
	"cep_lookup/platform/logger"

	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	if cfg.StoreDriver != config.StoreDriverPostgres {
		panic("cep-import requires STORE_DRIVER=postgres")
	}

	log := logger.New(cfg.Env)
	log.Info("starting postal code import")

	basePath, userPath := cfg.BaseWorkbook, cfg.UserWorkbook
	if len(os.Args) > 1 {
		basePath, userPath = os.Args[1], ""
	}
	if len(os.Args) > 2 {
		userPath = os.Args[2]
	}

	ctx := context.Background()
	if err := db.RunMigrations(ctx, cfg); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	var base, user []repository.Entry
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		entries, err := repository.ReadWorkbook(basePath, repository.SourceBase)
		base = entries
		return err
	})
	if userPath != "" {
		g.Go(func() error {
			if _, err := os.Stat(userPath); err != nil {
				log.Info("user workbook not found; skipping", "path", userPath)
				return nil
			}
			entries, err := repository.ReadWorkbook(userPath, repository.SourceUser)
			user = entries
			return err
		})
	}
	if err := g.Wait(); err != nil {
		log.Error("failed to read workbooks", "error", err)
		return
	}

	store := repository.NewPostgresStore(pool)
	before, err := store.Count(ctx)
	if err != nil {
		log.Error("failed to count postal codes", "error", err)
		return
	}
	if before > 0 {
		log.Warn("postal_codes is not empty; rows will be appended", "rows", before)
	}

	// Base rows go first so they keep winning lookups.
	for _, batch := range [][]repository.Entry{base, user} {
		if len(batch) == 0 {
			continue
		}
		n, err := store.Seed(ctx, batch)
		if err != nil {
			log.Error("import failed", "error", err, "source", batch[0].Source)
			return
		}
		log.Info("postal codes imported", "source", batch[0].Source, "rows", n)
	}
}
