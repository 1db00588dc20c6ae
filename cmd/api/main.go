package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cep_lookup/internal/events"
	apphttp "cep_lookup/internal/http"
	"cep_lookup/internal/http/router"
	"cep_lookup/internal/postalcode"
	"cep_lookup/internal/postalcode/repository"
	"cep_lookup/internal/postalcode/service"
	"cep_lookup/internal/scheduler"
	"cep_lookup/platform/config"
	"cep_lookup/platform/db"
	"cep_lookup/platform/logger"
	"cep_lookup/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr, "store", cfg.StoreDriver)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	var (
		store  repository.Store
		health apphttp.HealthChecker
	)
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		pool := connectPostgres(ctx, cfg, log)
		defer pool.Close()

		pgStore := repository.NewPostgresStore(pool)
		seedPostgres(ctx, pgStore, cfg, log)
		store, health = pgStore, db.NewPoolAdapter(pool)
	default:
		sheetStore, err := repository.NewSpreadsheetStore(ctx, cfg.BaseWorkbook, cfg.UserWorkbook, log)
		if err != nil {
			log.Error("failed to load workbooks", "error", err)
			panic("failed to load workbooks: " + err.Error())
		}
		store = sheetStore
	}

	store, closeCache := withCache(store, cfg, log)
	defer closeCache()

	eventBus := events.NewInMemoryBus(log)
	eventBus.Subscribe(events.PostalCodeSavedEvent, events.HandlerFunc(func(ctx context.Context, e events.Event) error {
		saved, ok := e.(events.PostalCodeSaved)
		if !ok {
			return fmt.Errorf("unexpected event %T", e)
		}
		log.WithContext(ctx).Info("postal code saved", "city", saved.City, "region", saved.Region, "code", saved.Code, "persisted", saved.Persisted)
		return nil
	}))

	// ========================================================================
	// Domain Modules
	// ========================================================================

	val := validator.New()
	postalCodeModule := postalcode.NewModule(store, val, eventBus, service.NewMetrics(registry), log)

	if mirror, closeMirror := initMirror(cfg, log); mirror != nil {
		defer closeMirror()
		postalCodeModule.SetMirror(mirror)
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   health,
		EventBus: eventBus,
		Metrics:  registry,
		Modules: []apphttp.Module{
			postalCodeModule,
		},
	}

	engine := router.New(app)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown failed", "error", err)
		}
		eventBus.Wait()
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func connectPostgres(ctx context.Context, cfg *config.Config, log *logger.Logger) *pgxpool.Pool {
	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	return pool
}

// seedPostgres imports the base workbook into an empty table.
func seedPostgres(ctx context.Context, store *repository.PostgresStore, cfg *config.Config, log *logger.Logger) {
	n, err := store.Count(ctx)
	if err != nil {
		log.Warn("could not count postal codes; skipping seed", "error", err)
		return
	}
	if n > 0 || cfg.BaseWorkbook == "" {
		return
	}

	entries, err := repository.ReadWorkbook(cfg.BaseWorkbook, repository.SourceBase)
	if err != nil {
		log.Warn("base workbook not imported", "error", err)
		return
	}
	copied, err := store.Seed(ctx, entries)
	if err != nil {
		log.Error("failed to seed postal codes", "error", err)
		return
	}
	log.Info("postal codes seeded", "rows", copied)
}

// withCache puts redis in front of store when configured and an in-process
// LRU otherwise.
func withCache(store repository.Store, cfg config.CacheConfig, log *logger.Logger) (repository.Store, func()) {
	if url := cfg.GetRedisURL(); url != "" {
		opt, err := redis.ParseURL(url)
		if err != nil {
			log.Error("invalid REDIS_URL; lookup cache disabled", "error", err)
			return store, func() {}
		}
		client := redis.NewClient(opt)
		log.Info("redis lookup cache enabled", "ttl", cfg.GetCacheTTL())
		return repository.NewRedisCache(store, client, cfg.GetCacheTTL(), log), func() { _ = client.Close() }
	}

	if size := cfg.GetLRUCacheSize(); size > 0 {
		cached, err := repository.NewLRUCache(store, size)
		if err != nil {
			log.Error("failed to create lookup cache", "error", err)
			return store, func() {}
		}
		return cached, func() {}
	}
	return store, func() {}
}

// initMirror enables the workbook mirror for the postgres store. The
// spreadsheet store already writes the user workbook itself.
func initMirror(cfg *config.Config, log *logger.Logger) (service.Mirror, func()) {
	if cfg.StoreDriver != config.StoreDriverPostgres {
		return nil, nil
	}
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; workbook mirror disabled")
		return nil, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize mirror scheduler client", "error", err)
		return nil, nil
	}

	return client, func() {
		_ = client.Close()
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return fmt.Errorf("%s: %w", name, lastErr)
}
