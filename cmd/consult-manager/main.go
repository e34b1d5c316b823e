// cmd/consult-manager/main.go
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

	"go.uber.org/zap"

	"pet-doctor/internal/api"
	"pet-doctor/internal/common/camunda"
	"pet-doctor/internal/common/config"
	"pet-doctor/internal/common/database"
	"pet-doctor/internal/common/logger"
	"pet-doctor/internal/common/observability"
	"pet-doctor/internal/consultation"
	"pet-doctor/internal/generator"
	"pet-doctor/internal/knowledge"
	"pet-doctor/internal/storage"

	rc "pet-doctor/internal/workers/consultation/run-consultation"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting consult manager...",
		zap.String("environment", cfg.App.Environment),
		zap.String("storage", cfg.Storage.Driver),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Storage ---
	var (
		store      storage.ConsultationStore
		catalog    storage.SupplementCatalog
		readyCheck []func(context.Context) error
	)

	switch cfg.Storage.Driver {
	case config.StorageDriverPostgres:
		var pg *database.PostgresClient
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer pg.Close()

		if err := pg.Migrate(ctx); err != nil {
			zapLog.Fatal("postgres migration failed", zap.Error(err))
		}
		zapLog.Info("PostgreSQL connected successfully")

		store = storage.NewPostgresConsultationStore(pg.DB)
		catalog = storage.NewPostgresCatalog(pg.DB)
		readyCheck = append(readyCheck, pg.Ping)
	default:
		store = storage.NewMemoryConsultationStore()
		catalog = storage.NewMemoryCatalog()
	}

	if cfg.Cache.Enabled {
		var rdb *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			rdb, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return rdb.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer rdb.Close()
		zapLog.Info("Redis connected successfully")

		catalog = storage.NewCachedCatalog(catalog, rdb.Client, time.Duration(cfg.Cache.TTL)*time.Second, cfg.Cache.Prefix, log)
	}

	if err := catalog.Seed(ctx); err != nil {
		zapLog.Fatal("catalog seed failed", zap.Error(err))
	}

	// --- Knowledge and generation ---
	corpus, err := knowledge.DefaultCorpus()
	if err != nil {
		zapLog.Fatal("knowledge corpus failed to load", zap.Error(err))
	}

	embedder, err := knowledge.NewEmbedder(ctx, cfg.Embedder)
	if err != nil {
		zapLog.Warn("embedder unavailable, using keyword retrieval", zap.Error(err))
		embedder = nil
	}
	embedCtx, cancelEmbed := context.WithTimeout(ctx, 2*time.Minute)
	retriever := knowledge.NewRetriever(embedCtx, corpus, embedder, log)
	cancelEmbed()

	gen, err := generator.New(ctx, cfg.Generator)
	if err != nil {
		zapLog.Warn("generator unavailable, using rule based analysis", zap.Error(err))
		gen = generator.Unavailable{}
	}
	zapLog.Info("Generator configured", zap.String("generator", gen.Name()))

	svc, err := consultation.NewService(consultation.Dependencies{
		Store:         store,
		Catalog:       catalog,
		Retriever:     retriever,
		Generator:     gen,
		Observability: obs,
	}, consultation.OptionsFromConfig(cfg), log)
	if err != nil {
		zapLog.Fatal("consultation service init failed", zap.Error(err))
	}

	// --- Zeebe worker ---
	var zeebeWorker *camunda.Worker
	if cfg.Camunda.Enabled {
		client, err := camunda.NewClient(ctx, cfg.Camunda, log)
		if err != nil {
			zapLog.Fatal("zeebe client failed", zap.Error(err))
		}
		defer client.Close()
		zapLog.Info("Zeebe client connected successfully")
		readyCheck = append(readyCheck, client.HealthCheck)

		if config.IsWorkerEnabled(cfg, rc.TaskType) {
			wcfg := config.GetWorkerConfig(cfg, rc.TaskType)
			handler := rc.NewHandler(&rc.Config{Timeout: config.GetDuration(wcfg.Timeout)}, svc, log)
			zeebeWorker = camunda.StartWorker(client.Zeebe(), rc.TaskType, wcfg, handler, log)
		} else {
			zapLog.Info("worker disabled", zap.String("taskType", rc.TaskType))
		}
	}

	// --- HTTP API ---
	server := &http.Server{
		Addr: cfg.Server.Address,
		Handler: api.NewRouter(api.Options{
			Service:        svc,
			Logger:         log,
			Ready:          readiness(readyCheck),
			RequestTimeout: config.GetDuration(cfg.Server.WriteTimeout),
		}),
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout) + 5*time.Second,
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping...")

	if zeebeWorker != nil {
		zeebeWorker.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("http server shutdown failed", zap.Error(err))
	}

	zapLog.Info("Consult manager stopped")
}

func readiness(checks []func(context.Context) error) func(context.Context) error {
	return func(ctx context.Context) error {
		for _, check := range checks {
			if err := check(ctx); err != nil {
				return err
			}
		}
		return nil
	}
}
