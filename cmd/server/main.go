package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/bloodcare/donation-system/internal/api"
	"github.com/bloodcare/donation-system/internal/core/ports"
	"github.com/bloodcare/donation-system/internal/core/service"
	mongodb "github.com/bloodcare/donation-system/internal/infrastructure/db/mongo"
	redisdb "github.com/bloodcare/donation-system/internal/infrastructure/db/redis"
	"github.com/bloodcare/donation-system/internal/infrastructure/lookup"
	"github.com/bloodcare/donation-system/internal/infrastructure/queue"
	"github.com/bloodcare/donation-system/internal/pkg/config"
	"github.com/bloodcare/donation-system/pkg/logger"
)

// @title           BloodCare Donation System API
// @version         1.0
// @description     Blood donation coordination backend: donor directory, donation request lifecycle and funding history.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Geo dataset ---
	geo, err := loadGeo(cfg.GeoDataDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load geo dataset")
	}

	// --- MongoDB ---
	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Warn().Err(err).Msg("mongodb disconnect error")
		}
	}()

	if err := ensureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure indexes")
	}

	// --- Redis ---
	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Warn().Err(err).Msg("redis close error")
		}
	}()

	// --- Funding pipeline ---
	fundingRepo := mongodb.NewFundingRepository(db)
	fundingDedup := redisdb.NewFundingDedup(rdb)
	fundingService := service.NewFundingService(fundingRepo, fundingDedup, log)
	dispatcher := queue.NewDispatcher(cfg.FundingWorkers, fundingService, log)
	dispatcher.Start(ctx)

	e := api.NewRouter(api.Deps{
		DB:             db,
		Redis:          rdb,
		Geo:            geo,
		Log:            log,
		JWTSecret:      cfg.JWTSecret,
		WebhookSecret:  cfg.WebhookSecret,
		FundingService: fundingService,
		EnqueueFunding: dispatcher.Enqueue,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server error")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("shutdown error")
	}
}

// loadGeo uses the embedded dataset unless an override directory is set.
func loadGeo(dir string) (ports.GeoDirectory, error) {
	if dir != "" {
		return lookup.NewFromDir(dir)
	}
	return lookup.New()
}

// ensureIndexes creates the indexes every repository relies on, including
// the unique transaction_id index that backstops funding deduplication.
func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	if err := mongodb.NewUserRepository(db).EnsureIndexes(ctx); err != nil {
		return err
	}
	if err := mongodb.NewRequestRepository(db).EnsureIndexes(ctx); err != nil {
		return err
	}
	return mongodb.NewFundingRepository(db).EnsureIndexes(ctx)
}
