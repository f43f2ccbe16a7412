package main

import (
	"context"

	"github.com/robfig/cron/v3"

	"github.com/bookbuddy/matchengine/internal/app"
	"github.com/bookbuddy/matchengine/internal/cache"
	"github.com/bookbuddy/matchengine/internal/config"
	"github.com/bookbuddy/matchengine/internal/db"
	"github.com/bookbuddy/matchengine/internal/logger"
	"github.com/bookbuddy/matchengine/internal/matching"
	"github.com/bookbuddy/matchengine/internal/repository"
	"github.com/bookbuddy/matchengine/internal/server"
	"github.com/bookbuddy/matchengine/internal/service/matchadmin"
)

func main() {
	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L()

	// Init DB
	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		return
	}

	// Init Redis
	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(context.Background()); err != nil {
		log.Error("failed to connect to redis", "err", err)
		return
	}

	appCtx := app.New(database, redisCache, log)

	engine := matching.NewEngine(
		cfg,
		repository.NewUserRepository(database),
		repository.NewInteractionRepository(database),
		repository.NewPairingRepository(database),
		repository.NewMessageRepository(database),
		redisCache,
		log,
	)

	// Periodic trigger: one cycle per period. The engine's
	// deterministic record ids keep an accidental double fire safe.
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.Cron.Spec, func() {
		if _, err := engine.Run(context.Background(), ""); err != nil {
			log.Error("scheduled cycle failed", "err", err)
		}
	}); err != nil {
		log.Error("invalid cron spec", "spec", cfg.Cron.Spec, "err", err)
		return
	}
	scheduler.Start()
	defer scheduler.Stop()
	log.Info("cycle scheduler started", "spec", cfg.Cron.Spec)

	registrars := []server.Registrar{
		matchadmin.NewRegistrar(appCtx, cfg, engine),
	}

	addr := cfg.GRPC.Host + ":" + cfg.GRPC.Port
	log.Info("starting gRPC server", "addr", addr)

	if err := server.StartGRPCServer(cfg, registrars...); err != nil {
		log.Error("failed to start gRPC server", "err", err)
	}
}
