package main

import (
	"context"
	"flag"
	"os"

	"github.com/bookbuddy/matchengine/internal/cache"
	"github.com/bookbuddy/matchengine/internal/config"
	"github.com/bookbuddy/matchengine/internal/db"
	"github.com/bookbuddy/matchengine/internal/logger"
	"github.com/bookbuddy/matchengine/internal/matching"
	"github.com/bookbuddy/matchengine/internal/repository"
)

// runcycle executes a single matching cycle and exits. Meant for
// operators and external schedulers.
func main() {
	periodID := flag.String("period", "", "period id override, e.g. 2024-W07 (default: current ISO week)")
	flag.Parse()

	cfg := config.New()
	logger.InitFromConfig(cfg)
	log := logger.L()

	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		os.Exit(1)
	}

	// the run lock is optional for one-shot runs; use it when Redis is up
	var locks matching.Locker
	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(context.Background()); err != nil {
		log.Warn("redis unavailable, running without run lock", "err", err)
	} else {
		locks = redisCache
	}

	engine := matching.NewEngine(
		cfg,
		repository.NewUserRepository(database),
		repository.NewInteractionRepository(database),
		repository.NewPairingRepository(database),
		repository.NewMessageRepository(database),
		locks,
		log,
	)

	result, err := engine.Run(context.Background(), *periodID)
	if err != nil {
		log.Error("cycle failed", "err", err)
		os.Exit(1)
	}

	log.Info("cycle finished",
		"period_id", result.PeriodID,
		"eligible_users", result.EligibleUsers,
		"pairs", result.PairCount,
		"mean_score", result.MeanScore,
		"duration", result.Duration,
	)
}
