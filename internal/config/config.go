package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Log struct {
		Level     string
		Format    string
		Component string
		Source    bool
	}

	DB struct {
		DSN      string
		Host     string
		Port     string
		User     string
		Password string
		Name     string
	}

	Redis struct {
		Addr     string
		Password string
		DB       int
	}

	GRPC struct {
		Host string
		Port string
	}

	Admin struct {
		Token string
	}

	Cron struct {
		// Spec is a standard 5-field cron expression for the periodic run.
		Spec string
	}

	// Match holds the tunables of the matching cycle.
	Match struct {
		MinInteractions  int     // minimum total interactions to be eligible
		ActiveWindowDays int     // trailing window for "recent public activity"
		FetchLimit       int     // max interactions loaded per profile
		Concurrency      int     // profile-build worker pool width
		MinScore         float64 // minimum similarity for a candidate pair
		CooldownCycles   int     // how many past cycles block a repeat pairing
		TopAuthors       int     // top-N authors kept per profile
		TopCategories    int     // top-N categories kept per profile
		CycleDays        int     // length of one cycle in days
	}
}

func New() *Config {
	cfg := &Config{}

	// Logger
	cfg.Log.Level = getEnvDefault("LOG_LEVEL", "info")
	cfg.Log.Format = getEnvDefault("LOG_FORMAT", "text")
	cfg.Log.Component = getEnvDefault("LOG_COMPONENT", "match_engine")
	cfg.Log.Source = isTruthy(os.Getenv("LOG_SOURCE"))

	// Database
	cfg.DB.DSN = os.Getenv("MYSQL_DSN")
	if cfg.DB.DSN == "" {
		cfg.DB.Host = getEnvDefault("DB_HOST", "localhost")
		cfg.DB.Port = getEnvDefault("DB_PORT", "3306")
		cfg.DB.User = getEnvDefault("DB_USER", "root")
		cfg.DB.Password = getEnvDefault("DB_PASSWORD", "root")
		cfg.DB.Name = getEnvDefault("DB_NAME", "bookbuddy")

		cfg.DB.DSN = fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
			cfg.DB.User, cfg.DB.Password, cfg.DB.Host, cfg.DB.Port, cfg.DB.Name,
		)
	}

	// Redis
	cfg.Redis.Addr = getEnvDefault("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnvDefault("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)

	// gRPC
	cfg.GRPC.Host = getEnvDefault("GRPC_HOST", "127.0.0.1")
	cfg.GRPC.Port = getEnvDefault("GRPC_PORT", "50051")

	// Admin trigger
	cfg.Admin.Token = getEnvDefault("ADMIN_TOKEN", "")

	// Default: Monday 09:00, once per weekly cycle.
	cfg.Cron.Spec = getEnvDefault("CRON_SPEC", "0 9 * * MON")

	// Matching
	cfg.Match.MinInteractions = getEnvInt("MATCH_MIN_INTERACTIONS", 10)
	cfg.Match.ActiveWindowDays = getEnvInt("MATCH_ACTIVE_WINDOW_DAYS", 30)
	cfg.Match.FetchLimit = getEnvInt("MATCH_FETCH_LIMIT", 200)
	cfg.Match.Concurrency = getEnvInt("MATCH_CONCURRENCY", 10)
	cfg.Match.MinScore = getEnvFloat("MATCH_MIN_SCORE", 0.6)
	cfg.Match.CooldownCycles = getEnvInt("MATCH_COOLDOWN_CYCLES", 8)
	cfg.Match.TopAuthors = getEnvInt("MATCH_TOP_AUTHORS", 10)
	cfg.Match.TopCategories = getEnvInt("MATCH_TOP_CATEGORIES", 5)
	cfg.Match.CycleDays = getEnvInt("CYCLE_DAYS", 7)

	return cfg
}

func getEnvDefault(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getEnvInt(k string, def int) int {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvFloat(k string, def float64) float64 {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}
