package main // Entry point package

import (
	"log"      // startup logging, fatal on misconfiguration
	"log/slog" // structured application logger
	"os"

	"github.com/joho/godotenv"    // .env loading for local development
	"github.com/labstack/echo/v4" // Echo web framework
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/nvoxel/auth-service/internal/config"
	"github.com/nvoxel/auth-service/internal/database"
	"github.com/nvoxel/auth-service/internal/handler"
	"github.com/nvoxel/auth-service/internal/queue"
	"github.com/nvoxel/auth-service/internal/ratelimit"
	"github.com/nvoxel/auth-service/internal/repository"
	"github.com/nvoxel/auth-service/internal/router"
)

func main() {
	_ = godotenv.Load() // optional .env; real env vars take precedence

	cfg := config.Load()
	rlCfg := config.LoadRateLimitConfig()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)

	// Redis backs the shared rate counters; without it each instance
	// falls back to counting in process memory.
	var limiter ratelimit.Limiter
	if rdb := config.NewRedisClient(); rdb != nil {
		limiter = ratelimit.NewRedis(rdb)
	} else {
		logger.Warn("redis unavailable, using in-process rate limiter")
		limiter = ratelimit.NewMemory()
	}

	auth := handler.NewAuthHandler(cfg, logger, users, tokens, handler.BrokerEvents{})
	admin := handler.NewAdminHandler(logger, users, tokens)

	e := echo.New()
	e.Use(echomw.Recover())
	router.RegisterRoutes(e)
	router.RegisterAuth(e, auth, cfg.JWTSecret, rlCfg, limiter)
	router.RegisterAdmin(e, admin, cfg.JWTSecret, rlCfg, limiter)

	// Background consumer mirrors security events into logs/security.log.
	go func() {
		if err := queue.StartSecurityConsumer(); err != nil {
			logger.Error("security consumer stopped", "err", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
