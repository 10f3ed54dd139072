package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ecommerce-backend/internal/config"
	"github.com/iliyamo/ecommerce-backend/internal/database"
	"github.com/iliyamo/ecommerce-backend/internal/handler"
	"github.com/iliyamo/ecommerce-backend/internal/queue"
	"github.com/iliyamo/ecommerce-backend/internal/repository"
	"github.com/iliyamo/ecommerce-backend/internal/router"
	"github.com/iliyamo/ecommerce-backend/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis backs the auth rate limiter; nil means the limiter is disabled.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable, auth rate limiting disabled")
	}

	users := repository.NewUserRepo(db)
	addresses := repository.NewAddressRepo(db)
	settings := repository.NewSettingsRepo(db)

	authSvc := service.NewAuthService(users, cfg.JWTSecret, cfg.AccessTTL, cfg.BcryptCost)
	authHandler := handler.NewAuthHandler(cfg, authSvc)
	accountHandler := handler.NewAccountHandler(cfg, addresses, settings)

	// The audit consumer runs for the lifetime of the process and survives
	// broker restarts on its own.
	go queue.StartAuditConsumer()

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, users, cfg, config.LoadRateLimitConfig(), rdb)
	router.RegisterAccount(e, accountHandler, users, cfg)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
