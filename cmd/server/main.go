package main

import (
	"log"

	"github.com/labstack/echo/v4"

	"github.com/aleccorey/reminder-api/internal/config"
	"github.com/aleccorey/reminder-api/internal/database"
	"github.com/aleccorey/reminder-api/internal/handler"
	"github.com/aleccorey/reminder-api/internal/middleware"
	"github.com/aleccorey/reminder-api/internal/oauth"
	"github.com/aleccorey/reminder-api/internal/repository"
	"github.com/aleccorey/reminder-api/internal/router"
	queue_publisher "github.com/aleccorey/reminder-api/internal/service"
)

func main() {
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: without it rate limiting and response
	// caching disable themselves and OAuth state falls back to a
	// browser cookie.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Print("redis unavailable; rate limiting and caching disabled")
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	reminders := repository.NewReminderRepo(db)

	discord := oauth.NewClient(oauth.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURI:  cfg.RedirectURI,
		Scopes:       cfg.Scopes,
	})
	publisher := queue_publisher.NewPublisher(cfg.RabbitURL)

	e := echo.New()
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	e.Use(middleware.NewRedisCache(config.LoadCacheConfig(), rdb))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, discord, users, tokens, rdb), cfg.JWTSecret)
	router.RegisterReminders(e, handler.NewReminderHandler(reminders, users, tokens), users, cfg.JWTSecret)
	router.RegisterSetup(e, handler.NewSetupHandler(users, publisher), cfg.JWTSecret)
	router.RegisterConsumer(e, handler.NewConsumerHandler(reminders, users), cfg.ServiceKeyHash)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
