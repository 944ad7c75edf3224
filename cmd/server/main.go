package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/locaspot/booking-api/internal/config"
	"github.com/locaspot/booking-api/internal/database"
	"github.com/locaspot/booking-api/internal/handler"
	"github.com/locaspot/booking-api/internal/logger"
	"github.com/locaspot/booking-api/internal/middleware"
	"github.com/locaspot/booking-api/internal/queue"
	"github.com/locaspot/booking-api/internal/repository"
	"github.com/locaspot/booking-api/internal/router"
	"github.com/locaspot/booking-api/internal/upload"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  os.Getenv("LOG_LEVEL"),
		Pretty: !cfg.IsProd(),
	})

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatal().Err(err).Msg("open database failed")
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn().Msg("redis unavailable, caching and rate limiting disabled")
	}

	users := repository.NewUserRepo(db)
	products := repository.NewProductRepo(db)
	reservations := repository.NewReservationRepo(db)

	uploads := upload.NewStore(cfg.PublicDir)
	views := middleware.NewViewCache(config.LoadCacheConfig(), rdb)
	events := queue.NewPublisher()

	// The audit consumer keeps its own reconnect loop; losing the broker
	// never takes the API down.
	go queue.StartAuditConsumer(events.URL)

	e := router.New(router.Deps{
		Cfg:          cfg,
		RateCfg:      config.LoadRateLimitConfig(),
		Redis:        rdb,
		Users:        users,
		Views:        views,
		Auth:         handler.NewAuthHandler(cfg, users, uploads, views),
		Products:     handler.NewProductHandler(products, uploads, views),
		Reservations: handler.NewReservationHandler(reservations, products, uploads, views, events),
		Admin:        handler.NewAdminHandler(users, products, reservations, views),
	})

	addr := ":" + cfg.Port
	log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening")
	if err := e.Start(addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
