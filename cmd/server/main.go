package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/shareit/shareit-api/internal/config"
	"github.com/shareit/shareit-api/internal/domain/booking"
	"github.com/shareit/shareit-api/internal/domain/item"
	"github.com/shareit/shareit-api/internal/domain/itemrequest"
	"github.com/shareit/shareit-api/internal/domain/notification"
	"github.com/shareit/shareit-api/internal/domain/user"
	"github.com/shareit/shareit-api/internal/middleware"
	"github.com/shareit/shareit-api/internal/pkg/database"
	"github.com/shareit/shareit-api/internal/pkg/events"
	"github.com/shareit/shareit-api/internal/pkg/jwt"
	"github.com/shareit/shareit-api/internal/pkg/logger"
	"github.com/shareit/shareit-api/internal/pkg/metrics"
	"github.com/shareit/shareit-api/internal/pkg/response"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found")
	}

	cfg, err := config.LoadServer()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	logCloser, err := logger.Init(logger.Config{
		Level:       cfg.LogLevel,
		Environment: cfg.Env,
		LogFile:     cfg.LogFile,
		Service:     "server",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to init logger")
	}
	defer logCloser.Close()

	log.Info().Str("env", cfg.Env).Str("driver", cfg.DatabaseDriver).Msg("Starting ShareIt server")

	// ---------- Database ----------
	db, err := database.Open(context.Background(), cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer database.Close(db)

	redisClient, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, notifications stay local to this instance")
		redisClient = nil
	}
	defer database.CloseRedis(redisClient)

	if cfg.MetricsEnabled {
		metrics.Register()
	}

	var serviceTokens *jwt.Service
	if cfg.InternalTokenSecret != "" {
		serviceTokens = jwt.NewService(cfg.InternalTokenSecret, 0)
	} else {
		log.Warn().Msg("INTERNAL_TOKEN_SECRET not set, service token check disabled")
	}

	hub := notification.NewHub(redisClient)
	go hub.Run()
	defer hub.Shutdown()

	r := newRouter(db, hub, serviceTokens, cfg)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}

// newRouter wires repositories, services and handlers onto one chi router.
func newRouter(db *sqlx.DB, hub *notification.Hub, serviceTokens *jwt.Service, cfg *config.ServerConfig) chi.Router {
	bus := events.NewBus()

	// ---------- Repositories ----------
	userRepo := user.NewRepository(db)
	requestRepo := itemrequest.NewRepository(db)
	itemRepo := item.NewRepository(db)
	bookingRepo := booking.NewRepository(db)

	// ---------- Services ----------
	userService := user.NewService(userRepo)
	requestService := itemrequest.NewService(requestRepo, userRepo, nil)
	itemService := item.NewService(itemRepo, userRepo, requestService, bookingRepo)
	requestService.SetItemSource(itemService)
	// The repository reports a missing item as nil, which the booking service maps itself.
	bookingService := booking.NewService(bookingRepo, itemRepo, userRepo, bus)

	notification.NewService(hub).Subscribe(bus)

	// ---------- Handlers ----------
	userHandler := user.NewHandler(userService)
	itemHandler := item.NewHandler(itemService)
	bookingHandler := booking.NewHandler(bookingService)
	requestHandler := itemrequest.NewHandler(requestService)
	notificationHandler := notification.NewHandler(hub, cfg.AllowedOrigins)

	// ---------- Router ----------
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))
	if cfg.MetricsEnabled {
		r.Use(metrics.Middleware("server"))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.OK(w, map[string]string{
			"status":  "ok",
			"version": "1.0.0",
		})
	})
	if cfg.MetricsEnabled {
		r.Handle("/metrics", metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.ServiceAuth(serviceTokens))

		r.Mount("/users", userHandler.Routes())
		r.Mount("/items", itemHandler.Routes(middleware.RequireUser))
		r.Mount("/bookings", bookingHandler.Routes(middleware.RequireUser))
		r.Mount("/requests", requestHandler.Routes(middleware.RequireUser))
		r.Mount("/ws", notificationHandler.Routes(middleware.RequireUser))
	})

	return r
}
