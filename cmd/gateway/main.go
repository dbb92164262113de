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
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/shareit/shareit-api/internal/config"
	"github.com/shareit/shareit-api/internal/gateway"
	"github.com/shareit/shareit-api/internal/middleware"
	"github.com/shareit/shareit-api/internal/pkg/database"
	"github.com/shareit/shareit-api/internal/pkg/jwt"
	"github.com/shareit/shareit-api/internal/pkg/logger"
	"github.com/shareit/shareit-api/internal/pkg/metrics"
	"github.com/shareit/shareit-api/internal/pkg/ratelimit"
	"github.com/shareit/shareit-api/internal/pkg/response"
	"github.com/shareit/shareit-api/internal/pkg/upstream"
)

const userAgent = "ShareIt-Gateway/1.0"

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found")
	}

	cfg, err := config.LoadGateway()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	logCloser, err := logger.Init(logger.Config{
		Level:       cfg.LogLevel,
		Environment: cfg.Env,
		LogFile:     cfg.LogFile,
		Service:     "gateway",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to init logger")
	}
	defer logCloser.Close()

	log.Info().Str("env", cfg.Env).Str("server", cfg.ServerURL).Msg("Starting ShareIt gateway")

	redisClient, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, using in-process rate limiter")
		redisClient = nil
	}
	defer database.CloseRedis(redisClient)

	var limiter ratelimit.Limiter
	if redisClient != nil {
		limiter = ratelimit.NewRedisLimiter(redisClient, cfg.RateLimitPerMinute, time.Minute)
	} else {
		limiter = ratelimit.NewLocalLimiter(cfg.RateLimitPerMinute, cfg.RateLimitPerMinute)
	}

	if cfg.MetricsEnabled {
		metrics.Register()
	}

	// A nil *jwt.Service must not end up inside the interface.
	var signer upstream.TokenSigner
	if cfg.ServiceTokenEnabled() {
		signer = jwt.NewService(cfg.InternalTokenSecret, cfg.ServiceTokenTTL)
	} else {
		log.Warn().Msg("INTERNAL_TOKEN_SECRET not set, forwarding without service tokens")
	}

	client := upstream.NewClient(cfg.ServerURL, cfg.UpstreamTimeout, userAgent, signer)
	wsProxy, err := gateway.NewWebSocketProxy(cfg.ServerURL, signer)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid server URL")
	}

	r := newRouter(client, wsProxy, limiter, cfg)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP gateway listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP gateway error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down gateway...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Gateway forced to shutdown")
	}

	log.Info().Msg("Gateway exited properly")
}

func newRouter(client gateway.Forwarder, wsProxy http.Handler, limiter ratelimit.Limiter, cfg *config.GatewayConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))
	if cfg.MetricsEnabled {
		r.Use(metrics.Middleware("gateway"))
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
		r.Use(middleware.RateLimit(limiter))

		r.Handle("/ws", middleware.RequireUser(wsProxy))
		r.Mount("/", gateway.NewHandler(client).Routes(middleware.RequireUser))
	})

	return r
}
