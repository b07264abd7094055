package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fleet-tracking/internal/api"
	"fleet-tracking/internal/config"
	"fleet-tracking/internal/metrics"
	"fleet-tracking/internal/modules/tracking"
	"fleet-tracking/internal/ratelimit"
	"fleet-tracking/pkg/geo"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
)

func main() {
	// 1. --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	e := echo.New()

	// 2. --- Middleware ---
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"http://localhost:5173", cfg.ClientOrigin},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	// 3. --- Database Connection ---
	dbConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Unable to parse database configuration: %v", err)
	}

	dbPool, err := pgxpool.NewWithConfig(context.Background(), dbConfig)
	if err != nil {
		log.Fatalf("Unable to create connection pool: %v", err)
	}
	defer dbPool.Close()

	if err := dbPool.Ping(context.Background()); err != nil {
		log.Fatalf("Unable to ping database: %v", err)
	}
	e.Logger.Info("Successfully connected to the database!")

	// 4. --- Metrics ---
	collector := metrics.NewCollector()
	metricsSrv := collector.Serve(cfg.MetricsAddr)

	// 5. --- Rate Limiter ---
	// One process: in-memory counters. Several processes serving the same
	// fleet: point REDIS_ADDR at a shared instance.
	var counterStore ratelimit.CounterStore
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Fatalf("Unable to ping redis: %v", err)
		}
		counterStore = ratelimit.NewRedisStore(rdb)
		e.Logger.Info("Rate limiter using shared redis counters")
	} else {
		counterStore = ratelimit.NewMemoryStore()
	}
	limiter := ratelimit.New(counterStore, cfg.RateLimitPerMinute, time.Minute)

	// 6. --- Event Fan-Out ---
	var publisher tracking.EventPublisher
	if cfg.NATSURL != "" {
		natsPub, err := tracking.NewNATSPublisher(cfg.NATSURL, collector)
		if err != nil {
			log.Fatalf("Unable to connect to NATS: %v", err)
		}
		defer natsPub.Close()
		publisher = natsPub
	}

	// 7. --- Dependency Injection (Wiring everything up) ---
	gazetteer := geo.NewStaticGazetteer(geo.DefaultCities())
	estimator := tracking.NewEstimator(gazetteer)

	trackingRepo := tracking.NewRepository(dbPool)
	trackingService := tracking.NewService(trackingRepo, limiter, estimator, collector, publisher, cfg.PublicBaseURL)
	trackingHandler := tracking.NewHandler(trackingService)
	deviceHandler := tracking.NewDeviceHandler(trackingService)

	// 8. --- Initialize Router ---
	api.SetupRoutes(e, cfg.JWTSecret, trackingHandler, deviceHandler, dbPool)

	// 9. --- Start Server with graceful shutdown logic ---
	go func() {
		if err := e.Start(":" + cfg.ServerPort); err != nil && err != http.ErrServerClosed {
			e.Logger.Fatal("shutting down the server, an error occurred:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		e.Logger.Fatal("Server forced to shutdown:", err)
	}
	_ = metricsSrv.Shutdown(ctx)
	log.Println("Server exiting")
}
