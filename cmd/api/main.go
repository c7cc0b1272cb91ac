package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/camier/spots/internal/adapters/elevation"
	"github.com/camier/spots/internal/adapters/http"
	natsadapter "github.com/camier/spots/internal/adapters/nats"
	"github.com/camier/spots/internal/adapters/postgres"
	"github.com/camier/spots/internal/adapters/valkey"
	"github.com/camier/spots/internal/core/ports"
	"github.com/camier/spots/internal/core/usecases"
	"github.com/camier/spots/internal/pkg/config"
	"github.com/camier/spots/internal/pkg/logging"
	"github.com/camier/spots/internal/pkg/metrics"
	"github.com/camier/spots/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("spots-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup(logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Export pool stats
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				st := db.Pool.Stat()
				metrics.DBPoolConnsOpen.Set(float64(st.TotalConns()))
				metrics.DBPoolConnsAcquired.Set(float64(st.AcquiredConns()))
				metrics.DBPoolConnsIdle.Set(float64(st.IdleConns()))
			}
		}
	}()

	// Cache (optional: a nil interface disables read-through caching)
	var cacheSvc ports.CacheService
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
		cache = nil
	} else {
		defer cache.Close()
		cacheSvc = cache
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	}

	// Repos and remote providers
	spotRepo := postgres.NewSpotRepo(db)
	digestRepo := postgres.NewDigestRepo(db)
	elevClient := elevation.New(cfg.Elevation.BaseURL, cfg.Elevation.Timeout())

	// Use cases
	sunSvc := usecases.NewSunService()
	shadowSvc := usecases.NewShadowService(sunSvc, cfg.Sun.ShadowCapM, cfg.Sun.MarkerHeightM)
	exposureSvc := usecases.NewExposureService(sunSvc, elevClient, cacheSvc, cfg.Sun.StepMinutes)
	terrainSvc := usecases.NewTerrainService(sunSvc, shadowSvc, elevClient, usecases.TerrainConfig{
		HeightM:          cfg.Sun.TerrainHeightM,
		MinShadowM:       cfg.Sun.MinShadowM,
		GridLow:          cfg.Sun.GridLow,
		GridMedium:       cfg.Sun.GridMedium,
		GridHigh:         cfg.Sun.GridHigh,
		ZoomMedium:       cfg.Sun.ZoomMedium,
		ZoomHigh:         cfg.Sun.ZoomHigh,
		ElevationTimeout: cfg.Elevation.Timeout(),
	})
	spotSvc := usecases.NewSpotService(spotRepo, cacheSvc)
	digestSvc := usecases.NewDigestService(exposureSvc, spotRepo, digestRepo)

	deps := &http.Dependencies{
		Sun:      sunSvc,
		Shadows:  shadowSvc,
		Exposure: exposureSvc,
		Terrain:  terrainSvc,
		Spots:    spotSvc,
		Digests:  digestSvc,
		NATS:     natsConn,
		DB:       db,
		Cache:    cache,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "Spots Sun API",
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173, https://*.spots-occitanie.fr",
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
