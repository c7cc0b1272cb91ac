package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/camier/spots/internal/adapters/elevation"
	natsadapter "github.com/camier/spots/internal/adapters/nats"
	"github.com/camier/spots/internal/adapters/postgres"
	"github.com/camier/spots/internal/adapters/valkey"
	"github.com/camier/spots/internal/core/domain"
	"github.com/camier/spots/internal/core/ports"
	"github.com/camier/spots/internal/core/usecases"
	"github.com/camier/spots/internal/pkg/config"
	"github.com/camier/spots/internal/pkg/logging"
	"github.com/camier/spots/internal/workflows"
)

func main() {
	cfg, err := config.Load("spots-worker")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup(logLevel, "json")

	ctx := context.Background()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	var cacheSvc ports.CacheService
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable, exposure samples will not be cached", "error", err)
	} else {
		defer cache.Close()
		cacheSvc = cache
	}

	var pub ports.EventPublisher
	publisher, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable, digests will not be announced", "error", err)
	} else {
		defer publisher.Close()
		pub = publisher
	}

	spotRepo := postgres.NewSpotRepo(db)
	digestRepo := postgres.NewDigestRepo(db)
	elevClient := elevation.New(cfg.Elevation.BaseURL, cfg.Elevation.Timeout())

	sunSvc := usecases.NewSunService()
	exposureSvc := usecases.NewExposureService(sunSvc, elevClient, cacheSvc, cfg.Sun.StepMinutes)
	digestSvc := usecases.NewDigestService(exposureSvc, spotRepo, digestRepo)

	// Connect to Temporal
	c, err := client.Dial(client.Options{
		HostPort: cfg.Temporal.HostPort,
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})

	w.RegisterWorkflow(workflows.ExposureDigestWorkflow)
	w.RegisterWorkflow(workflows.DailyDigestWorkflow)
	w.RegisterActivity(&workflows.DigestActivities{
		Digests:   digestSvc,
		Spots:     spotRepo,
		Publisher: pub,
	})

	// Freshly ingested spots get a digest for today straight away.
	subscriber, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats subscriber unavailable, ingested spots will wait for the nightly run", "error", err)
	} else {
		defer subscriber.Close()
		err = subscriber.SubscribeSpotIngested(ctx, func(ctx context.Context, spot *domain.Spot) error {
			input := workflows.DigestInput{
				SpotID: spot.ID,
				Date:   time.Now().UTC().Format("2006-01-02"),
			}
			_, err := c.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
				ID:        "digest-" + spot.ID + "-" + input.Date,
				TaskQueue: cfg.Temporal.TaskQueue,
			}, workflows.ExposureDigestWorkflow, input)
			if err != nil {
				slog.Error("start digest workflow", "spot", spot.Slug, "error", err)
			}
			return err
		})
		if err != nil {
			slog.Warn("subscribe spot ingested", "error", err)
		}
	}

	// Nightly fan-out over the whole catalog, one child workflow per spot.
	_, err = c.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:           "daily-digest-fanout",
		TaskQueue:    cfg.Temporal.TaskQueue,
		CronSchedule: "0 2 * * *",
	}, workflows.DailyDigestWorkflow, "")
	if err != nil {
		slog.Warn("schedule daily digest workflow", "error", err)
	}

	slog.Info("digest worker started", "taskQueue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
