package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"basegraph.app/rendezvous/common/id"
	"basegraph.app/rendezvous/common/logger"
	"basegraph.app/rendezvous/common/otel"
	"basegraph.app/rendezvous/core/config"
	"basegraph.app/rendezvous/core/db"
	"basegraph.app/rendezvous/internal/calendar"
	"basegraph.app/rendezvous/internal/realtime"
	"basegraph.app/rendezvous/internal/service"
	"basegraph.app/rendezvous/internal/store"
	"basegraph.app/rendezvous/internal/worker"
)

// The standalone worker reconciles calendar notifications for deployments
// that run the API with RUN_WORKER=false. Events reach clients through the
// redis fan-out channel, so the API replicas must run with FANOUT_MODE=redis.
func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	telemetry, err := otel.Setup(ctx, cfg.OTel, "worker")
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	slog.InfoContext(ctx, "rendezvous worker starting",
		"env", cfg.Env,
		"consumer_group", cfg.Pipeline.RedisGroup,
		"consumer_name", cfg.Pipeline.RedisConsumer)

	if cfg.Fanout.Mode != config.FanoutModeRedis {
		slog.WarnContext(ctx, "FANOUT_MODE is not redis, realtime events from this worker reach only API replicas subscribed to the fan-out channel")
	}

	// distinct from the API's node so ids never collide
	if err := id.Init(cfg.IDNode + 512); err != nil {
		slog.ErrorContext(ctx, "failed to initialize id generator", "error", err)
		os.Exit(1)
	}

	cfg.DB.ApplicationName = "rendezvous-worker"
	database, err := db.New(ctx, cfg.DB)
	if err != nil {
		slog.ErrorContext(ctx, "failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()
	slog.InfoContext(ctx, "database connected")

	redisOpts, err := redis.ParseURL(cfg.Pipeline.RedisURL)
	if err != nil {
		slog.ErrorContext(ctx, "failed to parse redis url", "error", err)
		os.Exit(1)
	}
	redisClient := redis.NewClient(redisOpts)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		slog.ErrorContext(ctx, "failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	slog.InfoContext(ctx, "redis connected", "stream", cfg.Pipeline.RedisStream)

	stores := store.NewStores(database.Queries())

	var cal calendar.Adapter
	if cfg.Google.Enabled() {
		cal = calendar.NewGoogleAdapter(cfg.Google).WithTokenSaver(stores.Users())
	} else {
		slog.WarnContext(ctx, "google oauth client not configured, notifications will be acknowledged without reconciliation")
	}

	// publish only; this process holds no realtime connections
	emitter := realtime.NewRedisFanout(redisClient, cfg.Fanout.Channel, realtime.NewRegistry())

	services := service.NewServices(
		stores,
		service.NewTxRunner(database),
		cal,
		emitter,
		cfg,
	)

	pipeline, err := worker.NewPipeline(ctx, redisClient, cfg.Pipeline, services.Reconciler())
	if err != nil {
		slog.ErrorContext(ctx, "failed to create worker pipeline", "error", err)
		os.Exit(1)
	}

	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.InfoContext(ctx, "worker initialized and running")
	if err := pipeline.Run(runCtx); err != nil {
		slog.ErrorContext(ctx, "worker error", "error", err)
	}

	if telemetry != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(ctx, "worker shutdown complete")
}

const banner = `
 ┬─┐┌─┐┌┐┌┌┬┐┌─┐┌─┐┬  ┬┌─┐┬ ┬┌─┐  ┬ ┬┌─┐┬─┐┬┌─┌─┐┬─┐
 ├┬┘├┤ │││ ││├┤ ┌─┘└┐┌┘│ ││ │└─┐  ││││ │├┬┘├┴┐├┤ ├┬┘
 ┴└─└─┘┘└┘─┴┘└─┘└─┘ └┘ └─┘└─┘└─┘  └┴┘└─┘┴└─┴ ┴└─┘┴└─
`
