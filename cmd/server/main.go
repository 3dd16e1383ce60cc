package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/sync/errgroup"

	"basegraph.app/rendezvous/common/id"
	"basegraph.app/rendezvous/common/logger"
	"basegraph.app/rendezvous/common/otel"
	"basegraph.app/rendezvous/core/config"
	"basegraph.app/rendezvous/core/db"
	"basegraph.app/rendezvous/internal/calendar"
	"basegraph.app/rendezvous/internal/http/middleware"
	httprouter "basegraph.app/rendezvous/internal/http/router"
	"basegraph.app/rendezvous/internal/queue"
	"basegraph.app/rendezvous/internal/realtime"
	"basegraph.app/rendezvous/internal/service"
	"basegraph.app/rendezvous/internal/store"
	"basegraph.app/rendezvous/internal/worker"
)

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg.OTel, "server")
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "rendezvous starting",
		"env", cfg.Env,
		"fanout_mode", cfg.Fanout.Mode,
		"in_process_worker", cfg.Pipeline.InProcessWorker)

	if err := id.Init(cfg.IDNode); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	cfg.DB.ApplicationName = "rendezvous-server"
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
		slog.WarnContext(ctx, "google oauth client not configured, calendar sync disabled")
	}

	registry := realtime.NewRegistry()
	var (
		emitter realtime.Emitter = registry
		fanout  *realtime.RedisFanout
	)
	if cfg.Fanout.Mode == config.FanoutModeRedis {
		fanout = realtime.NewRedisFanout(redisClient, cfg.Fanout.Channel, registry)
		emitter = fanout
	}

	services := service.NewServices(
		stores,
		service.NewTxRunner(database),
		cal,
		emitter,
		cfg,
	)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	wsHandler := realtime.NewWSHandler(registry, services.Sessions(), services.Invitations(), service.ErrorCode)
	router := setupRouter(cfg, services, queue.NewRedisProducer(redisClient, cfg.Pipeline.RedisStream, slog.Default()), wsHandler)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(runCtx)

	g.Go(func() error {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if fanout != nil {
		g.Go(func() error {
			if err := fanout.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("fanout subscriber: %w", err)
			}
			return nil
		})
	}

	if cfg.Pipeline.InProcessWorker {
		pipeline, err := worker.NewPipeline(ctx, redisClient, cfg.Pipeline, services.Reconciler())
		if err != nil {
			slog.ErrorContext(ctx, "failed to create worker pipeline", "error", err)
			os.Exit(1)
		}
		g.Go(func() error {
			return pipeline.Run(gctx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		slog.InfoContext(ctx, "shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		slog.ErrorContext(ctx, "rendezvous stopped with error", "error", err)
	}

	if telemetry != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(ctx, "shutdown complete")
}

func setupRouter(cfg config.Config, services *service.Services, producer queue.Producer, ws http.Handler) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span → Recovery catches panics → Logger logs with trace context
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	httprouter.SetupRoutes(router, services, httprouter.RouterConfig{
		WebhookSecret: cfg.Webhook.Secret,
		Enqueuer:      producer,
		Realtime:      ws,
	})

	return router
}

const banner = `
 ┬─┐┌─┐┌┐┌┌┬┐┌─┐┌─┐┬  ┬┌─┐┬ ┬┌─┐
 ├┬┘├┤ │││ ││├┤ ┌─┘└┐┌┘│ ││ │└─┐
 ┴└─└─┘┘└┘─┴┘└─┘└─┘ └┘ └─┘└─┘└─┘
`
