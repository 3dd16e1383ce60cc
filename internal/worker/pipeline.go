package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"basegraph.app/rendezvous/core/config"
	"basegraph.app/rendezvous/internal/queue"
)

// Pipeline is the stream worker together with its reclaimer.
type Pipeline struct {
	Worker    *Worker
	Reclaimer *Reclaimer
}

func NewPipeline(ctx context.Context, client *redis.Client, cfg config.PipelineConfig, reconciler Reconciler) (*Pipeline, error) {
	consumer, err := queue.NewRedisConsumer(ctx, client, queue.ConsumerConfig{
		Stream:       cfg.RedisStream,
		Group:        cfg.RedisGroup,
		Consumer:     cfg.RedisConsumer,
		DLQStream:    cfg.RedisDLQStream,
		BatchSize:    10,
		Block:        cfg.BlockTimeout,
		RequeueDelay: cfg.RequeueDelay,
	})
	if err != nil {
		return nil, fmt.Errorf("creating consumer: %w", err)
	}

	w := New(consumer, reconciler, Config{MaxAttempts: cfg.MaxAttempts})
	r := NewReclaimer(NewRedisPending(client, cfg.RedisStream, cfg.RedisGroup), ReclaimerConfig{
		Consumer:  cfg.RedisConsumer + "-reclaimer",
		MinIdle:   cfg.ReclaimMinIdle,
		Interval:  cfg.ReclaimEvery,
		BatchSize: 10,
	}, consumer, w.ProcessMessage)

	return &Pipeline{Worker: w, Reclaimer: r}, nil
}

// Run blocks until ctx is done. Cancellation is a clean exit.
func (p *Pipeline) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return p.Worker.Run(gctx)
	})
	g.Go(func() error {
		p.Reclaimer.Run(gctx)
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
