package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"basegraph.app/rendezvous/common/logger"
	"basegraph.app/rendezvous/internal/queue"
)

// PendingStore lists and claims stream entries that were delivered to some
// consumer but never acknowledged.
type PendingStore interface {
	Pending(ctx context.Context, minIdle time.Duration, count int64) ([]redis.XPendingExt, error)
	Claim(ctx context.Context, consumer string, minIdle time.Duration, id string) ([]redis.XMessage, error)
}

type redisPending struct {
	client *redis.Client
	stream string
	group  string
}

// NewRedisPending reads the pending entries list of stream/group.
func NewRedisPending(client *redis.Client, stream, group string) PendingStore {
	return &redisPending{client: client, stream: stream, group: group}
}

func (p *redisPending) Pending(ctx context.Context, minIdle time.Duration, count int64) ([]redis.XPendingExt, error) {
	pending, err := p.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: p.stream,
		Group:  p.group,
		Idle:   minIdle,
		Start:  "-",
		End:    "+",
		Count:  count,
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("xpending: %w", err)
	}
	return pending, nil
}

func (p *redisPending) Claim(ctx context.Context, consumer string, minIdle time.Duration, id string) ([]redis.XMessage, error) {
	// XCLAIM re-checks the idle time, so a losing reclaimer gets no entries
	messages, err := p.client.XClaim(ctx, &redis.XClaimArgs{
		Stream:   p.stream,
		Group:    p.group,
		Consumer: consumer,
		MinIdle:  minIdle,
		Messages: []string{id},
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("xclaim: %w", err)
	}
	return messages, nil
}

type ReclaimerConfig struct {
	Consumer  string
	MinIdle   time.Duration
	Interval  time.Duration
	BatchSize int64
}

// Reclaimer picks up notifications a crashed worker read but never acked and
// feeds them back through the worker's processing path.
type Reclaimer struct {
	pending   PendingStore
	cfg       ReclaimerConfig
	consumer  Consumer
	processor queue.MessageProcessor

	stopCh    chan struct{}
	stoppedCh chan struct{}
}

func NewReclaimer(pending PendingStore, cfg ReclaimerConfig, consumer Consumer, processor queue.MessageProcessor) *Reclaimer {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 10
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	return &Reclaimer{
		pending:   pending,
		cfg:       cfg,
		consumer:  consumer,
		processor: processor,
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

// Run blocks until Stop is called or ctx is done.
func (r *Reclaimer) Run(ctx context.Context) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component: "rendezvous.worker.reclaimer",
	})
	defer close(r.stoppedCh)

	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	slog.InfoContext(ctx, "reclaimer started",
		"interval", r.cfg.Interval,
		"min_idle", r.cfg.MinIdle)

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stopCh:
			slog.InfoContext(ctx, "reclaimer stopping")
			return
		case <-ticker.C:
			if _, err := r.ReclaimOnce(ctx); err != nil {
				slog.ErrorContext(ctx, "reclaim cycle failed", "error", err)
			}
		}
	}
}

func (r *Reclaimer) Stop() {
	close(r.stopCh)
	<-r.stoppedCh
}

// ReclaimOnce claims one batch of stale entries and processes them.
// It returns how many entries this reclaimer won.
func (r *Reclaimer) ReclaimOnce(ctx context.Context) (int, error) {
	stale, err := r.pending.Pending(ctx, r.cfg.MinIdle, r.cfg.BatchSize)
	if err != nil {
		return 0, err
	}
	if len(stale) == 0 {
		return 0, nil
	}

	slog.InfoContext(ctx, "found stale pending notifications", "count", len(stale))

	claimed := 0
	for _, p := range stale {
		won, err := r.reclaim(ctx, p)
		if err != nil {
			slog.ErrorContext(ctx, "failed to reclaim notification",
				"error", err,
				"message_id", p.ID,
				"original_consumer", p.Consumer)
		}
		if won {
			claimed++
		}
	}
	return claimed, nil
}

func (r *Reclaimer) reclaim(ctx context.Context, p redis.XPendingExt) (bool, error) {
	msgID := p.ID
	ctx = logger.WithLogFields(ctx, logger.LogFields{MessageID: &msgID})

	messages, err := r.pending.Claim(ctx, r.cfg.Consumer, r.cfg.MinIdle, p.ID)
	if err != nil {
		return false, err
	}
	if len(messages) == 0 {
		slog.DebugContext(ctx, "notification already claimed elsewhere")
		return false, nil
	}

	msg, err := queue.ParseMessage(messages[0])
	if err != nil {
		slog.ErrorContext(ctx, "unparseable reclaimed notification, acknowledging", "error", err)
		return true, r.consumer.Ack(ctx, queue.Message{ID: messages[0].ID, Raw: messages[0]})
	}

	// a notification that kept crashing its consumer never bumped its own attempt
	if delivered := int(p.RetryCount); delivered > msg.Attempt {
		msg.Attempt = delivered
	}

	slog.InfoContext(ctx, "reclaimed stale notification",
		"original_consumer", p.Consumer,
		"idle_time", p.Idle,
		"attempt", msg.Attempt,
		"channel_id", msg.Notification.ChannelID)

	return true, r.processor(ctx, msg)
}
