package queue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

type Producer interface {
	Enqueue(ctx context.Context, n CalendarNotification) error
	Close() error
}

type redisProducer struct {
	client *redis.Client
	stream string
	logger *slog.Logger
}

func NewRedisProducer(client *redis.Client, stream string, logger *slog.Logger) Producer {
	if logger == nil {
		logger = slog.Default()
	}
	return &redisProducer{
		client: client,
		stream: stream,
		logger: logger,
	}
}

func (p *redisProducer) Enqueue(ctx context.Context, n CalendarNotification) error {
	fields := notificationValues(n, 1)

	id, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: fields,
	}).Result()
	if err != nil {
		return fmt.Errorf("enqueue calendar notification: %w", err)
	}

	p.logger.InfoContext(ctx, "enqueued calendar notification",
		"stream_id", id,
		"channel_id", n.ChannelID,
		"resource_state", n.ResourceState,
		"message_number", n.MessageNumber)
	return nil
}

func (p *redisProducer) Close() error {
	return p.client.Close()
}
