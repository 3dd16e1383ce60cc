package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"basegraph.app/rendezvous/common/logger"
)

type envelope struct {
	UserID  int64           `json:"user_id"`
	Event   Event           `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// RedisFanout publishes events on a pub/sub channel. Every replica runs a
// subscriber that hands them to its local Registry, so a user's channels on
// any replica receive each event once.
type RedisFanout struct {
	client  *redis.Client
	channel string
	local   *Registry
}

func NewRedisFanout(client *redis.Client, channel string, local *Registry) *RedisFanout {
	return &RedisFanout{client: client, channel: channel, local: local}
}

func (f *RedisFanout) Emit(ctx context.Context, userID int64, event Event, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding %s payload: %w", event, err)
	}
	body, err := json.Marshal(envelope{UserID: userID, Event: event, Payload: raw})
	if err != nil {
		return fmt.Errorf("encoding envelope: %w", err)
	}
	if err := f.client.Publish(ctx, f.channel, body).Err(); err != nil {
		return fmt.Errorf("publishing to %s: %w", f.channel, err)
	}
	return nil
}

// Run subscribes and delivers until ctx is cancelled.
func (f *RedisFanout) Run(ctx context.Context) error {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "rendezvous.realtime.fanout"})

	sub := f.client.Subscribe(ctx, f.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribing to %s: %w", f.channel, err)
	}
	slog.InfoContext(ctx, "fanout subscriber started", "channel", f.channel)

	msgs := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "fanout subscriber stopping")
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			if err := f.handle(ctx, msg.Payload); err != nil {
				slog.WarnContext(ctx, "discarding fanout message", "error", err)
			}
		}
	}
}

func (f *RedisFanout) handle(ctx context.Context, payload string) error {
	var env envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		return fmt.Errorf("decoding envelope: %w", err)
	}
	if env.UserID == 0 || env.Event == "" {
		return fmt.Errorf("envelope missing user or event")
	}
	f.local.Deliver(ctx, env.UserID, env.Event, env.Payload)
	return nil
}
