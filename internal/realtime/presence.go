package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

type Event string

const (
	EventMeetingInvited      Event = "meeting-invited"
	EventInviteStatusChanged Event = "invite-status-changed"
)

// Channel is one live client connection.
type Channel interface {
	ID() string
	Send(ctx context.Context, event Event, payload json.RawMessage) error
}

// Emitter routes an event to every live channel of a user. Services depend on
// this rather than on a concrete fan-out.
type Emitter interface {
	Emit(ctx context.Context, userID int64, event Event, payload any) error
}

// Registry tracks which channels belong to which user on this replica.
type Registry struct {
	mu     sync.Mutex
	byUser map[int64]map[string]Channel
	owner  map[string]int64
}

func NewRegistry() *Registry {
	return &Registry{
		byUser: make(map[int64]map[string]Channel),
		owner:  make(map[string]int64),
	}
}

// Register binds ch to userID. A channel is bound to at most one user; an
// earlier binding of the same channel is replaced.
func (r *Registry) Register(userID int64, ch Channel) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.removeLocked(ch.ID())

	channels, ok := r.byUser[userID]
	if !ok {
		channels = make(map[string]Channel)
		r.byUser[userID] = channels
	}
	channels[ch.ID()] = ch
	r.owner[ch.ID()] = userID
}

// Unregister drops ch from whichever user it is bound to. Unknown channels are ignored.
func (r *Registry) Unregister(ch Channel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeLocked(ch.ID())
}

func (r *Registry) removeLocked(channelID string) {
	userID, ok := r.owner[channelID]
	if !ok {
		return
	}
	delete(r.owner, channelID)
	if channels := r.byUser[userID]; channels != nil {
		delete(channels, channelID)
		if len(channels) == 0 {
			delete(r.byUser, userID)
		}
	}
}

// unregisterIfCurrent drops ch only while the same value is still bound, so a
// channel re-registered during a failed delivery is kept.
func (r *Registry) unregisterIfCurrent(ch Channel) {
	r.mu.Lock()
	defer r.mu.Unlock()

	userID, ok := r.owner[ch.ID()]
	if !ok {
		return
	}
	if current := r.byUser[userID][ch.ID()]; current == ch {
		r.removeLocked(ch.ID())
	}
}

// Count returns the number of live channels bound to userID.
func (r *Registry) Count(userID int64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byUser[userID])
}

func (r *Registry) snapshot(userID int64) []Channel {
	r.mu.Lock()
	defer r.mu.Unlock()

	channels := r.byUser[userID]
	out := make([]Channel, 0, len(channels))
	for _, ch := range channels {
		out = append(out, ch)
	}
	return out
}

// Emit delivers payload to every channel of userID. A user with no channels
// is not an error.
func (r *Registry) Emit(ctx context.Context, userID int64, event Event, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding %s payload: %w", event, err)
	}
	r.Deliver(ctx, userID, event, raw)
	return nil
}

// Deliver sends an already-encoded payload and returns how many channels got it.
// Channels that fail are unregistered.
func (r *Registry) Deliver(ctx context.Context, userID int64, event Event, raw json.RawMessage) int {
	channels := r.snapshot(userID)
	if len(channels) == 0 {
		slog.DebugContext(ctx, "no live channels for user, event dropped",
			"user_id", userID,
			"event", event)
		return 0
	}

	delivered := 0
	for _, ch := range channels {
		if err := ch.Send(ctx, event, raw); err != nil {
			slog.WarnContext(ctx, "delivery failed, dropping channel",
				"user_id", userID,
				"channel_id", ch.ID(),
				"event", event,
				"error", err)
			r.unregisterIfCurrent(ch)
			continue
		}
		delivered++
	}
	return delivered
}
