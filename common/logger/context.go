package logger

import (
	"context"
	"log/slog"
)

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields contains structured fields automatically added to all logs within a context.
// Handlers and workers enrich the context once; everything downstream logs with the
// meeting/invitation/user it is working on without repeating the attributes.
type LogFields struct {
	MeetingID    *int64  // Local meeting ID
	InvitationID *int64  // Invitation being transitioned
	UserID       *int64  // Acting user (host, invitee, or channel owner)
	ChannelID    *string // Provider watch channel ID
	MessageID    *string // Redis stream message ID
	Component    string  // e.g. "rendezvous.service.reconciler"
}

// WithLogFields enriches context with structured log fields.
// Multiple calls merge fields, with newer non-nil/non-empty values taking precedence.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	existing := GetLogFields(ctx)
	merged := mergeFields(existing, fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields retrieves log fields from context.
// Returns empty LogFields if none are set.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, next LogFields) LogFields {
	result := existing

	if next.MeetingID != nil {
		result.MeetingID = next.MeetingID
	}
	if next.InvitationID != nil {
		result.InvitationID = next.InvitationID
	}
	if next.UserID != nil {
		result.UserID = next.UserID
	}
	if next.ChannelID != nil {
		result.ChannelID = next.ChannelID
	}
	if next.MessageID != nil {
		result.MessageID = next.MessageID
	}
	if next.Component != "" {
		result.Component = next.Component
	}

	return result
}

func (f LogFields) attrs() []slog.Attr {
	attrs := make([]slog.Attr, 0, 6)
	if f.MeetingID != nil {
		attrs = append(attrs, slog.Int64("meeting_id", *f.MeetingID))
	}
	if f.InvitationID != nil {
		attrs = append(attrs, slog.Int64("invitation_id", *f.InvitationID))
	}
	if f.UserID != nil {
		attrs = append(attrs, slog.Int64("user_id", *f.UserID))
	}
	if f.ChannelID != nil {
		attrs = append(attrs, slog.String("channel_id", *f.ChannelID))
	}
	if f.MessageID != nil {
		attrs = append(attrs, slog.String("message_id", *f.MessageID))
	}
	if f.Component != "" {
		attrs = append(attrs, slog.String("component", f.Component))
	}
	return attrs
}

// Ptr is a helper to create a pointer from a value.
// Useful for setting LogFields inline: logger.WithLogFields(ctx, logger.LogFields{MeetingID: logger.Ptr(id)})
func Ptr[T any](v T) *T {
	return &v
}
