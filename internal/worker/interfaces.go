package worker

import (
	"context"

	"basegraph.app/rendezvous/internal/queue"
	"basegraph.app/rendezvous/internal/service"
)

// Consumer abstracts the message queue for testability.
type Consumer interface {
	Read(ctx context.Context) ([]queue.Message, error)
	Ack(ctx context.Context, msg queue.Message) error
	Requeue(ctx context.Context, msg queue.Message, errMsg string) error
	SendDLQ(ctx context.Context, msg queue.Message, errMsg string) error
}

// Reconciler is satisfied by service.Reconciler.
type Reconciler interface {
	Reconcile(ctx context.Context, n queue.CalendarNotification) (*service.ReconcileResult, error)
}
