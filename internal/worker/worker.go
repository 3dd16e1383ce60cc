package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"basegraph.app/rendezvous/common/logger"
	"basegraph.app/rendezvous/internal/calendar"
	"basegraph.app/rendezvous/internal/queue"
)

type Config struct {
	MaxAttempts int
	// ErrorBackoff is how long Run waits after a failed read.
	ErrorBackoff time.Duration
}

// Worker drains calendar notifications from the stream and reconciles each
// one. A notification is acked only after reconciliation commits.
type Worker struct {
	consumer   Consumer
	reconciler Reconciler
	cfg        Config

	stopCh    chan struct{}
	stoppedCh chan struct{}
}

func New(consumer Consumer, reconciler Reconciler, cfg Config) *Worker {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.ErrorBackoff <= 0 {
		cfg.ErrorBackoff = time.Second
	}
	return &Worker{
		consumer:   consumer,
		reconciler: reconciler,
		cfg:        cfg,
		stopCh:     make(chan struct{}),
		stoppedCh:  make(chan struct{}),
	}
}

func (w *Worker) Run(ctx context.Context) error {
	defer close(w.stoppedCh)

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component: "rendezvous.worker",
	})
	slog.InfoContext(ctx, "worker started", "max_attempts", w.cfg.MaxAttempts)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stopCh:
			slog.InfoContext(ctx, "worker stopping")
			return nil
		default:
		}

		if err := w.processOneBatch(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.ErrorContext(ctx, "batch processing error", "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-w.stopCh:
				return nil
			case <-time.After(w.cfg.ErrorBackoff):
			}
		}
	}
}

// Stop signals Run to return after the current batch and waits for it.
func (w *Worker) Stop() {
	close(w.stopCh)
	<-w.stoppedCh
}

func (w *Worker) processOneBatch(ctx context.Context) error {
	messages, err := w.consumer.Read(ctx)
	if err != nil {
		return fmt.Errorf("reading from stream: %w", err)
	}

	for _, msg := range messages {
		_ = w.ProcessMessage(ctx, msg)
	}
	return nil
}

// ProcessMessage reconciles one message and then acks, requeues or
// dead-letters it. Exported so the reclaimer can reuse it.
func (w *Worker) ProcessMessage(ctx context.Context, msg queue.Message) error {
	msgID := msg.ID
	channelID := msg.Notification.ChannelID
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		MessageID: &msgID,
		ChannelID: &channelID,
	})

	sc := logger.StartSpanFromTraceID(ctx, msg.Notification.TraceID, "worker.reconcile",
		trace.WithSpanKind(trace.SpanKindConsumer))
	defer sc.End()
	ctx = sc.Context()

	start := time.Now()
	err := w.processMessageSafe(ctx, msg)
	if err != nil {
		sc.RecordError(err)
		slog.ErrorContext(ctx, "message processing failed",
			"error", err,
			"attempt", msg.Attempt)
		w.handleFailedMessage(ctx, msg, err)
		return err
	}

	if ackErr := w.consumer.Ack(ctx, msg); ackErr != nil {
		// unacked messages are reclaimed; reconciliation is idempotent
		slog.WarnContext(ctx, "failed to ack message", "error", ackErr)
	}

	slog.DebugContext(ctx, "message processed", "duration_ms", time.Since(start).Milliseconds())
	return nil
}

func (w *Worker) processMessageSafe(ctx context.Context, msg queue.Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "panic recovered in message processing", "panic", r)
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	slog.InfoContext(ctx, "processing calendar notification",
		"resource_state", msg.Notification.ResourceState,
		"resource_id", msg.Notification.ResourceID,
		"message_number", msg.Notification.MessageNumber,
		"attempt", msg.Attempt)

	_, err = w.reconciler.Reconcile(ctx, msg.Notification)
	return err
}

func (w *Worker) handleFailedMessage(ctx context.Context, msg queue.Message, err error) {
	if permanent(err) || msg.Attempt >= w.cfg.MaxAttempts {
		slog.ErrorContext(ctx, "sending message to DLQ",
			"attempts", msg.Attempt,
			"permanent", permanent(err))
		if dlqErr := w.consumer.SendDLQ(ctx, msg, err.Error()); dlqErr != nil {
			slog.ErrorContext(ctx, "failed to send to DLQ", "error", dlqErr)
		}
		return
	}

	slog.WarnContext(ctx, "requeuing failed message", "attempt", msg.Attempt)
	if requeueErr := w.consumer.Requeue(ctx, msg, err.Error()); requeueErr != nil {
		slog.ErrorContext(ctx, "failed to requeue message", "error", requeueErr)
	}
}

// permanent reports errors a retry cannot fix.
func permanent(err error) bool {
	if errors.Is(err, calendar.ErrMissingAuthorization) {
		return true
	}
	var pe *calendar.ProviderError
	return errors.As(err, &pe) && !pe.Retryable
}
