package audit

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

const drainTimeout = 5 * time.Second

// ErrQueueFull is returned by a Queue when the worker cannot keep up.
var ErrQueueFull = errors.New("audit queue full")

// Queue is a non-blocking Sink that hands events to a Worker.
type Queue struct {
	inbox chan Event
}

func NewQueue(size int) *Queue {
	if size <= 0 {
		size = 1
	}
	return &Queue{inbox: make(chan Event, size)}
}

func (q *Queue) Append(_ context.Context, event Event) error {
	select {
	case q.inbox <- event:
		return nil
	default:
		return ErrQueueFull
	}
}

// Worker drains a Queue into a slower sink such as Kafka. Delivery failures
// are logged and do not stop the worker.
type Worker struct {
	sink   Sink
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(sink Sink, queue *Queue, logger *slog.Logger) *Worker {
	return &Worker{sink: sink, inbox: queue.inbox, logger: logger}
}

// Run delivers events until ctx is done. Events still queued at shutdown
// are delivered on a best-effort basis within drainTimeout.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), drainTimeout)
			w.drain(drainCtx)
			cancel()
			return ctx.Err()
		case event := <-w.inbox:
			w.deliver(ctx, event)
		}
	}
}

func (w *Worker) drain(ctx context.Context) {
	for {
		select {
		case event := <-w.inbox:
			w.deliver(ctx, event)
		default:
			return
		}
	}
}

func (w *Worker) deliver(ctx context.Context, event Event) {
	if err := w.sink.Append(ctx, event); err != nil && w.logger != nil {
		w.logger.ErrorContext(ctx, "failed to deliver audit event",
			"event_id", event.ID.String(),
			"action", string(event.Action),
			"error", err,
		)
	}
}
