package events

import (
	"context"

	"fintrack/internal/apperr"
	applog "fintrack/internal/log"
)

// Handler processes one change.
type Handler func(ctx context.Context, c Change) error

// Outcome tells the consumer how to settle a delivery.
type Outcome int

const (
	Ack Outcome = iota
	Reject
	Requeue
)

// Dispatch decodes body and runs h. Undecodable messages are rejected, handler
// failures requeued.
func Dispatch(ctx context.Context, body []byte, h Handler, logger *applog.Logger) Outcome {
	c, err := ParseChange(body)
	if err != nil {
		logger.WarnContext(ctx, "rejecting malformed change", applog.FieldError, err)
		return Reject
	}
	if err := h(ctx, c); err != nil {
		logger.ErrorContext(ctx, "handle change", "entity", c.Entity, "id", c.ID, applog.FieldError, err)
		return Requeue
	}
	return Ack
}

// Syncer records that a row reached its consumers.
type Syncer interface {
	MarkSynced(ctx context.Context, entity string, id uint) error
}

// Worker marks rows as synced once their change notification is consumed.
type Worker struct {
	store Syncer
	log   *applog.Logger
}

func NewWorker(store Syncer, logger *applog.Logger) *Worker {
	return &Worker{store: store, log: logger.WithComponent(applog.ComponentEvents)}
}

// Handle marks the changed row synced. A row that no longer exists is
// acknowledged so the message is not redelivered forever.
func (w *Worker) Handle(ctx context.Context, c Change) error {
	err := w.store.MarkSynced(ctx, c.Entity, c.ID)
	switch {
	case err == nil:
		w.log.InfoContext(ctx, "row synced", "entity", c.Entity, "id", c.ID, "action", c.Action)
		return nil
	case apperr.IsKind(err, apperr.KindNotFound), apperr.IsKind(err, apperr.KindInvalid):
		w.log.WarnContext(ctx, "skipping change", "entity", c.Entity, "id", c.ID, applog.FieldError, err)
		return nil
	default:
		return err
	}
}
