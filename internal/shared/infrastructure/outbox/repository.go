package outbox

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/kafeel/internal/shared/domain"
)

// Repository persists outbox messages.
type Repository interface {
	// SaveBatch stores messages using the transaction in ctx, if any.
	SaveBatch(ctx context.Context, msgs []*Message) error

	// GetUnpublished returns messages that are neither published nor dead
	// and whose retry time has passed, oldest first.
	GetUnpublished(ctx context.Context, now time.Time, limit int) ([]*Message, error)

	MarkPublished(ctx context.Context, id uuid.UUID, at time.Time) error
	MarkFailed(ctx context.Context, id uuid.UUID, errMsg string, nextRetryAt time.Time) error
	MarkDead(ctx context.Context, id uuid.UUID, reason string, at time.Time) error

	// DeleteOld removes published messages older than before.
	DeleteOld(ctx context.Context, before time.Time) (int64, error)

	// CountPending returns how many messages still await publishing.
	CountPending(ctx context.Context) (int, error)
}

// Recorder appends domain events to the outbox. Application services call
// it inside their unit of work.
type Recorder struct {
	repo Repository
}

// NewRecorder creates a Recorder.
func NewRecorder(repo Repository) *Recorder {
	return &Recorder{repo: repo}
}

// Record serializes and stores events. Nil events are skipped.
func (r *Recorder) Record(ctx context.Context, events ...domain.DomainEvent) error {
	msgs := make([]*Message, 0, len(events))
	for _, event := range events {
		if event == nil {
			continue
		}
		msg, err := NewMessage(event)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}
	if len(msgs) == 0 {
		return nil
	}
	return r.repo.SaveBatch(ctx, msgs)
}
