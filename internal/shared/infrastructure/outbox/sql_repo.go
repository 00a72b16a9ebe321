package outbox

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/kafeel/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/kafeel/internal/shared/infrastructure/persistence"
)

// SQLRepository implements Repository on any database.Connection.
type SQLRepository struct {
	conn database.Connection
}

// NewSQLRepository creates an outbox repository.
func NewSQLRepository(conn database.Connection) *SQLRepository {
	return &SQLRepository{conn: conn}
}

func (r *SQLRepository) SaveBatch(ctx context.Context, msgs []*Message) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	for _, msg := range msgs {
		_, err := exec.Exec(ctx, `
			INSERT INTO outbox_messages (event_id, aggregate_type, routing_key, payload, created_at, retry_count)
			VALUES (?, ?, ?, ?, ?, 0)`,
			msg.EventID.String(),
			msg.AggregateType,
			msg.RoutingKey,
			string(msg.Payload),
			persistence.FormatTime(msg.CreatedAt),
		)
		if err != nil {
			return fmt.Errorf("insert outbox message %s: %w", msg.EventID, err)
		}
	}
	return nil
}

func (r *SQLRepository) GetUnpublished(ctx context.Context, now time.Time, limit int) ([]*Message, error) {
	rows, err := database.ExecutorFromContext(ctx, r.conn).Query(ctx, `
		SELECT event_id, aggregate_type, routing_key, payload, created_at,
		       next_retry_at, retry_count, last_error
		FROM outbox_messages
		WHERE published_at IS NULL
		  AND dead_lettered_at IS NULL
		  AND (next_retry_at IS NULL OR next_retry_at <= ?)
		ORDER BY created_at
		LIMIT ?`,
		persistence.FormatTime(now), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Message
	for rows.Next() {
		var (
			id, payload, createdAt string
			nextRetry, lastError   sql.NullString
			msg                    Message
		)
		if err := rows.Scan(&id, &msg.AggregateType, &msg.RoutingKey, &payload, &createdAt,
			&nextRetry, &msg.RetryCount, &lastError); err != nil {
			return nil, err
		}

		if msg.EventID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("outbox event id %q: %w", id, err)
		}
		if msg.CreatedAt, err = persistence.ParseTime(createdAt); err != nil {
			return nil, err
		}
		if msg.NextRetryAt, err = persistence.TimePtr(nextRetry); err != nil {
			return nil, err
		}
		if lastError.Valid {
			msg.LastError = &lastError.String
		}
		msg.Payload = []byte(payload)
		out = append(out, &msg)
	}
	return out, rows.Err()
}

func (r *SQLRepository) MarkPublished(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx,
		`UPDATE outbox_messages SET published_at = ? WHERE event_id = ?`,
		persistence.FormatTime(at), id.String())
	return err
}

func (r *SQLRepository) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string, nextRetryAt time.Time) error {
	_, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx, `
		UPDATE outbox_messages
		SET retry_count = retry_count + 1, last_error = ?, next_retry_at = ?
		WHERE event_id = ?`,
		errMsg, persistence.FormatTime(nextRetryAt), id.String())
	return err
}

func (r *SQLRepository) MarkDead(ctx context.Context, id uuid.UUID, reason string, at time.Time) error {
	_, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx, `
		UPDATE outbox_messages
		SET retry_count = retry_count + 1, last_error = ?, dead_lettered_at = ?, dead_letter_reason = ?
		WHERE event_id = ?`,
		reason, persistence.FormatTime(at), reason, id.String())
	return err
}

func (r *SQLRepository) DeleteOld(ctx context.Context, before time.Time) (int64, error) {
	res, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx,
		`DELETE FROM outbox_messages WHERE published_at IS NOT NULL AND published_at < ?`,
		persistence.FormatTime(before))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *SQLRepository) CountPending(ctx context.Context) (int, error) {
	var n int
	err := database.ExecutorFromContext(ctx, r.conn).QueryRow(ctx,
		`SELECT COUNT(*) FROM outbox_messages WHERE published_at IS NULL AND dead_lettered_at IS NULL`).Scan(&n)
	return n, err
}
