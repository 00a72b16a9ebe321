package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/kafeel/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/kafeel/internal/shared/infrastructure/persistence"
	"github.com/felixgeelhaar/kafeel/internal/tracking/domain"
)

// SQLSessionRepository implements domain.SessionRepository.
type SQLSessionRepository struct {
	conn database.Connection
}

// NewSQLSessionRepository creates a new session repository.
func NewSQLSessionRepository(conn database.Connection) *SQLSessionRepository {
	return &SQLSessionRepository{conn: conn}
}

// Save inserts a finalized session. Saving the same id twice replaces the
// stored bounds.
func (r *SQLSessionRepository) Save(ctx context.Context, s *domain.ActivitySession) error {
	query := `
		INSERT INTO activity_sessions (
			id, app_id, display_name, window_title, start_time, end_time, duration_seconds
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			end_time = excluded.end_time,
			duration_seconds = excluded.duration_seconds
	`

	_, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx, query,
		s.ID.String(),
		s.AppID,
		s.DisplayName,
		persistence.NullString(s.WindowTitle),
		persistence.FormatTime(s.Start),
		persistence.FormatTime(s.End),
		s.Duration().Seconds(),
	)
	if err != nil {
		return fmt.Errorf("save session %s: %w", s.ID, err)
	}
	return nil
}

// FindOverlapping returns sessions intersecting [from, to).
func (r *SQLSessionRepository) FindOverlapping(ctx context.Context, from, to time.Time) ([]*domain.ActivitySession, error) {
	query := `
		SELECT id, app_id, display_name, window_title, start_time, end_time
		FROM activity_sessions
		WHERE start_time < ? AND end_time > ?
		ORDER BY start_time
	`

	rows, err := database.ExecutorFromContext(ctx, r.conn).Query(ctx, query,
		persistence.FormatTime(to),
		persistence.FormatTime(from),
	)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*domain.ActivitySession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func scanSession(rows database.Rows) (*domain.ActivitySession, error) {
	var (
		idStr, startStr, endStr string
		windowTitle             sql.NullString
		s                       domain.ActivitySession
	)

	if err := rows.Scan(&idStr, &s.AppID, &s.DisplayName, &windowTitle, &startStr, &endStr); err != nil {
		return nil, fmt.Errorf("scan session: %w", err)
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("parse session id: %w", err)
	}
	s.ID = id
	s.WindowTitle = windowTitle.String

	if s.Start, err = persistence.ParseTime(startStr); err != nil {
		return nil, err
	}
	if s.End, err = persistence.ParseTime(endStr); err != nil {
		return nil, err
	}
	return &s, nil
}
