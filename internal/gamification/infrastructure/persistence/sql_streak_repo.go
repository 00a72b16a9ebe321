// Package persistence implements the gamification repositories on SQL.
// Streak and profile are single-row tables keyed by id 1.
package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/felixgeelhaar/kafeel/internal/gamification/domain"
	"github.com/felixgeelhaar/kafeel/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/kafeel/internal/shared/infrastructure/persistence"
)

const singletonID = 1

// SQLStreakRepository implements domain.StreakRepository.
type SQLStreakRepository struct {
	conn database.Connection
	loc  *time.Location
}

// NewSQLStreakRepository creates a repository whose days are local to loc.
func NewSQLStreakRepository(conn database.Connection, loc *time.Location) *SQLStreakRepository {
	if loc == nil {
		loc = time.Local
	}
	return &SQLStreakRepository{conn: conn, loc: loc}
}

func (r *SQLStreakRepository) GetOrCreate(ctx context.Context) (*domain.Streak, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	_, err := exec.Exec(ctx, `
		INSERT INTO streaks (id, updated_at) VALUES (?, ?)
		ON CONFLICT(id) DO NOTHING`,
		singletonID,
		persistence.FormatTime(time.Now()),
	)
	if err != nil {
		return nil, fmt.Errorf("create streak: %w", err)
	}

	row := exec.QueryRow(ctx, `
		SELECT current_days, longest_days, start_date, last_productive_date, shields,
			milestone_7, milestone_30, milestone_100, is_active, evaluated_through, updated_at
		FROM streaks WHERE id = ?`, singletonID)

	var (
		s                                domain.Streak
		start, lastProductive, evaluated sql.NullString
		m7, m30, m100, active            int
		updated                          string
	)
	err = row.Scan(
		&s.CurrentDays, &s.LongestDays, &start, &lastProductive, &s.Shields,
		&m7, &m30, &m100, &active, &evaluated, &updated,
	)
	if err != nil {
		return nil, fmt.Errorf("load streak: %w", err)
	}

	if s.StartDate, err = persistence.DayPtr(start, r.loc); err != nil {
		return nil, err
	}
	if s.LastProductiveDate, err = persistence.DayPtr(lastProductive, r.loc); err != nil {
		return nil, err
	}
	if s.EvaluatedThrough, err = persistence.DayPtr(evaluated, r.loc); err != nil {
		return nil, err
	}
	if s.UpdatedAt, err = persistence.ParseTime(updated); err != nil {
		return nil, err
	}
	s.Milestone7 = m7 != 0
	s.Milestone30 = m30 != 0
	s.Milestone100 = m100 != 0
	s.IsActive = active != 0
	return &s, nil
}

func (r *SQLStreakRepository) Save(ctx context.Context, s *domain.Streak) error {
	_, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx, `
		UPDATE streaks SET
			current_days = ?,
			longest_days = ?,
			start_date = ?,
			last_productive_date = ?,
			shields = ?,
			milestone_7 = ?,
			milestone_30 = ?,
			milestone_100 = ?,
			is_active = ?,
			evaluated_through = ?,
			updated_at = ?
		WHERE id = ?`,
		s.CurrentDays,
		s.LongestDays,
		r.nullDay(s.StartDate),
		r.nullDay(s.LastProductiveDate),
		s.Shields,
		persistence.BoolInt(s.Milestone7),
		persistence.BoolInt(s.Milestone30),
		persistence.BoolInt(s.Milestone100),
		persistence.BoolInt(s.IsActive),
		r.nullDay(s.EvaluatedThrough),
		persistence.FormatTime(s.UpdatedAt),
		singletonID,
	)
	if err != nil {
		return fmt.Errorf("save streak: %w", err)
	}
	return nil
}

func (r *SQLStreakRepository) nullDay(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	local := t.In(r.loc)
	return persistence.NullDay(&local)
}
