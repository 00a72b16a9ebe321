package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/felixgeelhaar/kafeel/internal/insights/domain"
	"github.com/felixgeelhaar/kafeel/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/kafeel/internal/shared/infrastructure/persistence"
)

const dailyScoreColumns = `
	day, focus_score, productive_seconds, neutral_seconds, distracting_seconds,
	xp_earned, is_productive, peak_hour, updated_at`

// SQLDailyScoreRepository implements domain.DailyScoreRepository.
type SQLDailyScoreRepository struct {
	conn database.Connection
	loc  *time.Location
}

// NewSQLDailyScoreRepository creates a repository whose days are local to loc.
func NewSQLDailyScoreRepository(conn database.Connection, loc *time.Location) *SQLDailyScoreRepository {
	if loc == nil {
		loc = time.Local
	}
	return &SQLDailyScoreRepository{conn: conn, loc: loc}
}

func (r *SQLDailyScoreRepository) FindByDay(ctx context.Context, day time.Time) (*domain.DailyScore, error) {
	row := database.ExecutorFromContext(ctx, r.conn).QueryRow(ctx,
		`SELECT `+dailyScoreColumns+` FROM daily_scores WHERE day = ?`,
		r.dayKey(day),
	)

	score, err := r.scan(row)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find daily score: %w", err)
	}
	return score, nil
}

func (r *SQLDailyScoreRepository) GetOrCreate(ctx context.Context, day time.Time) (*domain.DailyScore, error) {
	_, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx, `
		INSERT INTO daily_scores (day, updated_at)
		VALUES (?, ?)
		ON CONFLICT(day) DO NOTHING`,
		r.dayKey(day),
		persistence.FormatTime(time.Now()),
	)
	if err != nil {
		return nil, fmt.Errorf("create daily score: %w", err)
	}

	score, err := r.FindByDay(ctx, day)
	if err != nil {
		return nil, err
	}
	if score == nil {
		return nil, fmt.Errorf("create daily score: %w", database.ErrNoRows)
	}
	return score, nil
}

func (r *SQLDailyScoreRepository) Save(ctx context.Context, s *domain.DailyScore) error {
	var peak sql.NullInt64
	if s.PeakHour != nil {
		peak = sql.NullInt64{Int64: int64(*s.PeakHour), Valid: true}
	}

	_, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx, `
		INSERT INTO daily_scores (`+dailyScoreColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(day) DO UPDATE SET
			focus_score = excluded.focus_score,
			productive_seconds = excluded.productive_seconds,
			neutral_seconds = excluded.neutral_seconds,
			distracting_seconds = excluded.distracting_seconds,
			xp_earned = excluded.xp_earned,
			is_productive = excluded.is_productive,
			peak_hour = excluded.peak_hour,
			updated_at = excluded.updated_at`,
		r.dayKey(s.Day),
		s.FocusScore,
		s.ProductiveSeconds,
		s.NeutralSeconds,
		s.DistractingSeconds,
		s.XPEarned,
		persistence.BoolInt(s.IsProductive),
		peak,
		persistence.FormatTime(s.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("save daily score: %w", err)
	}
	return nil
}

func (r *SQLDailyScoreRepository) FindRange(ctx context.Context, first, last time.Time) ([]*domain.DailyScore, error) {
	rows, err := database.ExecutorFromContext(ctx, r.conn).Query(ctx,
		`SELECT `+dailyScoreColumns+` FROM daily_scores WHERE day >= ? AND day <= ? ORDER BY day`,
		r.dayKey(first),
		r.dayKey(last),
	)
	if err != nil {
		return nil, fmt.Errorf("query daily scores: %w", err)
	}
	defer rows.Close()

	var scores []*domain.DailyScore
	for rows.Next() {
		s, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		scores = append(scores, s)
	}
	return scores, rows.Err()
}

func (r *SQLDailyScoreRepository) FirstDay(ctx context.Context) (*time.Time, error) {
	var first sql.NullString
	err := database.ExecutorFromContext(ctx, r.conn).QueryRow(ctx,
		`SELECT MIN(day) FROM daily_scores`,
	).Scan(&first)
	if err != nil {
		return nil, fmt.Errorf("find first day: %w", err)
	}
	return persistence.DayPtr(first, r.loc)
}

func (r *SQLDailyScoreRepository) dayKey(t time.Time) string {
	return persistence.FormatDay(t.In(r.loc))
}

func (r *SQLDailyScoreRepository) scan(row database.Row) (*domain.DailyScore, error) {
	var (
		s            domain.DailyScore
		dayStr       string
		isProductive int
		peak         sql.NullInt64
		updatedStr   string
	)

	err := row.Scan(
		&dayStr,
		&s.FocusScore,
		&s.ProductiveSeconds,
		&s.NeutralSeconds,
		&s.DistractingSeconds,
		&s.XPEarned,
		&isProductive,
		&peak,
		&updatedStr,
	)
	if err != nil {
		return nil, err
	}

	if s.Day, err = persistence.ParseDay(dayStr, r.loc); err != nil {
		return nil, err
	}
	if s.UpdatedAt, err = persistence.ParseTime(updatedStr); err != nil {
		return nil, err
	}
	s.IsProductive = isProductive != 0
	if peak.Valid {
		hour := int(peak.Int64)
		s.PeakHour = &hour
	}
	return &s, nil
}
