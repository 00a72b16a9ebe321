package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/felixgeelhaar/kafeel/internal/gamification/domain"
	"github.com/felixgeelhaar/kafeel/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/kafeel/internal/shared/infrastructure/persistence"
)

const recordColumns = `category, value, previous_value, improvement_count, achieved_at, detail`

// SQLRecordRepository implements domain.RecordRepository.
type SQLRecordRepository struct {
	conn database.Connection
}

// NewSQLRecordRepository creates a new personal record repository.
func NewSQLRecordRepository(conn database.Connection) *SQLRecordRepository {
	return &SQLRecordRepository{conn: conn}
}

func (r *SQLRecordRepository) GetOrCreate(ctx context.Context, category domain.RecordCategory) (*domain.PersonalRecord, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	_, err := exec.Exec(ctx, `
		INSERT INTO personal_records (category) VALUES (?)
		ON CONFLICT(category) DO NOTHING`,
		string(category),
	)
	if err != nil {
		return nil, fmt.Errorf("create record %s: %w", category, err)
	}

	row := exec.QueryRow(ctx,
		`SELECT `+recordColumns+` FROM personal_records WHERE category = ?`, string(category))
	rec, err := scanRecord(row)
	if err != nil {
		return nil, fmt.Errorf("load record %s: %w", category, err)
	}
	return rec, nil
}

func (r *SQLRecordRepository) FindAll(ctx context.Context) ([]*domain.PersonalRecord, error) {
	rows, err := database.ExecutorFromContext(ctx, r.conn).Query(ctx,
		`SELECT `+recordColumns+` FROM personal_records ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var out []*domain.PersonalRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *SQLRecordRepository) Save(ctx context.Context, rec *domain.PersonalRecord) error {
	var previous sql.NullFloat64
	if rec.PreviousValue != nil {
		previous = sql.NullFloat64{Float64: *rec.PreviousValue, Valid: true}
	}

	_, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx, `
		INSERT INTO personal_records (`+recordColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(category) DO UPDATE SET
			value = excluded.value,
			previous_value = excluded.previous_value,
			improvement_count = excluded.improvement_count,
			achieved_at = excluded.achieved_at,
			detail = excluded.detail`,
		string(rec.Category),
		rec.Value,
		previous,
		rec.ImprovementCount,
		persistence.NullTime(rec.AchievedAt),
		persistence.NullString(rec.Detail),
	)
	if err != nil {
		return fmt.Errorf("save record %s: %w", rec.Category, err)
	}
	return nil
}

func scanRecord(row database.Row) (*domain.PersonalRecord, error) {
	var (
		rec        domain.PersonalRecord
		category   string
		previous   sql.NullFloat64
		achievedAt sql.NullString
		detail     sql.NullString
	)
	err := row.Scan(&category, &rec.Value, &previous, &rec.ImprovementCount, &achievedAt, &detail)
	if err != nil {
		return nil, err
	}

	rec.Category = domain.RecordCategory(category)
	if previous.Valid {
		v := previous.Float64
		rec.PreviousValue = &v
	}
	if rec.AchievedAt, err = persistence.TimePtr(achievedAt); err != nil {
		return nil, err
	}
	rec.Detail = detail.String
	return &rec, nil
}
