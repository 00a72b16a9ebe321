package persistence

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/kafeel/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/kafeel/internal/shared/infrastructure/persistence"
	"github.com/felixgeelhaar/kafeel/internal/tracking/domain"
)

// SQLCategoryRepository implements domain.CategoryRepository.
type SQLCategoryRepository struct {
	conn database.Connection
}

// NewSQLCategoryRepository creates a new category repository.
func NewSQLCategoryRepository(conn database.Connection) *SQLCategoryRepository {
	return &SQLCategoryRepository{conn: conn}
}

// FindByAppID returns the mapping for appID, or nil if none exists.
func (r *SQLCategoryRepository) FindByAppID(ctx context.Context, appID string) (*domain.CategoryMapping, error) {
	row := database.ExecutorFromContext(ctx, r.conn).QueryRow(ctx, `
		SELECT app_id, category, is_custom, updated_at
		FROM category_mappings
		WHERE app_id = ?`, appID)

	m, err := scanMapping(row)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find category for %s: %w", appID, err)
	}
	return m, nil
}

// Save creates or replaces a mapping.
func (r *SQLCategoryRepository) Save(ctx context.Context, m *domain.CategoryMapping) error {
	_, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx, `
		INSERT INTO category_mappings (app_id, category, is_custom, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(app_id) DO UPDATE SET
			category = excluded.category,
			is_custom = excluded.is_custom,
			updated_at = excluded.updated_at`,
		m.AppID,
		string(m.Category),
		persistence.BoolInt(m.IsCustom),
		persistence.FormatTime(m.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("save category for %s: %w", m.AppID, err)
	}
	return nil
}

// SaveIfAbsent stores m unless the app is already mapped.
func (r *SQLCategoryRepository) SaveIfAbsent(ctx context.Context, m *domain.CategoryMapping) (bool, error) {
	res, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx, `
		INSERT INTO category_mappings (app_id, category, is_custom, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(app_id) DO NOTHING`,
		m.AppID,
		string(m.Category),
		persistence.BoolInt(m.IsCustom),
		persistence.FormatTime(m.UpdatedAt),
	)
	if err != nil {
		return false, fmt.Errorf("seed category for %s: %w", m.AppID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// List returns every mapping ordered by app id.
func (r *SQLCategoryRepository) List(ctx context.Context) ([]*domain.CategoryMapping, error) {
	rows, err := database.ExecutorFromContext(ctx, r.conn).Query(ctx, `
		SELECT app_id, category, is_custom, updated_at
		FROM category_mappings
		ORDER BY app_id`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var mappings []*domain.CategoryMapping
	for rows.Next() {
		m, err := scanMapping(rows)
		if err != nil {
			return nil, err
		}
		mappings = append(mappings, m)
	}
	return mappings, rows.Err()
}

func scanMapping(row database.Row) (*domain.CategoryMapping, error) {
	var (
		m          domain.CategoryMapping
		category   string
		isCustom   int
		updatedStr string
	)
	if err := row.Scan(&m.AppID, &category, &isCustom, &updatedStr); err != nil {
		return nil, err
	}

	m.Category = domain.Category(category)
	m.IsCustom = isCustom != 0

	updated, err := persistence.ParseTime(updatedStr)
	if err != nil {
		return nil, err
	}
	m.UpdatedAt = updated
	return &m, nil
}
