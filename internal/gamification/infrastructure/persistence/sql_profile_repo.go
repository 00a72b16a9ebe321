package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/kafeel/internal/gamification/domain"
	"github.com/felixgeelhaar/kafeel/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/kafeel/internal/shared/infrastructure/persistence"
)

// SQLProfileRepository implements domain.ProfileRepository.
type SQLProfileRepository struct {
	conn database.Connection
}

// NewSQLProfileRepository creates a new profile repository.
func NewSQLProfileRepository(conn database.Connection) *SQLProfileRepository {
	return &SQLProfileRepository{conn: conn}
}

func (r *SQLProfileRepository) GetOrCreate(ctx context.Context) (*domain.UserProfile, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	_, err := exec.Exec(ctx, `
		INSERT INTO user_profiles (id, updated_at) VALUES (?, ?)
		ON CONFLICT(id) DO NOTHING`,
		singletonID,
		persistence.FormatTime(time.Now()),
	)
	if err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}

	var (
		p       domain.UserProfile
		updated string
	)
	err = exec.QueryRow(ctx,
		`SELECT total_xp, updated_at FROM user_profiles WHERE id = ?`, singletonID,
	).Scan(&p.TotalXP, &updated)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if p.UpdatedAt, err = persistence.ParseTime(updated); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *SQLProfileRepository) Save(ctx context.Context, p *domain.UserProfile) error {
	_, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx,
		`UPDATE user_profiles SET total_xp = ?, updated_at = ? WHERE id = ?`,
		p.TotalXP,
		persistence.FormatTime(p.UpdatedAt),
		singletonID,
	)
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}
