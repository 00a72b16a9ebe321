package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/felixgeelhaar/kafeel/internal/gamification/domain"
	"github.com/felixgeelhaar/kafeel/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/kafeel/internal/shared/infrastructure/persistence"
)

// SQLAchievementRepository implements domain.AchievementRepository.
type SQLAchievementRepository struct {
	conn database.Connection
}

// NewSQLAchievementRepository creates a new achievement repository.
func NewSQLAchievementRepository(conn database.Connection) *SQLAchievementRepository {
	return &SQLAchievementRepository{conn: conn}
}

// Seed inserts locked rows for achievements that have none. Existing rows,
// unlocked or not, are left alone.
func (r *SQLAchievementRepository) Seed(ctx context.Context, achievements []*domain.Achievement) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	for _, a := range achievements {
		_, err := exec.Exec(ctx, `
			INSERT INTO achievements (type, unlocked, xp_reward) VALUES (?, 0, ?)
			ON CONFLICT(type) DO NOTHING`,
			string(a.Type),
			a.XPReward,
		)
		if err != nil {
			return fmt.Errorf("seed achievement %s: %w", a.Type, err)
		}
	}
	return nil
}

func (r *SQLAchievementRepository) FindAll(ctx context.Context) ([]*domain.Achievement, error) {
	rows, err := database.ExecutorFromContext(ctx, r.conn).Query(ctx,
		`SELECT type, unlocked, unlocked_at, xp_reward FROM achievements ORDER BY type`)
	if err != nil {
		return nil, fmt.Errorf("query achievements: %w", err)
	}
	defer rows.Close()

	var out []*domain.Achievement
	for rows.Next() {
		var (
			a          domain.Achievement
			typ        string
			unlocked   int
			unlockedAt sql.NullString
		)
		if err := rows.Scan(&typ, &unlocked, &unlockedAt, &a.XPReward); err != nil {
			return nil, err
		}
		a.Type = domain.AchievementType(typ)
		a.Unlocked = unlocked != 0
		if a.UnlockedAt, err = persistence.TimePtr(unlockedAt); err != nil {
			return nil, err
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

func (r *SQLAchievementRepository) Save(ctx context.Context, a *domain.Achievement) error {
	_, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx, `
		INSERT INTO achievements (type, unlocked, unlocked_at, xp_reward)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(type) DO UPDATE SET
			unlocked = excluded.unlocked,
			unlocked_at = excluded.unlocked_at,
			xp_reward = excluded.xp_reward`,
		string(a.Type),
		persistence.BoolInt(a.Unlocked),
		persistence.NullTime(a.UnlockedAt),
		a.XPReward,
	)
	if err != nil {
		return fmt.Errorf("save achievement %s: %w", a.Type, err)
	}
	return nil
}
