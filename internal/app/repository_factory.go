package app

import (
	"fmt"
	"time"

	gamificationCommands "github.com/felixgeelhaar/kafeel/internal/gamification/application/commands"
	gamificationPersistence "github.com/felixgeelhaar/kafeel/internal/gamification/infrastructure/persistence"
	insightsPersistence "github.com/felixgeelhaar/kafeel/internal/insights/infrastructure/persistence"
	"github.com/felixgeelhaar/kafeel/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/kafeel/internal/shared/infrastructure/outbox"
	trackingPersistence "github.com/felixgeelhaar/kafeel/internal/tracking/infrastructure/persistence"
)

// RepositoryFactory creates repositories on one connection. Every
// repository speaks the shared SQL dialect, so the driver only decides
// whether the factory can be built at all.
type RepositoryFactory struct {
	conn database.Connection
	loc  *time.Location
}

// NewRepositoryFactory creates a new repository factory. Day columns are
// interpreted in loc.
func NewRepositoryFactory(conn database.Connection, loc *time.Location) (*RepositoryFactory, error) {
	if conn == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	switch conn.Driver() {
	case database.DriverPostgres, database.DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported driver: %s", conn.Driver())
	}
	if loc == nil {
		loc = time.Local
	}
	return &RepositoryFactory{conn: conn, loc: loc}, nil
}

// Driver returns the backend the repositories run on.
func (f *RepositoryFactory) Driver() database.Driver {
	return f.conn.Driver()
}

// SessionRepository creates the activity session repository.
func (f *RepositoryFactory) SessionRepository() *trackingPersistence.SQLSessionRepository {
	return trackingPersistence.NewSQLSessionRepository(f.conn)
}

// CategoryRepository creates the category mapping repository.
func (f *RepositoryFactory) CategoryRepository() *trackingPersistence.SQLCategoryRepository {
	return trackingPersistence.NewSQLCategoryRepository(f.conn)
}

// DailyScoreRepository creates the daily score repository.
func (f *RepositoryFactory) DailyScoreRepository() *insightsPersistence.SQLDailyScoreRepository {
	return insightsPersistence.NewSQLDailyScoreRepository(f.conn, f.loc)
}

// GamificationStores creates the streak, profile, achievement and record
// repositories.
func (f *RepositoryFactory) GamificationStores() gamificationCommands.Stores {
	return gamificationCommands.Stores{
		Streaks:      gamificationPersistence.NewSQLStreakRepository(f.conn, f.loc),
		Profiles:     gamificationPersistence.NewSQLProfileRepository(f.conn),
		Achievements: gamificationPersistence.NewSQLAchievementRepository(f.conn),
		Records:      gamificationPersistence.NewSQLRecordRepository(f.conn),
	}
}

// OutboxRepository creates the outbox repository.
func (f *RepositoryFactory) OutboxRepository() *outbox.SQLRepository {
	return outbox.NewSQLRepository(f.conn)
}

// UnitOfWork creates a unit of work on the connection.
func (f *RepositoryFactory) UnitOfWork() *database.GenericUnitOfWork {
	return database.NewUnitOfWork(f.conn)
}
