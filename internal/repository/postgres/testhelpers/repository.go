package testhelpers

import (
	"github.com/jmoiron/sqlx"
	"github.com/parking-aggregator/internal/domain/repository"
	"github.com/parking-aggregator/internal/repository/postgres"
	"go.uber.org/zap"
)

// NewDBForTest creates a postgres.DB with test database and logger
func NewDBForTest(db *sqlx.DB, logger *zap.Logger) *postgres.DB {
	return postgres.NewDBForTest(db, logger)
}

// NewParkingSiteRepositoryForTest creates a parking site repository with test database and logger
func NewParkingSiteRepositoryForTest(db *sqlx.DB, logger *zap.Logger) repository.ParkingSiteRepository {
	return postgres.NewParkingSiteRepository(NewDBForTest(db, logger))
}

// NewParkingSpotRepositoryForTest creates a parking spot repository with test database and logger
func NewParkingSpotRepositoryForTest(db *sqlx.DB, logger *zap.Logger) repository.ParkingSpotRepository {
	return postgres.NewParkingSpotRepository(NewDBForTest(db, logger))
}

// NewSourceRepositoryForTest creates a source repository with test database and logger
func NewSourceRepositoryForTest(db *sqlx.DB, logger *zap.Logger) repository.SourceRepository {
	return postgres.NewSourceRepository(NewDBForTest(db, logger))
}

// NewParkingSiteHistoryRepositoryForTest creates a parking site history repository with test database and logger
func NewParkingSiteHistoryRepositoryForTest(db *sqlx.DB, logger *zap.Logger) repository.ParkingSiteHistoryRepository {
	return postgres.NewParkingSiteHistoryRepository(NewDBForTest(db, logger))
}
