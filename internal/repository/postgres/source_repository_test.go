package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/parking-aggregator/internal/domain"
	"github.com/parking-aggregator/internal/domain/repository"
	"github.com/parking-aggregator/internal/pkg/errors"
	"github.com/parking-aggregator/internal/repository/postgres/testhelpers"
)

type SourceRepositoryTestSuite struct {
	suite.Suite
	testDB *testhelpers.TestDB
	repo   repository.SourceRepository
	ctx    context.Context
}

func (s *SourceRepositoryTestSuite) SetupSuite() {
	s.testDB = testhelpers.SetupTestDB(s.T())

	_, err := testhelpers.ApplyMigrations(s.testDB.DB.DB, "../../../migrations")
	s.Require().NoError(err, "Failed to apply migrations")

	s.repo = testhelpers.NewSourceRepositoryForTest(s.testDB.DB, s.testDB.Logger)
}

func (s *SourceRepositoryTestSuite) TearDownSuite() {
	if s.testDB != nil {
		s.testDB.Close()
	}
}

func (s *SourceRepositoryTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.Require().NoError(s.testDB.Cleanup(s.ctx))
}

func (s *SourceRepositoryTestSuite) TestCreateAndUpdate() {
	source := domain.NewSource(domain.SourceInfo{UID: "city-garages", Name: "City Garages"})
	s.Require().NoError(s.repo.Create(s.ctx, source))
	s.NotZero(source.ID)

	source.StaticStatus = domain.SourceStatusFailed
	source.StaticParkingSiteErrorCount = 3
	s.Require().NoError(s.repo.Update(s.ctx, source))

	fetched, err := s.repo.GetByUID(s.ctx, "city-garages")
	s.Require().NoError(err)
	s.Equal(domain.SourceStatusFailed, fetched.StaticStatus)
	s.Equal(domain.SourceStatusProvisioned, fetched.RealtimeStatus)
	s.Equal(3, fetched.StaticParkingSiteErrorCount)
}

func (s *SourceRepositoryTestSuite) TestCreate_DuplicateUID() {
	s.Require().NoError(s.repo.Create(s.ctx, domain.NewSource(domain.SourceInfo{UID: "a", Name: "A"})))

	err := s.repo.Create(s.ctx, domain.NewSource(domain.SourceInfo{UID: "a", Name: "A"}))

	s.True(errors.Is(err, errors.ErrConflict))
}

func (s *SourceRepositoryTestSuite) TestGetByUID_NotFound() {
	_, err := s.repo.GetByUID(s.ctx, "missing")

	s.True(errors.Is(err, errors.ErrSourceNotFound))
}

func TestSourceRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(SourceRepositoryTestSuite))
}
