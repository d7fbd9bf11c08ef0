package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/parking-aggregator/internal/domain"
	"github.com/parking-aggregator/internal/domain/repository"
	"github.com/parking-aggregator/internal/pkg/errors"
	"github.com/parking-aggregator/internal/repository/postgres/testhelpers"
)

// ParkingSiteRepositoryTestSuite tests ParkingSiteRepository and history against PostGIS
type ParkingSiteRepositoryTestSuite struct {
	suite.Suite
	testDB  *testhelpers.TestDB
	repo    repository.ParkingSiteRepository
	history repository.ParkingSiteHistoryRepository
	ctx     context.Context
	sourceA int64
	sourceB int64
}

func (s *ParkingSiteRepositoryTestSuite) SetupSuite() {
	s.testDB = testhelpers.SetupTestDB(s.T())

	_, err := testhelpers.ApplyMigrations(s.testDB.DB.DB, "../../../migrations")
	s.Require().NoError(err, "Failed to apply migrations")

	s.repo = testhelpers.NewParkingSiteRepositoryForTest(s.testDB.DB, s.testDB.Logger)
	s.history = testhelpers.NewParkingSiteHistoryRepositoryForTest(s.testDB.DB, s.testDB.Logger)
}

func (s *ParkingSiteRepositoryTestSuite) TearDownSuite() {
	if s.testDB != nil {
		s.testDB.Close()
	}
}

func (s *ParkingSiteRepositoryTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.Require().NoError(s.testDB.Cleanup(s.ctx))

	var err error
	s.sourceA, err = testhelpers.InsertSource(s.testDB.DB.DB, "source-a")
	s.Require().NoError(err)
	s.sourceB, err = testhelpers.InsertSource(s.testDB.DB.DB, "source-b")
	s.Require().NoError(err)
}

func (s *ParkingSiteRepositoryTestSuite) newSite(sourceID int64, uid string) *domain.ParkingSite {
	capacity := 100
	free := 40
	updated := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	return &domain.ParkingSite{
		SourceID:               sourceID,
		OriginalUID:            uid,
		Name:                   "Parkhaus " + uid,
		Type:                   domain.ParkingSiteTypeCarPark,
		Purpose:                domain.PurposeCar,
		Lat:                    decimal.RequireFromString("48.1371000"),
		Lon:                    decimal.RequireFromString("11.5754000"),
		Capacities:             domain.Capacities{Total: &capacity},
		RealtimeFreeCapacities: domain.Capacities{Total: &free},
		RealtimeOpeningStatus:  domain.OpeningStatusOpen,
		StaticDataUpdatedAt:    &updated,
		ExternalIdentifiers: []domain.ExternalIdentifier{
			{Type: domain.ExternalIdentifierTypeOSM, Value: "way/1"},
		},
		Tags: []domain.Tag{{Value: "covered"}, {Value: "24h"}},
	}
}

// ============================================================================
// Save / Fetch Tests
// ============================================================================

func (s *ParkingSiteRepositoryTestSuite) TestSave_InsertAndFetch() {
	site := s.newSite(s.sourceA, "p1")

	s.Require().NoError(s.repo.Save(s.ctx, site))
	s.NotZero(site.ID)
	s.NotZero(site.Tags[0].ID)

	fetched, err := s.repo.FetchBySourceAndOriginalUID(s.ctx, s.sourceA, "p1")
	s.Require().NoError(err)
	s.Equal(site.ID, fetched.ID)
	s.Equal("Parkhaus p1", fetched.Name)
	s.True(site.Lat.Equal(fetched.Lat))
	s.Require().NotNil(fetched.Capacities.Total)
	s.Equal(100, *fetched.Capacities.Total)
	s.Equal(40, *fetched.RealtimeFreeCapacities.Total)
	s.Nil(fetched.Capacities.Bus)
	s.Len(fetched.Tags, 2)
	s.Equal("24h", fetched.Tags[1].Value)
	s.Len(fetched.ExternalIdentifiers, 1)
}

func (s *ParkingSiteRepositoryTestSuite) TestSave_ReconcilesChildrenByPosition() {
	site := s.newSite(s.sourceA, "p1")
	s.Require().NoError(s.repo.Save(s.ctx, site))
	firstTagID := site.Tags[0].ID

	site.Tags = site.Tags[:1]
	site.Tags[0].Value = "open-air"
	s.Require().NoError(s.repo.Save(s.ctx, site))

	fetched, err := s.repo.FetchBySourceAndOriginalUID(s.ctx, s.sourceA, "p1")
	s.Require().NoError(err)
	s.Require().Len(fetched.Tags, 1)
	s.Equal(firstTagID, fetched.Tags[0].ID)
	s.Equal("open-air", fetched.Tags[0].Value)
}

func (s *ParkingSiteRepositoryTestSuite) TestSave_Conflict() {
	s.Require().NoError(s.repo.Save(s.ctx, s.newSite(s.sourceA, "p1")))

	err := s.repo.Save(s.ctx, s.newSite(s.sourceA, "p1"))

	s.True(errors.Is(err, errors.ErrConflict))
}

func (s *ParkingSiteRepositoryTestSuite) TestFetchBySourceAndOriginalUID_NotFound() {
	_, err := s.repo.FetchBySourceAndOriginalUID(s.ctx, s.sourceA, "missing")

	s.True(errors.Is(err, errors.ErrNotFound))
}

// ============================================================================
// Duplicate pointer Tests
// ============================================================================

func (s *ParkingSiteRepositoryTestSuite) TestDuplicatePointer_SetResetAndDelete() {
	keep := s.newSite(s.sourceA, "p1")
	dup := s.newSite(s.sourceB, "p2")
	s.Require().NoError(s.repo.Save(s.ctx, keep))
	s.Require().NoError(s.repo.Save(s.ctx, dup))

	s.Require().NoError(s.repo.SetDuplicateOf(s.ctx, dup.ID, &keep.ID))
	sites, err := s.repo.FetchByIDs(s.ctx, []int64{dup.ID})
	s.Require().NoError(err)
	s.Equal(keep.ID, *sites[0].DuplicateOfParkingSiteID)

	affected, err := s.repo.ResetDuplicateOf(s.ctx, domain.LocationFilter{SourceIDs: []int64{s.sourceB}})
	s.Require().NoError(err)
	s.Equal(int64(1), affected)

	s.Require().NoError(s.repo.SetDuplicateOf(s.ctx, dup.ID, &keep.ID))
	s.Require().NoError(s.repo.Delete(s.ctx, keep.ID))
	sites, err = s.repo.FetchByIDs(s.ctx, []int64{dup.ID})
	s.Require().NoError(err)
	s.Nil(sites[0].DuplicateOfParkingSiteID)
}

func (s *ParkingSiteRepositoryTestSuite) TestFetchLocations() {
	a := s.newSite(s.sourceA, "p1")
	b := s.newSite(s.sourceB, "p2")
	s.Require().NoError(s.repo.Save(s.ctx, a))
	s.Require().NoError(s.repo.Save(s.ctx, b))

	locations, err := s.repo.FetchLocations(s.ctx, domain.LocationFilter{
		SourceIDs: []int64{s.sourceB},
		Purposes:  []domain.Purpose{domain.PurposeCar},
	})

	s.Require().NoError(err)
	s.Require().Len(locations, 1)
	s.Equal(b.ID, locations[0].ID)
	s.InDelta(48.1371, locations[0].Lat, 1e-7)
}

// ============================================================================
// History Tests
// ============================================================================

func (s *ParkingSiteRepositoryTestSuite) TestHistory_CreateAndList() {
	site := s.newSite(s.sourceA, "p1")
	s.Require().NoError(s.repo.Save(s.ctx, site))

	first := site.ChangeSnapshot()
	s.Require().NoError(s.history.Create(s.ctx, &first))
	free := 10
	site.RealtimeFreeCapacities.Total = &free
	second := site.ChangeSnapshot()
	s.Require().NoError(s.history.Create(s.ctx, &second))

	entries, err := s.history.ListByEntity(s.ctx, site.ID, 0)
	s.Require().NoError(err)
	s.Require().Len(entries, 2)
	s.Equal(10, *entries[0].RealtimeFreeCapacities.Total)
	s.Equal(domain.OpeningStatusOpen, entries[1].RealtimeOpeningStatus)
}

func TestParkingSiteRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(ParkingSiteRepositoryTestSuite))
}
