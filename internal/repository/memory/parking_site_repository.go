package memory

import (
	"time"

	"github.com/parking-aggregator/internal/domain"
	"github.com/parking-aggregator/internal/domain/repository"
)

type parkingSiteRepository struct {
	*entityStore[domain.ParkingSite]
}

// NewParkingSiteRepository создает in-memory хранилище парковочных объектов
func NewParkingSiteRepository() repository.ParkingSiteRepository {
	return &parkingSiteRepository{
		entityStore: newEntityStore(accessor[domain.ParkingSite]{
			id:          func(s *domain.ParkingSite) int64 { return s.ID },
			setID:       func(s *domain.ParkingSite, id int64) { s.ID = id },
			sourceID:    func(s *domain.ParkingSite) int64 { return s.SourceID },
			originalUID: func(s *domain.ParkingSite) string { return s.OriginalUID },
			location: func(s *domain.ParkingSite) domain.Location {
				return domain.Location{
					ID:       s.ID,
					SourceID: s.SourceID,
					Purpose:  s.Purpose,
					Lat:      s.Lat.InexactFloat64(),
					Lon:      s.Lon.InexactFloat64(),
				}
			},
			duplicateOf: func(s *domain.ParkingSite) **int64 { return &s.DuplicateOfParkingSiteID },
			assignChildIDs: func(s *domain.ParkingSite, next func() int64) {
				assignChildIDs(s.ExternalIdentifiers, s.Tags, s.Restrictions, next)
			},
			touch: func(s *domain.ParkingSite, now time.Time, created bool) {
				if created {
					s.CreatedAt = now
				}
				s.ModifiedAt = now
			},
			clone: cloneParkingSite,
		}),
	}
}

func cloneParkingSite(s *domain.ParkingSite) *domain.ParkingSite {
	out := *s
	out.ParkingSiteGroupID = cloneInt64(s.ParkingSiteGroupID)
	out.DuplicateOfParkingSiteID = cloneInt64(s.DuplicateOfParkingSiteID)
	out.Capacities = s.Capacities.Clone()
	out.RealtimeCapacities = s.RealtimeCapacities.Clone()
	out.RealtimeFreeCapacities = s.RealtimeFreeCapacities.Clone()
	out.ExternalIdentifiers = cloneSlice(s.ExternalIdentifiers)
	out.Tags = cloneSlice(s.Tags)
	out.Restrictions = cloneSlice(s.Restrictions)
	return &out
}
