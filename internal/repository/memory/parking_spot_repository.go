package memory

import (
	"time"

	"github.com/parking-aggregator/internal/domain"
	"github.com/parking-aggregator/internal/domain/repository"
)

type parkingSpotRepository struct {
	*entityStore[domain.ParkingSpot]
}

// NewParkingSpotRepository создает in-memory хранилище парковочных мест
func NewParkingSpotRepository() repository.ParkingSpotRepository {
	return &parkingSpotRepository{
		entityStore: newEntityStore(accessor[domain.ParkingSpot]{
			id:          func(s *domain.ParkingSpot) int64 { return s.ID },
			setID:       func(s *domain.ParkingSpot, id int64) { s.ID = id },
			sourceID:    func(s *domain.ParkingSpot) int64 { return s.SourceID },
			originalUID: func(s *domain.ParkingSpot) string { return s.OriginalUID },
			location: func(s *domain.ParkingSpot) domain.Location {
				return domain.Location{
					ID:       s.ID,
					SourceID: s.SourceID,
					Purpose:  s.Purpose,
					Lat:      s.Lat.InexactFloat64(),
					Lon:      s.Lon.InexactFloat64(),
				}
			},
			duplicateOf: func(s *domain.ParkingSpot) **int64 { return &s.DuplicateOfParkingSpotID },
			assignChildIDs: func(s *domain.ParkingSpot, next func() int64) {
				assignChildIDs(s.ExternalIdentifiers, s.Tags, s.Restrictions, next)
			},
			touch: func(s *domain.ParkingSpot, now time.Time, created bool) {
				if created {
					s.CreatedAt = now
				}
				s.ModifiedAt = now
			},
			clone: cloneParkingSpot,
		}),
	}
}

func cloneParkingSpot(s *domain.ParkingSpot) *domain.ParkingSpot {
	out := *s
	out.ParkingSiteID = cloneInt64(s.ParkingSiteID)
	out.DuplicateOfParkingSpotID = cloneInt64(s.DuplicateOfParkingSpotID)
	out.ExternalIdentifiers = cloneSlice(s.ExternalIdentifiers)
	out.Tags = cloneSlice(s.Tags)
	out.Restrictions = cloneSlice(s.Restrictions)
	return &out
}
