package memory

import "github.com/parking-aggregator/internal/domain"

func cloneInt64(v *int64) *int64 {
	if v == nil {
		return nil
	}
	value := *v
	return &value
}

func cloneSlice[T any](items []T) []T {
	if items == nil {
		return nil
	}
	out := make([]T, len(items))
	copy(out, items)
	return out
}

func assignChildIDs(
	identifiers []domain.ExternalIdentifier,
	tags []domain.Tag,
	restrictions []domain.ParkingRestriction,
	next func() int64,
) {
	for i := range identifiers {
		if identifiers[i].ID == 0 {
			identifiers[i].ID = next()
		}
	}
	for i := range tags {
		if tags[i].ID == 0 {
			tags[i].ID = next()
		}
	}
	for i := range restrictions {
		if restrictions[i].ID == 0 {
			restrictions[i].ID = next()
		}
	}
}
