package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/parking-aggregator/internal/domain"
	"github.com/parking-aggregator/internal/pkg/errors"
)

// applyStaticSite копирует статические поля записи в объект.
// Идентичность, duplicate_of и realtime поля не трогаются.
func (uc *ImportUseCase) applyStaticSite(ctx context.Context, source *domain.Source, site *domain.ParkingSite, in domain.StaticParkingSiteInput) error {
	site.Name = in.Name
	site.OperatorName = in.OperatorName
	site.PublicURL = in.PublicURL
	site.Address = in.Address
	site.Description = in.Description
	site.Type = in.Type
	site.Purpose = in.Purpose
	site.Lat = in.Lat
	site.Lon = in.Lon
	site.HasFee = in.HasFee
	site.OpeningHours = in.OpeningHours
	site.MaxStay = in.MaxStay
	site.HasRealtimeData = in.HasRealtimeData
	site.Capacities = in.Capacities()

	updatedAt := in.StaticDataUpdatedAt
	site.StaticDataUpdatedAt = &updatedAt

	site.ParkingSiteGroupID = nil
	if in.GroupUID != nil {
		group, err := uc.groupRepo.GetOrCreate(ctx, source.ID, *in.GroupUID)
		if err != nil {
			return fmt.Errorf("resolve group %s: %w", *in.GroupUID, err)
		}
		site.ParkingSiteGroupID = &group.ID
	}

	site.ExternalIdentifiers = zipChildren(site.ExternalIdentifiers, in.ExternalIdentifiers, applyExternalIdentifier)
	site.Tags = zipChildren(site.Tags, in.Tags, applyTag)
	site.Restrictions = zipChildren(site.Restrictions, in.Restrictions, applyRestriction)

	return nil
}

// applyStaticSpot копирует статические поля записи в место и связывает его с объектом того же источника
func (uc *ImportUseCase) applyStaticSpot(ctx context.Context, source *domain.Source, spot *domain.ParkingSpot, in domain.StaticParkingSpotInput) error {
	spot.Name = in.Name
	spot.Address = in.Address
	spot.Type = in.Type
	spot.Purpose = in.Purpose
	spot.Lat = in.Lat
	spot.Lon = in.Lon
	spot.HasRealtimeData = in.HasRealtimeData

	updatedAt := in.StaticDataUpdatedAt
	spot.StaticDataUpdatedAt = &updatedAt

	spot.ParkingSiteID = nil
	if in.ParkingSiteUID != nil {
		site, err := uc.siteRepo.FetchBySourceAndOriginalUID(ctx, source.ID, *in.ParkingSiteUID)
		switch {
		case errors.Is(err, errors.ErrNotFound):
			uc.logger.Warn("Parking spot references unknown parking site",
				zap.String("source_uid", source.UID),
				zap.String("original_uid", in.UID),
				zap.String("parking_site_uid", *in.ParkingSiteUID))
		case err != nil:
			return fmt.Errorf("resolve parking site %s: %w", *in.ParkingSiteUID, err)
		default:
			spot.ParkingSiteID = &site.ID
		}
	}

	spot.ExternalIdentifiers = zipChildren(spot.ExternalIdentifiers, in.ExternalIdentifiers, applyExternalIdentifier)
	spot.Tags = zipChildren(spot.Tags, in.Tags, applyTag)
	spot.Restrictions = zipChildren(spot.Restrictions, in.Restrictions, applyRestriction)

	return nil
}

// applyRealtimeSite перезаписывает realtime поля объекта. Отсутствующие в записи значения обнуляются.
// Возвращает true, если свободные места пришлось ограничить.
func (uc *ImportUseCase) applyRealtimeSite(site *domain.ParkingSite, in domain.RealtimeParkingSiteInput, logger *zap.Logger) bool {
	site.RealtimeCapacities = in.RealtimeCapacities()

	free := in.RealtimeFreeCapacities()
	clamped := clampFreeCapacities(site.Capacities, site.RealtimeCapacities, &free)
	for _, c := range clamped {
		logger.Warn("Realtime free capacity exceeds capacity, clamped",
			zap.String("capacity_kind", string(c.kind)),
			zap.Int("reported", c.reported),
			zap.Int("clamped_to", c.ceiling))
	}
	site.RealtimeFreeCapacities = free

	site.RealtimeOpeningStatus = domain.OpeningStatusUnknown
	if in.RealtimeOpeningStatus != nil {
		site.RealtimeOpeningStatus = *in.RealtimeOpeningStatus
	}

	updatedAt := in.RealtimeDataUpdatedAt
	site.RealtimeDataUpdatedAt = &updatedAt

	return len(clamped) > 0
}

func applyRealtimeSpot(spot *domain.ParkingSpot, in domain.RealtimeParkingSpotInput, _ *zap.Logger) bool {
	spot.RealtimeStatus = in.RealtimeStatus

	updatedAt := in.RealtimeDataUpdatedAt
	spot.RealtimeDataUpdatedAt = &updatedAt

	return false
}

type clampedCapacity struct {
	kind     domain.CapacityKind
	reported int
	ceiling  int
}

// clampFreeCapacities ограничивает realtime_free_X значением realtime_X, а если его нет - статическим X
func clampFreeCapacities(static, realtime domain.Capacities, free *domain.Capacities) []clampedCapacity {
	var clamped []clampedCapacity

	for _, kind := range domain.CapacityKinds {
		value := free.Get(kind)
		if value == nil {
			continue
		}

		ceiling := realtime.Get(kind)
		if ceiling == nil {
			ceiling = static.Get(kind)
		}
		if ceiling == nil || *value <= *ceiling {
			continue
		}

		clamped = append(clamped, clampedCapacity{kind: kind, reported: *value, ceiling: *ceiling})
		limit := *ceiling
		free.Set(kind, &limit)
	}

	return clamped
}

// zipChildren сопоставляет дочерние строки по позиции: строка N переиспользуется
// (сохраняя свой ID), лишние входные элементы становятся новыми строками, хвост старых отбрасывается.
func zipChildren[C any, I any](existing []C, incoming []I, apply func(*C, I)) []C {
	if len(incoming) == 0 {
		return nil
	}

	result := make([]C, len(incoming))
	for i, in := range incoming {
		if i < len(existing) {
			result[i] = existing[i]
		}
		apply(&result[i], in)
	}
	return result
}

func applyExternalIdentifier(row *domain.ExternalIdentifier, in domain.ExternalIdentifierInput) {
	row.Type = in.Type
	row.Value = in.Value
}

func applyTag(row *domain.Tag, value string) {
	row.Value = value
}

func applyRestriction(row *domain.ParkingRestriction, in domain.ParkingRestrictionInput) {
	row.Type = in.Type
	row.Hours = in.Hours
	row.MaxStay = in.MaxStay
}
