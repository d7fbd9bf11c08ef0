package usecase

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/parking-aggregator/internal/config"
	"github.com/parking-aggregator/internal/domain"
	"github.com/parking-aggregator/internal/domain/repository"
	"github.com/parking-aggregator/internal/pkg/errors"
	"github.com/parking-aggregator/internal/pkg/utils"
	"github.com/parking-aggregator/internal/usecase/dto"
)

// duplicateEntity - указатель на сущность, которая умеет отдавать снимок для оператора
type duplicateEntity[E any] interface {
	*E
	EntityID() int64
	DuplicateSnapshot() domain.DuplicateSnapshot
}

// DuplicateUseCase - поиск и применение дубликатов между источниками.
// Один экземпляр на вид сущности (объекты или места).
type DuplicateUseCase[E any, P duplicateEntity[E]] struct {
	repo          repository.EntityRepository[E]
	sourceRepo    repository.SourceRepository
	defaultRadius float64
	logger        *zap.Logger
}

func NewDuplicateUseCase[E any, P duplicateEntity[E]](
	repo repository.EntityRepository[E],
	sourceRepo repository.SourceRepository,
	cfg *config.MatchingConfig,
	logger *zap.Logger,
) *DuplicateUseCase[E, P] {
	return &DuplicateUseCase[E, P]{
		repo:          repo,
		sourceRepo:    sourceRepo,
		defaultRadius: cfg.DefaultRadius,
		logger:        logger,
	}
}

// matchedPair - пара локаций в пределах радиуса, a.ID < b.ID
type matchedPair struct {
	a, b     domain.Location
	distance float64
}

// GenerateDuplicates возвращает кандидатов без записи в хранилище.
// Результат детерминирован для неизменного хранилища и радиуса.
func (uc *DuplicateUseCase[E, P]) GenerateDuplicates(ctx context.Context, req dto.GenerateDuplicatesRequest) (*dto.GenerateDuplicatesResponse, error) {
	radius := req.RadiusMeters
	if radius == 0 {
		radius = uc.defaultRadius
	}
	if !utils.ValidateRadius(radius) {
		return nil, errors.ErrInvalidRadius
	}

	locations, err := uc.repo.FetchLocations(ctx, domain.LocationFilter{
		SourceIDs: req.SourceIDs,
		Purposes:  req.Purposes,
	})
	if err != nil {
		uc.logger.Error("Failed to fetch locations", zap.Error(err))
		return nil, err
	}
	sort.SliceStable(locations, func(i, j int) bool { return locations[i].ID < locations[j].ID })

	existing := make(map[domain.DuplicatePair]struct{}, len(req.ExistingMatches))
	for _, pair := range req.ExistingMatches {
		existing[pair] = struct{}{}
	}

	pairs := findPairs(locations, existing, radius)

	candidates, err := uc.buildCandidates(ctx, pairs)
	if err != nil {
		return nil, err
	}

	uc.logger.Info("Duplicate candidates generated",
		zap.Int("locations", len(locations)),
		zap.Int("pairs", len(pairs)),
		zap.Float64("radius_meters", radius))

	return &dto.GenerateDuplicatesResponse{
		Candidates:   candidates,
		RadiusMeters: radius,
		Total:        len(candidates),
	}, nil
}

// findPairs сравнивает все пары i < j. Пары одного источника, разного назначения,
// уже рассмотренные и с неопределенным расстоянием пропускаются.
func findPairs(locations []domain.Location, existing map[domain.DuplicatePair]struct{}, radius float64) []matchedPair {
	var pairs []matchedPair

	for i := 0; i < len(locations); i++ {
		for j := i + 1; j < len(locations); j++ {
			a, b := locations[i], locations[j]
			if a.SourceID == b.SourceID || a.Purpose != b.Purpose {
				continue
			}

			pair := domain.DuplicatePair{ID: a.ID, DuplicateID: b.ID}
			if _, ok := existing[pair]; ok {
				continue
			}
			if _, ok := existing[pair.Reverse()]; ok {
				continue
			}

			distance, ok := utils.GeodesicDistance(a.Lat, a.Lon, b.Lat, b.Lon)
			if !ok || distance > radius {
				continue
			}

			pairs = append(pairs, matchedPair{a: a, b: b, distance: distance})
		}
	}

	return pairs
}

// buildCandidates разворачивает каждую пару в два кандидата со снимками сущностей
func (uc *DuplicateUseCase[E, P]) buildCandidates(ctx context.Context, pairs []matchedPair) ([]domain.DuplicateCandidate, error) {
	candidates := make([]domain.DuplicateCandidate, 0, len(pairs)*2)
	if len(pairs) == 0 {
		return candidates, nil
	}

	ids := make([]int64, 0, len(pairs)*2)
	seen := make(map[int64]struct{}, len(pairs)*2)
	for _, p := range pairs {
		for _, id := range []int64{p.a.ID, p.b.ID} {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}

	entities, err := uc.repo.FetchByIDs(ctx, ids)
	if err != nil {
		uc.logger.Error("Failed to fetch duplicate entities", zap.Error(err))
		return nil, err
	}

	snapshots := make(map[int64]domain.DuplicateSnapshot, len(entities))
	sourceUIDs := make(map[int64]string)
	for _, entity := range entities {
		snapshot := P(entity).DuplicateSnapshot()
		uid, err := uc.sourceUID(ctx, sourceUIDs, snapshot.SourceID)
		if err != nil {
			return nil, err
		}
		snapshot.SourceUID = uid
		snapshots[P(entity).EntityID()] = snapshot
	}

	for _, p := range pairs {
		snapA, okA := snapshots[p.a.ID]
		snapB, okB := snapshots[p.b.ID]
		// сущность могла быть удалена между чтениями
		if !okA || !okB {
			continue
		}

		candidates = append(candidates,
			domain.DuplicateCandidate{
				ID:                p.a.ID,
				DuplicateID:       p.b.ID,
				Distance:          p.distance,
				Status:            domain.DuplicateStatusKeep,
				DuplicateSnapshot: snapA,
			},
			domain.DuplicateCandidate{
				ID:                p.b.ID,
				DuplicateID:       p.a.ID,
				Distance:          p.distance,
				Status:            domain.DuplicateStatusKeep,
				DuplicateSnapshot: snapB,
			},
		)
	}

	return candidates, nil
}

func (uc *DuplicateUseCase[E, P]) sourceUID(ctx context.Context, cache map[int64]string, sourceID int64) (string, error) {
	if uid, ok := cache[sourceID]; ok {
		return uid, nil
	}
	source, err := uc.sourceRepo.GetByID(ctx, sourceID)
	if err != nil {
		return "", fmt.Errorf("get source %d: %w", sourceID, err)
	}
	cache[sourceID] = source.UID
	return source.UID, nil
}

// ApplyDuplicates помечает duplicate_id дубликатом id. Присваивание плоское:
// цепочки дубликатов не сворачиваются. Весь список проверяется до первой записи.
func (uc *DuplicateUseCase[E, P]) ApplyDuplicates(ctx context.Context, req dto.ApplyDuplicatesRequest) (*dto.ApplyDuplicatesResponse, error) {
	if err := uc.validateDecisions(ctx, req.Duplicates); err != nil {
		return nil, err
	}

	resp := &dto.ApplyDuplicatesResponse{}
	for _, decision := range req.Duplicates {
		if decision.Status == domain.DuplicateStatusIgnore {
			resp.Ignored++
			continue
		}

		keepID := decision.ID
		if err := uc.repo.SetDuplicateOf(ctx, decision.DuplicateID, &keepID); err != nil {
			uc.logger.Error("Failed to apply duplicate",
				zap.Int64("id", decision.ID),
				zap.Int64("duplicate_id", decision.DuplicateID),
				zap.Error(err))
			return nil, err
		}
		resp.Applied++
	}

	uc.logger.Info("Duplicates applied", zap.Int("applied", resp.Applied), zap.Int("ignored", resp.Ignored))
	return resp, nil
}

// validateDecisions отклоняет пары с совпадающими id и ссылки на несуществующие сущности
func (uc *DuplicateUseCase[E, P]) validateDecisions(ctx context.Context, decisions []dto.DuplicateDecision) error {
	var ids []int64
	for _, decision := range decisions {
		if decision.ID == decision.DuplicateID {
			return errors.ErrInvalidRequest.WithDetails(map[string]interface{}{
				"id": decision.ID,
			})
		}
		if decision.Status != domain.DuplicateStatusIgnore {
			ids = append(ids, decision.ID, decision.DuplicateID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	entities, err := uc.repo.FetchByIDs(ctx, ids)
	if err != nil {
		uc.logger.Error("Failed to fetch duplicate decisions", zap.Error(err))
		return err
	}
	found := make(map[int64]struct{}, len(entities))
	for _, entity := range entities {
		found[P(entity).EntityID()] = struct{}{}
	}

	var missing []int64
	seen := make(map[int64]struct{})
	for _, id := range ids {
		if _, ok := found[id]; ok {
			continue
		}
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return errors.ErrNotFound.WithDetails(map[string]interface{}{
			"missing_ids": missing,
		})
	}
	return nil
}

// ResetDuplicates обнуляет duplicate_of у сущностей под фильтром
func (uc *DuplicateUseCase[E, P]) ResetDuplicates(ctx context.Context, req dto.ResetDuplicatesRequest) (*dto.ResetDuplicatesResponse, error) {
	count, err := uc.repo.ResetDuplicateOf(ctx, domain.LocationFilter{
		SourceIDs: req.SourceIDs,
		Purposes:  req.Purposes,
	})
	if err != nil {
		uc.logger.Error("Failed to reset duplicates", zap.Error(err))
		return nil, err
	}

	uc.logger.Info("Duplicates reset", zap.Int64("count", count))
	return &dto.ResetDuplicatesResponse{Reset: count}, nil
}
