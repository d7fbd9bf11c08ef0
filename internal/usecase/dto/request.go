package dto

import "github.com/parking-aggregator/internal/domain"

// GenerateDuplicatesRequest - запрос на поиск кандидатов в дубликаты
type GenerateDuplicatesRequest struct {
	// ExistingMatches - уже рассмотренные пары, исключаются в обеих ориентациях
	ExistingMatches []domain.DuplicatePair `json:"existing_matches" validate:"omitempty,dive"`
	RadiusMeters    float64                `json:"radius_meters" validate:"omitempty,gt=0"`
	SourceIDs       []int64                `json:"source_ids,omitempty" validate:"omitempty,dive,min=1"`
	Purposes        []domain.Purpose       `json:"purposes,omitempty" validate:"omitempty,dive,oneof=CAR BIKE ITEM"`
}

// DuplicateDecision - решение оператора по паре (id сохраняется, duplicate_id помечается дубликатом)
type DuplicateDecision struct {
	ID          int64                  `json:"id" validate:"required,min=1"`
	DuplicateID int64                  `json:"duplicate_id" validate:"required,min=1,nefield=ID"`
	Status      domain.DuplicateStatus `json:"status" validate:"omitempty,oneof=KEEP IGNORE"`
}

// ApplyDuplicatesRequest - запрос на применение решений оператора
type ApplyDuplicatesRequest struct {
	Duplicates []DuplicateDecision `json:"duplicates" validate:"required,min=1,dive"`
}

// ResetDuplicatesRequest - фильтр сброса duplicate_of. Пустой фильтр сбрасывает все.
type ResetDuplicatesRequest struct {
	SourceIDs []int64          `json:"source_ids,omitempty" validate:"omitempty,dive,min=1"`
	Purposes  []domain.Purpose `json:"purposes,omitempty" validate:"omitempty,dive,oneof=CAR BIKE ITEM"`
}
