package converter

import (
	"github.com/parking-aggregator/internal/domain"
	"github.com/parking-aggregator/internal/pkg/validator"
)

// validateRecords отделяет невалидные записи в список ошибок
func validateRecords[T any](sourceUID string, records []T, uid func(T) string) ([]T, []domain.ImportError) {
	valid := make([]T, 0, len(records))
	var errs []domain.ImportError

	for _, record := range records {
		if err := validator.Validate(record); err != nil {
			errs = append(errs, domain.ImportError{
				SourceUID:   sourceUID,
				OriginalUID: uid(record),
				Message:     err.Error(),
			})
			continue
		}
		valid = append(valid, record)
	}

	return valid, errs
}
