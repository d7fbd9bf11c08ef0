package domain

// ImportResult - итог импорта одного вида сущностей одного источника
type ImportResult struct {
	Created         int `json:"created"`
	Updated         int `json:"updated"`
	Deleted         int `json:"deleted"`
	Failed          int `json:"failed"`
	NotFound        int `json:"not_found"`
	Clamped         int `json:"clamped"`
	HistoryWritten  int `json:"history_written"`
	ConverterErrors int `json:"converter_errors"`
}

// Succeeded возвращает количество успешно примененных записей
func (r ImportResult) Succeeded() int {
	return r.Created + r.Updated
}

// ErrorCount возвращает значение для счетчика ошибок источника
func (r ImportResult) ErrorCount() int {
	return r.ConverterErrors + r.Failed + r.NotFound
}

// Add суммирует два результата
func (r ImportResult) Add(other ImportResult) ImportResult {
	return ImportResult{
		Created:         r.Created + other.Created,
		Updated:         r.Updated + other.Updated,
		Deleted:         r.Deleted + other.Deleted,
		Failed:          r.Failed + other.Failed,
		NotFound:        r.NotFound + other.NotFound,
		Clamped:         r.Clamped + other.Clamped,
		HistoryWritten:  r.HistoryWritten + other.HistoryWritten,
		ConverterErrors: r.ConverterErrors + other.ConverterErrors,
	}
}

// ImportReport - итог импорта источника по обоим видам сущностей
type ImportReport struct {
	Kind         ImportKind   `json:"kind"`
	Status       SourceStatus `json:"status"`
	Skipped      bool         `json:"skipped,omitempty"`
	ParkingSites ImportResult `json:"parking_sites"`
	ParkingSpots ImportResult `json:"parking_spots"`
}

// Total суммирует результаты по сайтам и местам
func (r ImportReport) Total() ImportResult {
	return r.ParkingSites.Add(r.ParkingSpots)
}
