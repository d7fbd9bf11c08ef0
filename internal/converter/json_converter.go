package converter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/parking-aggregator/internal/domain"
)

// jsonDocument - формат JSON фида: массивы объектов и мест. Каждая запись
// разбирается отдельно, чтобы одна битая запись не ломала весь фид.
type jsonDocument struct {
	ParkingSites []json.RawMessage `json:"parking_sites"`
	ParkingSpots []json.RawMessage `json:"parking_spots"`
}

// JSONConverter читает статические объекты и места из JSON фида
type JSONConverter struct {
	info           domain.SourceInfo
	opener         Opener
	staticLocation string
	logger         *zap.Logger
	now            func() time.Time
}

// JSONRealtimeConverter дополняет JSONConverter realtime фидом
type JSONRealtimeConverter struct {
	*JSONConverter
	realtimeLocation string
}

func NewJSONConverter(info domain.SourceInfo, opener Opener, staticLocation string, logger *zap.Logger) *JSONConverter {
	return &JSONConverter{
		info:           info,
		opener:         opener,
		staticLocation: staticLocation,
		logger:         logger.With(zap.String("source_uid", info.UID)),
		now:            time.Now,
	}
}

func NewJSONRealtimeConverter(base *JSONConverter, realtimeLocation string) *JSONRealtimeConverter {
	return &JSONRealtimeConverter{JSONConverter: base, realtimeLocation: realtimeLocation}
}

func (c *JSONConverter) SourceInfo() domain.SourceInfo {
	return c.info
}

func (c *JSONConverter) GetStaticParkingSites(ctx context.Context) ([]domain.StaticParkingSiteInput, []domain.ImportError, error) {
	doc, err := c.load(ctx, c.staticLocation)
	if err != nil {
		return nil, nil, err
	}

	inputs, importErrors := decodeRecords(c.info.UID, doc.ParkingSites, func(site *domain.StaticParkingSiteInput) {
		if site.StaticDataUpdatedAt.IsZero() {
			site.StaticDataUpdatedAt = c.now().UTC()
		}
		site.Lat = site.Lat.Round(7)
		site.Lon = site.Lon.Round(7)
	})
	valid, validationErrors := validateRecords(c.info.UID, inputs, func(i domain.StaticParkingSiteInput) string { return i.UID })

	c.logger.Debug("Static JSON parking sites parsed",
		zap.Int("records", len(valid)),
		zap.Int("errors", len(importErrors)+len(validationErrors)))

	return valid, append(importErrors, validationErrors...), nil
}

func (c *JSONConverter) GetStaticParkingSpots(ctx context.Context) ([]domain.StaticParkingSpotInput, []domain.ImportError, error) {
	doc, err := c.load(ctx, c.staticLocation)
	if err != nil {
		return nil, nil, err
	}

	inputs, importErrors := decodeRecords(c.info.UID, doc.ParkingSpots, func(spot *domain.StaticParkingSpotInput) {
		if spot.StaticDataUpdatedAt.IsZero() {
			spot.StaticDataUpdatedAt = c.now().UTC()
		}
		spot.Lat = spot.Lat.Round(7)
		spot.Lon = spot.Lon.Round(7)
	})
	valid, validationErrors := validateRecords(c.info.UID, inputs, func(i domain.StaticParkingSpotInput) string { return i.UID })

	return valid, append(importErrors, validationErrors...), nil
}

func (c *JSONRealtimeConverter) GetRealtimeParkingSites(ctx context.Context) ([]domain.RealtimeParkingSiteInput, []domain.ImportError, error) {
	doc, err := c.load(ctx, c.realtimeLocation)
	if err != nil {
		return nil, nil, err
	}

	inputs, importErrors := decodeRecords(c.info.UID, doc.ParkingSites, func(site *domain.RealtimeParkingSiteInput) {
		if site.RealtimeDataUpdatedAt.IsZero() {
			site.RealtimeDataUpdatedAt = c.now().UTC()
		}
	})
	valid, validationErrors := validateRecords(c.info.UID, inputs, func(i domain.RealtimeParkingSiteInput) string { return i.UID })

	return valid, append(importErrors, validationErrors...), nil
}

func (c *JSONRealtimeConverter) GetRealtimeParkingSpots(ctx context.Context) ([]domain.RealtimeParkingSpotInput, []domain.ImportError, error) {
	doc, err := c.load(ctx, c.realtimeLocation)
	if err != nil {
		return nil, nil, err
	}

	inputs, importErrors := decodeRecords(c.info.UID, doc.ParkingSpots, func(spot *domain.RealtimeParkingSpotInput) {
		if spot.RealtimeDataUpdatedAt.IsZero() {
			spot.RealtimeDataUpdatedAt = c.now().UTC()
		}
	})
	valid, validationErrors := validateRecords(c.info.UID, inputs, func(i domain.RealtimeParkingSpotInput) string { return i.UID })

	return valid, append(importErrors, validationErrors...), nil
}

func (c *JSONConverter) load(ctx context.Context, location string) (*jsonDocument, error) {
	body, err := c.opener.Open(ctx, location)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var doc jsonDocument
	if err := json.NewDecoder(body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode JSON feed: %w", err)
	}
	return &doc, nil
}

// decodeRecords разбирает записи по одной, нормализуя каждую через normalize
func decodeRecords[T any](sourceUID string, raw []json.RawMessage, normalize func(*T)) ([]T, []domain.ImportError) {
	records := make([]T, 0, len(raw))
	var importErrors []domain.ImportError

	for _, message := range raw {
		var record T
		if err := json.Unmarshal(message, &record); err != nil {
			var probe struct {
				UID string `json:"uid"`
			}
			_ = json.Unmarshal(message, &probe)
			importErrors = append(importErrors, domain.ImportError{
				SourceUID:   sourceUID,
				OriginalUID: probe.UID,
				Message:     err.Error(),
			})
			continue
		}
		normalize(&record)
		records = append(records, record)
	}

	return records, importErrors
}
