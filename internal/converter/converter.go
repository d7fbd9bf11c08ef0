// Package converter описывает контракт адаптеров источников и содержит
// универсальные CSV и JSON конвертеры, настраиваемые через sources.yaml.
package converter

import (
	"context"
	"fmt"
	"io"

	"github.com/parking-aggregator/internal/domain"
)

// Converter - адаптер источника. Ошибка метода означает полный отказ источника,
// ошибки отдельных записей возвращаются списком.
type Converter interface {
	SourceInfo() domain.SourceInfo
	GetStaticParkingSites(ctx context.Context) ([]domain.StaticParkingSiteInput, []domain.ImportError, error)
}

// RealtimeSiteConverter - источник с realtime данными объектов
type RealtimeSiteConverter interface {
	GetRealtimeParkingSites(ctx context.Context) ([]domain.RealtimeParkingSiteInput, []domain.ImportError, error)
}

// SpotConverter - источник с отдельными парковочными местами
type SpotConverter interface {
	GetStaticParkingSpots(ctx context.Context) ([]domain.StaticParkingSpotInput, []domain.ImportError, error)
}

// RealtimeSpotConverter - источник с realtime статусом мест
type RealtimeSpotConverter interface {
	GetRealtimeParkingSpots(ctx context.Context) ([]domain.RealtimeParkingSpotInput, []domain.ImportError, error)
}

// Opener открывает фид источника по адресу
type Opener interface {
	Open(ctx context.Context, location string) (io.ReadCloser, error)
}

// SupportsRealtime сообщает, умеет ли конвертер отдавать realtime данные
func SupportsRealtime(c Converter) bool {
	_, sites := c.(RealtimeSiteConverter)
	_, spots := c.(RealtimeSpotConverter)
	return sites || spots
}

// FetchStatic собирает статические данные конвертера в один пакет
func FetchStatic(ctx context.Context, c Converter) (domain.StaticBatch, error) {
	var batch domain.StaticBatch

	sites, siteErrors, err := c.GetStaticParkingSites(ctx)
	if err != nil {
		return batch, fmt.Errorf("get static parking sites: %w", err)
	}
	batch.ParkingSites = sites
	batch.ParkingSiteErrors = siteErrors

	if sc, ok := c.(SpotConverter); ok {
		spots, spotErrors, err := sc.GetStaticParkingSpots(ctx)
		if err != nil {
			return batch, fmt.Errorf("get static parking spots: %w", err)
		}
		batch.ParkingSpots = spots
		batch.ParkingSpotErrors = spotErrors
	}

	return batch, nil
}

// FetchRealtime собирает realtime данные конвертера в один пакет
func FetchRealtime(ctx context.Context, c Converter) (domain.RealtimeBatch, error) {
	var batch domain.RealtimeBatch

	if rc, ok := c.(RealtimeSiteConverter); ok {
		sites, siteErrors, err := rc.GetRealtimeParkingSites(ctx)
		if err != nil {
			return batch, fmt.Errorf("get realtime parking sites: %w", err)
		}
		batch.ParkingSites = sites
		batch.ParkingSiteErrors = siteErrors
	}

	if rc, ok := c.(RealtimeSpotConverter); ok {
		spots, spotErrors, err := rc.GetRealtimeParkingSpots(ctx)
		if err != nil {
			return batch, fmt.Errorf("get realtime parking spots: %w", err)
		}
		batch.ParkingSpots = spots
		batch.ParkingSpotErrors = spotErrors
	}

	return batch, nil
}
