package validator

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/parking-aggregator/internal/domain"
)

func intPtr(v int) *int { return &v }

func validSite() domain.StaticParkingSiteInput {
	return domain.StaticParkingSiteInput{
		UID:                 "site-1",
		Name:                "P+R Vaihingen",
		Type:                domain.ParkingSiteTypeCarPark,
		Purpose:             domain.PurposeCar,
		Lat:                 decimal.RequireFromString("48.7258230"),
		Lon:                 decimal.RequireFromString("9.1163410"),
		StaticDataUpdatedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		Capacity:            intPtr(120),
	}
}

func TestValidate_StaticParkingSiteInput(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, Validate(validSite()))
	})

	t.Run("latitude out of range", func(t *testing.T) {
		site := validSite()
		site.Lat = decimal.RequireFromString("91.5")
		assert.Error(t, Validate(site))
	})

	t.Run("longitude out of range", func(t *testing.T) {
		site := validSite()
		site.Lon = decimal.RequireFromString("-181")
		assert.Error(t, Validate(site))
	})

	t.Run("missing capacity", func(t *testing.T) {
		site := validSite()
		site.Capacity = nil
		assert.Error(t, Validate(site))
	})

	t.Run("negative capacity", func(t *testing.T) {
		site := validSite()
		site.CapacityDisabled = intPtr(-1)
		assert.Error(t, Validate(site))
	})

	t.Run("unknown purpose", func(t *testing.T) {
		site := validSite()
		site.Purpose = "BOAT"
		assert.Error(t, Validate(site))
	})
}

func TestValidate_RealtimeParkingSpotInput(t *testing.T) {
	input := domain.RealtimeParkingSpotInput{
		UID:                   "spot-1",
		RealtimeStatus:        domain.ParkingSpotStatusTaken,
		RealtimeDataUpdatedAt: time.Now(),
	}
	assert.NoError(t, Validate(input))

	input.RealtimeStatus = "BROKEN"
	assert.Error(t, Validate(input))
}
