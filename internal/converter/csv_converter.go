package converter

import (
	"context"
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jszwec/csvutil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/parking-aggregator/internal/domain"
)

// csvParkingSiteRow - строка статического CSV. Теги перечисляются через ";".
type csvParkingSiteRow struct {
	UID                 string `csv:"uid"`
	GroupUID            string `csv:"group_uid,omitempty"`
	Name                string `csv:"name"`
	OperatorName        string `csv:"operator_name,omitempty"`
	PublicURL           string `csv:"public_url,omitempty"`
	Address             string `csv:"address,omitempty"`
	Description         string `csv:"description,omitempty"`
	Type                string `csv:"type"`
	Purpose             string `csv:"purpose"`
	Lat                 string `csv:"lat"`
	Lon                 string `csv:"lon"`
	HasFee              *bool  `csv:"has_fee,omitempty"`
	OpeningHours        string `csv:"opening_hours,omitempty"`
	MaxStay             *int   `csv:"max_stay,omitempty"`
	HasRealtimeData     bool   `csv:"has_realtime_data,omitempty"`
	StaticDataUpdatedAt string `csv:"static_data_updated_at,omitempty"`

	Capacity           *int `csv:"capacity"`
	CapacityDisabled   *int `csv:"capacity_disabled,omitempty"`
	CapacityWoman      *int `csv:"capacity_woman,omitempty"`
	CapacityFamily     *int `csv:"capacity_family,omitempty"`
	CapacityCharging   *int `csv:"capacity_charging,omitempty"`
	CapacityCarsharing *int `csv:"capacity_carsharing,omitempty"`
	CapacityTruck      *int `csv:"capacity_truck,omitempty"`
	CapacityBus        *int `csv:"capacity_bus,omitempty"`

	OSMID string `csv:"osm_id,omitempty"`
	Tags  string `csv:"tags,omitempty"`
}

// csvRealtimeRow - строка realtime CSV
type csvRealtimeRow struct {
	UID                   string `csv:"uid"`
	RealtimeDataUpdatedAt string `csv:"realtime_data_updated_at,omitempty"`
	RealtimeOpeningStatus string `csv:"realtime_opening_status,omitempty"`

	RealtimeCapacity           *int `csv:"realtime_capacity,omitempty"`
	RealtimeCapacityDisabled   *int `csv:"realtime_capacity_disabled,omitempty"`
	RealtimeCapacityWoman      *int `csv:"realtime_capacity_woman,omitempty"`
	RealtimeCapacityFamily     *int `csv:"realtime_capacity_family,omitempty"`
	RealtimeCapacityCharging   *int `csv:"realtime_capacity_charging,omitempty"`
	RealtimeCapacityCarsharing *int `csv:"realtime_capacity_carsharing,omitempty"`
	RealtimeCapacityTruck      *int `csv:"realtime_capacity_truck,omitempty"`
	RealtimeCapacityBus        *int `csv:"realtime_capacity_bus,omitempty"`

	RealtimeFreeCapacity           *int `csv:"realtime_free_capacity,omitempty"`
	RealtimeFreeCapacityDisabled   *int `csv:"realtime_free_capacity_disabled,omitempty"`
	RealtimeFreeCapacityWoman      *int `csv:"realtime_free_capacity_woman,omitempty"`
	RealtimeFreeCapacityFamily     *int `csv:"realtime_free_capacity_family,omitempty"`
	RealtimeFreeCapacityCharging   *int `csv:"realtime_free_capacity_charging,omitempty"`
	RealtimeFreeCapacityCarsharing *int `csv:"realtime_free_capacity_carsharing,omitempty"`
	RealtimeFreeCapacityTruck      *int `csv:"realtime_free_capacity_truck,omitempty"`
	RealtimeFreeCapacityBus        *int `csv:"realtime_free_capacity_bus,omitempty"`
}

// CSVConverter читает статические данные объектов из CSV файла или URL
type CSVConverter struct {
	info           domain.SourceInfo
	opener         Opener
	staticLocation string
	logger         *zap.Logger
	now            func() time.Time
}

// CSVRealtimeConverter дополняет CSVConverter realtime фидом
type CSVRealtimeConverter struct {
	*CSVConverter
	realtimeLocation string
}

func NewCSVConverter(info domain.SourceInfo, opener Opener, staticLocation string, logger *zap.Logger) *CSVConverter {
	return &CSVConverter{
		info:           info,
		opener:         opener,
		staticLocation: staticLocation,
		logger:         logger.With(zap.String("source_uid", info.UID)),
		now:            time.Now,
	}
}

func NewCSVRealtimeConverter(base *CSVConverter, realtimeLocation string) *CSVRealtimeConverter {
	return &CSVRealtimeConverter{CSVConverter: base, realtimeLocation: realtimeLocation}
}

func (c *CSVConverter) SourceInfo() domain.SourceInfo {
	return c.info
}

func (c *CSVConverter) GetStaticParkingSites(ctx context.Context) ([]domain.StaticParkingSiteInput, []domain.ImportError, error) {
	body, err := c.opener.Open(ctx, c.staticLocation)
	if err != nil {
		return nil, nil, err
	}
	defer body.Close()

	var inputs []domain.StaticParkingSiteInput
	importErrors, err := decodeCSV(c.info.UID, body, func(row csvParkingSiteRow) error {
		input, err := c.mapStaticRow(row)
		if err != nil {
			return err
		}
		inputs = append(inputs, input)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	valid, validationErrors := validateRecords(c.info.UID, inputs, func(i domain.StaticParkingSiteInput) string { return i.UID })
	c.logger.Debug("Static CSV parsed",
		zap.Int("records", len(valid)),
		zap.Int("errors", len(importErrors)+len(validationErrors)))

	return valid, append(importErrors, validationErrors...), nil
}

func (c *CSVRealtimeConverter) GetRealtimeParkingSites(ctx context.Context) ([]domain.RealtimeParkingSiteInput, []domain.ImportError, error) {
	body, err := c.opener.Open(ctx, c.realtimeLocation)
	if err != nil {
		return nil, nil, err
	}
	defer body.Close()

	var inputs []domain.RealtimeParkingSiteInput
	importErrors, err := decodeCSV(c.info.UID, body, func(row csvRealtimeRow) error {
		input, err := c.mapRealtimeRow(row)
		if err != nil {
			return err
		}
		inputs = append(inputs, input)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	valid, validationErrors := validateRecords(c.info.UID, inputs, func(i domain.RealtimeParkingSiteInput) string { return i.UID })
	return valid, append(importErrors, validationErrors...), nil
}

func (c *CSVConverter) mapStaticRow(row csvParkingSiteRow) (domain.StaticParkingSiteInput, error) {
	lat, err := decimal.NewFromString(strings.TrimSpace(row.Lat))
	if err != nil {
		return domain.StaticParkingSiteInput{}, fmt.Errorf("invalid lat %q", row.Lat)
	}
	lon, err := decimal.NewFromString(strings.TrimSpace(row.Lon))
	if err != nil {
		return domain.StaticParkingSiteInput{}, fmt.Errorf("invalid lon %q", row.Lon)
	}
	updatedAt, err := c.parseTimestamp(row.StaticDataUpdatedAt)
	if err != nil {
		return domain.StaticParkingSiteInput{}, err
	}

	input := domain.StaticParkingSiteInput{
		UID:                 row.UID,
		GroupUID:            optionalString(row.GroupUID),
		Name:                row.Name,
		OperatorName:        optionalString(row.OperatorName),
		PublicURL:           optionalString(row.PublicURL),
		Address:             optionalString(row.Address),
		Description:         optionalString(row.Description),
		Type:                domain.ParkingSiteType(strings.ToUpper(row.Type)),
		Purpose:             domain.Purpose(strings.ToUpper(row.Purpose)),
		Lat:                 lat.Round(7),
		Lon:                 lon.Round(7),
		HasFee:              row.HasFee,
		OpeningHours:        optionalString(row.OpeningHours),
		MaxStay:             row.MaxStay,
		HasRealtimeData:     row.HasRealtimeData,
		StaticDataUpdatedAt: updatedAt,
		Capacity:            row.Capacity,
		CapacityDisabled:    row.CapacityDisabled,
		CapacityWoman:       row.CapacityWoman,
		CapacityFamily:      row.CapacityFamily,
		CapacityCharging:    row.CapacityCharging,
		CapacityCarsharing:  row.CapacityCarsharing,
		CapacityTruck:       row.CapacityTruck,
		CapacityBus:         row.CapacityBus,
		Tags:                splitList(row.Tags),
	}
	if row.OSMID != "" {
		input.ExternalIdentifiers = []domain.ExternalIdentifierInput{
			{Type: domain.ExternalIdentifierTypeOSM, Value: row.OSMID},
		}
	}

	return input, nil
}

func (c *CSVConverter) mapRealtimeRow(row csvRealtimeRow) (domain.RealtimeParkingSiteInput, error) {
	updatedAt, err := c.parseTimestamp(row.RealtimeDataUpdatedAt)
	if err != nil {
		return domain.RealtimeParkingSiteInput{}, err
	}

	input := domain.RealtimeParkingSiteInput{
		UID:                            row.UID,
		RealtimeDataUpdatedAt:          updatedAt,
		RealtimeCapacity:               row.RealtimeCapacity,
		RealtimeCapacityDisabled:       row.RealtimeCapacityDisabled,
		RealtimeCapacityWoman:          row.RealtimeCapacityWoman,
		RealtimeCapacityFamily:         row.RealtimeCapacityFamily,
		RealtimeCapacityCharging:       row.RealtimeCapacityCharging,
		RealtimeCapacityCarsharing:     row.RealtimeCapacityCarsharing,
		RealtimeCapacityTruck:          row.RealtimeCapacityTruck,
		RealtimeCapacityBus:            row.RealtimeCapacityBus,
		RealtimeFreeCapacity:           row.RealtimeFreeCapacity,
		RealtimeFreeCapacityDisabled:   row.RealtimeFreeCapacityDisabled,
		RealtimeFreeCapacityWoman:      row.RealtimeFreeCapacityWoman,
		RealtimeFreeCapacityFamily:     row.RealtimeFreeCapacityFamily,
		RealtimeFreeCapacityCharging:   row.RealtimeFreeCapacityCharging,
		RealtimeFreeCapacityCarsharing: row.RealtimeFreeCapacityCarsharing,
		RealtimeFreeCapacityTruck:      row.RealtimeFreeCapacityTruck,
		RealtimeFreeCapacityBus:        row.RealtimeFreeCapacityBus,
	}
	if row.RealtimeOpeningStatus != "" {
		status := domain.OpeningStatus(strings.ToUpper(row.RealtimeOpeningStatus))
		input.RealtimeOpeningStatus = &status
	}

	return input, nil
}

// parseTimestamp разбирает RFC3339. Пустое значение - момент загрузки.
func (c *CSVConverter) parseTimestamp(value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return c.now().UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q", value)
	}
	return t, nil
}

// decodeCSV декодирует строки по одной. Ошибка строки попадает в список и не прерывает разбор.
func decodeCSV[R any](sourceUID string, r io.Reader, handle func(R) error) ([]domain.ImportError, error) {
	dec, err := csvutil.NewDecoder(csv.NewReader(r))
	if err != nil {
		if stderrors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to create CSV decoder: %w", err)
	}

	uidColumn := -1
	for i, column := range dec.Header() {
		if column == "uid" {
			uidColumn = i
		}
	}
	if uidColumn < 0 {
		return nil, fmt.Errorf("CSV header has no uid column")
	}

	var importErrors []domain.ImportError
	for {
		var row R
		err := dec.Decode(&row)
		if stderrors.Is(err, io.EOF) {
			break
		}

		uid := ""
		if record := dec.Record(); len(record) > uidColumn {
			uid = record[uidColumn]
		}

		if err == nil {
			err = handle(row)
		}
		if err != nil {
			importErrors = append(importErrors, domain.ImportError{
				SourceUID:   sourceUID,
				OriginalUID: uid,
				Message:     err.Error(),
			})
		}
	}

	return importErrors, nil
}

func optionalString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ";") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
