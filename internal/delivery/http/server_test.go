package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/parking-aggregator/internal/config"
	"github.com/parking-aggregator/internal/converter"
	deliveryhttp "github.com/parking-aggregator/internal/delivery/http"
	"github.com/parking-aggregator/internal/delivery/http/handler"
	"github.com/parking-aggregator/internal/domain"
	"github.com/parking-aggregator/internal/repository/memory"
	"github.com/parking-aggregator/internal/usecase"
)

type staticConverter struct {
	uid   string
	lat   string
	sites []string
}

func (c *staticConverter) SourceInfo() domain.SourceInfo {
	return domain.SourceInfo{UID: c.uid, Name: "Source " + c.uid}
}

func (c *staticConverter) GetStaticParkingSites(context.Context) ([]domain.StaticParkingSiteInput, []domain.ImportError, error) {
	capacity := 20
	result := make([]domain.StaticParkingSiteInput, 0, len(c.sites))
	for _, uid := range c.sites {
		result = append(result, domain.StaticParkingSiteInput{
			UID:                 uid,
			Name:                "Site " + uid,
			Type:                domain.ParkingSiteTypeCarPark,
			Purpose:             domain.PurposeCar,
			Lat:                 decimal.RequireFromString(c.lat),
			Lon:                 decimal.RequireFromString("9.1829000"),
			StaticDataUpdatedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
			Capacity:            &capacity,
		})
	}
	return result, nil, nil
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code string `json:"code"`
	} `json:"error"`
}

func newTestServer(t *testing.T) *fiber.App {
	t.Helper()
	logger := zap.NewNop()

	registry := converter.NewRegistry()
	// ~5 м между объектами двух источников
	require.NoError(t, registry.Register(&staticConverter{uid: "a", lat: "48.7758000", sites: []string{"p1"}}, converter.Schedule{}))
	require.NoError(t, registry.Register(&staticConverter{uid: "b", lat: "48.7758450", sites: []string{"x1"}}, converter.Schedule{}))

	sourceRepo := memory.NewSourceRepository()
	siteRepo := memory.NewParkingSiteRepository()
	spotRepo := memory.NewParkingSpotRepository()
	tracker := usecase.NewStatusTracker()
	importCfg := &config.ImportConfig{HistoryEnabled: true, LockTTL: time.Minute}

	importUC := usecase.NewImportUseCase(sourceRepo, siteRepo, spotRepo,
		memory.NewParkingSiteHistoryRepository(), memory.NewParkingSpotHistoryRepository(),
		memory.NewGroupRepository(), tracker, importCfg, logger)
	sourceUC := usecase.NewSourceUseCase(registry, sourceRepo, importUC, tracker,
		memory.NewLockRepository(), nil, nil, importCfg, logger)
	require.NoError(t, sourceUC.EnsureSources(context.Background()))

	matching := &config.MatchingConfig{DefaultRadius: 100}
	siteDuplicates := usecase.NewDuplicateUseCase[domain.ParkingSite](siteRepo, sourceRepo, matching, logger)
	spotDuplicates := usecase.NewDuplicateUseCase[domain.ParkingSpot](spotRepo, sourceRepo, matching, logger)

	server := deliveryhttp.NewServer(&config.Config{}, logger,
		handler.NewSourceHandler(sourceUC, logger),
		handler.NewDuplicateHandler(siteDuplicates, "parking_site", logger),
		handler.NewDuplicateHandler(spotDuplicates, "parking_spot", logger),
	)
	return server.App()
}

func do(t *testing.T, app *fiber.App, method, path, body string) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

func TestServer_Health(t *testing.T) {
	app := newTestServer(t)

	req := httptest.NewRequest(fiber.MethodGet, "/api/v1/health", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestServer_Sources(t *testing.T) {
	app := newTestServer(t)

	status, env := do(t, app, fiber.MethodGet, "/api/v1/sources", "")
	require.Equal(t, fiber.StatusOK, status)
	var list struct {
		Sources []struct {
			UID            string `json:"uid"`
			StaticStatus   string `json:"static_status"`
			RealtimeStatus string `json:"realtime_status"`
		} `json:"sources"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list.Sources, 2)
	assert.Equal(t, "PROVISIONED", list.Sources[0].StaticStatus)
	assert.Equal(t, "DISABLED", list.Sources[0].RealtimeStatus)

	status, env = do(t, app, fiber.MethodGet, "/api/v1/sources/missing", "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "SOURCE_NOT_FOUND", env.Error.Code)
}

func TestServer_Import(t *testing.T) {
	app := newTestServer(t)

	status, env := do(t, app, fiber.MethodPost, "/api/v1/sources/a/import/static", "")
	require.Equal(t, fiber.StatusOK, status)
	var result struct {
		RunID  string              `json:"run_id"`
		Report domain.ImportReport `json:"report"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, domain.SourceStatusActive, result.Report.Status)
	assert.Equal(t, 1, result.Report.ParkingSites.Created)

	status, env = do(t, app, fiber.MethodPost, "/api/v1/sources/a/import/realtime", "")
	require.Equal(t, fiber.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.True(t, result.Report.Skipped)

	status, env = do(t, app, fiber.MethodPost, "/api/v1/sources/unknown/import/static", "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "CONVERTER_NOT_FOUND", env.Error.Code)
}

func TestServer_Duplicates(t *testing.T) {
	app := newTestServer(t)
	for _, uid := range []string{"a", "b"} {
		status, _ := do(t, app, fiber.MethodPost, "/api/v1/sources/"+uid+"/import/static", "")
		require.Equal(t, fiber.StatusOK, status)
	}

	status, env := do(t, app, fiber.MethodPost, "/api/v1/parking-sites/duplicates/generate", `{"radius_meters": 10}`)
	require.Equal(t, fiber.StatusOK, status)
	var generated struct {
		Candidates []domain.DuplicateCandidate `json:"candidates"`
		Total      int                         `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &generated))
	require.Equal(t, 2, generated.Total)
	first := generated.Candidates[0]

	status, env = do(t, app, fiber.MethodPost, "/api/v1/parking-sites/duplicates/generate",
		`{"existing_matches": [{"id": `+itoa(first.DuplicateID)+`, "duplicate_id": `+itoa(first.ID)+`}]}`)
	require.Equal(t, fiber.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &generated))
	assert.Equal(t, 0, generated.Total)

	status, env = do(t, app, fiber.MethodPost, "/api/v1/parking-sites/duplicates/apply",
		`{"duplicates": [{"id": `+itoa(first.ID)+`, "duplicate_id": `+itoa(first.DuplicateID)+`}]}`)
	require.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `{"applied": 1, "ignored": 0}`, string(env.Data))

	status, env = do(t, app, fiber.MethodPost, "/api/v1/parking-sites/duplicates/reset", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `{"reset": 1}`, string(env.Data))

	status, env = do(t, app, fiber.MethodPost, "/api/v1/parking-spots/duplicates/generate", "")
	require.Equal(t, fiber.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &generated))
	assert.Equal(t, 0, generated.Total)
}

func TestServer_DuplicatesValidation(t *testing.T) {
	app := newTestServer(t)

	tests := []struct {
		name string
		path string
		body string
		code string
	}{
		{"negative radius", "/api/v1/parking-sites/duplicates/generate", `{"radius_meters": -10}`, "VALIDATION_ERROR"},
		{"unknown purpose", "/api/v1/parking-sites/duplicates/generate", `{"purposes": ["BOAT"]}`, "VALIDATION_ERROR"},
		{"malformed body", "/api/v1/parking-sites/duplicates/generate", `{"radius_meters":`, "INVALID_REQUEST"},
		{"empty decisions", "/api/v1/parking-sites/duplicates/apply", `{"duplicates": []}`, "VALIDATION_ERROR"},
		{"self duplicate", "/api/v1/parking-spots/duplicates/apply", `{"duplicates": [{"id": 1, "duplicate_id": 1}]}`, "VALIDATION_ERROR"},
		{"unknown status", "/api/v1/parking-spots/duplicates/apply", `{"duplicates": [{"id": 1, "duplicate_id": 2, "status": "MERGE"}]}`, "VALIDATION_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := do(t, app, fiber.MethodPost, tt.path, tt.body)
			assert.Equal(t, fiber.StatusBadRequest, status)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.code, env.Error.Code)
		})
	}
}

func TestServer_UnknownRoute(t *testing.T) {
	app := newTestServer(t)

	status, env := do(t, app, fiber.MethodGet, "/api/v1/unknown", "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "ROUTE_NOT_FOUND", env.Error.Code)
}

func itoa(v int64) string {
	b, _ := json.Marshal(v)
	return string(b)
}
