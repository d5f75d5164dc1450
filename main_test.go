package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grosir/internal/config"
	"grosir/internal/models"
)

type requestFunc func(method, path, body string) (int, []byte)

func newTestApp(t *testing.T, cfg config.Config) requestFunc {
	t.Helper()
	app, cleanup, err := NewApp(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(cleanup)

	return func(method, path, body string) (int, []byte) {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp.StatusCode, raw
	}
}

func decodeQuote(t *testing.T, raw []byte) models.PriceQuote {
	t.Helper()
	var quote models.PriceQuote
	require.NoError(t, json.Unmarshal(raw, &quote), string(raw))
	return quote
}

func TestNewApp_Health(t *testing.T) {
	do := newTestApp(t, config.Config{DBDriver: config.DriverMemory})

	status, raw := do("GET", "/health", "")
	assert.Equal(t, 200, status)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "memory", body["database"])
	assert.Equal(t, false, body["events"])
	assert.Equal(t, false, body["rule_cache"])
}

func TestNewApp_SeededSQLiteWithCache(t *testing.T) {
	do := newTestApp(t, config.Config{
		DBDriver:         config.DriverSQLite,
		DatabaseDSN:      fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()),
		SeedData:         true,
		RuleCacheEnabled: true,
	})

	// supplier 1 pays the fixed handling fee, which outranks the 5% default
	status, raw := do("POST", "/api/v1/markup-rules/simulate", `{"supplier_id":"sup-1","material_id":"mat-rebar","base_price":"82000"}`)
	require.Equal(t, 200, status, string(raw))
	quote := decodeQuote(t, raw)
	require.NotNil(t, quote.Rule)
	assert.Equal(t, "Supplier 1 handling", quote.Rule.Name)
	assert.Equal(t, "84500", quote.FinalPrice.String())

	status, raw = do("GET", "/api/v1/markup-rules/", "")
	require.Equal(t, 200, status)
	var rules []models.MarkupRule
	require.NoError(t, json.Unmarshal(raw, &rules))
	require.Len(t, rules, 2)
	assert.Equal(t, "Supplier 1 handling", rules[0].Name)

	// the cached snapshot is dropped on deactivation
	status, raw = do("PATCH", "/api/v1/markup-rules/"+rules[0].ID+"/active", `{"is_active":false}`)
	require.Equal(t, 200, status, string(raw))

	status, raw = do("POST", "/api/v1/markup-rules/simulate", `{"supplier_id":"sup-1","material_id":"mat-rebar","base_price":"82000"}`)
	require.Equal(t, 200, status)
	quote = decodeQuote(t, raw)
	require.NotNil(t, quote.Rule)
	assert.Equal(t, "Platform default", quote.Rule.Name)
	assert.Equal(t, "4100", quote.MarkupAmount.String())

	// 5% of 10000 is raised to the 1000 minimum
	status, raw = do("POST", "/api/v1/markup-rules/simulate", `{"store_id":"store-1","base_price":"10000"}`)
	require.Equal(t, 200, status)
	quote = decodeQuote(t, raw)
	assert.Equal(t, "1000", quote.MarkupAmount.String())
	assert.Equal(t, "11000", quote.FinalPrice.String())
}

func TestNewApp_SeedSurvivesRestart(t *testing.T) {
	cfg := config.Config{
		DBDriver:    config.DriverSQLite,
		DatabaseDSN: filepath.Join(t.TempDir(), "grosir.db"),
		SeedData:    true,
	}

	_, cleanup, err := NewApp(cfg, nil)
	require.NoError(t, err)
	cleanup()

	do := newTestApp(t, cfg)

	status, raw := do("GET", "/api/v1/markup-rules/", "")
	require.Equal(t, 200, status, string(raw))
	var rules []models.MarkupRule
	require.NoError(t, json.Unmarshal(raw, &rules))
	assert.Len(t, rules, 2)

	status, raw = do("GET", "/api/v1/materials/", "")
	require.Equal(t, 200, status, string(raw))
	var materials []models.Material
	require.NoError(t, json.Unmarshal(raw, &materials))
	assert.Len(t, materials, 3)
}

func TestNewApp_RejectsUnknownDriver(t *testing.T) {
	_, _, err := NewApp(config.Config{DBDriver: "oracle"}, nil)
	assert.Error(t, err)
}
