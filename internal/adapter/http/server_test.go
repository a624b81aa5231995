package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	httpadapter "github.com/couchcryptid/sakura-phenology-service/internal/adapter/http"
	"github.com/couchcryptid/sakura-phenology-service/internal/phenology"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

func newTestServer(readyErr error) *httpadapter.Server {
	return httpadapter.NewServer(":0", &mockReadiness{err: readyErr}, nil, slog.Default())
}

func loadTestEngine(t *testing.T) *phenology.Engine {
	t.Helper()
	open := func(name string) *os.File {
		f, err := os.Open(filepath.Join("..", "..", "phenology", "testdata", name))
		require.NoError(t, err)
		t.Cleanup(func() { _ = f.Close() })
		return f
	}
	engine, _, err := phenology.Load(open("flowering_date.csv"), open("bloom_state.csv"), nil)
	require.NoError(t, err)
	return engine
}

func newInfoServer(t *testing.T) *httpadapter.Server {
	t.Helper()
	return httpadapter.NewServer(":0", &mockReadiness{}, loadTestEngine(t), slog.Default())
}

func get(t *testing.T, srv *httpadapter.Server, target string) (int, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return rec.Code, body
}

func TestHealthzReturns200(t *testing.T) {
	srv := newTestServer(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	srv := newTestServer(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ready", body["status"])
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	srv := newTestServer(fmt.Errorf("not ready yet"))
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not ready", body["status"])
	assert.Equal(t, "not ready yet", body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestInfoRoutesAbsentWithoutEngine(t *testing.T) {
	srv := newTestServer(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/info/flowering_date?latitude=35.69&longitude=139.75", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFloweringDate_NearestStation(t *testing.T) {
	srv := newInfoServer(t)

	code, body := get(t, srv, "/info/flowering_date?latitude=35.70&longitude=139.76&date=2026-03-30")

	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, map[string]any{
		"spot_id":             "2",
		"address":             "東京都千代田区北の丸公園",
		"flowering_date":      "2026-03-20",
		"full_bloom_date":     "2026-03-27",
		"full_bloom_end_date": "2026-04-02",
		"variety":             "ソメイヨシノ",
		"updated_date":        "2026-03-05",
	}, body)
}

func TestFloweringDate_EndFallback(t *testing.T) {
	srv := newInfoServer(t)

	code, body := get(t, srv, "/info/flowering_date?latitude=43.06&longitude=141.35&date=2026-04-01")

	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "3", body["spot_id"])
	assert.Equal(t, "2026-05-07", body["full_bloom_end_date"], "full bloom start + 5 days")
}

func TestFloweringDate_NoStation(t *testing.T) {
	table, _ := phenology.NewOffsetTable(nil)
	engine := phenology.NewEngine(phenology.NewSpotIndex(nil), table, nil)
	srv := httpadapter.NewServer(":0", &mockReadiness{}, engine, slog.Default())

	code, body := get(t, srv, "/info/flowering_date?latitude=35.69&longitude=139.75")

	assert.Equal(t, http.StatusNotFound, code)
	assert.Contains(t, body["error"], "no flowering forecast")
}

func TestInfoRoutes_BadRequest(t *testing.T) {
	srv := newInfoServer(t)

	tests := []struct {
		name   string
		target string
	}{
		{"missing coordinate", "/info/flowering_date?latitude=35.69"},
		{"unparsable latitude", "/info/flowering_date?latitude=abc&longitude=139.75"},
		{"latitude out of range", "/info/bloom_status?latitude=120&longitude=139.75"},
		{"bad date", "/info/bloom_status?latitude=35.69&longitude=139.75&date=2026/03/30"},
		{"zero date", "/info/bloom_status?latitude=40.8&longitude=140.7&date=0001-01-01"},
		{"zero date flowering", "/info/flowering_date?latitude=40.8&longitude=140.7&date=0001-01-01"},
		{"unknown prefecture", "/info/bloom_status?latitude=35.69&longitude=139.75&prefecture_code=99"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := get(t, srv, tt.target)
			assert.Equal(t, http.StatusBadRequest, code)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestBloomStatus_Classified(t *testing.T) {
	srv := newInfoServer(t)

	code, body := get(t, srv, "/info/bloom_status?latitude=35.69&longitude=139.75&date=2026-03-30&prefecture_code=13")

	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "2026-03-30", body["observation_date"])
	assert.Equal(t, "13", body["prefecture_code"])
	assert.Equal(t, "full_bloom", body["bloom_status"])
	assert.Equal(t, "8分咲き（満開）", body["bloom_status_label"])
	assert.Equal(t, "2", body["spot_id"])
	assert.InDelta(t, 0.0, body["vitality_noleaf_weight"], 1e-9)
	assert.InDelta(t, 1.0, body["vitality_bloom_weight"], 1e-9)
	assert.NotContains(t, body, "indeterminate_reason")
}

func TestBloomStatus_PrefectureNameAccepted(t *testing.T) {
	srv := newInfoServer(t)

	code, body := get(t, srv, "/info/bloom_status?latitude=35.69&longitude=139.75&date=2026-03-16&prefecture_code=%E6%9D%B1%E4%BA%AC%E9%83%BD")

	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "13", body["prefecture_code"])
	assert.Equal(t, "before_bloom", body["bloom_status"])
}

func TestBloomStatus_IndeterminateWithoutRegion(t *testing.T) {
	srv := newInfoServer(t)

	code, body := get(t, srv, "/info/bloom_status?latitude=35.69&longitude=139.75&date=2026-03-30")

	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "no_region", body["indeterminate_reason"])
	assert.NotContains(t, body, "bloom_status")
	assert.InDelta(t, 1.0, body["vitality_bloom_weight"], 1e-9, "vitality needs no region")
}
