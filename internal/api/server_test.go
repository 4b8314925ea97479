package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"plandrift/internal/driftcheck"
	"plandrift/internal/explain"
	"plandrift/internal/metrics"
	"plandrift/internal/orchestrator"
	"plandrift/internal/storage"
	storageMocks "plandrift/internal/storage/mocks"
	"plandrift/pkg/logging"
)

const driftPlan = "Plan: 2 to add, 0 to change, 1 to destroy."

func newTestServer(t *testing.T, store storage.Store, maxBytes int) (*Server, *metrics.Recorder) {
	t.Helper()
	recorder := metrics.New()
	service := orchestrator.NewService(orchestrator.Config{MaxPlanBytes: maxBytes}, nil, store, nil, recorder, logging.NewMockLogger())
	return NewServer(service, recorder.Handler(), maxBytes, logging.NewMockLogger()), recorder
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(method, target, strings.NewReader(body)))
	return rec
}

func ingest(t *testing.T, s *Server, repo, plan string) IngestResponse {
	t.Helper()
	rec := do(t, s, http.MethodPost, "/api/plans?repo="+repo, plan)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp IngestResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestIngestAndGet(t *testing.T) {
	server, _ := newTestServer(t, storage.NewMemoryStore(), 1000)

	resp := ingest(t, server, "network", driftPlan)
	assert.True(t, strings.HasPrefix(resp.PlanID, "network#"))
	assert.True(t, resp.Result.DriftDetected)
	assert.Equal(t, 3, resp.Result.TotalChanges)
	assert.Equal(t, driftcheck.RiskHigh, resp.Result.RiskLevel)

	rec := do(t, server, http.MethodGet, "/api/plans/"+url.PathEscape(resp.PlanID), "")
	require.Equal(t, http.StatusOK, rec.Code)

	var record storage.PlanRecord
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&record))
	assert.Equal(t, resp.PlanID, record.PlanID)
	assert.Equal(t, driftPlan, record.PlanContent)
	assert.Equal(t, 3, record.ChangesDetected)
}

func TestIngest_Errors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		body   string
		status int
	}{
		{name: "Missing repo", target: "/api/plans", body: driftPlan, status: http.StatusBadRequest},
		{name: "Body too large", target: "/api/plans?repo=network", body: strings.Repeat("x", 101), status: http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, _ := newTestServer(t, storage.NewMemoryStore(), 100)

			rec := do(t, server, http.MethodPost, tt.target, tt.body)

			assert.Equal(t, tt.status, rec.Code)
			var resp errorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestIngest_UnrecognizedTextIsNotAnError(t *testing.T) {
	server, _ := newTestServer(t, storage.NewMemoryStore(), 1000)

	resp := ingest(t, server, "network", "Error: Invalid provider configuration")

	assert.False(t, resp.Result.DriftDetected)
	assert.Equal(t, 0, resp.Result.TotalChanges)
	assert.NotEmpty(t, resp.Result.Recommendations)
}

func TestIngest_StoreFailure(t *testing.T) {
	store := storageMocks.NewStore(t)
	store.On("Save", mock.Anything, mock.Anything).Return(errors.New("connection refused"))
	server, _ := newTestServer(t, store, 1000)

	rec := do(t, server, http.MethodPost, "/api/plans?repo=network", driftPlan)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestGetPlan_NotFound(t *testing.T) {
	server, _ := newTestServer(t, storage.NewMemoryStore(), 1000)

	for _, path := range []string{
		"/api/plans/network%232024-03-01T12:00:00Z",
		"/api/plans/network%232024-03-01T12:00:00Z/explain",
	} {
		rec := do(t, server, http.MethodGet, path, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
}

func TestExplain(t *testing.T) {
	server, _ := newTestServer(t, storage.NewMemoryStore(), 1000)
	resp := ingest(t, server, "network", driftPlan)

	rec := do(t, server, http.MethodGet, "/api/plans/"+url.PathEscape(resp.PlanID)+"/explain", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var exp explain.Explanation
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&exp))
	assert.Equal(t, explain.SourceFallback, exp.Source)
	assert.Contains(t, exp.Text, "Plan analysis for network")
	assert.Equal(t, driftcheck.RiskHigh, exp.Result.RiskLevel)
}

func TestHistory(t *testing.T) {
	server, _ := newTestServer(t, storage.NewMemoryStore(), 1000)
	resp := ingest(t, server, "network", driftPlan)
	ingest(t, server, "edge", driftPlan)

	rec := do(t, server, http.MethodGet, "/api/repos/network/plans?limit=10", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var records []*storage.PlanRecord
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&records))
	require.Len(t, records, 1)
	assert.Equal(t, resp.PlanID, records[0].PlanID)

	rec = do(t, server, http.MethodGet, "/api/repos/network/plans?limit=ten", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOwnerQualifiedRepo(t *testing.T) {
	server, _ := newTestServer(t, storage.NewMemoryStore(), 1000)
	resp := ingest(t, server, url.QueryEscape("acme/infra"), driftPlan)
	assert.True(t, strings.HasPrefix(resp.PlanID, "acme/infra#"))

	escaped := url.PathEscape(resp.PlanID)

	rec := do(t, server, http.MethodGet, "/api/plans/"+escaped, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var record storage.PlanRecord
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&record))
	assert.Equal(t, "acme/infra", record.RepoName)

	rec = do(t, server, http.MethodGet, "/api/plans/"+escaped+"/explain", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, server, http.MethodGet, "/api/repos/"+url.PathEscape("acme/infra")+"/plans", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var records []*storage.PlanRecord
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&records))
	require.Len(t, records, 1)
	assert.Equal(t, resp.PlanID, records[0].PlanID)
}

func TestCompare(t *testing.T) {
	server, _ := newTestServer(t, storage.NewMemoryStore(), 1000)
	from := ingest(t, server, "network", driftPlan)
	to := ingest(t, server, "edge", "No changes. Your infrastructure matches the configuration.")

	q := url.Values{"from": {from.PlanID}, "to": {to.PlanID}}
	rec := do(t, server, http.MethodGet, "/api/compare?"+q.Encode(), "")
	require.Equal(t, http.StatusOK, rec.Code)

	var diff driftcheck.DiffResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&diff))
	assert.Equal(t, from.PlanID, diff.FromIdentifier)
	assert.Contains(t, diff.UnifiedDiffLines, "-"+driftPlan)

	rec = do(t, server, http.MethodGet, "/api/compare?from="+url.QueryEscape(from.PlanID), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMetricsAndHealth(t *testing.T) {
	server, _ := newTestServer(t, storage.NewMemoryStore(), 1000)
	ingest(t, server, "network", driftPlan)

	rec := do(t, server, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `plandrift_scans_total{outcome="drift"} 1`)

	rec = do(t, server, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListenAndServe_StopsOnCancel(t *testing.T) {
	server, _ := newTestServer(t, storage.NewMemoryStore(), 1000)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, server.ListenAndServe(ctx, "127.0.0.1:0"))
}
