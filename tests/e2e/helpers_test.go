//go:build e2e

package e2e_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/polyglothq/adaptive-srs/internal/adapter/postgres"
	itemrepo "github.com/polyglothq/adaptive-srs/internal/adapter/postgres/item"
	learnerrepo "github.com/polyglothq/adaptive-srs/internal/adapter/postgres/learner"
	memoryrepo "github.com/polyglothq/adaptive-srs/internal/adapter/postgres/memory"
	placementrepo "github.com/polyglothq/adaptive-srs/internal/adapter/postgres/placement"
	reviewlogrepo "github.com/polyglothq/adaptive-srs/internal/adapter/postgres/reviewlog"
	"github.com/polyglothq/adaptive-srs/internal/adapter/postgres/testhelper"
	"github.com/polyglothq/adaptive-srs/internal/app"
	"github.com/polyglothq/adaptive-srs/internal/config"
	placementsvc "github.com/polyglothq/adaptive-srs/internal/service/placement"
	"github.com/polyglothq/adaptive-srs/internal/service/placement/cat"
	"github.com/polyglothq/adaptive-srs/internal/service/stats"
	"github.com/polyglothq/adaptive-srs/internal/service/study"
	"github.com/polyglothq/adaptive-srs/internal/service/study/credit"
	"github.com/polyglothq/adaptive-srs/internal/service/study/fsrs"
	"github.com/polyglothq/adaptive-srs/internal/transport/middleware"
)

// ---------------------------------------------------------------------------
// testServer wraps the full-stack HTTP server for E2E tests.
// ---------------------------------------------------------------------------

type testServer struct {
	URL    string
	Client *http.Client
	Pool   *pgxpool.Pool
}

// testLogWriter adapts testing.T to io.Writer for slog.
type testLogWriter struct{ t *testing.T }

func (w testLogWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}

// setupTestServer bootstraps the full application stack backed by
// a real PostgreSQL container (shared via testhelper).
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	// 1. Get pool from testcontainers-backed helper.
	pool := testhelper.SetupTestDB(t)

	// 2. Infrastructure.
	logger := slog.New(slog.NewTextHandler(testLogWriter{t}, nil))
	txm := postgres.NewTxManager(pool)

	// 3. Repositories.
	learners := learnerrepo.New(pool)
	items := itemrepo.New(pool)
	memories := memoryrepo.New(pool)
	reviewlogs := reviewlogrepo.New(pool)
	placements := placementrepo.New(pool)

	// 4. Services.
	studyService, err := study.NewService(
		logger, learners, items, memories, reviewlogs,
		credit.NewDistributor(), txm,
		study.DefaultConfig(), fsrs.DefaultParameters(),
	)
	require.NoError(t, err)

	placementService := placementsvc.NewService(
		logger, learners, items, placements, txm,
		cat.DefaultParameters(),
	)

	statsService := stats.NewService(logger, learners, reviewlogs)

	// 5. Router plus the production middleware chain (no rate limit in tests).
	mux := app.NewRouter(logger, pool, studyService, placementService, statsService)

	handler := middleware.Chain(
		middleware.RequestID,
		middleware.Logger(logger),
		middleware.Recovery(logger),
		middleware.CORS(config.CORSConfig{
			AllowedOrigins:   "*",
			AllowedMethods:   "GET,POST,OPTIONS",
			AllowedHeaders:   "Authorization,Content-Type",
			AllowCredentials: true,
			MaxAge:           86400,
		}),
	)(mux)

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return &testServer{
		URL:    server.URL,
		Client: server.Client(),
		Pool:   pool,
	}
}

// ---------------------------------------------------------------------------
// Request helpers.
// ---------------------------------------------------------------------------

// postJSON sends a POST with a JSON body and decodes the JSON response.
func postJSON(t *testing.T, ts *testServer, path string, body any) (int, map[string]any) {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := ts.Client.Post(ts.URL+path, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()

	var result map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	return resp.StatusCode, result
}

// getJSON sends a GET and decodes the JSON response.
func getJSON(t *testing.T, ts *testServer, path string) (int, map[string]any) {
	t.Helper()

	resp, err := ts.Client.Get(ts.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()

	var result map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	return resp.StatusCode, result
}

// uniqueLanguage isolates a test's item pool inside the shared database.
func uniqueLanguage() string {
	return "xx-" + uuid.NewString()[:8]
}

// asString extracts a string field from a decoded JSON object.
func asString(t *testing.T, m map[string]any, field string) string {
	t.Helper()
	s, ok := m[field].(string)
	require.True(t, ok, "expected string field %q in %v", field, m)
	return s
}

// asObject extracts a nested object from a decoded JSON object.
func asObject(t *testing.T, m map[string]any, field string) map[string]any {
	t.Helper()
	obj, ok := m[field].(map[string]any)
	require.True(t, ok, "expected object field %q in %v", field, m)
	return obj
}
