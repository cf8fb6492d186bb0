package app

import (
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/polyglothq/adaptive-srs/internal/service/placement"
	"github.com/polyglothq/adaptive-srs/internal/service/stats"
	"github.com/polyglothq/adaptive-srs/internal/service/study"
	"github.com/polyglothq/adaptive-srs/internal/transport/rest"
)

// NewRouter builds the HTTP route table. Middleware is applied by the caller.
func NewRouter(
	logger *slog.Logger,
	pool *pgxpool.Pool,
	studyService *study.Service,
	placementService *placement.Service,
	statsService *stats.Service,
) *http.ServeMux {
	healthHandler := rest.NewHealthHandler(pool, BuildVersion())
	studyHandler := rest.NewStudyHandler(studyService, logger)
	placementHandler := rest.NewPlacementHandler(placementService, logger)
	statsHandler := rest.NewStatsHandler(statsService, logger)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /live", healthHandler.Live)
	mux.HandleFunc("GET /ready", healthHandler.Ready)
	mux.HandleFunc("GET /health", healthHandler.Health)

	mux.HandleFunc("POST /v1/sessions/next", studyHandler.NextSession)
	mux.HandleFunc("POST /v1/reviews", studyHandler.SubmitReviews)

	mux.HandleFunc("POST /v1/placement/start", placementHandler.Start)
	mux.HandleFunc("POST /v1/placement/answer", placementHandler.Answer)
	mux.HandleFunc("POST /v1/placement/cancel", placementHandler.Cancel)

	mux.HandleFunc("GET /v1/stats/{user}", statsHandler.Get)

	return mux
}
