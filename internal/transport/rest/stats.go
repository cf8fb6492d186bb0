package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/polyglothq/adaptive-srs/internal/service/stats"
)

// statsService defines the minimal interface needed by StatsHandler.
type statsService interface {
	GetUserStats(ctx context.Context, userKey string) (*stats.UserStats, error)
}

// StatsHandler serves the learner statistics endpoint.
type StatsHandler struct {
	svc statsService
	log *slog.Logger
}

// NewStatsHandler creates a StatsHandler.
func NewStatsHandler(svc statsService, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{svc: svc, log: logger.With("handler", "stats")}
}

type statsResponse struct {
	User            string                  `json:"user"`
	Level           string                  `json:"level"`
	Theta           float64                 `json:"theta"`
	TotalReviews    int                     `json:"total_reviews"`
	AccuracyPercent float64                 `json:"accuracy_percent"`
	StreakDays      int                     `json:"streak_days"`
	Ratings         []ratingCountResponse   `json:"ratings"`
	DailyActivity   []dayCountResponse      `json:"daily_activity"`
	Languages       []languageCountResponse `json:"languages"`
}

type ratingCountResponse struct {
	Rating int `json:"rating"`
	Count  int `json:"count"`
}

type dayCountResponse struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type languageCountResponse struct {
	Language string `json:"language"`
	Count    int    `json:"count"`
}

// Get handles GET /v1/stats/{user}.
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	userKey := r.PathValue("user")

	result, err := h.svc.GetUserStats(r.Context(), userKey)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	resp := statsResponse{
		User:            result.UserKey,
		Level:           result.Level.String(),
		Theta:           result.Theta,
		TotalReviews:    result.TotalReviews,
		AccuracyPercent: result.AccuracyPercent,
		StreakDays:      result.StreakDays,
		Ratings:         make([]ratingCountResponse, 0, len(result.Ratings)),
		DailyActivity:   make([]dayCountResponse, 0, len(result.DailyActivity)),
		Languages:       make([]languageCountResponse, 0, len(result.Languages)),
	}
	for _, rc := range result.Ratings {
		resp.Ratings = append(resp.Ratings, ratingCountResponse{Rating: int(rc.Rating), Count: rc.Count})
	}
	for _, dc := range result.DailyActivity {
		resp.DailyActivity = append(resp.DailyActivity, dayCountResponse{
			Date:  dc.Date.Format("2006-01-02"),
			Count: dc.Count,
		})
	}
	for _, lc := range result.Languages {
		resp.Languages = append(resp.Languages, languageCountResponse{Language: lc.Language, Count: lc.Count})
	}

	writeJSON(w, http.StatusOK, resp)
}
