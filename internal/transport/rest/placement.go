package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/polyglothq/adaptive-srs/internal/domain"
	"github.com/polyglothq/adaptive-srs/internal/service/placement"
)

// placementService defines the minimal interface needed by PlacementHandler.
type placementService interface {
	StartSession(ctx context.Context, input placement.StartSessionInput) (*placement.StartSessionResult, error)
	SubmitAnswer(ctx context.Context, input placement.SubmitAnswerInput) (*placement.SubmitAnswerResult, error)
	Cancel(ctx context.Context, input placement.CancelSessionInput) (*placement.FinalResults, error)
}

// PlacementHandler serves the adaptive placement test endpoints.
type PlacementHandler struct {
	svc placementService
	log *slog.Logger
}

// NewPlacementHandler creates a PlacementHandler.
func NewPlacementHandler(svc placementService, logger *slog.Logger) *PlacementHandler {
	return &PlacementHandler{svc: svc, log: logger.With("handler", "placement")}
}

type startSessionRequest struct {
	User         string `json:"user"`
	Language     string `json:"language"`
	ClaimedLevel string `json:"claimed_level,omitempty"`
}

type startSessionResponse struct {
	SessionID string           `json:"session_id"`
	Item      itemResponse     `json:"item"`
	Progress  progressResponse `json:"progress"`
}

type progressResponse struct {
	ItemsCompleted int        `json:"items_completed"`
	EstimatedLevel string     `json:"estimated_level"`
	CI             [2]float64 `json:"ci"`
}

// Start handles POST /v1/placement/start.
func (h *PlacementHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorDetail(w, http.StatusBadRequest, "validation", "invalid request body")
		return
	}

	input := placement.StartSessionInput{
		UserKey:  req.User,
		Language: req.Language,
	}
	if req.ClaimedLevel != "" {
		level := domain.CEFRLevel(req.ClaimedLevel)
		input.ClaimedLevel = &level
	}

	result, err := h.svc.StartSession(r.Context(), input)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, startSessionResponse{
		SessionID: result.SessionID.String(),
		Item:      toItemResponse(result.Item),
		Progress:  toProgressResponse(result.Progress),
	})
}

type submitAnswerRequest struct {
	SessionID      string `json:"session_id"`
	ItemID         string `json:"item_id"`
	User           string `json:"user"`
	UserAnswer     string `json:"user_answer"`
	ResponseTimeMs *int   `json:"response_time_ms"`
}

type submitAnswerResponse struct {
	Complete bool                  `json:"complete"`
	Item     *itemResponse         `json:"item,omitempty"`
	Feedback *feedbackResponse     `json:"feedback,omitempty"`
	Progress *progressResponse     `json:"progress,omitempty"`
	Results  *finalResultsResponse `json:"results,omitempty"`
}

type feedbackResponse struct {
	WasCorrect    bool   `json:"was_correct"`
	CorrectAnswer string `json:"correct_answer"`
}

type finalResultsResponse struct {
	CEFRLevel      string     `json:"cefr_level"`
	Theta          float64    `json:"theta"`
	CI             [2]float64 `json:"ci"`
	ItemsCompleted int        `json:"items_completed"`
	KnownWords     []string   `json:"known_words"`
}

// Answer handles POST /v1/placement/answer. The user_answer field is the
// self-assessment rating as the string "1".."4".
func (h *PlacementHandler) Answer(w http.ResponseWriter, r *http.Request) {
	var req submitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorDetail(w, http.StatusBadRequest, "validation", "invalid request body")
		return
	}

	sessionID, err := uuid.Parse(req.SessionID)
	if err != nil {
		writeErrorDetail(w, http.StatusBadRequest, "validation", "session_id must be a UUID")
		return
	}
	itemID, err := uuid.Parse(req.ItemID)
	if err != nil {
		writeErrorDetail(w, http.StatusBadRequest, "validation", "item_id must be a UUID")
		return
	}
	answer, err := strconv.Atoi(req.UserAnswer)
	if err != nil || !domain.Rating(answer).IsValid() {
		writeError(w, http.StatusBadRequest, "invalid_rating")
		return
	}

	result, err := h.svc.SubmitAnswer(r.Context(), placement.SubmitAnswerInput{
		SessionID:  sessionID,
		ItemID:     itemID,
		UserKey:    req.User,
		Rating:     domain.Rating(answer),
		DurationMs: req.ResponseTimeMs,
	})
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	resp := submitAnswerResponse{Complete: result.Complete}
	if result.Item != nil {
		item := toItemResponse(*result.Item)
		resp.Item = &item
	}
	if result.Feedback != nil {
		resp.Feedback = &feedbackResponse{
			WasCorrect:    result.Feedback.WasCorrect,
			CorrectAnswer: result.Feedback.CorrectAnswer,
		}
	}
	if result.Progress != nil {
		progress := toProgressResponse(*result.Progress)
		resp.Progress = &progress
	}
	if result.Results != nil {
		results := toFinalResultsResponse(result.Results)
		resp.Results = &results
	}

	writeJSON(w, http.StatusOK, resp)
}

type cancelSessionRequest struct {
	SessionID string `json:"session_id"`
	User      string `json:"user"`
}

// Cancel handles POST /v1/placement/cancel. The session is finalized from its
// last known ability estimate.
func (h *PlacementHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	var req cancelSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorDetail(w, http.StatusBadRequest, "validation", "invalid request body")
		return
	}

	sessionID, err := uuid.Parse(req.SessionID)
	if err != nil {
		writeErrorDetail(w, http.StatusBadRequest, "validation", "session_id must be a UUID")
		return
	}

	results, err := h.svc.Cancel(r.Context(), placement.CancelSessionInput{
		SessionID: sessionID,
		UserKey:   req.User,
	})
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	resultsResp := toFinalResultsResponse(results)
	writeJSON(w, http.StatusOK, submitAnswerResponse{
		Complete: true,
		Results:  &resultsResp,
	})
}

func toProgressResponse(p placement.Progress) progressResponse {
	return progressResponse{
		ItemsCompleted: p.ItemsCompleted,
		EstimatedLevel: p.EstimatedLevel.String(),
		CI:             p.CI,
	}
}

func toFinalResultsResponse(r *placement.FinalResults) finalResultsResponse {
	known := r.KnownWords
	if known == nil {
		known = []string{}
	}
	return finalResultsResponse{
		CEFRLevel:      r.Level.String(),
		Theta:          r.Theta,
		CI:             r.CI,
		ItemsCompleted: r.ItemsCompleted,
		KnownWords:     known,
	}
}
