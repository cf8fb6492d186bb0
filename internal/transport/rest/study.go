package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/polyglothq/adaptive-srs/internal/domain"
	"github.com/polyglothq/adaptive-srs/internal/service/study"
)

// studyService defines the minimal interface needed by StudyHandler.
type studyService interface {
	BuildQueue(ctx context.Context, input study.BuildQueueInput) (*study.QueueResult, error)
	SubmitReviews(ctx context.Context, input study.SubmitReviewsInput) (*study.SubmitReviewsResult, error)
}

// StudyHandler serves the review queue and review submission endpoints.
type StudyHandler struct {
	svc studyService
	log *slog.Logger
}

// NewStudyHandler creates a StudyHandler.
func NewStudyHandler(svc studyService, logger *slog.Logger) *StudyHandler {
	return &StudyHandler{svc: svc, log: logger.With("handler", "study")}
}

type nextSessionRequest struct {
	User     string `json:"user"`
	Language string `json:"language"`
	Count    int    `json:"count"`
}

type nextSessionResponse struct {
	Items     []itemResponse    `json:"items"`
	UserCEFR  string            `json:"user_cefr"`
	Breakdown breakdownResponse `json:"breakdown"`
	Band      [2]float64        `json:"band"`
}

type breakdownResponse struct {
	Due      int `json:"due"`
	Learning int `json:"learning"`
	New      int `json:"new"`
	Total    int `json:"total"`
}

// NextSession handles POST /v1/sessions/next.
func (h *StudyHandler) NextSession(w http.ResponseWriter, r *http.Request) {
	var req nextSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorDetail(w, http.StatusBadRequest, "validation", "invalid request body")
		return
	}

	result, err := h.svc.BuildQueue(r.Context(), study.BuildQueueInput{
		UserKey:  req.User,
		Language: req.Language,
		Count:    req.Count,
	})
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	items := make([]itemResponse, 0, len(result.Items))
	for _, item := range result.Items {
		items = append(items, toItemResponse(item))
	}

	writeJSON(w, http.StatusOK, nextSessionResponse{
		Items:    items,
		UserCEFR: result.UserCEFR.String(),
		Breakdown: breakdownResponse{
			Due:      result.Breakdown.Due,
			Learning: result.Breakdown.Learning,
			New:      result.Breakdown.New,
			Total:    result.Breakdown.Total,
		},
		Band: result.Band,
	})
}

type reviewRequest struct {
	ItemID         string `json:"item_id"`
	Rating         int    `json:"rating"`
	ResponseTimeMs *int   `json:"response_time_ms"`
	User           string `json:"user"`
}

type submitReviewsResponse struct {
	Updated  int                    `json:"updated"`
	Credited []creditedWordResponse `json:"credited,omitempty"`
	Errors   []reviewErrorResponse  `json:"errors,omitempty"`
}

type creditedWordResponse struct {
	Word       string  `json:"word"`
	Type       string  `json:"credit_type"`
	Multiplier float64 `json:"multiplier"`
	Rating     int     `json:"rating"`
}

type reviewErrorResponse struct {
	ItemID string `json:"item_id"`
	Reason string `json:"reason"`
}

// SubmitReviews handles POST /v1/reviews. The body is an array of rated
// items; every element must carry the same user key.
func (h *StudyHandler) SubmitReviews(w http.ResponseWriter, r *http.Request) {
	var reqs []reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		writeErrorDetail(w, http.StatusBadRequest, "validation", "invalid request body")
		return
	}
	if len(reqs) == 0 {
		writeErrorDetail(w, http.StatusBadRequest, "validation", "at least one review required")
		return
	}

	userKey := reqs[0].User
	reviews := make([]study.ReviewInput, 0, len(reqs))
	for _, req := range reqs {
		if req.User != userKey {
			writeErrorDetail(w, http.StatusBadRequest, "validation", "all reviews in a batch must belong to one user")
			return
		}
		itemID, err := uuid.Parse(req.ItemID)
		if err != nil {
			writeErrorDetail(w, http.StatusBadRequest, "validation", "item_id must be a UUID")
			return
		}
		reviews = append(reviews, study.ReviewInput{
			ItemID:     itemID,
			Rating:     domain.Rating(req.Rating),
			DurationMs: req.ResponseTimeMs,
		})
	}

	result, err := h.svc.SubmitReviews(r.Context(), study.SubmitReviewsInput{
		UserKey: userKey,
		Reviews: reviews,
	})
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	resp := submitReviewsResponse{Updated: result.Updated}
	for _, c := range result.Credited {
		resp.Credited = append(resp.Credited, creditedWordResponse{
			Word:       c.Word,
			Type:       c.Type.String(),
			Multiplier: c.Multiplier,
			Rating:     int(c.Rating),
		})
	}
	for _, e := range result.Errors {
		resp.Errors = append(resp.Errors, reviewErrorResponse{
			ItemID: e.ItemID.String(),
			Reason: e.Reason,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}
