//go:build e2e

package e2e_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polyglothq/adaptive-srs/internal/adapter/postgres/testhelper"
	"github.com/polyglothq/adaptive-srs/internal/domain"
)

// TestE2E_StudyFlow walks the full review loop: compose a queue of new items,
// submit ratings, see the reviews land in the learner's statistics.
func TestE2E_StudyFlow(t *testing.T) {
	ts := setupTestServer(t)

	user := testhelper.UniqueUserKey()
	language := uniqueLanguage()

	testhelper.SeedLearner(t, ts.Pool, user, domain.CEFRB1, 0)
	for i := range 5 {
		theta := -0.8 + 0.4*float64(i)
		testhelper.SeedVocabularyItem(t, ts.Pool, language, fmt.Sprintf("word-%d-%s", i, user), theta)
	}

	// 1. Compose a session. All five items are unseen, so the queue fills
	// from the NEW tier.
	status, queue := postJSON(t, ts, "/v1/sessions/next", map[string]any{
		"user": user, "language": language, "count": 3,
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "B1", queue["user_cefr"])

	items, ok := queue["items"].([]any)
	require.True(t, ok, "expected items array")
	require.Len(t, items, 3)

	breakdown := asObject(t, queue, "breakdown")
	assert.Equal(t, float64(0), breakdown["due"])
	assert.Equal(t, float64(3), breakdown["new"])
	assert.Equal(t, float64(3), breakdown["total"])

	// 2. Review every item with GOOD.
	var reviews []map[string]any
	for _, raw := range items {
		item := raw.(map[string]any)
		reviews = append(reviews, map[string]any{
			"item_id":          item["id"],
			"rating":           3,
			"response_time_ms": 1500,
			"user":             user,
		})
	}
	status, result := postJSON(t, ts, "/v1/reviews", reviews)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(3), result["updated"])
	assert.Nil(t, result["errors"])

	// 3. An unknown item is skipped, the rest of the batch applies.
	status, result = postJSON(t, ts, "/v1/reviews", []map[string]any{
		{"item_id": uuid.NewString(), "rating": 3, "user": user},
		{"item_id": items[0].(map[string]any)["id"], "rating": 4, "user": user},
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), result["updated"])
	errs, ok := result["errors"].([]any)
	require.True(t, ok, "expected errors array")
	require.Len(t, errs, 1)

	// 4. Statistics reflect the four applied reviews.
	status, statsBody := getJSON(t, ts, "/v1/stats/"+user)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, user, statsBody["user"])
	assert.Equal(t, "B1", statsBody["level"])
	assert.Equal(t, float64(4), statsBody["total_reviews"])
	assert.Equal(t, float64(100), statsBody["accuracy_percent"])

	languages, ok := statsBody["languages"].([]any)
	require.True(t, ok, "expected languages array")
	require.Len(t, languages, 1)
	assert.Equal(t, language, languages[0].(map[string]any)["language"])
}

// TestE2E_StudyQueue_EmptyForCaughtUpLearner verifies zero items is a valid
// session response.
func TestE2E_StudyQueue_EmptyForCaughtUpLearner(t *testing.T) {
	ts := setupTestServer(t)

	user := testhelper.UniqueUserKey()
	testhelper.SeedLearner(t, ts.Pool, user, domain.CEFRB1, 0)

	status, queue := postJSON(t, ts, "/v1/sessions/next", map[string]any{
		"user": user, "language": uniqueLanguage(), "count": 10,
	})
	require.Equal(t, http.StatusOK, status)

	items, ok := queue["items"].([]any)
	require.True(t, ok, "expected items array, got %v", queue["items"])
	assert.Empty(t, items)

	breakdown := asObject(t, queue, "breakdown")
	assert.Equal(t, float64(0), breakdown["total"])
}

// TestE2E_Reviews_ValidationFailures covers the batch envelope errors.
func TestE2E_Reviews_ValidationFailures(t *testing.T) {
	ts := setupTestServer(t)

	// Empty batch.
	status, body := postJSON(t, ts, "/v1/reviews", []map[string]any{})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "validation", body["error"])

	// Mixed users in one batch.
	status, body = postJSON(t, ts, "/v1/reviews", []map[string]any{
		{"item_id": uuid.NewString(), "rating": 3, "user": "anna"},
		{"item_id": uuid.NewString(), "rating": 3, "user": "boris"},
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "validation", body["error"])
}
