package rest

import "github.com/polyglothq/adaptive-srs/internal/domain"

// itemResponse is the wire form of a content item, shared by the study and
// placement endpoints.
type itemResponse struct {
	ID       string          `json:"id"`
	Language string          `json:"language"`
	Type     string          `json:"item_type"`
	Payload  payloadResponse `json:"payload"`
	Theta    *float64        `json:"theta,omitempty"`
}

type payloadResponse struct {
	TargetWord    string `json:"target_word"`
	Translation   string `json:"translation,omitempty"`
	Sentence      string `json:"sentence,omitempty"`
	FrequencyRank *int   `json:"frequency_rank,omitempty"`
}

func toItemResponse(item domain.Item) itemResponse {
	return itemResponse{
		ID:       item.ID.String(),
		Language: item.Language,
		Type:     item.Type.String(),
		Payload: payloadResponse{
			TargetWord:    item.Payload.TargetWord,
			Translation:   item.Payload.Translation,
			Sentence:      item.Payload.Sentence,
			FrequencyRank: item.Payload.FrequencyRank,
		},
		Theta: item.Theta,
	}
}
