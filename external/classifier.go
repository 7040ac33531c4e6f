package external

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/linesmerrill/fir-api/models"
)

// Classifier asks the section prediction service for the k best penal-code sections
type Classifier struct {
	URL    string
	client *http.Client
}

type suggestRequest struct {
	Text string `json:"text"`
	K    int    `json:"k"`
}

type suggestResponse struct {
	Suggestions []models.Suggestion `json:"suggestions"`
}

// NewClassifier creates a classifier client bounded by timeout per call
func NewClassifier(url string, timeout time.Duration) *Classifier {
	return &Classifier{URL: url, client: newHTTPClient(timeout)}
}

// Suggest returns at most k suggestions ordered by confidence, highest first
func (c *Classifier) Suggest(ctx context.Context, text string, k int) ([]models.Suggestion, error) {
	var out suggestResponse
	if err := postJSON(ctx, c.client, c.URL, suggestRequest{Text: text, K: k}, &out); err != nil {
		return nil, err
	}
	suggestions := out.Suggestions
	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Confidence > suggestions[j].Confidence
	})
	if k > 0 && len(suggestions) > k {
		suggestions = suggestions[:k]
	}
	return suggestions, nil
}
