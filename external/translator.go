package external

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// Translator calls a LibreTranslate compatible endpoint
type Translator struct {
	URL    string
	client *http.Client
}

type translateRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
}

type translateResponse struct {
	TranslatedText string `json:"translatedText"`
}

// NewTranslator creates a translator bounded by timeout per call
func NewTranslator(url string, timeout time.Duration) *Translator {
	return &Translator{URL: url, client: newHTTPClient(timeout)}
}

// Translate converts text from source (or "auto") into target
func (t *Translator) Translate(ctx context.Context, text, source, target string) (string, error) {
	var out translateResponse
	err := postJSON(ctx, t.client, t.URL, translateRequest{Q: text, Source: source, Target: target, Format: "text"}, &out)
	if err != nil {
		return "", err
	}
	if out.TranslatedText == "" {
		return "", errors.New("translation service returned no text")
	}
	return out.TranslatedText, nil
}
