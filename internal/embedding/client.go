package embedding

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"lecture-insights-go/internal/logger"
)

var httpClient = &http.Client{Timeout: 30 * time.Second}

// HTTPEmbedder calls an embedding service exposing
// POST {"text": ...} -> {"embedding": [...]}.
type HTTPEmbedder struct {
	URL string
}

func (e *HTTPEmbedder) Embed(text string) ([]float64, error) {
	if e.URL == "" {
		return nil, fmt.Errorf("embedding service not configured")
	}
	var out struct {
		Embedding []float64 `json:"embedding"`
	}
	if err := postJSON(e.URL, map[string]any{"text": text}, &out); err != nil {
		return nil, fmt.Errorf("embed request: %w", err)
	}
	if len(out.Embedding) == 0 {
		return nil, fmt.Errorf("embedding service returned an empty vector")
	}
	return out.Embedding, nil
}

// HTTPSentenceGrouper calls a semantic sentence-splitting service exposing
// POST {"text": ...} -> {"groups": [["sentence", ...], ...]}.
type HTTPSentenceGrouper struct {
	URL string
}

func (g *HTTPSentenceGrouper) Group(text string) ([][]string, error) {
	if g.URL == "" {
		return nil, fmt.Errorf("sentence grouping service not configured")
	}
	var out struct {
		Groups [][]string `json:"groups"`
	}
	if err := postJSON(g.URL, map[string]any{"text": text}, &out); err != nil {
		return nil, fmt.Errorf("group request: %w", err)
	}
	return out.Groups, nil
}

// postJSON posts a JSON payload with exponential backoff; client errors are
// permanent, server errors retry.
func postJSON(url string, payload any, target any) error {
	log := logger.New().WithComponent("embedding-client").WithField("url", url)

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	var lastErr error
	op := func() error {
		req, err := http.NewRequest("POST", url, bytes.NewReader(data))
		if err != nil {
			lastErr = err
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := httpClient.Do(req)
		if err != nil {
			lastErr = err
			return err
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("server error: %s", body)
			return lastErr
		}
		if resp.StatusCode >= 400 {
			lastErr = fmt.Errorf("client error %d: %s", resp.StatusCode, body)
			return backoff.Permanent(lastErr)
		}
		if err := json.Unmarshal(body, target); err != nil {
			lastErr = fmt.Errorf("json decode error: %v body=%s", err, string(body))
			return lastErr
		}
		lastErr = nil
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = 30 * time.Second
	if err := backoff.Retry(op, b); err != nil {
		log.WithError(lastErr).Error("request failed after retries")
		return lastErr
	}
	return nil
}
