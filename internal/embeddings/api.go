package embeddings

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/rcihq/rci/internal/constants"
	"github.com/rcihq/rci/internal/rcierr"
)

// APIEmbedder calls an OpenAI-compatible embeddings endpoint, with
// batching, truncation, and retry-with-backoff (spec §4.2).
type APIEmbedder struct {
	url        string
	apiKey     string
	model      string
	maxTokens  int
	client     *http.Client
	batchSize  int
	maxRetries int
	retryDelay time.Duration
	rateLimit  time.Duration
}

// NewAPI builds an APIEmbedder against url for the given model, using
// apiKey (if non-empty) as a bearer token.
func NewAPI(url, apiKey, model string) *APIEmbedder {
	d := DescribeModel(model)
	return &APIEmbedder{
		url:        url,
		apiKey:     apiKey,
		model:      model,
		maxTokens:  d.MaxTokens,
		client:     &http.Client{Timeout: 30 * time.Second},
		batchSize:  constants.EmbedBatchSize,
		maxRetries: constants.EmbedMaxRetries,
		retryDelay: constants.EmbedRetryBaseDelayMS * time.Millisecond,
		rateLimit:  constants.EmbedRateLimitSleepMS * time.Millisecond,
	}
}

func (e *APIEmbedder) Embed(texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	filtered := make([]string, 0, len(texts))
	for _, t := range texts {
		if strings.TrimSpace(t) != "" {
			filtered = append(filtered, t)
		}
	}
	if len(filtered) == 0 {
		return nil, rcierr.New(rcierr.EmbeddingError, errors.New("empty input"))
	}

	truncated := make([]string, len(filtered))
	for i, t := range filtered {
		truncated[i] = truncateText(t, e.maxTokens)
	}

	result := make([][]float32, 0, len(truncated))
	for start := 0; start < len(truncated); start += e.batchSize {
		end := start + e.batchSize
		if end > len(truncated) {
			end = len(truncated)
		}
		vecs, err := e.embedBatchWithRetry(truncated[start:end])
		if err != nil {
			return nil, err
		}
		result = append(result, vecs...)
		if end < len(truncated) {
			time.Sleep(e.rateLimit)
		}
	}
	return result, nil
}

func (e *APIEmbedder) embedBatchWithRetry(batch []string) ([][]float32, error) {
	var lastErr error
	for attempt := 1; attempt <= e.maxRetries; attempt++ {
		vecs, retryable, err := e.embedBatchOnce(batch)
		if err == nil {
			return vecs, nil
		}
		if !retryable {
			return nil, err
		}
		lastErr = err
		if attempt < e.maxRetries {
			time.Sleep(e.retryDelay * time.Duration(attempt))
		}
	}
	return nil, fmt.Errorf("embed batch: exhausted retries: %w", lastErr)
}

type embedAPIRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedAPIDatum struct {
	Index     int       `json:"index"`
	Embedding []float32 `json:"embedding"`
}

type embedAPIResponse struct {
	Data []embedAPIDatum `json:"data"`
}

// embedBatchOnce returns (vectors, retryable, err): retryable is true when
// the caller should back off and try again rather than surface err.
func (e *APIEmbedder) embedBatchOnce(batch []string) ([][]float32, bool, error) {
	body, err := json.Marshal(embedAPIRequest{Model: e.model, Input: batch})
	if err != nil {
		return nil, false, fmt.Errorf("encode embed request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, e.url, bytes.NewReader(body))
	if err != nil {
		return nil, false, fmt.Errorf("build embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("embed request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("read embed response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, false, rcierr.New(rcierr.AuthFailed, fmt.Errorf("embedding provider: %s", resp.Status))
	}
	if strings.Contains(strings.ToLower(string(payload)), "quota") {
		return nil, false, rcierr.New(rcierr.QuotaExceeded, fmt.Errorf("embedding provider: %s", resp.Status))
	}
	if resp.StatusCode >= 300 {
		return nil, true, fmt.Errorf("embedding provider: %s", resp.Status)
	}

	var decoded embedAPIResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return nil, true, fmt.Errorf("decode embed response: %w", err)
	}

	sort.Slice(decoded.Data, func(i, j int) bool { return decoded.Data[i].Index < decoded.Data[j].Index })
	vecs := make([][]float32, len(decoded.Data))
	for i, d := range decoded.Data {
		vecs[i] = d.Embedding
	}
	return vecs, false, nil
}

// truncateText caps s so its estimated token count fits in 90% of
// maxTokens. The estimator charges 0.25 tokens per ASCII rune and 1 token
// per non-ASCII rune (spec §4.2); truncated output is marked with "…".
func truncateText(s string, maxTokens int) string {
	budget := float64(maxTokens) * 0.9

	runes := []rune(s)
	cost := make([]float64, len(runes))
	total := 0.0
	for i, r := range runes {
		c := 1.0
		if r < 128 {
			c = 0.25
		}
		cost[i] = c
		total += c
	}
	if total <= budget {
		return s
	}

	acc := 0.0
	cut := len(runes)
	for i, c := range cost {
		acc += c
		if acc > budget {
			cut = i
			break
		}
	}
	return string(runes[:cut]) + "…"
}
