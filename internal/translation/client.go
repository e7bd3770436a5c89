package translation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Result contains the outcome of a translation lookup.
type Result struct {
	Text         string
	Translation  string
	Alternatives []string
}

// Client defines the interface for translation API providers.
type Client interface {
	Translate(ctx context.Context, text, source, target string) (*Result, error)
	Name() string
}

// LibreTranslateClient implements Client against a LibreTranslate-compatible
// endpoint.
type LibreTranslateClient struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	rateLimiter *rateLimiter
}

type rateLimiter struct {
	mu       sync.Mutex
	lastCall time.Time
	interval time.Duration
}

func newRateLimiter(interval time.Duration) *rateLimiter {
	return &rateLimiter{interval: interval}
}

func (r *rateLimiter) wait() {
	r.mu.Lock()
	defer r.mu.Unlock()

	since := time.Since(r.lastCall)
	if since < r.interval {
		time.Sleep(r.interval - since)
	}
	r.lastCall = time.Now()
}

// NewLibreTranslateClient creates a client for the given endpoint. The API
// key may be empty for self-hosted instances.
func NewLibreTranslateClient(baseURL, apiKey string) *LibreTranslateClient {
	return &LibreTranslateClient{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		rateLimiter: newRateLimiter(500 * time.Millisecond),
	}
}

func (c *LibreTranslateClient) Name() string {
	return "libretranslate"
}

// Translate fetches a translation for the given text.
func (c *LibreTranslateClient) Translate(ctx context.Context, text, source, target string) (*Result, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("empty text")
	}

	c.rateLimiter.wait()

	payload := translateRequest{
		Q:            text,
		Source:       source,
		Target:       target,
		Format:       "text",
		Alternatives: 3,
		APIKey:       c.apiKey,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/translate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "ReadingCompanion/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch translation: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var apiResponse translateResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if apiResponse.TranslatedText == "" {
		return nil, fmt.Errorf("empty translation for text: %s", text)
	}

	return &Result{
		Text:         text,
		Translation:  apiResponse.TranslatedText,
		Alternatives: apiResponse.Alternatives,
	}, nil
}

// LibreTranslate API request/response types

type translateRequest struct {
	Q            string `json:"q"`
	Source       string `json:"source"`
	Target       string `json:"target"`
	Format       string `json:"format"`
	Alternatives int    `json:"alternatives,omitempty"`
	APIKey       string `json:"api_key,omitempty"`
}

type translateResponse struct {
	TranslatedText string   `json:"translatedText"`
	Alternatives   []string `json:"alternatives"`
}
