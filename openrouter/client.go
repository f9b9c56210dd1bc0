// Package openrouter is a minimal client for the OpenRouter chat
// completions API.
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"math"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://openrouter.ai/api/v1/chat/completions"

type Config struct {
	APIKey            string
	Model             string
	BaseURL           string
	RequestTimeout    time.Duration
	RateLimit         int
	RateLimitInterval time.Duration
}

// Client posts chat completion requests with rate limiting, retries,
// and an in-memory response cache keyed by the caller.
type Client struct {
	config  Config
	client  *http.Client
	limiter *rate.Limiter
	logger  *logrus.Logger

	mu    sync.Mutex
	cache map[string]string
}

func NewClient(config Config) *Client {
	if config.Model == "" {
		config.Model = "google/gemini-2.0-flash-001"
	}
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = 2 * time.Minute
	}
	if config.RateLimit <= 0 {
		config.RateLimit = 5
	}
	if config.RateLimitInterval <= 0 {
		config.RateLimitInterval = time.Second
	}

	return &Client{
		config:  config,
		client:  &http.Client{Timeout: config.RequestTimeout},
		limiter: rate.NewLimiter(rate.Every(config.RateLimitInterval), config.RateLimit),
		logger:  logrus.StandardLogger(),
		cache:   make(map[string]string),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type chatChoice struct {
	Message chatMessage `json:"message"`
	Text    string      `json:"text"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
}

// Complete sends instructions and text as a single user message and
// returns the model's reply. When cacheKey is non-empty, a repeated
// call with the same key is served from memory.
func (c *Client) Complete(ctx context.Context, instructions, text string, maxTokens int, cacheKey string) (string, error) {
	const (
		maxRetries     = 3
		initialBackoff = 2 * time.Second
		maxBackoff     = 30 * time.Second
		backoffFactor  = 2.0
	)

	if c.config.APIKey == "" {
		return "", errors.New("openrouter api key is not set")
	}

	if cacheKey != "" {
		if cached, ok := c.cached(cacheKey); ok {
			c.logger.WithFields(logrus.Fields{
				"key": cacheKey,
			}).Debug("Serving completion from cache")
			return cached, nil
		}
	}

	body, err := json.Marshal(chatRequest{
		Model: c.config.Model,
		Messages: []chatMessage{
			{Role: "user", Content: instructions + ":\n\n" + text},
		},
		MaxTokens: maxTokens,
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to encode request")
	}

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}

		content, retryable, err := c.post(ctx, body)
		if err == nil {
			if cacheKey != "" {
				c.store(cacheKey, content)
			}
			return content, nil
		}
		lastErr = err
		if !retryable {
			return "", err
		}

		c.logger.WithFields(logrus.Fields{
			"attempt":    attempt,
			"maxRetries": maxRetries,
			"error":      err,
		}).Warn("OpenRouter request failed")

		if attempt == maxRetries {
			break
		}

		backoff := time.Duration(float64(initialBackoff) * math.Pow(backoffFactor, float64(attempt-1)))
		if backoff > maxBackoff {
			backoff = maxBackoff
		}

		select {
		case <-time.After(backoff + time.Duration(rand.Int63n(int64(backoff/2)))):
			// Continue to the next retry attempt
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	return "", errors.Wrapf(lastErr, "openrouter request failed after %d attempts", maxRetries)
}

// post performs one API call. The bool reports whether the failure is
// worth retrying: transport errors, 5xx, and 429 are; other statuses
// and malformed success bodies are not.
func (c *Client) post(ctx context.Context, body []byte) (string, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL, bytes.NewReader(body))
	if err != nil {
		return "", false, errors.Wrap(err, "failed to build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("HTTP-Referer", "https://github.com/rhit-monroeds/youtube-transcripts")
	req.Header.Set("X-Title", "youtube-transcripts")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", true, errors.Wrap(err, "request failed")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", true, errors.Wrap(err, "failed to read response")
	}

	if resp.StatusCode != http.StatusOK {
		retryable := resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests
		return "", retryable, errors.Errorf("API returned status %d: %s", resp.StatusCode, truncate(raw))
	}

	var parsed chatResponse
	if err := json.Unmarshal(bytes.TrimSpace(raw), &parsed); err != nil {
		return "", false, errors.Wrap(err, "failed to decode response")
	}
	if len(parsed.Choices) == 0 {
		return "", false, errors.New("response contained no choices")
	}

	content := parsed.Choices[0].Message.Content
	if content == "" {
		content = parsed.Choices[0].Text
	}
	if content == "" {
		return "", false, errors.New("response contained no content")
	}
	return content, false, nil
}

func (c *Client) cached(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.cache[key]
	return v, ok
}

func (c *Client) store(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache[key] = value
}

func truncate(b []byte) string {
	s := string(b)
	if len(s) > 512 {
		return s[:512] + "..."
	}
	return s
}

// CacheKey derives a stable cache key from a prefix and text content.
func CacheKey(prefix, text string) string {
	h := fnv.New64a()
	h.Write([]byte(text))
	return fmt.Sprintf("%s_%x", prefix, h.Sum64())
}
