// Package llm is a resilient client for OpenAI-compatible chat-completion
// services. It supports two addressing conventions (generic and
// managed-cloud) and owns the retry, backoff, and failure-classification
// policy for completion calls.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog/log"
)

// azureHostMarker selects the managed-cloud addressing convention. The
// decision is made from the configured endpoint host only, never from
// response content.
const azureHostMarker = ".openai.azure.com"

const defaultAPIVersion = "2024-02-15-preview"

// Config is the immutable construction-time configuration of a Client.
// Credentials are opaque strings supplied by the caller.
type Config struct {
	// BaseURL is the service endpoint, e.g. "https://api.openai.com/v1" or
	// "https://myresource.openai.azure.com".
	BaseURL string
	APIKey  string
	// Model is named in the request body under the generic convention.
	Model string
	// Deployment addresses the managed-cloud convention; required when the
	// endpoint host carries the managed-cloud marker.
	Deployment string
	// APIVersion is the query-string version parameter of the managed-cloud
	// convention. Empty selects a current default.
	APIVersion string
	// MaxRetries bounds retries after the initial attempt. Zero selects the
	// default of 4; negative disables retries.
	MaxRetries int
	// BaseDelay seeds the exponential backoff. Zero selects 1s.
	BaseDelay time.Duration
	// Timeout bounds a single completion attempt. Zero selects 2m;
	// generation latency runs to minutes.
	Timeout time.Duration

	HTTPClient *http.Client
}

// Client issues chat-completion requests. Construct once per process;
// safe for concurrent use, holds no per-call state.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("llm: base URL required")
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 4
	} else if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = defaultAPIVersion
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{cfg: cfg, httpClient: httpClient}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model,omitempty"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends a system/user prompt pair and returns the generated text.
// Transient failures (network errors, 429, 5xx) are retried with
// exponential backoff plus jitter, honoring a server Retry-After hint
// verbatim when present. Quota exhaustion and other non-retryable statuses
// fail immediately as *PermanentError. Exhausting the retry budget converts
// the last transient failure into an error reported to the caller.
func (c *Client) Complete(ctx context.Context, system, user string, maxTokens int) (string, error) {
	req, err := c.buildRequest(system, user, maxTokens)
	if err != nil {
		return "", err
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.cfg.BaseDelay
	bo.Multiplier = 2
	bo.RandomizationFactor = 0.2
	bo.MaxInterval = 2 * time.Minute

	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		text, hint, err := c.tryOnce(ctx, req)
		if err == nil {
			return text, nil
		}
		var perm *PermanentError
		if errors.As(err, &perm) {
			return "", err
		}
		lastErr = err
		if attempt == c.cfg.MaxRetries {
			break
		}
		delay := bo.NextBackOff()
		if hint > 0 {
			// Server knows better than our computed schedule.
			delay = hint
		}
		log.Debug().Err(err).Dur("delay", delay).Int("attempt", attempt+1).Msg("completion retry")
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return "", fmt.Errorf("completion failed after %d attempts: %w", c.cfg.MaxRetries+1, lastErr)
}

type preparedRequest struct {
	url     string
	headers map[string]string
	body    []byte
}

// buildRequest shapes the request once per call according to the addressing
// convention selected from the endpoint host.
func (c *Client) buildRequest(system, user string, maxTokens int) (*preparedRequest, error) {
	base, err := url.Parse(c.cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("llm: parse base URL: %w", err)
	}
	managed := strings.Contains(strings.ToLower(base.Hostname()), azureHostMarker)
	if managed && strings.TrimSpace(c.cfg.Deployment) == "" {
		return nil, ErrMissingDeployment
	}

	payload := chatRequest{
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: 0.2,
		MaxTokens:   maxTokens,
	}

	req := &preparedRequest{headers: map[string]string{"Content-Type": "application/json"}}
	if managed {
		req.url = strings.TrimRight(c.cfg.BaseURL, "/") +
			"/openai/deployments/" + url.PathEscape(c.cfg.Deployment) +
			"/chat/completions?api-version=" + url.QueryEscape(c.cfg.APIVersion)
		req.headers["api-key"] = c.cfg.APIKey
	} else {
		payload.Model = c.cfg.Model
		req.url = strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
		req.headers["Authorization"] = "Bearer " + c.cfg.APIKey
	}

	req.body, err = json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("llm: marshal request: %w", err)
	}
	return req, nil
}

// tryOnce performs a single attempt. The returned duration is a server
// retry-delay hint, zero when none was provided. Errors are either
// *TransientError, *PermanentError, or a raw network error (transient).
func (c *Client) tryOnce(ctx context.Context, req *preparedRequest) (string, time.Duration, error) {
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.url, bytes.NewReader(req.body))
	if err != nil {
		return "", 0, &PermanentError{Detail: err.Error()}
	}
	for k, v := range req.headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		// Connection refused, timeout, DNS: always transient.
		return "", 0, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		var parsed chatResponse
		if err := json.Unmarshal(body, &parsed); err != nil {
			return "", 0, &PermanentError{Status: resp.StatusCode, Detail: "malformed response: " + err.Error()}
		}
		if len(parsed.Choices) == 0 {
			return "", 0, &PermanentError{Status: resp.StatusCode, Detail: "response carried no choices"}
		}
		return parsed.Choices[0].Message.Content, 0, nil
	}

	detail := strings.TrimSpace(string(body))
	if isQuotaExhausted(detail) {
		// Quota is permanent regardless of status; retrying burns time for
		// nothing and the caller needs the detail surfaced.
		return "", 0, &PermanentError{Status: resp.StatusCode, Detail: detail, Quota: true}
	}
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return "", retryAfterHint(resp), &TransientError{Status: resp.StatusCode, Detail: detail}
	}
	return "", 0, &PermanentError{Status: resp.StatusCode, Detail: detail}
}

func isQuotaExhausted(body string) bool {
	lower := strings.ToLower(body)
	return strings.Contains(lower, "insufficient_quota") ||
		strings.Contains(lower, "exceeded your current quota")
}

// retryAfterHint parses the standard retry-delay header, seconds form only.
func retryAfterHint(resp *http.Response) time.Duration {
	raw := strings.TrimSpace(resp.Header.Get("Retry-After"))
	if raw == "" {
		return 0
	}
	secs, err := strconv.Atoi(raw)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
