// Package issues pulls content links out of a GitHub repository's issues.
// It is the upstream item source of the digest pipeline.
package issues

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const defaultAPIBase = "https://api.github.com"

var urlPattern = regexp.MustCompile(`(?i)https?://\S+`)

// Item is one link surfaced in an issue, with the originating issue as
// context. Immutable once produced.
type Item struct {
	URL     string
	Context string
}

// Client lists recently updated issues of one repository. Token is
// optional; without it, API rate limits are much tighter.
type Client struct {
	// Repo is "owner/name".
	Repo    string
	Token   string
	APIBase string

	HTTPClient *http.Client
}

type issue struct {
	Number      int             `json:"number"`
	Title       string          `json:"title"`
	Body        string          `json:"body"`
	PullRequest json.RawMessage `json:"pull_request"`
}

// FetchItems returns the deduplicated links found in issues updated since
// midnight UTC, newest first. Pull requests are skipped.
func (c *Client) FetchItems(ctx context.Context) ([]Item, error) {
	if strings.TrimSpace(c.Repo) == "" {
		return nil, fmt.Errorf("issues: repository not configured")
	}
	base := c.APIBase
	if base == "" {
		base = defaultAPIBase
	}

	params := url.Values{}
	params.Set("state", "all")
	params.Set("sort", "updated")
	params.Set("direction", "desc")
	params.Set("since", sinceMidnightUTC(time.Now()))
	params.Set("per_page", "100")

	endpoint := fmt.Sprintf("%s/repos/%s/issues?%s", strings.TrimRight(base, "/"), c.Repo, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("issues: new request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("issues: list issues: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("issues: list issues: status %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	var list []issue
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("issues: decode issues: %w", err)
	}

	seen := make(map[string]struct{})
	var items []Item
	for _, is := range list {
		if len(is.PullRequest) > 0 {
			continue
		}
		for _, u := range append(ExtractURLs(is.Title), ExtractURLs(is.Body)...) {
			if _, ok := seen[u]; ok {
				continue
			}
			seen[u] = struct{}{}
			items = append(items, Item{
				URL:     u,
				Context: fmt.Sprintf("Issue #%d: %s", is.Number, is.Title),
			})
		}
	}
	log.Info().Int("count", len(items)).Str("repo", c.Repo).Msg("links collected from issues")
	return items, nil
}

// ExtractURLs pulls http(s) links out of free text, trimming trailing
// punctuation that issue prose tends to attach to them.
func ExtractURLs(text string) []string {
	if text == "" {
		return nil
	}
	matches := urlPattern.FindAllString(text, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, strings.TrimRight(m, `).,;'"`))
	}
	return out
}

func sinceMidnightUTC(now time.Time) string {
	now = now.UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return midnight.Format(time.RFC3339)
}
