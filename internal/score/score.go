// Package score computes a weighted relevance score and a discrete
// recommendation for a fetched item. The engine is a pure function of its
// inputs plus a host-weight table loaded once at construction.
package score

import (
	"net/url"
	"strings"
	"time"

	"github.com/jnolting/contentdigest/internal/source"
)

// Per-factor caps. The four subscores always sum to a total in [0, 100].
const (
	topicCap       = 40
	densityCap     = 25
	timeCap        = 20
	credibilityCap = 15
)

// techTokens in a title act as a proxy for code-heavy technical content and
// earn a small density bonus.
var techTokens = []string{"c#", "dotnet", ".net", "kubernetes", "jwt", "oidc", "rocm", "pytorch", "bambu"}

// Label is the discrete recommendation derived from the total score.
type Label string

const (
	ReadWatch Label = "Read/Watch"
	Skim      Label = "Skim"
	Skip      Label = "Skip"
)

// Breakdown reports each subscore individually so callers can surface the
// rationale, not just the final number. Host is recorded for audit.
type Breakdown struct {
	TopicMatch     int    `json:"topic_match" yaml:"topic_match"`
	InfoDensity    int    `json:"info_density" yaml:"info_density"`
	TimeEfficiency int    `json:"time_efficiency" yaml:"time_efficiency"`
	Credibility    int    `json:"credibility" yaml:"credibility"`
	Host           string `json:"host" yaml:"host"`
}

// Sum returns the subscore total; it equals Result.Total by construction.
func (b Breakdown) Sum() int {
	return b.TopicMatch + b.InfoDensity + b.TimeEfficiency + b.Credibility
}

// Input carries everything the engine looks at. Missing numeric inputs are
// permissive: zero duration or word count selects the "unknown" band, never
// an error.
type Input struct {
	Source    source.Type
	WordCount int
	Duration  time.Duration
	URL       string
	Title     string
	Interests []string
}

// Result bundles the total, the label, and the audit breakdown.
type Result struct {
	Total     int       `json:"total"`
	Label     Label     `json:"label"`
	Breakdown Breakdown `json:"breakdown"`
}

// Engine scores items against a caller-supplied interest list and a
// read-only host credibility table. Safe for concurrent use.
type Engine struct {
	Weights HostWeights
}

// Score is deterministic and never fails; identical inputs always produce
// identical results, breakdown included.
func (e *Engine) Score(in Input) Result {
	title := strings.ToLower(in.Title)
	b := Breakdown{
		TopicMatch:     topicMatch(title, in.Interests),
		InfoDensity:    infoDensity(in.WordCount, hasTechSignals(title)),
		TimeEfficiency: timeEfficiency(in.Source, in.WordCount, in.Duration),
		Credibility:    e.credibility(in.URL),
		Host:           hostOf(in.URL),
	}
	total := b.Sum()
	return Result{Total: total, Label: labelFor(total), Breakdown: b}
}

func labelFor(total int) Label {
	switch {
	case total >= 70:
		return ReadWatch
	case total >= 50:
		return Skim
	default:
		return Skip
	}
}

// topicMatch rewards multiple keyword hits super-linearly up to the cap but
// never zeroes out entirely: a zero-hit title keeps a small baseline.
func topicMatch(lowerTitle string, interests []string) int {
	if len(interests) == 0 {
		return 20 // neutral middle when no interests are specified
	}
	hits := 0
	for _, kw := range interests {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" && strings.Contains(lowerTitle, kw) {
			hits++
		}
	}
	return clamp(5+hits*15, 0, topicCap)
}

// infoDensity bands by word count: substantial-but-not-bloated scores best,
// unknown length is not penalized.
func infoDensity(wordCount int, techSignals bool) int {
	var base int
	switch {
	case wordCount == 0:
		base = 15
	case wordCount < 400:
		base = 12
	case wordCount <= 1500:
		base = 22
	case wordCount <= 3000:
		base = 18
	default:
		base = 12
	}
	if techSignals {
		base += 3
	}
	return clamp(base, 0, densityCap)
}

// timeEfficiency prefers value per minute. Videos with a known duration use
// it directly; everything else is treated as text at ~200 words per minute.
func timeEfficiency(kind source.Type, wordCount int, duration time.Duration) int {
	if kind == source.Video && duration > 0 {
		minutes := int(duration / time.Minute)
		if minutes < 1 {
			minutes = 1
		}
		switch {
		case minutes <= 7:
			return 18
		case minutes <= 15:
			return 20
		case minutes <= 30:
			return 14
		default:
			return 8
		}
	}
	if wordCount == 0 {
		return 12
	}
	minutes := wordCount / 200
	if minutes < 1 {
		minutes = 1
	}
	switch {
	case minutes <= 5:
		return 18
	case minutes <= 12:
		return 20
	case minutes <= 20:
		return 14
	default:
		return 8
	}
}

// credibility looks the host up in the configured weight table. Unknown
// hosts score 0; whether that should be a neutral middle instead is a
// tuning choice, not a correctness one.
func (e *Engine) credibility(rawURL string) int {
	return clamp(e.Weights.For(hostOf(rawURL)), 0, credibilityCap)
}

func hasTechSignals(lowerTitle string) bool {
	for _, tok := range techTokens {
		if strings.Contains(lowerTitle, tok) {
			return true
		}
	}
	return false
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Host)
}

func clamp(x, lo, hi int) int {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
