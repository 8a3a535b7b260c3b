// Package report renders the per-run digest. One entry per input item,
// always: degraded entries are marked, never omitted.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jnolting/contentdigest/internal/score"
	"github.com/jnolting/contentdigest/internal/source"
)

// Entry is the digest record for one input item.
type Entry struct {
	URL      string      `json:"url"`
	Context  string      `json:"context,omitempty"`
	Source   source.Type `json:"source_type"`
	Title    string      `json:"title"`
	Pages    int         `json:"pages,omitempty"`
	Duration int         `json:"duration_seconds,omitempty"`
	Words    int         `json:"word_count"`
	Summary  string      `json:"summary"`
	// Degraded marks entries whose extraction or summarization failed;
	// Failure carries the classification for diagnostics.
	Degraded bool   `json:"degraded,omitempty"`
	Failure  string `json:"failure,omitempty"`

	Score     int             `json:"score"`
	Label     score.Label     `json:"label"`
	Breakdown score.Breakdown `json:"breakdown"`
}

// Report is a timestamped batch of entries.
type Report struct {
	GeneratedAt time.Time `json:"generated_at"`
	Entries     []Entry   `json:"items"`
}

// Stamp returns the UTC timestamp used in report filenames.
func (r Report) Stamp() string {
	return r.GeneratedAt.UTC().Format("2006-01-02_150405")
}

// WriteJSON writes the report as indented JSON into dir and returns the
// file path.
func WriteJSON(r Report, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("report: create dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("daily_digest_%s.json", r.Stamp()))
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("report: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("report: write: %w", err)
	}
	return path, nil
}

// WriteMarkdown writes the Markdown digest into dir and returns the file
// path.
func WriteMarkdown(r Report, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("report: create dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("daily_digest_%s.md", r.Stamp()))
	if err := os.WriteFile(path, []byte(Markdown(r)), 0o644); err != nil {
		return "", fmt.Errorf("report: write: %w", err)
	}
	return path, nil
}

// Markdown renders the digest with entries sorted by score descending and
// the per-factor breakdown surfaced for each item.
func Markdown(r Report) string {
	entries := append([]Entry(nil), r.Entries...)
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Score > entries[j].Score })

	var b strings.Builder
	fmt.Fprintf(&b, "# Daily digest — %s\n\n", r.GeneratedAt.UTC().Format("2006-01-02"))
	fmt.Fprintf(&b, "%d item(s).\n\n", len(entries))

	for _, e := range entries {
		fmt.Fprintf(&b, "## %s\n\n", e.Title)
		fmt.Fprintf(&b, "[%s](%s)\n\n", e.URL, e.URL)
		if e.Context != "" {
			fmt.Fprintf(&b, "Context: %s\n\n", e.Context)
		}
		fmt.Fprintf(&b, "**%s** — score %d/100 (topic %d, density %d, time %d, credibility %d)\n\n",
			e.Label, e.Score,
			e.Breakdown.TopicMatch, e.Breakdown.InfoDensity, e.Breakdown.TimeEfficiency, e.Breakdown.Credibility)
		if e.Degraded {
			fmt.Fprintf(&b, "> DEGRADED: %s\n\n", e.Failure)
		}
		b.WriteString(e.Summary)
		b.WriteString("\n\n")
		var extra []string
		if e.Pages > 0 {
			extra = append(extra, fmt.Sprintf("%d pages", e.Pages))
		}
		if e.Duration > 0 {
			extra = append(extra, fmt.Sprintf("%d min", e.Duration/60))
		}
		if e.Words > 0 {
			extra = append(extra, fmt.Sprintf("%d words", e.Words))
		}
		if len(extra) > 0 {
			fmt.Fprintf(&b, "_%s_\n\n", strings.Join(extra, ", "))
		}
	}
	return b.String()
}
