// Package summarize builds the prompt pair for one fetched item and asks
// the completion service for a digest summary.
package summarize

import (
	"context"
	"fmt"
	"strings"

	"github.com/jnolting/contentdigest/internal/extract"
)

// DefaultSystemPrompt frames the model as a digest writer. Callers can
// override it per Summarizer.
const DefaultSystemPrompt = "You are a concise technical analyst. Summarize the supplied content in 3-6 bullet points, " +
	"leading with the most actionable information. Note explicitly when the content is thin or promotional. " +
	"Do not invent details that are not in the content."

// CompletionClient is the slice of the completion client the summarizer
// needs; tests substitute a fake.
type CompletionClient interface {
	Complete(ctx context.Context, system, user string, maxTokens int) (string, error)
}

// Summarizer turns one extraction result into summary text. Stateless
// besides configuration; safe for concurrent use.
type Summarizer struct {
	Client CompletionClient
	// SystemPrompt overrides DefaultSystemPrompt when non-empty.
	SystemPrompt string
	// MaxTokens is the per-item token budget. Zero selects 1200.
	MaxTokens int
	// MaxContentChars truncates item content before prompting. Zero selects
	// 12000.
	MaxContentChars int
}

// Summarize asks the model for a summary of the item. Items with no
// retrievable text are answered locally without spending a completion call.
// Completion errors propagate so the orchestrator can record a degraded
// summary instead of aborting the run.
func (s *Summarizer) Summarize(ctx context.Context, item extract.Result, note string) (string, error) {
	if strings.TrimSpace(item.Text) == "" {
		return "(no content could be retrieved for this item)", nil
	}
	system := s.SystemPrompt
	if system == "" {
		system = DefaultSystemPrompt
	}
	tokens := s.MaxTokens
	if tokens <= 0 {
		tokens = 1200
	}
	return s.Client.Complete(ctx, system, s.userPrompt(item, note), tokens)
}

func (s *Summarizer) userPrompt(item extract.Result, note string) string {
	limit := s.MaxContentChars
	if limit <= 0 {
		limit = 12000
	}
	content := item.Text
	if len(content) > limit {
		content = content[:limit] + "\n[content truncated]"
	}

	var b strings.Builder
	if note != "" {
		fmt.Fprintf(&b, "Context: %s\n", note)
	}
	fmt.Fprintf(&b, "Source type: %s\n", item.Source)
	fmt.Fprintf(&b, "Title: %s\n", item.Title)
	fmt.Fprintf(&b, "URL: %s\n\n", item.URL)
	b.WriteString("Content:\n")
	b.WriteString(content)
	return b.String()
}
