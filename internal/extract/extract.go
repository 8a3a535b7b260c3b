// Package extract turns a URL into normalized plain text plus metadata.
//
// Every extractor converts its failures into the Err field of Result; no
// failure of a single source is allowed to abort processing of a batch.
package extract

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jnolting/contentdigest/internal/fetch"
	"github.com/jnolting/contentdigest/internal/source"
)

// ErrorKind separates failures the caller may want to present differently:
// a source that could not be reached versus one that was retrieved but
// could not be decoded.
type ErrorKind string

const (
	KindTransport ErrorKind = "transport"
	KindParse     ErrorKind = "parse"
)

// Error is the non-fatal failure tag carried inside a Result.
type Error struct {
	Kind   ErrorKind
	Detail string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

// Result is the uniform output of all extractors. Text may be empty without
// Err being set (a transcript-less video is a valid, low-information
// result). When Err is set, Text must not be treated as authoritative.
type Result struct {
	URL      string
	Source   source.Type
	Title    string
	Text     string
	Pages    int           // documents only
	Duration time.Duration // videos only
	Err      *Error
}

// WordCount reports the number of whitespace-separated words in Text.
func (r Result) WordCount() int {
	return len(strings.Fields(r.Text))
}

// Dispatcher routes a URL to the extractor matching its classified source
// type. All extractors share the uniform Result contract.
type Dispatcher struct {
	Articles  *ArticleExtractor
	Documents *DocumentExtractor
	Videos    *VideoExtractor
}

// NewDispatcher builds a dispatcher over two fetch clients: text for HTML
// pages and binary for large document payloads, which need longer timeouts.
func NewDispatcher(text, binary *fetch.Client) *Dispatcher {
	return &Dispatcher{
		Articles:  &ArticleExtractor{Fetch: text},
		Documents: &DocumentExtractor{Fetch: binary},
		Videos:    NewVideoExtractor(),
	}
}

// Extract classifies the URL and invokes exactly one extractor. It never
// returns a Go error; all failure modes land in Result.Err.
func (d *Dispatcher) Extract(ctx context.Context, rawURL string) Result {
	switch source.Classify(rawURL) {
	case source.Video:
		return d.Videos.Extract(ctx, rawURL)
	case source.Document:
		return d.Documents.Extract(ctx, rawURL)
	default:
		return d.Articles.Extract(ctx, rawURL)
	}
}

func transportError(err error) *Error {
	return &Error{Kind: KindTransport, Detail: err.Error()}
}

func parseError(err error) *Error {
	return &Error{Kind: KindParse, Detail: err.Error()}
}

// collapseSpaces folds whitespace runs into single spaces, for titles and
// other single-line metadata.
func collapseSpaces(s string) string {
	var b strings.Builder
	lastSpace := false
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
			continue
		}
		b.WriteRune(r)
		lastSpace = false
	}
	return strings.TrimSpace(b.String())
}

func lastPathSegment(rawURL string) string {
	trimmed := strings.TrimRight(rawURL, "/")
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		trimmed = trimmed[i+1:]
	}
	if j := strings.IndexAny(trimmed, "?#"); j >= 0 {
		trimmed = trimmed[:j]
	}
	return trimmed
}
