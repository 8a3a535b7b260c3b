package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/jnolting/contentdigest/internal/fetch"
	"github.com/jnolting/contentdigest/internal/source"
)

// DocumentExtractor fetches a PDF payload and extracts its text page by
// page. It needs the binary fetch client: payloads are large and slow.
type DocumentExtractor struct {
	Fetch *fetch.Client
}

// Extract downloads the document and parses it. Transport failures are
// tagged KindTransport; a payload that was retrieved but is not a valid
// document is tagged KindParse so callers can show "unreadable" rather than
// "unreachable". Individual pages that fail to yield text are skipped, not
// fatal.
func (e *DocumentExtractor) Extract(ctx context.Context, rawURL string) Result {
	res := Result{URL: rawURL, Source: source.Document, Title: documentTitleFallback(rawURL)}

	body, _, err := e.Fetch.Get(ctx, rawURL)
	if err != nil {
		res.Err = transportError(err)
		return res
	}

	doc, err := parseDocument(body)
	if err != nil {
		res.Err = parseError(err)
		return res
	}
	res.Text = doc.text
	res.Pages = doc.pages
	if doc.title != "" {
		res.Title = doc.title
	}
	return res
}

type parsedDocument struct {
	text  string
	pages int
	title string
}

// parseDocument decodes a PDF payload. The reader panics on some malformed
// files, so the panic is converted into an ordinary parse error here.
func parseDocument(data []byte) (doc parsedDocument, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf reader panic: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return doc, fmt.Errorf("open pdf: %w", err)
	}
	doc.pages = reader.NumPage()

	parts := make([]string, 0, doc.pages)
	for i := 1; i <= doc.pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, perr := page.GetPlainText(nil)
		if perr != nil {
			continue
		}
		if t := strings.TrimSpace(text); t != "" {
			parts = append(parts, t)
		}
	}
	doc.text = strings.Join(parts, "\n\n")

	if info := reader.Trailer().Key("Info"); !info.IsNull() {
		if t := info.Key("Title"); t.Kind() == pdf.String {
			doc.title = collapseSpaces(t.Text())
		}
	}
	return doc, nil
}

func documentTitleFallback(rawURL string) string {
	if seg := lastPathSegment(rawURL); seg != "" {
		return seg
	}
	return "PDF"
}
