package extract

import (
	"bytes"
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/rs/zerolog/log"

	"github.com/jnolting/contentdigest/internal/fetch"
	"github.com/jnolting/contentdigest/internal/source"
)

// ArticleExtractor fetches an HTML page and recovers readable text from it.
type ArticleExtractor struct {
	Fetch *fetch.Client
}

// Extract fetches the page and runs a readability pass over it. A transport
// failure yields an empty-text result tagged KindTransport. A readability
// pass that produces nothing falls back to the raw HTML so the fetch is not
// lost. Title and text recovery are independent: a failed title scan never
// discards extracted text, and vice versa.
func (e *ArticleExtractor) Extract(ctx context.Context, rawURL string) Result {
	res := Result{URL: rawURL, Source: source.Article, Title: rawURL}

	body, _, err := e.Fetch.Get(ctx, rawURL)
	if err != nil {
		res.Err = transportError(err)
		return res
	}

	pageURL, _ := url.Parse(rawURL)
	article, rerr := readability.FromReader(bytes.NewReader(body), pageURL)
	if rerr == nil && strings.TrimSpace(article.TextContent) != "" {
		res.Text = strings.TrimSpace(article.TextContent)
	} else {
		// Raw HTML is still summarizable; better than losing the fetch.
		log.Debug().Str("url", rawURL).Msg("readability pass empty, using raw HTML")
		res.Text = strings.TrimSpace(string(body))
	}

	if rerr == nil && strings.TrimSpace(article.Title) != "" {
		res.Title = collapseSpaces(article.Title)
	} else if t := scanHTMLTitle(body); t != "" {
		res.Title = t
	}
	return res
}

// scanHTMLTitle recovers the document title element on a best-effort basis.
func scanHTMLTitle(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	return collapseSpaces(doc.Find("title").First().Text())
}
