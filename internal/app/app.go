// Package app wires the content pipeline together: issue links in, one
// digest entry per link out.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jnolting/contentdigest/internal/extract"
	"github.com/jnolting/contentdigest/internal/fetch"
	"github.com/jnolting/contentdigest/internal/issues"
	"github.com/jnolting/contentdigest/internal/llm"
	"github.com/jnolting/contentdigest/internal/report"
	"github.com/jnolting/contentdigest/internal/score"
	"github.com/jnolting/contentdigest/internal/summarize"
)

// App runs the digest pipeline. All components are constructed once and
// hold no cross-call state, so items can be processed concurrently.
type App struct {
	cfg        Config
	dispatcher *extract.Dispatcher
	summarizer *summarize.Summarizer
	engine     *score.Engine
}

func New(cfg Config) (*App, error) {
	if !cfg.DryRun && strings.TrimSpace(cfg.LLMBaseURL) == "" {
		return nil, errors.New("app: completion base URL required (or use dry-run)")
	}

	articleTimeout := cfg.ArticleTimeout
	if articleTimeout <= 0 {
		articleTimeout = 45 * time.Second
	}
	binaryTimeout := cfg.BinaryTimeout
	if binaryTimeout <= 0 {
		binaryTimeout = 120 * time.Second
	}
	textClient := &fetch.Client{MaxAttempts: 2, PerRequestTimeout: articleTimeout}
	binaryClient := &fetch.Client{MaxAttempts: 2, PerRequestTimeout: binaryTimeout}

	a := &App{
		cfg:        cfg,
		dispatcher: extract.NewDispatcher(textClient, binaryClient),
		engine:     &score.Engine{Weights: score.LoadHostWeights(cfg.WeightsPath)},
	}

	if !cfg.DryRun {
		client, err := llm.New(llm.Config{
			BaseURL:    cfg.LLMBaseURL,
			APIKey:     cfg.LLMAPIKey,
			Model:      cfg.LLMModel,
			Deployment: cfg.LLMDeployment,
			APIVersion: cfg.LLMAPIVersion,
			MaxRetries: cfg.LLMMaxRetries,
			BaseDelay:  cfg.LLMBaseDelay,
			Timeout:    cfg.CompletionWait,
		})
		if err != nil {
			return nil, err
		}
		a.summarizer = &summarize.Summarizer{Client: client, MaxTokens: cfg.LLMMaxTokens}
	}
	return a, nil
}

// Run collects items, processes them, and writes the digest in every
// requested format. A single item's failure never stops the batch; the
// output always carries one entry per input item.
func (a *App) Run(ctx context.Context) error {
	items, err := a.collect(ctx)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		log.Warn().Msg("no items to digest")
	}

	r := report.Report{
		GeneratedAt: time.Now().UTC(),
		Entries:     a.process(ctx, items),
	}

	formats := a.cfg.Formats
	if len(formats) == 0 {
		formats = []string{"json"}
	}
	for _, format := range formats {
		var path string
		switch format {
		case "json":
			path, err = report.WriteJSON(r, a.cfg.OutputDir)
		case "md":
			path, err = report.WriteMarkdown(r, a.cfg.OutputDir)
		case "pdf":
			path, err = report.WritePDF(r, a.cfg.OutputDir)
		default:
			return fmt.Errorf("app: unknown report format %q", format)
		}
		if err != nil {
			return err
		}
		log.Info().Str("out", path).Msg("wrote report")
	}
	return nil
}

func (a *App) collect(ctx context.Context) ([]issues.Item, error) {
	if len(a.cfg.URLs) > 0 {
		items := make([]issues.Item, 0, len(a.cfg.URLs))
		for _, u := range a.cfg.URLs {
			if u = strings.TrimSpace(u); u != "" {
				items = append(items, issues.Item{URL: u})
			}
		}
		return items, nil
	}
	src := &issues.Client{Repo: a.cfg.IssuesRepo, Token: a.cfg.IssuesToken}
	return src.FetchItems(ctx)
}
