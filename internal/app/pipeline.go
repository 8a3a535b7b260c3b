package app

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/jnolting/contentdigest/internal/extract"
	"github.com/jnolting/contentdigest/internal/issues"
	"github.com/jnolting/contentdigest/internal/llm"
	"github.com/jnolting/contentdigest/internal/report"
	"github.com/jnolting/contentdigest/internal/score"
)

// process runs extraction, summarization, and scoring for every item on a
// bounded worker pool. Results keep input order and there is exactly one
// entry per item regardless of failures.
func (a *App) process(ctx context.Context, items []issues.Item) []report.Entry {
	entries := make([]report.Entry, len(items))
	if len(items) == 0 {
		return entries
	}

	workers := a.cfg.Workers
	if workers <= 0 {
		workers = 4
	}
	if workers > len(items) {
		workers = len(items)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				entries[idx] = a.processItem(ctx, items[idx])
			}
		}()
	}
	for idx := range items {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()
	return entries
}

func (a *App) processItem(ctx context.Context, item issues.Item) report.Entry {
	res := a.dispatcher.Extract(ctx, item.URL)

	entry := report.Entry{
		URL:      item.URL,
		Context:  item.Context,
		Source:   res.Source,
		Title:    res.Title,
		Pages:    res.Pages,
		Duration: int(res.Duration.Seconds()),
		Words:    res.WordCount(),
	}
	if res.Err != nil {
		entry.Degraded = true
		entry.Failure = res.Err.Error()
	}

	entry.Summary = a.summarize(ctx, res, item.Context, &entry)

	sc := a.engine.Score(score.Input{
		Source:    res.Source,
		WordCount: entry.Words,
		Duration:  res.Duration,
		URL:       item.URL,
		Title:     res.Title,
		Interests: a.cfg.Interests,
	})
	entry.Score = sc.Total
	entry.Label = sc.Label
	entry.Breakdown = sc.Breakdown

	log.Info().
		Str("url", item.URL).
		Str("type", string(res.Source)).
		Int("score", sc.Total).
		Str("label", string(sc.Label)).
		Bool("degraded", entry.Degraded).
		Msg("item processed")
	return entry
}

// summarize produces the entry summary, downgrading completion failures to
// a visible marker instead of aborting the batch.
func (a *App) summarize(ctx context.Context, res extract.Result, note string, entry *report.Entry) string {
	if a.summarizer == nil {
		return "(dry run: summarization skipped)"
	}
	summary, err := a.summarizer.Summarize(ctx, res, note)
	if err == nil {
		return summary
	}
	entry.Degraded = true
	if entry.Failure != "" {
		entry.Failure += "; "
	}
	entry.Failure += "completion: " + err.Error()

	var perm *llm.PermanentError
	if errors.As(err, &perm) && perm.Quota {
		log.Error().Str("url", res.URL).Msg("completion quota exhausted")
	} else {
		log.Warn().Err(err).Str("url", res.URL).Msg("summarization failed")
	}
	return "(summary unavailable: completion service failed)"
}
