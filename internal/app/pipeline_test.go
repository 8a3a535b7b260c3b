package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jnolting/contentdigest/internal/issues"
	"github.com/jnolting/contentdigest/internal/score"
)

func articlePage(words int) string {
	var b strings.Builder
	b.WriteString("<html><head><title>Pipeline Fixture</title></head><body><article>")
	for i := 0; i < words/10; i++ {
		b.WriteString("<p>ten short words of body content sit in this sentence.</p>")
	}
	b.WriteString("</article></body></html>")
	return b.String()
}

func TestProcess_OneEntryPerItemInInputOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(articlePage(1200)))
	}))
	defer srv.Close()

	a, err := New(Config{DryRun: true, Workers: 3, ArticleTimeout: 2 * time.Second, BinaryTimeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	items := []issues.Item{
		{URL: srv.URL + "/one", Context: "Issue #1: first"},
		{URL: "http://127.0.0.1:1/unreachable"},
		{URL: srv.URL + "/three"},
		{URL: "http://127.0.0.1:1/broken.pdf"},
	}
	entries := a.process(context.Background(), items)

	if len(entries) != len(items) {
		t.Fatalf("expected one entry per item, got %d for %d", len(entries), len(items))
	}
	for i, e := range entries {
		if e.URL != items[i].URL {
			t.Fatalf("order not preserved at %d: %q vs %q", i, e.URL, items[i].URL)
		}
	}

	if entries[0].Degraded || entries[0].Title != "Pipeline Fixture" {
		t.Fatalf("expected healthy first entry, got %+v", entries[0])
	}
	if entries[0].Context != "Issue #1: first" {
		t.Fatalf("context must flow through, got %q", entries[0].Context)
	}
	if entries[0].Summary != "(dry run: summarization skipped)" {
		t.Fatalf("unexpected dry-run summary: %q", entries[0].Summary)
	}
	if entries[0].Score == 0 || entries[0].Label == "" {
		t.Fatalf("expected scored entry, got %+v", entries[0])
	}

	// Failures are marked, never omitted, and never abort the batch.
	if !entries[1].Degraded || !strings.Contains(entries[1].Failure, "transport") {
		t.Fatalf("expected degraded unreachable entry, got %+v", entries[1])
	}
	if !entries[3].Degraded {
		t.Fatalf("expected degraded document entry, got %+v", entries[3])
	}
	if entries[3].Label != score.Skip && entries[3].Label != score.Skim && entries[3].Label != score.ReadWatch {
		t.Fatalf("degraded entries still get a label, got %q", entries[3].Label)
	}
}

func TestRun_WritesReports(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(articlePage(800)))
	}))
	defer srv.Close()

	dir := t.TempDir()
	a, err := New(Config{
		DryRun:    true,
		URLs:      []string{srv.URL + "/a", " ", srv.URL + "/b"},
		OutputDir: dir,
		Formats:   []string{"json", "md"},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	jsonFiles, _ := filepath.Glob(filepath.Join(dir, "daily_digest_*.json"))
	mdFiles, _ := filepath.Glob(filepath.Join(dir, "daily_digest_*.md"))
	if len(jsonFiles) != 1 || len(mdFiles) != 1 {
		t.Fatalf("expected one json and one md report, got %v / %v", jsonFiles, mdFiles)
	}
}

func TestNew_RequiresLLMUnlessDryRun(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("expected error without completion base URL")
	}
	if _, err := New(Config{DryRun: true}); err != nil {
		t.Fatalf("dry run must not require completion config: %v", err)
	}
}
