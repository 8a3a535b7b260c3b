package extract

import (
	"context"
	"testing"
	"time"

	youtube "github.com/kkdai/youtube/v2"

	"github.com/jnolting/contentdigest/internal/source"
)

func TestDispatcher_RoutesByClassification(t *testing.T) {
	d := NewDispatcher(testFetchClient(), testFetchClient())
	d.Videos = &VideoExtractor{service: &fakeVideoService{
		video: &youtube.Video{Title: "Routed", Duration: time.Minute},
	}}

	res := d.Extract(context.Background(), "https://youtu.be/abc123")
	if res.Source != source.Video || res.Title != "Routed" {
		t.Fatalf("expected video route, got %+v", res)
	}

	// Unreachable hosts still produce well-formed results per type.
	res = d.Extract(context.Background(), "http://127.0.0.1:1/page")
	if res.Source != source.Article || res.Err == nil || res.Err.Kind != KindTransport {
		t.Fatalf("expected degraded article result, got %+v", res)
	}

	res = d.Extract(context.Background(), "http://127.0.0.1:1/file.pdf")
	if res.Source != source.Document || res.Err == nil || res.Err.Kind != KindTransport {
		t.Fatalf("expected degraded document result, got %+v", res)
	}
}

func TestDispatcher_MalformedURLNeverPanics(t *testing.T) {
	d := NewDispatcher(testFetchClient(), testFetchClient())
	d.Videos = &VideoExtractor{service: &fakeVideoService{}}

	for _, u := range []string{"", "::::", "not-a-url", "ftp://x/y.pdf"} {
		res := d.Extract(context.Background(), u)
		if res.URL != u {
			t.Fatalf("result must echo input URL, got %q for %q", res.URL, u)
		}
	}
}

func TestResultWordCount(t *testing.T) {
	r := Result{Text: "one  two\nthree"}
	if got := r.WordCount(); got != 3 {
		t.Fatalf("WordCount = %d, want 3", got)
	}
	if (Result{}).WordCount() != 0 {
		t.Fatal("empty text must count zero words")
	}
}
