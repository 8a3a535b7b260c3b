package score

import (
	"testing"
	"time"

	"github.com/jnolting/contentdigest/internal/source"
)

func TestScore_EndToEndArticleExample(t *testing.T) {
	// 1200 words, no technical tokens, no interests, unknown host:
	// topic 20 + density 22 + time 20 (6 min read) + credibility 0 = 62.
	e := &Engine{}
	res := e.Score(Input{
		Source:    source.Article,
		WordCount: 1200,
		URL:       "https://example.com/article",
		Title:     "Example",
	})
	b := res.Breakdown
	if b.TopicMatch != 20 || b.InfoDensity != 22 || b.TimeEfficiency != 20 || b.Credibility != 0 {
		t.Fatalf("unexpected breakdown: %+v", b)
	}
	if res.Total != 62 || res.Label != Skim {
		t.Fatalf("expected 62/Skim, got %d/%s", res.Total, res.Label)
	}
	if b.Host != "example.com" {
		t.Fatalf("expected host recorded for audit, got %q", b.Host)
	}
}

func TestScore_LabelBoundariesExact(t *testing.T) {
	// topic 20 (neutral) + density 15 (unknown words) + time 12 (unknown) = 47
	// baseline; the host weight shifts the total onto each boundary.
	weights := HostWeights{"a.test": 2, "b.test": 3, "c.test": 7, "d.test": 8}
	e := &Engine{Weights: weights}

	cases := []struct {
		host  string
		total int
		label Label
	}{
		{"a.test", 49, Skip},
		{"b.test", 50, Skim},
		{"c.test", 54, Skim},
		{"d.test", 55, Skim},
	}
	for _, tc := range cases {
		res := e.Score(Input{Source: source.Article, URL: "https://" + tc.host + "/x"})
		if res.Total != tc.total || res.Label != tc.label {
			t.Errorf("host %s: got %d/%s, want %d/%s", tc.host, res.Total, res.Label, tc.total, tc.label)
		}
	}

	// Reach 69 and 70 exactly: density 22 (1200 words), time 20 (6 min),
	// topic 20, credibility 7 → 69 Skim; credibility 8 → 70 Read/Watch.
	for _, tc := range []struct {
		host  string
		total int
		label Label
	}{
		{"c.test", 69, Skim},
		{"d.test", 70, ReadWatch},
	} {
		res := e.Score(Input{Source: source.Article, WordCount: 1200, URL: "https://" + tc.host + "/x"})
		if res.Total != tc.total || res.Label != tc.label {
			t.Errorf("host %s: got %d/%s, want %d/%s", tc.host, res.Total, res.Label, tc.total, tc.label)
		}
	}
}

func TestScore_TopicMatch(t *testing.T) {
	e := &Engine{}
	cases := []struct {
		title     string
		interests []string
		want      int
	}{
		{"Anything", nil, 20},
		{"Unrelated title", []string{"rust"}, 5},
		{"Intro to Kubernetes", []string{"kubernetes"}, 20},
		{"Kubernetes security with JWT", []string{"kubernetes", "jwt"}, 35},
		{"Kubernetes JWT OIDC deep dive", []string{"kubernetes", "jwt", "oidc"}, 40},
		{"Kubernetes JWT OIDC PyTorch", []string{"kubernetes", "jwt", "oidc", "pytorch"}, 40}, // capped
	}
	for _, tc := range cases {
		got := e.Score(Input{Source: source.Article, Title: tc.title, Interests: tc.interests}).Breakdown.TopicMatch
		if got != tc.want {
			t.Errorf("topicMatch(%q, %v) = %d, want %d", tc.title, tc.interests, got, tc.want)
		}
	}
}

func TestScore_InfoDensityBandsAndTechBonus(t *testing.T) {
	e := &Engine{}
	cases := []struct {
		words int
		title string
		want  int
	}{
		{0, "x", 15},
		{399, "x", 12},
		{400, "x", 22},
		{1500, "x", 22},
		{1501, "x", 18},
		{3000, "x", 18},
		{3001, "x", 12},
		{1200, "Shipping .NET on Kubernetes", 25}, // 22+3
		{0, "PyTorch notes", 18},                  // 15+3
	}
	for _, tc := range cases {
		got := e.Score(Input{Source: source.Article, WordCount: tc.words, Title: tc.title}).Breakdown.InfoDensity
		if got != tc.want {
			t.Errorf("infoDensity(words=%d, title=%q) = %d, want %d", tc.words, tc.title, got, tc.want)
		}
	}
}

func TestScore_TimeEfficiency(t *testing.T) {
	e := &Engine{}
	video := func(d time.Duration) int {
		return e.Score(Input{Source: source.Video, Duration: d}).Breakdown.TimeEfficiency
	}
	text := func(words int) int {
		return e.Score(Input{Source: source.Article, WordCount: words}).Breakdown.TimeEfficiency
	}

	if got := video(5 * time.Minute); got != 18 {
		t.Errorf("5min video = %d, want 18", got)
	}
	if got := video(12 * time.Minute); got != 20 {
		t.Errorf("12min video = %d, want 20", got)
	}
	if got := video(25 * time.Minute); got != 14 {
		t.Errorf("25min video = %d, want 14", got)
	}
	if got := video(45 * time.Minute); got != 8 {
		t.Errorf("45min video = %d, want 8", got)
	}
	// Video with unknown duration falls back to the text heuristic.
	if got := e.Score(Input{Source: source.Video, WordCount: 1000}).Breakdown.TimeEfficiency; got != 18 {
		t.Errorf("unknown-duration video = %d, want 18", got)
	}

	if got := text(0); got != 12 {
		t.Errorf("0 words = %d, want 12", got)
	}
	if got := text(1000); got != 18 { // 5 min
		t.Errorf("1000 words = %d, want 18", got)
	}
	if got := text(2400); got != 20 { // 12 min
		t.Errorf("2400 words = %d, want 20", got)
	}
	if got := text(4000); got != 14 { // 20 min
		t.Errorf("4000 words = %d, want 14", got)
	}
	if got := text(10000); got != 8 {
		t.Errorf("10000 words = %d, want 8", got)
	}
}

func TestScore_BoundsAndIdempotence(t *testing.T) {
	e := &Engine{Weights: HostWeights{"known.test": 99}} // clamped to 15
	in := Input{
		Source:    source.Video,
		WordCount: 50000,
		Duration:  3 * time.Hour,
		URL:       "https://known.test/v",
		Title:     "kubernetes jwt oidc pytorch rocm",
		Interests: []string{"kubernetes", "jwt", "oidc", "pytorch", "rocm", "bambu"},
	}
	first := e.Score(in)
	if first.Total < 0 || first.Total > 100 {
		t.Fatalf("total out of bounds: %d", first.Total)
	}
	b := first.Breakdown
	if b.TopicMatch > 40 || b.InfoDensity > 25 || b.TimeEfficiency > 20 || b.Credibility > 15 {
		t.Fatalf("subscore over cap: %+v", b)
	}
	if first.Total != b.Sum() {
		t.Fatalf("total %d != breakdown sum %d", first.Total, b.Sum())
	}
	if second := e.Score(in); second != first {
		t.Fatalf("score not idempotent: %+v vs %+v", first, second)
	}
}

func TestScore_MalformedURLPermissive(t *testing.T) {
	e := &Engine{}
	res := e.Score(Input{Source: source.Article, URL: "::::", Title: "x"})
	if res.Breakdown.Credibility != 0 || res.Breakdown.Host != "" {
		t.Fatalf("malformed URL must degrade, got %+v", res.Breakdown)
	}
}
