package source

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		url  string
		want Type
	}{
		{"https://www.youtube.com/watch?v=abc123", Video},
		{"https://youtube.com/shorts/xyz789", Video},
		{"https://youtu.be/abc123", Video},
		{"https://m.youtube.com/watch?v=abc123", Video},
		{"https://example.com/paper.pdf", Document},
		{"https://example.com/paper.PDF", Document},
		{"https://example.com/pdf-guide", Article},
		{"https://example.com/article", Article},
		{"https://notyoutube.com/watch?v=abc", Article},
		{"", Article},
		{"::not a url::", Article},
		{"https://example.com/paper.pdf?download=1", Document},
	}
	for _, tc := range cases {
		if got := Classify(tc.url); got != tc.want {
			t.Errorf("Classify(%q) = %v, want %v", tc.url, got, tc.want)
		}
	}
}

func TestClassify_Deterministic(t *testing.T) {
	for _, u := range []string{"https://youtu.be/a", "nonsense", "https://x.test/a.pdf"} {
		first := Classify(u)
		for i := 0; i < 3; i++ {
			if got := Classify(u); got != first {
				t.Fatalf("Classify(%q) not deterministic: %v then %v", u, first, got)
			}
		}
	}
}

func TestVideoID(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/shorts/abc123", "abc123"},
		{"https://www.youtube.com/shorts/abc123?feature=share", "abc123"},
		{"https://www.youtube.com/embed/lastseg", "lastseg"},
		{"https://www.youtube.com/", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := VideoID(tc.url); got != tc.want {
			t.Errorf("VideoID(%q) = %q, want %q", tc.url, got, tc.want)
		}
	}
}
