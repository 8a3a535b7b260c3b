package source

import (
	"net/url"
	"strings"
)

// Type classifies a URL by the kind of content behind it, which in turn
// selects the extractor used to turn it into text.
type Type string

const (
	Article  Type = "article"
	Document Type = "document"
	Video    Type = "video"
)

// Classify derives the content-source type from the URL alone. It performs
// no network access and never fails: URLs that cannot be parsed are treated
// as articles so the pipeline can still attempt a plain fetch.
func Classify(rawURL string) Type {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Article
	}
	host := strings.ToLower(u.Hostname())
	if isVideoHost(host) {
		return Video
	}
	if strings.HasSuffix(strings.ToLower(u.Path), ".pdf") {
		return Document
	}
	return Article
}

func isVideoHost(host string) bool {
	if host == "youtu.be" || strings.HasSuffix(host, ".youtu.be") {
		return true
	}
	return host == "youtube.com" || strings.HasSuffix(host, ".youtube.com")
}

// VideoID extracts the platform video identifier from a URL already
// classified as Video. It is total: unrecognized shapes yield the last
// non-empty path segment, or "" when there is none.
func VideoID(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	if host == "youtu.be" || strings.HasSuffix(host, ".youtu.be") {
		return strings.TrimPrefix(u.Path, "/")
	}
	if v := u.Query().Get("v"); v != "" {
		return v
	}
	if id := shortsID(u.Path); id != "" {
		return id
	}
	return lastSegment(u.Path)
}

func shortsID(path string) string {
	const marker = "/shorts/"
	i := strings.Index(path, marker)
	if i < 0 {
		return ""
	}
	rest := path[i+len(marker):]
	if j := strings.IndexAny(rest, "/?&"); j >= 0 {
		rest = rest[:j]
	}
	return rest
}

func lastSegment(path string) string {
	segs := strings.Split(strings.Trim(path, "/"), "/")
	for i := len(segs) - 1; i >= 0; i-- {
		if segs[i] != "" {
			return segs[i]
		}
	}
	return ""
}
