package extract

import (
	"context"
	"strings"

	youtube "github.com/kkdai/youtube/v2"
	"github.com/rs/zerolog/log"

	"github.com/jnolting/contentdigest/internal/source"
)

// transcriptLanguages is the preference order for transcript lookup: a
// primary regional variant, then secondary variants, then whatever caption
// track the video advertises.
var transcriptLanguages = []string{"en", "en-US", "en-GB"}

// videoService is the slice of the platform client the extractor needs.
// Tests substitute a fake; production uses youtube.Client.
type videoService interface {
	GetVideoContext(ctx context.Context, url string) (*youtube.Video, error)
	GetTranscriptCtx(ctx context.Context, video *youtube.Video, lang string) (youtube.VideoTranscript, error)
}

// VideoExtractor recovers a transcript and basic metadata for a video
// without downloading media. Both recoveries degrade silently: many videos
// simply have no transcript, and a video with no recoverable metadata is
// still a valid, low-information result.
type VideoExtractor struct {
	service videoService
}

func NewVideoExtractor() *VideoExtractor {
	return &VideoExtractor{service: &youtube.Client{}}
}

// Extract always succeeds with Err == nil. Missing transcript yields empty
// text; missing metadata yields a synthesized title and zero duration.
func (e *VideoExtractor) Extract(ctx context.Context, rawURL string) Result {
	id := source.VideoID(rawURL)
	res := Result{URL: rawURL, Source: source.Video, Title: "YouTube: " + id}
	if id == "" {
		return res
	}

	video, err := e.service.GetVideoContext(ctx, id)
	if err != nil || video == nil {
		log.Debug().Str("url", rawURL).Err(err).Msg("video metadata unavailable")
		return res
	}

	if t := collapseSpaces(video.Title); t != "" {
		res.Title = t
	}
	res.Duration = video.Duration
	res.Text = e.transcript(ctx, video)
	return res
}

func (e *VideoExtractor) transcript(ctx context.Context, video *youtube.Video) string {
	langs := append([]string(nil), transcriptLanguages...)
	for _, track := range video.CaptionTracks {
		if code := track.LanguageCode; code != "" && !containsString(langs, code) {
			// One fallback to "any available" is enough.
			langs = append(langs, code)
			break
		}
	}
	for _, lang := range langs {
		segments, err := e.service.GetTranscriptCtx(ctx, video, lang)
		if err != nil || len(segments) == 0 {
			continue
		}
		parts := make([]string, 0, len(segments))
		for _, seg := range segments {
			if t := strings.TrimSpace(seg.Text); t != "" {
				parts = append(parts, t)
			}
		}
		if joined := strings.Join(parts, " "); joined != "" {
			return joined
		}
	}
	return ""
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
