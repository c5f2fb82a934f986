package youtube

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Segment is a single caption cue.
type Segment struct {
	// Text is the cue text with markup removed.
	Text string `json:"text"`
	// Start is the cue start in seconds.
	Start float64 `json:"start"`
	// Duration is the cue length in seconds.
	Duration float64 `json:"duration"`
}

// CaptionTrack describes one caption track offered for a video.
type CaptionTrack struct {
	// BaseURL is the timedtext URL for the track.
	BaseURL string
	// Language is the human-readable language name, e.g. "English (auto-generated)".
	Language string
	// LanguageCode is the track language code, e.g. "en".
	LanguageCode string
	// IsGenerated is true for automatic speech recognition tracks.
	IsGenerated bool
}

// Transcript is a fetched caption track in chronological order.
type Transcript struct {
	VideoID      string    `json:"video_id"`
	Language     string    `json:"language"`
	LanguageCode string    `json:"language_code"`
	IsGenerated  bool      `json:"is_generated"`
	Segments     []Segment `json:"segments"`
}

// CaptionSource lists and downloads caption tracks for a video.
type CaptionSource interface {
	// ListTracks returns every caption track available for the video.
	ListTracks(ctx context.Context, videoID string) ([]CaptionTrack, error)
	// FetchTrack downloads and parses one track.
	FetchTrack(ctx context.Context, track CaptionTrack) ([]Segment, error)
}

// Fetcher retrieves transcripts through a CaptionSource and flattens them to text.
type Fetcher struct {
	source    CaptionSource
	languages []string
	formatter Formatter
	logger    zerolog.Logger
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithLanguages sets the language priority list (default: "en").
func WithLanguages(languages ...string) FetcherOption {
	return func(f *Fetcher) {
		if len(languages) > 0 {
			f.languages = languages
		}
	}
}

// WithFormatter sets the formatter used by Text (default: TextFormatter{},
// which concatenates cues).
func WithFormatter(formatter Formatter) FetcherOption {
	return func(f *Fetcher) {
		f.formatter = formatter
	}
}

// WithLogger sets the diagnostics logger.
func WithLogger(logger zerolog.Logger) FetcherOption {
	return func(f *Fetcher) {
		f.logger = logger.With().Str("component", "fetcher").Logger()
	}
}

// NewFetcher creates a transcript fetcher backed by source.
func NewFetcher(source CaptionSource, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		source:    source,
		languages: []string{"en"},
		formatter: TextFormatter{},
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch retrieves the best transcript for videoID. Every failure is returned
// as a *TranscriptError.
func (f *Fetcher) Fetch(ctx context.Context, videoID string) (*Transcript, error) {
	tracks, err := f.source.ListTracks(ctx, videoID)
	if err != nil {
		return nil, &TranscriptError{VideoID: videoID, Err: err}
	}

	track, err := SelectTrack(tracks, f.languages)
	if err != nil {
		return nil, &TranscriptError{VideoID: videoID, Err: err}
	}
	f.logger.Debug().
		Str("video_id", videoID).
		Str("language", track.LanguageCode).
		Bool("generated", track.IsGenerated).
		Msg("selected caption track")

	segments, err := f.source.FetchTrack(ctx, track)
	if err != nil {
		return nil, &TranscriptError{VideoID: videoID, Err: err}
	}

	return &Transcript{
		VideoID:      videoID,
		Language:     track.Language,
		LanguageCode: track.LanguageCode,
		IsGenerated:  track.IsGenerated,
		Segments:     segments,
	}, nil
}

// FetchText retrieves the transcript and renders it with the configured formatter.
func (f *Fetcher) FetchText(ctx context.Context, videoID string) (string, error) {
	transcript, err := f.Fetch(ctx, videoID)
	if err != nil {
		return "", err
	}
	return f.formatter.Format(transcript.Segments), nil
}

// SelectTrack picks a track for the first language in priority order that has
// one, preferring manually created tracks over generated ones.
func SelectTrack(tracks []CaptionTrack, languages []string) (CaptionTrack, error) {
	for _, lang := range languages {
		var generated *CaptionTrack
		for i := range tracks {
			if tracks[i].LanguageCode != lang {
				continue
			}
			if !tracks[i].IsGenerated {
				return tracks[i], nil
			}
			if generated == nil {
				generated = &tracks[i]
			}
		}
		if generated != nil {
			return *generated, nil
		}
	}

	available := make([]string, 0, len(tracks))
	for _, t := range tracks {
		available = append(available, t.LanguageCode)
	}
	return CaptionTrack{}, fmt.Errorf("%w: requested %s, available %s",
		ErrNoTranscriptFound, strings.Join(languages, ","), strings.Join(available, ","))
}
