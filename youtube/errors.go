package youtube

import "errors"

// Sentinel errors for transcript retrieval.
var (
	ErrInvalidURL          = errors.New("youtube: could not extract video ID from URL")
	ErrVideoUnavailable    = errors.New("youtube: video is unavailable")
	ErrVideoUnplayable     = errors.New("youtube: video is unplayable")
	ErrAgeRestricted       = errors.New("youtube: video is age restricted")
	ErrRequestBlocked      = errors.New("youtube: request blocked by YouTube")
	ErrTranscriptsDisabled = errors.New("youtube: subtitles are disabled for this video")
	ErrNoTranscriptFound   = errors.New("youtube: no transcript found for the requested languages")
)

// TranscriptErrorPrefix starts the user-facing message of every fetch failure.
const TranscriptErrorPrefix = "Error fetching transcript: "

// TranscriptError wraps errors during transcript extraction.
type TranscriptError struct {
	VideoID string
	Err     error
}

// Error returns the user-facing message, prefixed with TranscriptErrorPrefix.
func (e *TranscriptError) Error() string {
	return TranscriptErrorPrefix + e.Err.Error()
}

// Unwrap returns the underlying error for use with errors.Is() and errors.As().
func (e *TranscriptError) Unwrap() error { return e.Err }
