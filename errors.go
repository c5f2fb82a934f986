package ytscribe

import (
	httpclient "ytscribe/http"
	"ytscribe/internal/output"
	"ytscribe/internal/storage"
	"ytscribe/youtube"
)

// Error handling types exported for library users.
//
// All error types support the standard error handling patterns:
//
// Using errors.Is() for sentinel errors:
//
//	if errors.Is(res.Err, ytscribe.ErrTranscriptsDisabled) {
//		fmt.Println("This video has no captions")
//	}
//
// Using errors.As() for wrapped errors:
//
//	var writeErr *ytscribe.WriteError
//	if errors.As(res.Err, &writeErr) {
//		fmt.Printf("%s failed for %s: %v\n", writeErr.Op, writeErr.Path, writeErr.Err)
//	}

// Type aliases for convenient error handling.
type (
	// TranscriptError wraps errors during transcript retrieval.
	TranscriptError = youtube.TranscriptError
	// WriteError wraps errors while saving or mirroring a transcript.
	WriteError = output.WriteError
	// StorageError wraps errors during history operations.
	StorageError = storage.StorageError
	// HTTPError is a non-2xx HTTP response.
	HTTPError = httpclient.HTTPError
)

// Sentinel errors exported from sub-packages.
var (
	// ErrInvalidURL indicates no video ID could be extracted from the URL.
	ErrInvalidURL = youtube.ErrInvalidURL
	// ErrVideoUnavailable indicates the video does not exist or was removed.
	ErrVideoUnavailable = youtube.ErrVideoUnavailable
	// ErrVideoUnplayable indicates the video cannot be played (private, offline).
	ErrVideoUnplayable = youtube.ErrVideoUnplayable
	// ErrAgeRestricted indicates the video requires a signed-in adult.
	ErrAgeRestricted = youtube.ErrAgeRestricted
	// ErrRequestBlocked indicates YouTube refused the request.
	ErrRequestBlocked = youtube.ErrRequestBlocked
	// ErrTranscriptsDisabled indicates the video has no caption tracks.
	ErrTranscriptsDisabled = youtube.ErrTranscriptsDisabled
	// ErrNoTranscriptFound indicates no track matches the requested languages.
	ErrNoTranscriptFound = youtube.ErrNoTranscriptFound

	// History errors
	// ErrLockTimeout indicates a timeout acquiring the history file lock.
	ErrLockTimeout = storage.ErrLockTimeout
)
