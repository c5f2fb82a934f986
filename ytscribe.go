package ytscribe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"ytscribe/config"
	httpclient "ytscribe/http"
	"ytscribe/internal/bucket"
	"ytscribe/internal/output"
	"ytscribe/internal/storage"
	"ytscribe/youtube"
	"ytscribe/youtube/innertube"
)

// Result statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// PreviewLength is the number of characters kept in TranscriptPreview.
const PreviewLength = 200

// Messages reported for failures outside the fetch step.
const (
	MsgInvalidURL      = "Could not extract video ID from URL."
	MsgSaveErrorPrefix = "Error saving file: "
)

// Result is the outcome of one Pipeline run. Status discriminates between a
// success and a failure; only the fields of the matching case are set, except
// that a failed write keeps TranscriptText so the caller can still show it.
type Result struct {
	Status string

	VideoID           string
	Title             string
	FilePath          string
	TranscriptText    string
	TranscriptPreview string
	DrivePath         string
	BucketKey         string

	Message string
	// Err is the error behind a failure, for errors.Is and errors.As.
	Err error
}

// OK reports whether the run succeeded.
func (r *Result) OK() bool {
	return r.Status == StatusSuccess
}

type successPayload struct {
	Status            string `json:"status"`
	Title             string `json:"title"`
	FilePath          string `json:"file_path"`
	TranscriptText    string `json:"transcript_text"`
	TranscriptPreview string `json:"transcript_preview"`
	DrivePath         string `json:"drive_path,omitempty"`
	BucketKey         string `json:"bucket_key,omitempty"`
}

type errorPayload struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// MarshalJSON encodes the fields of the result's case only.
func (r *Result) MarshalJSON() ([]byte, error) {
	if !r.OK() {
		return json.Marshal(errorPayload{Status: StatusError, Message: r.Message})
	}
	return json.Marshal(successPayload{
		Status:            StatusSuccess,
		Title:             r.Title,
		FilePath:          r.FilePath,
		TranscriptText:    r.TranscriptText,
		TranscriptPreview: r.TranscriptPreview,
		DrivePath:         r.DrivePath,
		BucketKey:         r.BucketKey,
	})
}

func failure(msg string, err error) *Result {
	return &Result{Status: StatusError, Message: msg, Err: err}
}

// Preview returns the first PreviewLength characters of text, followed by
// "..." when text is longer.
func Preview(text string) string {
	runes := []rune(text)
	if len(runes) <= PreviewLength {
		return text
	}
	return string(runes[:PreviewLength]) + "..."
}

// TranscriptFetcher returns the flattened transcript text of a video.
type TranscriptFetcher interface {
	FetchText(ctx context.Context, videoID string) (string, error)
}

// TitleResolver derives a title from a page URL. It never fails.
type TitleResolver interface {
	Resolve(ctx context.Context, url string) string
}

// TranscriptWriter stores transcript text under a title.
type TranscriptWriter interface {
	Write(ctx context.Context, title, text string) (*output.Saved, error)
}

// HistoryRecorder records successful runs.
type HistoryRecorder interface {
	Add(ctx context.Context, entry *storage.HistoryEntry) error
}

// Pipeline runs extraction, fetch, title resolution and writing in sequence.
type Pipeline struct {
	fetcher TranscriptFetcher
	titles  TitleResolver
	writer  TranscriptWriter
	history HistoryRecorder
	onFetch func(videoID string)
	logger  zerolog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithHistory records every successful run.
func WithHistory(h HistoryRecorder) Option {
	return func(p *Pipeline) {
		p.history = h
	}
}

// WithOnFetch registers a callback invoked with the video ID right before the
// transcript is fetched.
func WithOnFetch(fn func(videoID string)) Option {
	return func(p *Pipeline) {
		p.onFetch = fn
	}
}

// WithLogger sets the diagnostics logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger.With().Str("component", "pipeline").Logger()
	}
}

// NewPipeline creates a Pipeline from its collaborators.
func NewPipeline(fetcher TranscriptFetcher, titles TitleResolver, writer TranscriptWriter, opts ...Option) *Pipeline {
	p := &Pipeline{
		fetcher: fetcher,
		titles:  titles,
		writer:  writer,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run processes one URL. It always returns a Result; failures never escape
// as errors or panics.
func (p *Pipeline) Run(ctx context.Context, url string) *Result {
	videoID, ok := youtube.ExtractVideoID(url)
	if !ok {
		return failure(MsgInvalidURL, youtube.ErrInvalidURL)
	}

	if p.onFetch != nil {
		p.onFetch(videoID)
	}

	text, err := p.fetcher.FetchText(ctx, videoID)
	if err != nil {
		p.logger.Debug().Err(err).Str("video_id", videoID).Msg("transcript fetch failed")
		res := failure(fetchMessage(err), err)
		res.VideoID = videoID
		return res
	}

	title := p.titles.Resolve(ctx, url)

	saved, err := p.writer.Write(ctx, title, text)
	if err != nil {
		res := failure(MsgSaveErrorPrefix+err.Error(), err)
		res.VideoID = videoID
		res.Title = title
		res.TranscriptText = text
		return res
	}

	res := &Result{
		Status:            StatusSuccess,
		VideoID:           videoID,
		Title:             title,
		FilePath:          saved.Path,
		TranscriptText:    text,
		TranscriptPreview: Preview(text),
		DrivePath:         saved.DrivePath,
		BucketKey:         saved.BucketKey,
	}

	if p.history != nil {
		entry := &storage.HistoryEntry{
			VideoID:   videoID,
			URL:       url,
			Title:     title,
			FilePath:  saved.Path,
			DrivePath: saved.DrivePath,
			BucketKey: saved.BucketKey,
		}
		if err := p.history.Add(ctx, entry); err != nil {
			p.logger.Warn().Err(err).Msg("could not record history")
		}
	}

	return res
}

// fetchMessage keeps the "Error fetching transcript: " prefix for every
// fetch failure, including ones not wrapped by the fetcher.
func fetchMessage(err error) string {
	var terr *youtube.TranscriptError
	if errors.As(err, &terr) {
		return terr.Error()
	}
	return youtube.TranscriptErrorPrefix + err.Error()
}

// HistoryFile records history entries into a JSON file. The file is locked
// only while an entry is being added. An unreadable file is set aside and
// the history starts over; Logger receives a warning when that happens.
type HistoryFile struct {
	Path   string
	Limit  int
	Logger zerolog.Logger
}

func (h HistoryFile) open() (*storage.HistoryStore, error) {
	store, err := storage.Open(h.Path, h.Limit)
	if err != nil {
		return nil, err
	}
	if store.Recovered() {
		h.Logger.Warn().
			Str("path", h.Path).
			Str("backup", h.Path+".corrupt").
			Msg("history file was unreadable, starting a new one")
	}
	return store, nil
}

// Add implements HistoryRecorder.
func (h HistoryFile) Add(ctx context.Context, entry *storage.HistoryEntry) error {
	store, err := h.open()
	if err != nil {
		return err
	}
	defer store.Close()
	return store.Add(ctx, entry)
}

// List returns the recorded entries, newest first.
func (h HistoryFile) List(ctx context.Context) ([]*storage.HistoryEntry, error) {
	store, err := h.open()
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return store.List(ctx)
}

// New wires a Pipeline from configuration: an Innertube caption source, the
// page title resolver, the output writer with its optional mirrors, and the
// history file.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger, opts ...Option) (*Pipeline, error) {
	client := httpclient.New(cfg.HTTPConfig())

	source := innertube.NewClient(client, innertube.WithLogger(logger))

	fetcherOpts := []youtube.FetcherOption{
		youtube.WithLanguages(cfg.Languages...),
		youtube.WithLogger(logger),
	}
	if cfg.LineBreaks {
		fetcherOpts = append(fetcherOpts, youtube.WithFormatter(youtube.NewTextFormatter()))
	}
	fetcher := youtube.NewFetcher(source, fetcherOpts...)

	titles := youtube.NewTitleResolver(client, logger)

	writerOpts := []output.WriterOption{
		output.WithSyncDir(cfg.SyncDir),
		output.WithLogger(logger),
	}
	if cfg.Bucket.Enabled() {
		svc, err := bucket.New(ctx, cfg.Bucket)
		if err != nil {
			return nil, fmt.Errorf("configure bucket mirror: %w", err)
		}
		writerOpts = append(writerOpts, output.WithUploader(svc, cfg.Bucket.Prefix))
	}
	writer := output.NewWriter(cfg.OutputDir, writerOpts...)

	all := []Option{WithLogger(logger)}
	if cfg.HistoryLimit > 0 {
		all = append(all, WithHistory(HistoryFile{
			Path:   cfg.HistoryPath,
			Limit:  cfg.HistoryLimit,
			Logger: logger,
		}))
	}
	all = append(all, opts...)

	return NewPipeline(fetcher, titles, writer, all...), nil
}
