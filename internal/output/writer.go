// Package output writes transcripts to disk and mirrors them to a cloud-sync
// folder and an optional object-store bucket.
package output

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"ytscribe/internal/storage"
)

// FileMode is the permission of written transcript files.
const FileMode os.FileMode = 0644

// Uploader uploads a file found under rootPath to the given object key.
type Uploader interface {
	UploadFile(ctx context.Context, rootPath, key, filename string) error
}

// WriteError wraps a failed filesystem step of Write.
type WriteError struct {
	// Op is the failed step ("mkdir", "write", "copy").
	Op string
	// Path is the file or directory involved.
	Path string
	// Err is the underlying error.
	Err error
}

// Error returns the underlying message, which is what the user sees.
func (e *WriteError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error for use with errors.Is() and errors.As().
func (e *WriteError) Unwrap() error { return e.Err }

// Saved describes where a transcript ended up.
type Saved struct {
	// Path is the absolute path of the primary file.
	Path string
	// DrivePath is the copy in the sync folder, empty when not copied.
	DrivePath string
	// BucketKey is the uploaded object key, empty when not uploaded.
	BucketKey string
}

// Writer saves transcripts as <dir>/<sanitized title>.txt.
type Writer struct {
	dir          string
	syncDir      string
	uploader     Uploader
	bucketPrefix string
	logger       zerolog.Logger
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithSyncDir sets the cloud-sync folder. The folder is never created; the
// copy happens only when it already exists.
func WithSyncDir(dir string) WriterOption {
	return func(w *Writer) {
		w.syncDir = dir
	}
}

// WithUploader enables the bucket mirror. Objects are stored under prefix+name.
func WithUploader(u Uploader, prefix string) WriterOption {
	return func(w *Writer) {
		w.uploader = u
		w.bucketPrefix = prefix
	}
}

// WithLogger sets the diagnostics logger.
func WithLogger(logger zerolog.Logger) WriterOption {
	return func(w *Writer) {
		w.logger = logger.With().Str("component", "writer").Logger()
	}
}

// NewWriter creates a Writer rooted at dir.
func NewWriter(dir string, opts ...WriterOption) *Writer {
	w := &Writer{
		dir:    dir,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write stores text under the sanitized title, replacing any existing file,
// then mirrors it. A failed bucket upload is logged and leaves BucketKey empty.
func (w *Writer) Write(ctx context.Context, title, text string) (*Saved, error) {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return nil, &WriteError{Op: "mkdir", Path: w.dir, Err: err}
	}

	name := SanitizeFilename(title) + ".txt"
	path, err := filepath.Abs(filepath.Join(w.dir, name))
	if err != nil {
		return nil, &WriteError{Op: "write", Path: name, Err: err}
	}

	if _, err := os.Stat(path); err == nil {
		w.logger.Warn().Str("path", path).Msg("overwriting existing transcript")
	}

	if err := storage.WriteFileAtomic(path, []byte(text), FileMode); err != nil {
		return nil, &WriteError{Op: "write", Path: path, Err: err}
	}
	w.logger.Debug().Str("path", path).Int("bytes", len(text)).Msg("transcript written")

	saved := &Saved{Path: path}

	if w.syncDirExists() {
		dest := filepath.Join(w.syncDir, name)
		if err := copyFile(path, dest); err != nil {
			return nil, &WriteError{Op: "copy", Path: dest, Err: err}
		}
		saved.DrivePath = dest
		w.logger.Debug().Str("path", dest).Msg("transcript copied to sync folder")
	}

	if w.uploader != nil {
		key := w.bucketPrefix + name
		if err := w.uploader.UploadFile(ctx, filepath.Dir(path), key, name); err != nil {
			w.logger.Warn().Err(err).Str("key", key).Msg("bucket upload failed")
		} else {
			saved.BucketKey = key
		}
	}

	return saved, nil
}

// syncDirExists reports whether the sync folder is an existing directory.
// Stat errors of any kind count as absent.
func (w *Writer) syncDirExists() bool {
	if w.syncDir == "" {
		return false
	}
	info, err := os.Stat(w.syncDir)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			w.logger.Debug().Err(err).Str("dir", w.syncDir).Msg("sync folder not accessible")
		}
		return false
	}
	return info.IsDir()
}

// copyFile copies src to dst keeping the permission bits and modification time.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := storage.NewAtomicWriter(dst, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Abort()
		return fmt.Errorf("copy %s: %w", src, err)
	}
	if err := out.Commit(); err != nil {
		return err
	}

	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}
