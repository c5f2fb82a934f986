package storage

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	schemaVersion = "1.0"
	lockTimeout   = 5 * time.Second
	corruptSuffix = ".corrupt"
)

// HistoryStore keeps the most recent history entries in a single JSON file.
// The file lock is held from Open until Close, so a second process waits
// for the first one to finish. A HistoryStore is safe for concurrent use.
type HistoryStore struct {
	path  string
	limit int
	lock  *FileLock
	data  *historyData
	mu    sync.RWMutex

	recovered bool
}

// historyData is the top-level JSON structure.
type historyData struct {
	Version   string          `json:"version"`
	UpdatedAt time.Time       `json:"updated_at"`
	Entries   []*HistoryEntry `json:"entries"`
}

// Open opens the history file at path, creating it if needed. At most limit
// entries are kept; a limit of zero or less keeps every entry.
func Open(path string, limit int) (*HistoryStore, error) {
	if path == "" {
		return nil, &StorageError{Op: "open", Entity: "history", Err: ErrInvalidInput}
	}

	s := &HistoryStore{
		path:  path,
		limit: limit,
		lock:  NewFileLock(path),
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, &StorageError{Op: "open", Entity: "history", Err: err}
	}

	if err := s.lock.Lock(lockTimeout); err != nil {
		return nil, err
	}

	if err := s.load(); err != nil {
		s.lock.Unlock()
		return nil, err
	}

	return s, nil
}

// load reads the JSON file into memory. A missing file yields an empty history.
// A file that does not parse is moved to path + ".corrupt" and the store
// starts over with an empty history.
func (s *HistoryStore) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.data = newHistoryData()
			return nil
		}
		return &StorageError{Op: "read", Entity: "history", Err: err}
	}

	s.data = &historyData{}
	if err := json.Unmarshal(data, s.data); err != nil {
		os.Rename(s.path, s.path+corruptSuffix)
		s.data = newHistoryData()
		s.recovered = true
		return nil
	}
	if s.data.Entries == nil {
		s.data.Entries = []*HistoryEntry{}
	}

	return nil
}

// save persists the data to disk atomically.
func (s *HistoryStore) save() error {
	s.data.UpdatedAt = time.Now()

	writer, err := NewAtomicWriter(s.path, 0600)
	if err != nil {
		return &StorageError{Op: "write", Entity: "history", Err: err}
	}

	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(s.data); err != nil {
		writer.Abort()
		return &StorageError{Op: "write", Entity: "history", Err: err}
	}

	if err := writer.Commit(); err != nil {
		return &StorageError{Op: "write", Entity: "history", Err: err}
	}

	return nil
}

// Add records entry as the newest history item and trims the oldest ones
// beyond the limit. ID and CreatedAt are filled in when empty.
func (s *HistoryStore) Add(ctx context.Context, entry *HistoryEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if entry == nil || entry.VideoID == "" || entry.FilePath == "" {
		return &StorageError{Op: "create", Entity: "entry", Err: ErrInvalidInput}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		return ErrClosed
	}

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	stored := *entry
	entries := append([]*HistoryEntry{&stored}, s.data.Entries...)
	if s.limit > 0 && len(entries) > s.limit {
		entries = entries[:s.limit]
	}

	previous := s.data.Entries
	s.data.Entries = entries
	if err := s.save(); err != nil {
		s.data.Entries = previous
		return err
	}

	return nil
}

// List returns the recorded entries, newest first.
func (s *HistoryStore) List(ctx context.Context) ([]*HistoryEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.data == nil {
		return nil, ErrClosed
	}

	result := make([]*HistoryEntry, 0, len(s.data.Entries))
	for _, e := range s.data.Entries {
		cp := *e
		result = append(result, &cp)
	}
	return result, nil
}

// Recovered reports whether Open found an unreadable history file and started
// over. The unreadable file is kept next to the history as path + ".corrupt".
func (s *HistoryStore) Recovered() bool {
	return s.recovered
}

// Close releases the file lock held by the store.
func (s *HistoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = nil
	return s.lock.Unlock()
}

func newHistoryData() *historyData {
	return &historyData{
		Version:   schemaVersion,
		UpdatedAt: time.Now(),
		Entries:   []*HistoryEntry{},
	}
}
