package storage

import "time"

// HistoryEntry records one successfully saved transcript.
type HistoryEntry struct {
	ID        string    `json:"id"`       // Internal UUID
	VideoID   string    `json:"video_id"` // YouTube video ID
	URL       string    `json:"url"`      // URL as given on the command line
	Title     string    `json:"title"`
	FilePath  string    `json:"file_path"`
	DrivePath string    `json:"drive_path,omitempty"` // Set when copied to the sync folder
	BucketKey string    `json:"bucket_key,omitempty"` // Set when uploaded to the bucket
	CreatedAt time.Time `json:"created_at"`
}
