package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"ytscribe"
	"ytscribe/internal/storage"
)

func printProgress(w io.Writer, videoID string) {
	fmt.Fprintf(w, "Fetching transcript for video ID: %s...\n", videoID)
}

// renderJSON writes res as one JSON object followed by a newline.
func renderJSON(w io.Writer, res *ytscribe.Result) error {
	return json.NewEncoder(w).Encode(res)
}

// renderHuman prints the outcome of a run. A failed write also prints the
// transcript so the fetched text is not lost.
func renderHuman(w io.Writer, res *ytscribe.Result, syncDir string) {
	if !res.OK() {
		fmt.Fprintln(w, failureLine(res))

		var writeErr *ytscribe.WriteError
		if errors.As(res.Err, &writeErr) && res.TranscriptText != "" {
			fmt.Fprint(w, "\n--- Transcript ---\n\n")
			fmt.Fprintln(w, res.TranscriptText)
		}
		return
	}

	fmt.Fprintf(w, "\nTranscript saved to: %s\n", res.FilePath)
	if res.DrivePath != "" {
		fmt.Fprintf(w, "Successfully copied to Google Drive: %s\n", res.DrivePath)
	} else {
		fmt.Fprintf(w, "\nNote: Google Drive folder not found at %s. File only saved locally.\n", syncDir)
	}
	if res.BucketKey != "" {
		fmt.Fprintf(w, "Uploaded to bucket: %s\n", res.BucketKey)
	}
}

// failureLine returns the error line for res. Fetch and save failures already
// start with their own "Error ..." wording; other failures get "Error: ".
func failureLine(res *ytscribe.Result) string {
	var transcriptErr *ytscribe.TranscriptError
	var writeErr *ytscribe.WriteError
	if errors.As(res.Err, &transcriptErr) || errors.As(res.Err, &writeErr) {
		return res.Message
	}
	return "Error: " + res.Message
}

func renderHistoryJSON(w io.Writer, entries []*storage.HistoryEntry) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}

func renderHistory(w io.Writer, entries []*storage.HistoryEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No transcripts saved yet.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SAVED\tVIDEO ID\tTITLE\tFILE")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			e.CreatedAt.Local().Format(time.DateTime),
			e.VideoID,
			truncate(e.Title, 50),
			e.FilePath,
		)
	}
	tw.Flush()
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
