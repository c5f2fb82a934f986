// Package ytscribe saves YouTube transcripts as text files.
//
// A run takes one video URL through a fixed sequence of steps: the video ID
// is extracted from the URL, the captions are fetched through YouTube's
// Innertube API and flattened to text, the page title is resolved, and the
// text is written to <output dir>/<title>.txt. The file is then copied into a
// cloud-sync folder when that folder exists and, if configured, uploaded to
// an S3-compatible bucket.
//
// Quick Start
//
//	cfg, err := config.Load()
//	if err != nil {
//		log.Fatal(err)
//	}
//	pipeline, err := ytscribe.New(ctx, cfg, cfg.Logger(os.Stderr))
//	if err != nil {
//		log.Fatal(err)
//	}
//	res := pipeline.Run(ctx, "https://www.youtube.com/watch?v=dQw4w9WgXcQ")
//	if !res.OK() {
//		log.Fatal(res.Message)
//	}
//	fmt.Println("Transcript saved to:", res.FilePath)
//
// Run never returns an error. Failures are reported through Result.Status and
// Result.Message, and Result.Err carries the underlying error for errors.Is
// and errors.As.
//
// Configuration
//
// Settings come from environment variables, then an optional .env file, then
// defaults. See package config for the full list. The most common ones:
//
//   - YTSCRIBE_OUTPUT_DIR: Output directory (default "extracts")
//   - YTSCRIBE_SYNC_DIR: Cloud-sync folder to copy transcripts into
//   - YTSCRIBE_LANGUAGES: Caption language priority, comma-separated
//   - YTSCRIBE_BUCKET_NAME: Bucket for the optional S3 mirror
//
// Advanced Usage
//
// For more control, use the sub-packages directly:
//
//   - youtube: Video ID extraction, transcript fetching, title resolution
//   - youtube/innertube: The Innertube caption source
//   - config: Configuration management
//   - http: HTTP client used for all YouTube requests
package ytscribe
