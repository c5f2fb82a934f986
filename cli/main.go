package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"ytscribe"
	"ytscribe/config"
)

// errFailed signals a reported failure: the output is already written and
// the process only needs a non-zero exit status.
var errFailed = errors.New("run failed")

// app holds the streams and factories shared by all commands.
type app struct {
	stdout io.Writer
	stderr io.Writer

	loadConfig  func() (*config.Config, error)
	newPipeline func(ctx context.Context, cfg *config.Config, logger zerolog.Logger, opts ...ytscribe.Option) (*ytscribe.Pipeline, error)
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{
		stdout: stdout,
		stderr: stderr,
		loadConfig: func() (*config.Config, error) {
			return config.Load()
		},
		newPipeline: ytscribe.New,
	}
}

func main() {
	os.Exit(newApp(os.Stdout, os.Stderr).execute(context.Background(), os.Args[1:]))
}

// execute runs the command line and returns the process exit code.
func (a *app) execute(ctx context.Context, args []string) int {
	root := a.rootCmd()
	root.SetArgs(args)

	if err := root.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintf(a.stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func (a *app) rootCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "ytscribe [--json] <youtube-url>",
		Short: "Save the transcript of a YouTube video as a text file",
		Long: `ytscribe fetches the captions of a YouTube video, names the file after the
video title and writes it to the output directory (default "extracts").
The file is also copied into the cloud-sync folder when that folder exists.`,
		Example: `  ytscribe "https://www.youtube.com/watch?v=dQw4w9WgXcQ"
  ytscribe --json https://youtu.be/dQw4w9WgXcQ`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runFetch(cmd.Context(), args[0], jsonOut)
		},
	}
	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the result as a single JSON object")

	cmd.AddCommand(a.historyCmd())
	return cmd
}

func (a *app) historyCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recently saved transcripts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runHistory(cmd.Context(), jsonOut)
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print entries as a JSON array")
	return cmd
}

func (a *app) runFetch(ctx context.Context, url string, jsonOut bool) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return a.reportSetupError(fmt.Errorf("loading config: %w", err), jsonOut)
	}
	logger := cfg.Logger(a.stderr)

	var opts []ytscribe.Option
	if !jsonOut {
		opts = append(opts, ytscribe.WithOnFetch(func(videoID string) {
			printProgress(a.stdout, videoID)
		}))
	}

	pipeline, err := a.newPipeline(ctx, cfg, logger, opts...)
	if err != nil {
		return a.reportSetupError(err, jsonOut)
	}

	res := pipeline.Run(ctx, url)

	if jsonOut {
		if err := renderJSON(a.stdout, res); err != nil {
			return err
		}
	} else {
		renderHuman(a.stdout, res, cfg.SyncDir)
	}

	if !res.OK() {
		return errFailed
	}
	return nil
}

// reportSetupError keeps stdout a single JSON object in JSON mode.
func (a *app) reportSetupError(err error, jsonOut bool) error {
	if !jsonOut {
		return err
	}
	if err := renderJSON(a.stdout, &ytscribe.Result{Status: ytscribe.StatusError, Message: err.Error()}); err != nil {
		return err
	}
	return errFailed
}

func (a *app) runHistory(ctx context.Context, jsonOut bool) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	h := ytscribe.HistoryFile{
		Path:   cfg.HistoryPath,
		Limit:  cfg.HistoryLimit,
		Logger: cfg.Logger(a.stderr),
	}
	entries, err := h.List(ctx)
	if err != nil {
		return fmt.Errorf("reading history: %w", err)
	}

	if jsonOut {
		return renderHistoryJSON(a.stdout, entries)
	}
	renderHistory(a.stdout, entries)
	return nil
}
