package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/fomapcheck/internal/config"
	"github.com/nao1215/fomapcheck/internal/database"
	"github.com/nao1215/fomapcheck/internal/report"
)

// defaultHistoryLimit is the number of runs listed when --limit is not set.
const defaultHistoryLimit = 20

// NewHistoryCmd creates the history command.
// This command shows runs recorded by 'fomapcheck check'.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recorded check runs",
		Long: `History lists the runs recorded in the history database, newest first.

With a run ID (or a unique prefix of one) it shows that run in detail:
every corrected object, every object left for manual review and every map
that failed.

Examples:
  # List recent runs
  fomapcheck history

  # Show one run
  fomapcheck history 3f2a9c1e

  # List runs as JSON
  fomapcheck history --json

  # Delete runs older than 30 days
  fomapcheck history --prune 720h`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().BoolP("json", "j", false,
		"Output in JSON format (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output in Markdown format (mutually exclusive with --json)")
	cmd.Flags().IntP("limit", "l", defaultHistoryLimit,
		"Maximum number of runs to list (0 for all)")
	cmd.Flags().Duration("prune", 0,
		"Delete runs older than this duration before listing")
	cmd.Flags().String("db-dir", "",
		"History database directory (default: XDG data directory)")

	return cmd
}

// historyOptions holds the parsed flags of the history command.
type historyOptions struct {
	json     bool
	markdown bool
	limit    int
	prune    time.Duration
	dbDir    string
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	opts, err := parseHistoryFlags(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	db, err := database.Open(opts.dbDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if len(args) == 1 {
				return fmt.Errorf("%w: %s", database.ErrRunNotFound, args[0])
			}
			_, err := newHistoryWriter(opts, out).WriteRuns(nil)
			return err
		}
		return err
	}
	defer db.Close()

	ctx := cmd.Context()

	if opts.prune > 0 {
		n, err := db.DeleteRunsBefore(ctx, time.Now().Add(-opts.prune))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Deleted %d runs older than %s.\n", n, opts.prune)
	}

	if len(args) == 1 {
		run, err := db.GetRun(ctx, args[0])
		if err != nil {
			return err
		}
		_, err = newHistoryWriter(opts, out).Write(run)
		return err
	}

	runs, err := db.ListRuns(ctx, opts.limit)
	if err != nil {
		return err
	}
	_, err = newHistoryWriter(opts, out).WriteRuns(runs)
	return err
}

// parseHistoryFlags reads and validates the history command flags.
func parseHistoryFlags(cmd *cobra.Command) (*historyOptions, error) {
	opts := &historyOptions{}

	var err error

	opts.json, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	opts.markdown, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	if opts.json && opts.markdown {
		return nil, fmt.Errorf("configuration error: %w", config.ErrConflictingSummaryFormats)
	}

	opts.limit, err = cmd.Flags().GetInt("limit")
	if err != nil {
		return nil, err
	}
	if opts.limit < 0 {
		return nil, fmt.Errorf("--limit must not be negative: %d", opts.limit)
	}

	opts.prune, err = cmd.Flags().GetDuration("prune")
	if err != nil {
		return nil, err
	}

	opts.dbDir, err = cmd.Flags().GetString("db-dir")
	if err != nil {
		return nil, err
	}
	if opts.dbDir == "" {
		opts.dbDir = config.XDGDataDir()
	}

	return opts, nil
}

// newHistoryWriter returns the writer for the requested format. The text
// form shows every change of a single run.
func newHistoryWriter(opts *historyOptions, w io.Writer) report.Writer {
	switch {
	case opts.json:
		return report.NewJSONWriter(w, report.WithPrettyPrint())
	case opts.markdown:
		return report.NewMarkdownWriter(w)
	default:
		return report.NewSimpleWriter(w, report.WithVerbose(true))
	}
}
