package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/fomapcheck/internal/config"
	"github.com/nao1215/fomapcheck/internal/database"
	"github.com/nao1215/fomapcheck/internal/fomap"
	applog "github.com/nao1215/fomapcheck/internal/log"
	"github.com/nao1215/fomapcheck/internal/model"
	"github.com/nao1215/fomapcheck/internal/pipeline"
	"github.com/nao1215/fomapcheck/internal/proto"
	"github.com/nao1215/fomapcheck/internal/report"
)

// NewCheckCmd creates the check command.
func NewCheckCmd() *cobra.Command {
	defaults := config.NewConfig()

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check map object categories against the prototype catalog",
		Long: `Check loads the item prototype catalog, then checks every map file in the
maps directory in parallel.

For each placed object the category recorded in the map (MapObjType) is
compared with the category implied by its prototype's type:
- Grid, generic and wall items must be recorded as scenery (2)
- All other items must be recorded as items (1)
- Critters and unknown prototypes are left alone

Disagreeing categories are rewritten in place, one byte per object.
Objects with a category that is neither critter, item nor scenery are
listed in the report file and never rewritten.

A map that cannot be read, parsed or written is reported at the end and
the remaining maps are still processed; the exit status is non-zero.
Use --fail-fast to stop at the first failure instead.

Directories are resolved in this order:
  1. --proto / --maps
  2. $PROTO_PATH / $MAPS_PATH
  3. proto_path.cfg / maps_path.cfg in the working directory
  4. proto_path / maps_path in the configuration file
  5. ../../proto / ../../maps

Examples:
  # Check and fix maps using the default directories
  fomapcheck check

  # Show what would change without touching any file
  fomapcheck check --dry-run

  # Explicit directories, keeping a backup of each modified map
  fomapcheck check -P ./proto -M ./maps --backup

  # Write a Markdown summary to a file
  fomapcheck check --markdown -o summary.md`,
		Args: cobra.NoArgs,
		RunE: runCheckCmd,
	}

	// Input flags
	cmd.Flags().StringP("proto", "P", "",
		"Prototype catalog root containing items/items.lst")
	cmd.Flags().StringP("maps", "M", "",
		"Directory containing the map files")
	cmd.Flags().String("ext", config.DefaultMapExtension,
		"Map file extension")

	// Processing flags
	cmd.Flags().IntP("workers", "w", defaults.Workers,
		"Number of maps processed concurrently")
	cmd.Flags().BoolP("dry-run", "n", false,
		"Report corrections without writing them")
	cmd.Flags().BoolP("backup", "b", false,
		"Copy each map to <map>"+config.DefaultBackupSuffix+" before writing to it")
	cmd.Flags().Bool("fail-fast", false,
		"Stop at the first map that cannot be processed")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .fomapcheck in current or home directory)")

	// Output flags
	cmd.Flags().StringP("report", "r", config.DefaultReportFile,
		"Report file listing objects with an unclassifiable category")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON summary (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown summary (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write the summary to specified file path (creates directories if needed)")

	// History flags
	cmd.Flags().Bool("no-history", false,
		"Do not record this run in the history database")
	cmd.Flags().String("db-dir", "",
		"History database directory (default: XDG data directory)")

	return cmd
}

// runCheckCmd executes the check command.
func runCheckCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runCheck(ctx, cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags and the
// configuration file. Flags set explicitly win over file settings.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.ProtoDir, err = cmd.Flags().GetString("proto")
	if err != nil {
		return nil, err
	}

	cfg.MapsDir, err = cmd.Flags().GetString("maps")
	if err != nil {
		return nil, err
	}

	cfg.MapExtension, err = cmd.Flags().GetString("ext")
	if err != nil {
		return nil, err
	}

	cfg.Workers, err = cmd.Flags().GetInt("workers")
	if err != nil {
		return nil, err
	}

	cfg.DryRun, err = cmd.Flags().GetBool("dry-run")
	if err != nil {
		return nil, err
	}

	cfg.Backup, err = cmd.Flags().GetBool("backup")
	if err != nil {
		return nil, err
	}

	cfg.FailFast, err = cmd.Flags().GetBool("fail-fast")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("report")
	if err != nil {
		return nil, err
	}

	cfg.JSONSummary, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownSummary, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.SummaryFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	noHistory, err := cmd.Flags().GetBool("no-history")
	if err != nil {
		return nil, err
	}
	cfg.SaveHistory = !noHistory

	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return nil, err
	}
	if dbDir != "" {
		cfg.DBDir = dbDir
	}

	cfg.Verbose = getVerboseFlag(cmd)

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// If user explicitly specified a config file path, error if not found.
	// If no path specified, run without one.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.ApplyFile(file, cmd.Flags().Changed)
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	return cfg, nil
}

// runCheck resolves the directories, loads the catalog and checks every map.
func runCheck(ctx context.Context, cfg *config.Config, stdout, stderr io.Writer) error {
	resolver, err := config.NewResolver()
	if err != nil {
		return err
	}

	protoDir, protoSource, err := resolver.ResolveDir(cfg.ProtoDirSpec())
	if err != nil {
		return fmt.Errorf("failed to resolve prototype directory: %w", err)
	}
	mapsDir, mapsSource, err := resolver.ResolveDir(cfg.MapsDirSpec())
	if err != nil {
		return fmt.Errorf("failed to resolve maps directory: %w", err)
	}
	cfg.ProtoDir, cfg.MapsDir = protoDir, mapsDir

	logger := applog.NewLogger(stderr, cfg.Verbose, protoDir, mapsDir)
	slog.SetDefault(logger)

	logger.Debug("directories resolved",
		"proto", protoDir,
		"protoSource", protoSource,
		"maps", mapsDir,
		"mapsSource", mapsSource,
	)

	// A formatted summary on stdout must not be mixed with progress lines.
	progressOut := stdout
	if (cfg.JSONSummary || cfg.MarkdownSummary) && cfg.SummaryFile == "" {
		progressOut = stderr
	}
	progress := pipeline.NewProgress(progressOut)

	catalog, err := proto.LoadItems(protoDir)
	if err != nil {
		return fmt.Errorf("failed to load prototypes: %w", err)
	}
	logger.Debug("prototypes loaded", "count", catalog.Len())

	paths, err := fomap.FindMaps(mapsDir, cfg.MapExtension)
	if err != nil {
		return err
	}
	progress.Printf("Found %d maps.", len(paths))

	startedAt := time.Now()

	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline {
			return pipeline.DefaultPipeline(catalog,
				[]pipeline.Option{pipeline.WithLogger(logger)},
				pipeline.WithPipelineDryRun(cfg.DryRun),
				pipeline.WithPipelineBackup(cfg.Backup),
				pipeline.WithPipelineProgress(progress),
			)
		},
		pipeline.WithConcurrency(cfg.Workers),
		pipeline.WithFailFast(cfg.FailFast),
		pipeline.WithBatchLogger(logger),
	)

	results, batchErr := bp.ProcessBatch(ctx, paths)

	invalid := report.NewInvalidReport()
	for _, r := range results {
		if err := invalid.Add(r); err != nil {
			return err
		}
	}
	if err := invalid.WriteFile(cfg.ReportFile); err != nil {
		return err
	}

	summary := model.NewRunSummary(model.NewRunID(), startedAt, results)
	summary.Elapsed = time.Since(startedAt)
	summary.MapsDir = mapsDir
	summary.ProtoDir = protoDir
	summary.ReportFile = cfg.ReportFile
	summary.DryRun = cfg.DryRun
	summary.Prototypes = catalog.Len()

	if err := writeSummary(cfg, summary, stdout); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}

	if cfg.SaveHistory {
		// The run is recorded even after an interrupt.
		if err := saveRun(context.WithoutCancel(ctx), cfg.DBDir, summary); err != nil {
			logger.Warn("failed to record run", "error", err)
		}
	}

	switch {
	case errors.Is(batchErr, context.Canceled):
		return fmt.Errorf("check cancelled: %w", batchErr)
	case batchErr != nil:
		return fmt.Errorf("check stopped: %w", batchErr)
	case summary.HasFailures():
		return fmt.Errorf("%d of %d maps failed", summary.FilesFailed, summary.FilesFound)
	}
	return nil
}

// newSummaryWriter returns the writer for the requested summary format.
func newSummaryWriter(cfg *config.Config, w io.Writer) report.Writer {
	switch {
	case cfg.JSONSummary:
		return report.NewJSONWriter(w, report.WithPrettyPrint())
	case cfg.MarkdownSummary:
		return report.NewMarkdownWriter(w)
	default:
		return report.NewSimpleWriter(w, report.WithVerbose(cfg.Verbose))
	}
}

// writeSummary prints the run summary. With an output file the formatted
// summary goes to the file and the text summary still goes to stdout.
func writeSummary(cfg *config.Config, summary *model.RunSummary, stdout io.Writer) error {
	if cfg.SummaryFile == "" {
		_, err := newSummaryWriter(cfg, stdout).Write(summary)
		return err
	}

	dir := filepath.Dir(cfg.SummaryFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(cfg.SummaryFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	w := report.NewMultiWriter(
		report.NewSimpleWriter(stdout, report.WithVerbose(cfg.Verbose)),
		newSummaryWriter(cfg, f),
	)
	if _, err := w.Write(summary); err != nil {
		return err
	}
	return f.Close()
}

// saveRun records the summary in the history database under dbDir.
func saveRun(ctx context.Context, dbDir string, summary *model.RunSummary) error {
	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.SaveRun(ctx, summary); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	slog.Debug("run recorded", "id", summary.ID, "db", db.Path())
	return nil
}
