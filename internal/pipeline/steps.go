package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/nao1215/fomapcheck/internal/check"
	"github.com/nao1215/fomapcheck/internal/fomap"
	"github.com/nao1215/fomapcheck/internal/model"
	"github.com/nao1215/fomapcheck/internal/patch"
)

// Progress serializes progress lines written by concurrent steps.
// A nil *Progress discards everything.
type Progress struct {
	mu sync.Mutex
	w  io.Writer
}

// NewProgress creates a Progress writing to w.
func NewProgress(w io.Writer) *Progress {
	return &Progress{w: w}
}

// Printf writes one formatted line.
func (p *Progress) Printf(format string, args ...any) {
	if p == nil || p.w == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, format+"\n", args...)
}

// ReadStep loads the map file into memory and records its digest.
type ReadStep struct{}

// NewReadStep creates a new read step.
func NewReadStep() *ReadStep {
	return &ReadStep{}
}

// Name returns the step name.
func (s *ReadStep) Name() string {
	return "read"
}

// Do executes the read step.
func (s *ReadStep) Do(_ context.Context, result *model.FileResult) error {
	raw, err := os.ReadFile(result.Path)
	if err != nil {
		return fmt.Errorf("failed to read map: %w", err)
	}
	result.Raw = raw
	result.DigestBefore = patch.Digest(raw)
	result.DigestAfter = result.DigestBefore
	return nil
}

// ParseStep parses the raw map into a document. Unrecognised trailing
// content fails the file.
type ParseStep struct {
	progress *Progress
}

// NewParseStep creates a new parse step that announces each file on progress.
func NewParseStep(progress *Progress) *ParseStep {
	return &ParseStep{progress: progress}
}

// Name returns the step name.
func (s *ParseStep) Name() string {
	return "parse"
}

// Do executes the parse step.
func (s *ParseStep) Do(_ context.Context, result *model.FileResult) error {
	s.progress.Printf("Parsing %s", result.Path)

	doc, err := fomap.ParseStrict(result.Raw)
	if err != nil {
		return err
	}
	result.Document = doc
	result.Objects = len(doc.Objects)
	return nil
}

// CheckStep compares every object against the prototype catalog.
type CheckStep struct {
	catalog check.Catalog
}

// NewCheckStep creates a new check step. The catalog must not be modified
// while the batch runs.
func NewCheckStep(catalog check.Catalog) *CheckStep {
	return &CheckStep{catalog: catalog}
}

// Name returns the step name.
func (s *CheckStep) Name() string {
	return "check"
}

// Do executes the check step.
func (s *CheckStep) Do(_ context.Context, result *model.FileResult) error {
	res, err := check.Check(result.Document, s.catalog)
	if err != nil {
		return err
	}
	result.Changes = res.Changes
	result.Invalid = res.Invalid
	return nil
}

// PatchStep writes the corrections back to the map file.
type PatchStep struct {
	writer   *patch.Writer
	dryRun   bool
	progress *Progress
	logger   *slog.Logger
}

// PatchStepOption configures a PatchStep.
type PatchStepOption func(*PatchStep)

// WithDryRun computes the patched digest without touching the file.
func WithDryRun(dryRun bool) PatchStepOption {
	return func(s *PatchStep) {
		s.dryRun = dryRun
	}
}

// WithPatchLogger sets a custom logger for the patch step.
func WithPatchLogger(logger *slog.Logger) PatchStepOption {
	return func(s *PatchStep) {
		s.logger = logger
	}
}

// NewPatchStep creates a new patch step.
func NewPatchStep(writer *patch.Writer, progress *Progress, opts ...PatchStepOption) *PatchStep {
	s := &PatchStep{
		writer:   writer,
		progress: progress,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *PatchStep) Name() string {
	return "patch"
}

// Do executes the patch step.
func (s *PatchStep) Do(_ context.Context, result *model.FileResult) error {
	if len(result.Changes) == 0 {
		return nil
	}

	patched, err := patch.Preview(result.Raw, result.Changes)
	if err != nil {
		return err
	}
	result.DigestAfter = patch.Digest(patched)

	if s.dryRun {
		s.progress.Printf("Would write %d changes to %s", len(result.Changes), result.Path)
		return nil
	}

	s.progress.Printf("Writing %d changes to %s", len(result.Changes), result.Path)
	n, err := s.writer.Apply(result.Path, result.Changes)
	result.Applied = n
	if err != nil {
		return err
	}

	s.logger.Debug("map patched",
		"path", result.Path,
		"changes", n,
		"digest", result.DigestAfter,
	)
	return nil
}

// DefaultPipelineConfig holds configuration for the default pipeline.
type DefaultPipelineConfig struct {
	// DryRun reports corrections without writing them.
	DryRun bool

	// Backup copies each map before its first write.
	Backup bool

	// BackupSuffix is appended to the map path to name the backup.
	BackupSuffix string

	// Progress receives the per-file progress lines.
	Progress *Progress
}

// DefaultPipelineOption configures a DefaultPipelineConfig.
type DefaultPipelineOption func(*DefaultPipelineConfig)

// WithPipelineDryRun enables dry-run mode.
func WithPipelineDryRun(dryRun bool) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.DryRun = dryRun
	}
}

// WithPipelineBackup enables backups before writing.
func WithPipelineBackup(backup bool) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Backup = backup
	}
}

// WithPipelineBackupSuffix sets the backup file suffix.
func WithPipelineBackupSuffix(suffix string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.BackupSuffix = suffix
	}
}

// WithPipelineProgress sets the progress writer shared by all files.
func WithPipelineProgress(progress *Progress) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Progress = progress
	}
}

// DefaultPipeline creates the read, parse, check and patch pipeline for one
// map file.
//
// The first parameter set accepts pipeline options (WithLogger, etc).
// The second accepts pipeline config options (WithPipelineDryRun, etc).
func DefaultPipeline(catalog check.Catalog, pipelineOpts []Option, configOpts ...DefaultPipelineOption) *Pipeline {
	p := New(pipelineOpts...)

	cfg := &DefaultPipelineConfig{
		BackupSuffix: patch.DefaultBackupSuffix,
	}
	for _, opt := range configOpts {
		opt(cfg)
	}

	writer := patch.NewWriter(
		patch.WithBackup(cfg.Backup),
		patch.WithBackupSuffix(cfg.BackupSuffix),
	)

	p.AddSteps(
		NewReadStep(),
		NewParseStep(cfg.Progress),
		NewCheckStep(catalog),
		NewPatchStep(writer, cfg.Progress,
			WithDryRun(cfg.DryRun),
			WithPatchLogger(p.logger),
		),
	)

	return p
}
