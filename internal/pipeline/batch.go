package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/fomapcheck/internal/model"
)

// DefaultConcurrency is the worker count used when none is configured.
const DefaultConcurrency = 4

// BatchProcessor runs one pipeline per map file on a bounded pool of
// goroutines.
type BatchProcessor struct {
	// pipelineFactory creates a new pipeline for each file.
	pipelineFactory func() *Pipeline

	// concurrency is the maximum number of files processed at once.
	concurrency int

	// failFast cancels the batch on the first failed file.
	failFast bool

	// logger is used for batch-level logging.
	logger *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of files processed at once.
// Values below 1 are ignored.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithFailFast makes the first failed file cancel the rest of the batch.
// Files that have not started are marked as skipped. Files already
// patched are kept.
func WithFailFast(failFast bool) BatchOption {
	return func(b *BatchProcessor) {
		b.failFast = failFast
	}
}

// NewBatchProcessor creates a new BatchProcessor.
// The pipelineFactory is called once per file.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     DefaultConcurrency,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch processes the given files concurrently.
//
// The returned slice has one result per path, in the order of paths,
// including failed and skipped files. The error is the first failure when
// fail-fast is enabled, or the context error when the batch was cancelled
// from outside; per-file failures are otherwise only recorded in results.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, paths []string) ([]*model.FileResult, error) {
	bp.logger.Debug("starting batch processing",
		"total_files", len(paths),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	// Each goroutine writes only its own index.
	results := make([]*model.FileResult, len(paths))
	for i, path := range paths {
		results[i] = model.NewFileResult(path)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i := range paths {
		result := results[i]
		g.Go(func() error {
			select {
			case <-gctx.Done():
				result.Skipped = true
				return nil
			default:
			}

			started := time.Now()
			err := bp.pipelineFactory().Execute(gctx, result)
			result.Duration = time.Since(started)

			// Working buffers are not needed once the file is done.
			result.Raw = nil
			result.Document = nil

			if err != nil && !result.Skipped {
				bp.logger.Warn("map failed",
					"path", result.Path,
					"error", err,
				)
				if bp.failFast {
					return err
				}
			}
			return nil
		})
	}

	err := g.Wait()
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}

	bp.logger.Debug("batch processing complete",
		"total_files", len(paths),
		"elapsed", time.Since(startTime),
	)

	return results, err
}
