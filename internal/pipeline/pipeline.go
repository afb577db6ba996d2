package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nao1215/fomapcheck/internal/model"
)

// Step defines the interface that all pipeline steps must implement.
// Steps are executed in sequence, with each step receiving the result
// filled in by previous steps.
type Step interface {
	// Do executes the pipeline step.
	// It receives the context for cancellation and the result to modify.
	// A returned error stops processing of the file.
	Do(ctx context.Context, result *model.FileResult) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline runs the steps for a single map file.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
// If not set, slog.Default is used.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a new Pipeline with the given options.
// Steps should be added using AddStep after creation.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddStep appends a step to the pipeline.
// Steps are executed in the order they are added.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all pipeline steps in sequence.
//
// Cancellation is checked before each step, never during one, so a file is
// either written completely by the patch step or not at all. A cancelled
// file is marked as skipped. A step failure is recorded in the result and
// returned; remaining steps do not run.
func (p *Pipeline) Execute(ctx context.Context, result *model.FileResult) error {
	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Debug("pipeline cancelled",
				"step", step.Name(),
				"path", result.Path,
				"reason", ctx.Err(),
			)
			result.Skipped = true
			return ctx.Err()
		default:
		}

		p.logger.Debug("executing step",
			"step", step.Name(),
			"path", result.Path,
		)

		if err := step.Do(ctx, result); err != nil {
			err = fmt.Errorf("%s: %w", result.Path, err)
			p.logger.Error("step failed",
				"step", step.Name(),
				"path", result.Path,
				"error", err,
			)
			result.SetError(err)
			return err
		}
	}

	return nil
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
