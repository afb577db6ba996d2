package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/fomapcheck/internal/model"
)

// SimpleWriter outputs human-readable text summaries for the terminal.
type SimpleWriter struct {
	baseWriter

	// verbose adds per-file detail to the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the run summary in human-readable format.
func (w *SimpleWriter) Write(summary *model.RunSummary) (int, error) {
	var sb strings.Builder

	w.writeTotals(&sb, summary)
	w.writeChanges(&sb, summary)
	w.writeInvalid(&sb, summary)
	w.writeFailures(&sb, summary)

	return w.output.Write([]byte(sb.String()))
}

// writeTotals writes the timing line and file counts.
func (w *SimpleWriter) writeTotals(sb *strings.Builder, s *model.RunSummary) {
	sb.WriteString(fmt.Sprintf("Checked %d maps in %.2f seconds.\n", s.FilesChecked, s.Elapsed.Seconds()))
	if s.FilesSkipped > 0 {
		sb.WriteString(fmt.Sprintf("Skipped %d maps after cancellation.\n", s.FilesSkipped))
	}
}

// writeChanges writes the number of corrections by category.
func (w *SimpleWriter) writeChanges(sb *strings.Builder, s *model.RunSummary) {
	if s.Changes == 0 {
		return
	}

	var parts []string
	for _, c := range categoryOrder {
		if n := s.ChangesByCategory[c]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s %d", strings.ToLower(categoryTitle(c)), n))
		}
	}

	if s.DryRun {
		sb.WriteString(fmt.Sprintf("Would write %d changes (%s).\n", s.Changes, strings.Join(parts, ", ")))
	} else {
		sb.WriteString(fmt.Sprintf("Wrote %d changes to %d maps (%s).\n", s.Applied, s.FilesPatched, strings.Join(parts, ", ")))
	}

	if !w.verbose {
		return
	}
	for _, f := range s.Files {
		if len(f.Changes) == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("  %s\n", f.Path))
		for _, c := range f.Changes {
			sb.WriteString(fmt.Sprintf("    %s\n", c))
		}
	}
}

// writeInvalid writes the pointer to the invalid-object report.
func (w *SimpleWriter) writeInvalid(sb *strings.Builder, s *model.RunSummary) {
	if s.InvalidFiles == 0 {
		return
	}
	sb.WriteString(fmt.Sprintf("Objects with invalid fields found in %d maps. Check them in %s\n", s.InvalidFiles, s.ReportFile))
}

// writeFailures lists the files that could not be processed.
func (w *SimpleWriter) writeFailures(sb *strings.Builder, s *model.RunSummary) {
	if !s.HasFailures() {
		return
	}
	sb.WriteString(fmt.Sprintf("Failed to process %d maps:\n", s.FilesFailed))
	for _, f := range s.Failures {
		sb.WriteString(fmt.Sprintf("  %s\n", f.Error))
	}
}

// WriteRuns outputs recorded runs as an aligned text table.
func (w *SimpleWriter) WriteRuns(runs []*model.RunSummary) (int, error) {
	var sb strings.Builder

	if len(runs) == 0 {
		sb.WriteString("No runs recorded.\n")
		return w.output.Write([]byte(sb.String()))
	}

	sb.WriteString(fmt.Sprintf("%-36s  %-19s  %6s  %7s  %7s  %6s  %s\n",
		"ID", "STARTED", "MAPS", "CHANGES", "INVALID", "FAILED", "MODE"))
	sb.WriteString(strings.Repeat("-", 100))
	sb.WriteString("\n")
	for _, r := range runs {
		sb.WriteString(fmt.Sprintf("%-36s  %-19s  %6d  %7d  %7d  %6d  %s\n",
			r.ID,
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.FilesFound,
			r.Changes,
			r.InvalidObjects,
			r.FilesFailed,
			runMode(r),
		))
	}

	return w.output.Write([]byte(sb.String()))
}

// runMode describes whether a run wrote to disk.
func runMode(s *model.RunSummary) string {
	if s.DryRun {
		return "dry-run"
	}
	return "write"
}
