package report

import (
	"io"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/fomapcheck/internal/model"
)

// Writer defines the interface for summary output.
type Writer interface {
	// Write outputs the summary of a single run.
	Write(summary *model.RunSummary) (int, error)

	// WriteRuns outputs a list of recorded runs, newest first.
	WriteRuns(runs []*model.RunSummary) (int, error)
}

// MultiWriter writes to multiple Writers, typically the terminal and a
// summary file in another format.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the summary to all configured Writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(summary *model.RunSummary) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(summary)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteRuns outputs the run list to all configured Writers.
func (m *MultiWriter) WriteRuns(runs []*model.RunSummary) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteRuns(runs)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for summary writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// categoryOrder lists the categories a correction can write, in display order.
var categoryOrder = []model.Category{model.CategoryScenery, model.CategoryItem}

// categoryTitle returns the display name of a category.
func categoryTitle(c model.Category) string {
	return cases.Title(language.English).String(c.String())
}
