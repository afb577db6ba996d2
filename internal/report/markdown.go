package report

import (
	"io"
	"path/filepath"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/fomapcheck/internal/model"
)

// MarkdownWriter outputs summaries in Markdown format for sharing in
// reviews and documentation.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the run summary in Markdown format.
func (w *MarkdownWriter) Write(summary *model.RunSummary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	w.writeTotals(md, summary)
	w.writeChanges(md, summary)
	w.writeFailures(md, summary)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the run information table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, s *model.RunSummary) {
	md.H1("Map Check Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Run ID", "`" + s.ID + "`"},
			{"Started", s.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Elapsed", strconv.FormatFloat(s.Elapsed.Seconds(), 'f', 2, 64) + " s"},
			{"Maps", "`" + s.MapsDir + "`"},
			{"Prototypes", "`" + s.ProtoDir + "` (" + strconv.Itoa(s.Prototypes) + " items)"},
			{"Mode", runMode(s)},
		},
	})
	md.PlainText("")
}

// writeTotals writes the file counts and an alert for the run outcome.
func (w *MarkdownWriter) writeTotals(md *markdown.Markdown, s *model.RunSummary) {
	md.H2("Totals")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Count"},
		Rows: [][]string{
			{"Maps found", strconv.Itoa(s.FilesFound)},
			{"Maps checked", strconv.Itoa(s.FilesChecked)},
			{"Maps patched", strconv.Itoa(s.FilesPatched)},
			{"Maps failed", strconv.Itoa(s.FilesFailed)},
			{"Maps skipped", strconv.Itoa(s.FilesSkipped)},
			{"Changes found", strconv.Itoa(s.Changes)},
			{"Changes written", strconv.Itoa(s.Applied)},
			{"Invalid objects", strconv.Itoa(s.InvalidObjects)},
		},
	})
	md.PlainText("")

	switch {
	case s.HasFailures():
		md.Cautionf("%d map(s) could not be processed. They were left unchanged or partially checked.", s.FilesFailed)
	case s.InvalidFiles > 0:
		md.Warningf("Objects with invalid fields found in %d map(s). Check them in `%s`.", s.InvalidFiles, s.ReportFile)
	case s.DryRun && s.Changes > 0:
		md.Importantf("Dry run: %d change(s) were found but not written.", s.Changes)
	case s.Changes > 0:
		md.Note("All inconsistent objects were corrected.")
	default:
		md.Tip("All maps are consistent with the prototype catalog.")
	}
	md.PlainText("")
}

// writeChanges writes per-category totals and the per-map change table.
func (w *MarkdownWriter) writeChanges(md *markdown.Markdown, s *model.RunSummary) {
	if s.Changes == 0 {
		return
	}

	md.H2("Changes")
	md.PlainText("")

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Changes by Category"),
		piechart.WithShowData(true),
	)
	for _, c := range categoryOrder {
		if n := s.ChangesByCategory[c]; n > 0 {
			chart.LabelAndIntValue(categoryTitle(c), uint64(n)) //nolint:gosec // counts are non-negative
		}
	}
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")

	var rows [][]string
	for _, f := range s.Files {
		if len(f.Changes) == 0 || f.Failed() {
			continue
		}
		rows = append(rows, []string{
			"`" + filepath.Base(f.Path) + "`",
			strconv.Itoa(len(f.Changes)),
			strconv.Itoa(f.Applied),
			truncateString(f.DigestAfter, 16),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Map", "Changes", "Written", "SHA3-256 after"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, f := range s.Files {
		if len(f.Changes) == 0 || f.Failed() {
			continue
		}
		lines := ""
		for _, c := range f.Changes {
			lines += c.String() + "\n"
		}
		md.Details(filepath.Base(f.Path), lines)
	}
	md.PlainText("")
}

// writeFailures writes the failed files table.
func (w *MarkdownWriter) writeFailures(md *markdown.Markdown, s *model.RunSummary) {
	if !s.HasFailures() {
		return
	}

	md.H2("Failures")
	md.PlainText("")

	rows := make([][]string, len(s.Failures))
	for i, f := range s.Failures {
		rows[i] = []string{"`" + filepath.Base(f.Path) + "`", f.Error}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Map", "Error"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [fomapcheck](https://github.com/nao1215/fomapcheck)*")
}

// WriteRuns outputs recorded runs as a Markdown table.
func (w *MarkdownWriter) WriteRuns(runs []*model.RunSummary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Run History")
	md.PlainText("")

	if len(runs) == 0 {
		md.PlainText("No runs recorded.")
		return len(md.String()), md.Build()
	}

	rows := make([][]string, len(runs))
	for i, r := range runs {
		rows[i] = []string{
			"`" + r.ID + "`",
			r.StartedAt.Format("2006-01-02 15:04:05 MST"),
			strconv.Itoa(r.FilesFound),
			strconv.Itoa(r.Changes),
			strconv.Itoa(r.InvalidObjects),
			strconv.Itoa(r.FilesFailed),
			runMode(r),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Run", "Started", "Maps", "Changes", "Invalid", "Failed", "Mode"},
		Rows:   rows,
	})
	md.PlainText("")
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
