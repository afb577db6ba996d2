package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/nao1215/fomapcheck/internal/model"
)

// DefaultInvalidReportFile is the default name of the invalid-object report.
const DefaultInvalidReportFile = "invalid_objects.txt"

// InvalidFragment renders the unclassifiable objects of one map file:
// a header naming the file followed by one JSON line per object and a
// terminating blank line. It returns nil when objs is empty.
func InvalidFragment(path string, objs []model.MapObject) ([]byte, error) {
	if len(objs) == 0 {
		return nil, nil
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "File: %q\n", path)
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	for _, obj := range objs {
		if err := enc.Encode(obj); err != nil {
			return nil, fmt.Errorf("failed to serialize object at line %d: %w", obj.Line, err)
		}
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// InvalidReport aggregates per-file fragments into one report.
// It is filled by a single goroutine after the batch completes, in the
// order results are added.
type InvalidReport struct {
	fragments [][]byte
	objects   int
}

// NewInvalidReport creates an empty report.
func NewInvalidReport() *InvalidReport {
	return &InvalidReport{}
}

// Add appends the fragment for result, if it has unclassifiable objects.
func (r *InvalidReport) Add(result *model.FileResult) error {
	if result == nil {
		return nil
	}
	frag, err := InvalidFragment(result.Path, result.Invalid)
	if err != nil {
		return fmt.Errorf("%s: %w", result.Path, err)
	}
	if frag != nil {
		r.fragments = append(r.fragments, frag)
		r.objects += len(result.Invalid)
	}
	return nil
}

// Files returns the number of files with unclassifiable objects.
func (r *InvalidReport) Files() int {
	return len(r.fragments)
}

// Objects returns the total number of unclassifiable objects.
func (r *InvalidReport) Objects() int {
	return r.objects
}

// WriteTo writes all fragments in order.
func (r *InvalidReport) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, frag := range r.fragments {
		n, err := w.Write(frag)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteFile creates or truncates path and writes the report to it.
// The file is created even when the report is empty.
func (r *InvalidReport) WriteFile(path string) (err error) {
	f, err := os.Create(path) //nolint:gosec // report path is user-provided
	if err != nil {
		return fmt.Errorf("failed to create invalid objects report: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close invalid objects report: %w", cerr)
		}
	}()

	if _, err := r.WriteTo(f); err != nil {
		return fmt.Errorf("failed to write invalid objects report: %w", err)
	}
	return nil
}
