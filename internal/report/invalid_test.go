package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/fomapcheck/internal/model"
)

// TestInvalidFragment tests rendering of a single file's invalid objects.
func TestInvalidFragment(t *testing.T) {
	t.Parallel()

	t.Run("no objects yields no fragment", func(t *testing.T) {
		t.Parallel()

		frag, err := InvalidFragment("/maps/a.fomap", nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if frag != nil {
			t.Errorf("expected nil fragment, got %q", frag)
		}
	})

	t.Run("header once and one line per object", func(t *testing.T) {
		t.Parallel()

		objs := []model.MapObject{
			{ProtoID: 9, Category: model.CategoryAny, CategoryText: "7", Line: 4},
			{ProtoID: 11, Category: model.CategoryAny, CategoryText: "x", Line: 12},
		}
		frag, err := InvalidFragment("/maps/a.fomap", objs)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		text := string(frag)
		if !strings.HasPrefix(text, "File: \"/maps/a.fomap\"\n") {
			t.Errorf("expected file header, got %q", text)
		}
		if strings.Count(text, "File: ") != 1 {
			t.Error("expected exactly one header")
		}
		if !strings.HasSuffix(text, "}\n\n") {
			t.Errorf("expected terminating blank line, got %q", text)
		}

		lines := strings.Split(strings.TrimSuffix(text, "\n\n"), "\n")
		if len(lines) != 3 {
			t.Fatalf("expected header plus 2 object lines, got %d: %q", len(lines), lines)
		}
		if !strings.Contains(lines[1], `"proto_id":9`) || !strings.Contains(lines[1], `"category":"any"`) {
			t.Errorf("unexpected object line %q", lines[1])
		}
	})
}

// TestInvalidReport tests aggregation and file output.
func TestInvalidReport(t *testing.T) {
	t.Parallel()

	t.Run("merges fragments in order", func(t *testing.T) {
		t.Parallel()

		a := model.NewFileResult("/maps/a.fomap")
		a.Invalid = []model.MapObject{{ProtoID: 1, Category: model.CategoryAny, Line: 2}}
		b := model.NewFileResult("/maps/b.fomap")
		c := model.NewFileResult("/maps/c.fomap")
		c.Invalid = []model.MapObject{
			{ProtoID: 2, Category: model.CategoryAny, Line: 3},
			{ProtoID: 3, Category: model.CategoryAny, Line: 8},
		}

		r := NewInvalidReport()
		for _, res := range []*model.FileResult{a, b, nil, c} {
			if err := r.Add(res); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}
		if r.Files() != 2 || r.Objects() != 3 {
			t.Errorf("expected 2 files and 3 objects, got %d and %d", r.Files(), r.Objects())
		}

		var buf bytes.Buffer
		if _, err := r.WriteTo(&buf); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		out := buf.String()
		ia := strings.Index(out, `File: "/maps/a.fomap"`)
		ic := strings.Index(out, `File: "/maps/c.fomap"`)
		if ia < 0 || ic < 0 || ia > ic {
			t.Errorf("expected a before c, got:\n%s", out)
		}
		if strings.Contains(out, "b.fomap") {
			t.Error("expected no fragment for a file without invalid objects")
		}
	})

	t.Run("empty report still creates file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultInvalidReportFile)
		if err := os.WriteFile(path, []byte("stale"), 0o600); err != nil {
			t.Fatal(err)
		}

		if err := NewInvalidReport().WriteFile(path); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		data, err := os.ReadFile(path) //nolint:gosec // test path
		if err != nil {
			t.Fatalf("expected report file to exist: %v", err)
		}
		if len(data) != 0 {
			t.Errorf("expected truncated empty report, got %q", data)
		}
	})

	t.Run("unwritable path fails", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "missing", "report.txt")
		if err := NewInvalidReport().WriteFile(path); err == nil {
			t.Error("expected error for missing parent directory")
		}
	})
}
