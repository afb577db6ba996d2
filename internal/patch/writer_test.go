package patch

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/fomapcheck/internal/model"
)

// writeTempFile writes content to a new file and returns its path.
func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.fomap")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	return path
}

// change builds a valid change record for content at offset.
func change(content string, offset int64, value byte) model.ChangeRecord {
	return model.ChangeRecord{
		Offset:   offset,
		Length:   1,
		Value:    value,
		Previous: content[offset],
	}
}

// TestWriterApply tests in-place patching.
func TestWriterApply(t *testing.T) {
	t.Parallel()

	const content = "[Objects]\nMapObjType 1\nProtoId 5\n\nMapObjType 2\nProtoId 300\n"
	first := int64(strings.Index(content, "1\nProtoId 5"))
	second := int64(strings.Index(content, "2\nProtoId 300"))

	t.Run("changes only target bytes", func(t *testing.T) {
		t.Parallel()

		path := writeTempFile(t, content)
		n, err := NewWriter().Apply(path, []model.ChangeRecord{
			change(content, second, '1'),
			change(content, first, '2'),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != 2 {
			t.Errorf("expected 2 changes written, got %d", n)
		}

		got, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read back: %v", err)
		}
		if len(got) != len(content) {
			t.Fatalf("file length changed: %d -> %d", len(content), len(got))
		}
		for i := range got {
			want := content[i]
			switch int64(i) {
			case first:
				want = '2'
			case second:
				want = '1'
			}
			if got[i] != want {
				t.Errorf("byte %d: got %q, want %q", i, got[i], want)
			}
		}
	})

	t.Run("no changes leaves file untouched", func(t *testing.T) {
		t.Parallel()

		// A path that does not exist proves the file is never opened.
		path := filepath.Join(t.TempDir(), "absent.fomap")
		n, err := NewWriter().Apply(path, nil)
		if err != nil || n != 0 {
			t.Errorf("expected (0, nil), got (%d, %v)", n, err)
		}
	})

	t.Run("changed content aborts before writing", func(t *testing.T) {
		t.Parallel()

		path := writeTempFile(t, content)
		stale := change(content, second, '1')
		stale.Previous = '0'

		_, err := NewWriter().Apply(path, []model.ChangeRecord{change(content, first, '2'), stale})
		if !errors.Is(err, ErrContentChanged) {
			t.Fatalf("expected ErrContentChanged, got %v", err)
		}
		got, _ := os.ReadFile(path)
		if string(got) != content {
			t.Error("expected file to be untouched")
		}
	})

	t.Run("invariant violation aborts before opening", func(t *testing.T) {
		t.Parallel()

		path := writeTempFile(t, content)
		bad := change(content, first, '2')
		bad.Length = 2

		_, err := NewWriter().Apply(path, []model.ChangeRecord{bad})
		if !errors.Is(err, model.ErrInvariantViolation) {
			t.Fatalf("expected ErrInvariantViolation, got %v", err)
		}
	})

	t.Run("offset past end of file", func(t *testing.T) {
		t.Parallel()

		path := writeTempFile(t, content)
		_, err := NewWriter().Apply(path, []model.ChangeRecord{
			{Offset: int64(len(content) + 5), Length: 1, Value: '1'},
		})
		if !errors.Is(err, ErrOutOfRange) {
			t.Fatalf("expected ErrOutOfRange, got %v", err)
		}
	})

	t.Run("duplicate offsets are rejected", func(t *testing.T) {
		t.Parallel()

		path := writeTempFile(t, content)
		_, err := NewWriter().Apply(path, []model.ChangeRecord{
			change(content, first, '2'),
			change(content, first, '2'),
		})
		if !errors.Is(err, ErrOverlappingChanges) {
			t.Fatalf("expected ErrOverlappingChanges, got %v", err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := NewWriter().Apply(filepath.Join(t.TempDir(), "absent.fomap"),
			[]model.ChangeRecord{change(content, first, '2')})
		if !errors.Is(err, os.ErrNotExist) {
			t.Fatalf("expected os.ErrNotExist, got %v", err)
		}
	})

	t.Run("backup keeps original content", func(t *testing.T) {
		t.Parallel()

		path := writeTempFile(t, content)
		w := NewWriter(WithBackup(true), WithBackupSuffix(".orig"))
		if _, err := w.Apply(path, []model.ChangeRecord{change(content, first, '2')}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		backup, err := os.ReadFile(path + ".orig")
		if err != nil {
			t.Fatalf("failed to read backup: %v", err)
		}
		if string(backup) != content {
			t.Error("expected backup to hold original content")
		}
	})
}

// TestPreview tests in-memory application of changes.
func TestPreview(t *testing.T) {
	t.Parallel()

	const content = "MapObjType 1\n"
	raw := []byte(content)

	out, err := Preview(raw, []model.ChangeRecord{change(content, 11, '2')})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(out) != "MapObjType 2\n" {
		t.Errorf("unexpected output %q", out)
	}
	if string(raw) != content {
		t.Error("expected input to be unmodified")
	}

	if _, err := Preview(raw, []model.ChangeRecord{{Offset: 99, Length: 1, Value: '1'}}); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", err)
	}

	stale := change(content, 11, '2')
	stale.Previous = '9'
	if _, err := Preview(raw, []model.ChangeRecord{stale}); !errors.Is(err, ErrContentChanged) {
		t.Errorf("expected ErrContentChanged, got %v", err)
	}
}

// TestDigest tests the SHA3-256 digest helper.
func TestDigest(t *testing.T) {
	t.Parallel()

	// SHA3-256 of the empty string.
	const empty = "a7ffc6f8bf1ed76651c14756a061d662f580ff4de43b49fa82d80a4b80f8434a"
	if got := Digest(nil); got != empty {
		t.Errorf("Digest(nil) = %s, want %s", got, empty)
	}
	if Digest([]byte("a")) == Digest([]byte("b")) {
		t.Error("expected different digests for different content")
	}
	if !bytes.Equal([]byte(Digest([]byte("x"))), []byte(Digest([]byte("x")))) {
		t.Error("expected deterministic digest")
	}
}
