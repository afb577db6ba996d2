package patch

import (
	"cmp"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"slices"

	"golang.org/x/crypto/sha3"

	"github.com/nao1215/fomapcheck/internal/model"
)

// DefaultBackupSuffix is appended to a map path to name its backup copy.
const DefaultBackupSuffix = ".backup"

// Writer applies change records to files.
type Writer struct {
	// backup enables copying the file before the first write.
	backup bool

	// backupSuffix names the backup copy.
	backupSuffix string
}

// Option configures a Writer.
type Option func(*Writer)

// WithBackup enables writing a copy of the original file next to it
// before it is modified.
func WithBackup(enabled bool) Option {
	return func(w *Writer) {
		w.backup = enabled
	}
}

// WithBackupSuffix sets the suffix of backup copies.
func WithBackupSuffix(suffix string) Option {
	return func(w *Writer) {
		if suffix != "" {
			w.backupSuffix = suffix
		}
	}
}

// NewWriter creates a Writer.
func NewWriter(opts ...Option) *Writer {
	w := &Writer{backupSuffix: DefaultBackupSuffix}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Apply writes changes to the file at path and returns the number of
// changes written.
//
// With no changes the file is not opened. Otherwise every change is
// validated and every target byte compared with the change's Previous
// value before anything is written.
func (w *Writer) Apply(path string, changes []model.ChangeRecord) (n int, err error) {
	if len(changes) == 0 {
		return 0, nil
	}

	changes, err = prepare(changes)
	if err != nil {
		return 0, err
	}

	f, err := os.OpenFile(path, os.O_RDWR, 0) //nolint:gosec // map paths come from discovery
	if err != nil {
		return 0, fmt.Errorf("failed to open map file to write changes: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close map file: %w", cerr)
		}
	}()

	info, err := f.Stat()
	if err != nil {
		return 0, fmt.Errorf("failed to stat map file: %w", err)
	}
	if err := verify(f, info.Size(), changes); err != nil {
		return 0, err
	}

	if w.backup {
		if err := copyFile(f, info, path+w.backupSuffix); err != nil {
			return 0, err
		}
	}

	buf := make([]byte, 1)
	for _, c := range changes {
		if _, err := f.Seek(c.Offset, io.SeekStart); err != nil {
			return n, fmt.Errorf("failed to seek to offset %d: %w", c.Offset, err)
		}
		buf[0] = c.Value
		if _, err := f.Write(buf); err != nil {
			return n, fmt.Errorf("failed to write new category at offset %d: %w", c.Offset, err)
		}
		n++
	}
	return n, nil
}

// Preview returns a copy of raw with changes applied, performing the same
// checks as Apply.
func Preview(raw []byte, changes []model.ChangeRecord) ([]byte, error) {
	changes, err := prepare(changes)
	if err != nil {
		return nil, err
	}
	out := slices.Clone(raw)
	for _, c := range changes {
		if c.Offset >= int64(len(out)) {
			return nil, fmt.Errorf("%w: offset %d, size %d", ErrOutOfRange, c.Offset, len(out))
		}
		if out[c.Offset] != c.Previous {
			return nil, fmt.Errorf("%w: offset %d holds %q, expected %q",
				ErrContentChanged, c.Offset, out[c.Offset], c.Previous)
		}
		out[c.Offset] = c.Value
	}
	return out, nil
}

// Digest returns the hex SHA3-256 digest of data.
func Digest(data []byte) string {
	sum := sha3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// prepare validates changes and returns them sorted by offset.
func prepare(changes []model.ChangeRecord) ([]model.ChangeRecord, error) {
	sorted := slices.Clone(changes)
	slices.SortFunc(sorted, func(a, b model.ChangeRecord) int {
		return cmp.Compare(a.Offset, b.Offset)
	})
	for i, c := range sorted {
		if err := c.Validate(); err != nil {
			return nil, err
		}
		if i > 0 && sorted[i-1].Offset == c.Offset {
			return nil, fmt.Errorf("%w: offset %d", ErrOverlappingChanges, c.Offset)
		}
	}
	return sorted, nil
}

// verify checks that every target byte is in range and unchanged.
func verify(f *os.File, size int64, changes []model.ChangeRecord) error {
	buf := make([]byte, 1)
	for _, c := range changes {
		if c.Offset >= size {
			return fmt.Errorf("%w: offset %d, size %d", ErrOutOfRange, c.Offset, size)
		}
		if _, err := f.ReadAt(buf, c.Offset); err != nil {
			return fmt.Errorf("failed to read offset %d: %w", c.Offset, err)
		}
		if buf[0] != c.Previous {
			return fmt.Errorf("%w: offset %d holds %q, expected %q",
				ErrContentChanged, c.Offset, buf[0], c.Previous)
		}
	}
	return nil
}

// copyFile writes the full content of f to dst with the same permissions.
func copyFile(f *os.File, info os.FileInfo, dst string) error {
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm()) //nolint:gosec // derived from map path
	if err != nil {
		return fmt.Errorf("failed to create backup: %w", err)
	}
	if _, err := io.Copy(out, io.NewSectionReader(f, 0, info.Size())); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to write backup: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close backup: %w", err)
	}
	return nil
}
