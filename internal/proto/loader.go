package proto

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nao1215/fomapcheck/internal/model"
)

// Catalog layout relative to the prototype root.
const (
	ItemsDir  = "items"
	ItemsList = "items.lst"
)

// LoadItems reads items/items.lst under protoDir and every .fopro file it
// lists, and returns the resulting catalog. Any failure aborts the load;
// a partial catalog is never returned.
func LoadItems(protoDir string) (*Catalog, error) {
	itemsDir := filepath.Join(protoDir, ItemsDir)
	listPath := filepath.Join(itemsDir, ItemsList)

	files, err := readList(listPath)
	if err != nil {
		return nil, err
	}

	var protos []model.Prototype
	for _, name := range files {
		path := filepath.Join(itemsDir, name)
		data, err := os.ReadFile(path) //nolint:gosec // paths come from the prototype list
		if err != nil {
			return nil, fmt.Errorf("failed to read prototype file %s: %w", path, err)
		}
		parsed, err := ParseFile(name, data)
		if err != nil {
			return nil, err
		}
		protos = append(protos, parsed...)
	}

	return NewCatalog(protos)
}

// readList returns the .fopro file names listed in items.lst.
// Blank lines and lines starting with '#' are ignored.
func readList(path string) ([]string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // catalog root is user-provided
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrListNotFound, path)
		}
		return nil, fmt.Errorf("failed to read prototype list %s: %w", path, err)
	}

	var files []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		files = append(files, filepath.FromSlash(strings.ReplaceAll(line, `\`, "/")))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read prototype list %s: %w", path, err)
	}
	return files, nil
}

// section accumulates the keys of one [Proto] section.
type section struct {
	line   int
	id     string
	typ    string
	hasID  bool
	hasTyp bool
}

// ParseFile parses the [Proto] sections of one .fopro file.
// name is used in error messages and recorded on each prototype.
func ParseFile(name string, data []byte) ([]model.Prototype, error) {
	var (
		protos  []model.Prototype
		current *section
		lineNo  int
	)

	flush := func() error {
		if current == nil {
			return nil
		}
		p, err := current.prototype(name)
		if err != nil {
			return err
		}
		protos = append(protos, p)
		current = nil
		return nil
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}

		if strings.HasPrefix(line, "[") {
			if !strings.HasSuffix(line, "]") {
				return nil, fmt.Errorf("%w: %s:%d: unterminated section header", ErrMalformedProto, name, lineNo)
			}
			if err := flush(); err != nil {
				return nil, err
			}
			if line == "[Proto]" {
				current = &section{line: lineNo}
			}
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("%w: %s:%d: expected Key=Value", ErrMalformedProto, name, lineNo)
		}
		if current == nil {
			continue
		}
		switch strings.TrimSpace(key) {
		case "ProtoId":
			current.id, current.hasID = strings.TrimSpace(value), true
		case "Type":
			current.typ, current.hasTyp = strings.TrimSpace(value), true
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return protos, nil
}

// prototype converts the section into a Prototype, validating ranges.
func (s *section) prototype(file string) (model.Prototype, error) {
	if !s.hasID {
		return model.Prototype{}, fmt.Errorf("%w: %s:%d: missing ProtoId", ErrMalformedProto, file, s.line)
	}
	if !s.hasTyp {
		return model.Prototype{}, fmt.Errorf("%w: %s:%d: missing Type", ErrMalformedProto, file, s.line)
	}
	id, err := strconv.ParseUint(s.id, 10, 16)
	if err != nil {
		return model.Prototype{}, fmt.Errorf("%w: %s:%d: ProtoId %q: %w", ErrMalformedProto, file, s.line, s.id, err)
	}
	typ, err := strconv.ParseUint(s.typ, 10, 8)
	if err != nil {
		return model.Prototype{}, fmt.Errorf("%w: %s:%d: Type %q: %w", ErrMalformedProto, file, s.line, s.typ, err)
	}
	return model.Prototype{ID: uint16(id), Type: uint8(typ), File: file}, nil
}

// duplicateError describes two prototypes sharing an ID.
func duplicateError(p, prev model.Prototype) error {
	return fmt.Errorf("%w: %d declared in %s and %s", ErrDuplicateProto, p.ID, prev.File, p.File)
}
