package check

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/nao1215/fomapcheck/internal/fomap"
	"github.com/nao1215/fomapcheck/internal/model"
)

// mapCatalog is an in-memory Catalog for tests.
type mapCatalog map[uint16]uint8

func (c mapCatalog) Lookup(id uint16) (model.Prototype, bool) {
	typ, ok := c[id]
	if !ok {
		return model.Prototype{}, false
	}
	return model.Prototype{ID: id, Type: typ}, true
}

// parse parses a map for tests.
func parse(t *testing.T, s string) *model.MapDocument {
	t.Helper()
	doc, err := fomap.ParseStrict([]byte(s))
	if err != nil {
		t.Fatalf("failed to parse test map: %v", err)
	}
	return doc
}

// TestCheck tests mismatch detection and invalid-object collection.
func TestCheck(t *testing.T) {
	t.Parallel()

	catalog := mapCatalog{
		5:   model.ItemTypeWall,
		6:   model.ItemTypeGrid,
		7:   model.ItemTypeGeneric,
		300: model.ItemTypeWeapon,
		301: 200, // unknown declared type
	}

	tests := []struct {
		name        string
		input       string
		wantChanges []byte
		wantInvalid []uint16
	}{
		{
			name:        "wall recorded as item becomes scenery",
			input:       "[Objects]\nMapObjType 1\nProtoId 5\n",
			wantChanges: []byte{'2'},
		},
		{
			name:        "weapon recorded as scenery becomes item",
			input:       "[Objects]\nMapObjType 2\nProtoId 300\n",
			wantChanges: []byte{'1'},
		},
		{
			name:        "unknown declared type defaults to item",
			input:       "[Objects]\nMapObjType 2\nProtoId 301\n",
			wantChanges: []byte{'1'},
		},
		{
			name:  "consistent objects produce nothing",
			input: "[Objects]\nMapObjType 2\nProtoId 6\n\nMapObjType 2\nProtoId 7\n\nMapObjType 1\nProtoId 300\n",
		},
		{
			name:  "critters are exempt",
			input: "[Objects]\nMapObjType 0\nProtoId 5\n\nMapObjType 0\nProtoId 300\n",
		},
		{
			name:  "unknown prototypes are skipped",
			input: "[Objects]\nMapObjType 1\nProtoId 9999\n",
		},
		{
			name:        "unclassified objects are reported but not changed",
			input:       "[Objects]\nMapObjType 5\nProtoId 5\n\nMapObjType x\nProtoId 9999\n",
			wantInvalid: []uint16{5, 9999},
		},
		{
			name:        "mixed document",
			input:       "[Objects]\nMapObjType 1\nProtoId 6\n\nMapObjType 3\nProtoId 1\n\nMapObjType 2\nProtoId 300\n\nMapObjType 0\nProtoId 6\n",
			wantChanges: []byte{'2', '1'},
			wantInvalid: []uint16{1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doc := parse(t, tt.input)
			res, err := Check(doc, catalog)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			var gotValues []byte
			for _, c := range res.Changes {
				gotValues = append(gotValues, c.Value)
				if c.Length != 1 || c.Value < '0' || c.Value > '9' {
					t.Errorf("change violates encoding: %+v", c)
				}
				if doc.Raw[c.Offset] != c.Previous {
					t.Errorf("previous byte %q does not match file byte %q", c.Previous, doc.Raw[c.Offset])
				}
			}
			if diff := cmp.Diff(tt.wantChanges, gotValues); diff != "" {
				t.Errorf("changes mismatch (-want +got):\n%s", diff)
			}

			var gotInvalid []uint16
			for _, obj := range res.Invalid {
				gotInvalid = append(gotInvalid, obj.ProtoID)
			}
			if diff := cmp.Diff(tt.wantInvalid, gotInvalid); diff != "" {
				t.Errorf("invalid mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// TestCheckOrdering tests that changes are ordered by offset and that
// each targets its own object's field.
func TestCheckOrdering(t *testing.T) {
	t.Parallel()

	doc := parse(t, "[Objects]\nMapObjType 1\nProtoId 5\n\nMapObjType 1\nProtoId 5\n\nMapObjType 1\nProtoId 5\n")
	res, err := Check(doc, mapCatalog{5: model.ItemTypeWall})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Changes) != 3 {
		t.Fatalf("expected 3 changes, got %d", len(res.Changes))
	}
	for i, c := range res.Changes {
		if c.Offset != doc.Objects[i].CategorySpan.Offset {
			t.Errorf("change %d: offset %d, want %d", i, c.Offset, doc.Objects[i].CategorySpan.Offset)
		}
		if i > 0 && res.Changes[i-1].Offset >= c.Offset {
			t.Errorf("changes not strictly ordered at %d", i)
		}
	}
}

// TestCheckIdempotent tests that applying the corrections and checking
// again yields no further changes.
func TestCheckIdempotent(t *testing.T) {
	t.Parallel()

	catalog := mapCatalog{5: model.ItemTypeWall, 300: model.ItemTypeArmor}
	raw := []byte("[Objects]\nMapObjType 1\nProtoId 5\n\nMapObjType 2\nProtoId 300\n")

	doc, err := fomap.ParseStrict(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	res, err := Check(doc, catalog)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if len(res.Changes) != 2 {
		t.Fatalf("expected 2 changes, got %d", len(res.Changes))
	}

	fixed := append([]byte(nil), raw...)
	for _, c := range res.Changes {
		fixed[c.Offset] = c.Value
	}

	doc, err = fomap.ParseStrict(fixed)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	res, err = Check(doc, catalog)
	if err != nil {
		t.Fatalf("recheck: %v", err)
	}
	if len(res.Changes) != 0 {
		t.Errorf("expected no changes on second pass, got %d", len(res.Changes))
	}
}

// TestCheckInvariantViolation tests that a multi-byte category field that
// needs correcting aborts the check.
func TestCheckInvariantViolation(t *testing.T) {
	t.Parallel()

	doc := parse(t, "[Objects]\nMapObjType 01\nProtoId 5\n")
	_, err := Check(doc, mapCatalog{5: model.ItemTypeWall})
	if !errors.Is(err, model.ErrInvariantViolation) {
		t.Errorf("expected ErrInvariantViolation, got %v", err)
	}
}
