package model

import (
	"errors"
	"testing"
)

// TestNewChangeRecord tests building corrections from parsed objects.
func TestNewChangeRecord(t *testing.T) {
	t.Parallel()

	raw := []byte("MapObjType 1\n")
	obj := MapObject{
		ProtoID:      5,
		Category:     CategoryItem,
		CategoryText: "1",
		CategorySpan: Span{Offset: 11, Length: 1},
		Line:         1,
	}

	t.Run("scenery correction", func(t *testing.T) {
		t.Parallel()

		rec, err := NewChangeRecord(obj, raw, CategoryScenery)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.Offset != 11 || rec.Length != 1 || rec.Value != '2' {
			t.Errorf("unexpected record: %+v", rec)
		}
		if rec.Previous != '1' {
			t.Errorf("expected previous byte '1', got %q", rec.Previous)
		}
		if rec.From != CategoryItem || rec.To != CategoryScenery {
			t.Errorf("unexpected categories: %s -> %s", rec.From, rec.To)
		}
	})

	t.Run("multi-byte field is an invariant violation", func(t *testing.T) {
		t.Parallel()

		wide := obj
		wide.CategoryText = "01"
		wide.CategorySpan = Span{Offset: 11, Length: 2}

		_, err := NewChangeRecord(wide, []byte("MapObjType 01\n"), CategoryScenery)
		if !errors.Is(err, ErrInvariantViolation) {
			t.Errorf("expected ErrInvariantViolation, got %v", err)
		}
	})

	t.Run("any has no digit", func(t *testing.T) {
		t.Parallel()

		_, err := NewChangeRecord(obj, raw, CategoryAny)
		if !errors.Is(err, ErrInvariantViolation) {
			t.Errorf("expected ErrInvariantViolation, got %v", err)
		}
	})
}

// TestChangeRecordValidate tests the structural checks on change records.
func TestChangeRecordValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		rec     ChangeRecord
		wantErr bool
	}{
		{"valid digit", ChangeRecord{Offset: 3, Length: 1, Value: '2'}, false},
		{"zero digit", ChangeRecord{Offset: 0, Length: 1, Value: '0'}, false},
		{"nine digit", ChangeRecord{Offset: 0, Length: 1, Value: '9'}, false},
		{"length two", ChangeRecord{Offset: 3, Length: 2, Value: '2'}, true},
		{"length zero", ChangeRecord{Offset: 3, Length: 0, Value: '2'}, true},
		{"letter value", ChangeRecord{Offset: 3, Length: 1, Value: 'a'}, true},
		{"raw ten", ChangeRecord{Offset: 3, Length: 1, Value: '0' + 10}, true},
		{"negative offset", ChangeRecord{Offset: -1, Length: 1, Value: '1'}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.rec.Validate()
			if tt.wantErr && !errors.Is(err, ErrInvariantViolation) {
				t.Errorf("expected ErrInvariantViolation, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
