package proto

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/nao1215/fomapcheck/internal/model"
)

// writeCatalog creates a prototype root with the given .fopro files and
// returns its path. files maps file names to their content; the list file
// names them in the given order.
func writeCatalog(t *testing.T, order []string, files map[string]string) string {
	t.Helper()

	root := t.TempDir()
	itemsDir := filepath.Join(root, ItemsDir)
	if err := os.MkdirAll(itemsDir, 0750); err != nil {
		t.Fatalf("failed to create items dir: %v", err)
	}

	list := "# item prototypes\n\n"
	for _, name := range order {
		list += name + "\n"
	}
	if err := os.WriteFile(filepath.Join(itemsDir, ItemsList), []byte(list), 0600); err != nil {
		t.Fatalf("failed to write list: %v", err)
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(itemsDir, name), []byte(content), 0600); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	return root
}

// TestLoadItems tests loading a complete catalog from disk.
func TestLoadItems(t *testing.T) {
	t.Parallel()

	t.Run("loads all listed files", func(t *testing.T) {
		t.Parallel()

		root := writeCatalog(t, []string{"walls.fopro", "misc.fopro"}, map[string]string{
			"walls.fopro": "[Proto]\nProtoId=5\nType=12\nPicMap=art\\walls\\wall.frm\n\n[Proto]\nProtoId=6\nType=10\n",
			"misc.fopro":  "; misc items\r\n[Proto]\r\nProtoId=300\r\nType=5\r\nWeight=10\r\n",
		})

		catalog, err := LoadItems(root)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if catalog.Len() != 3 {
			t.Fatalf("expected 3 prototypes, got %d", catalog.Len())
		}
		if diff := cmp.Diff([]uint16{5, 6, 300}, catalog.IDs()); diff != "" {
			t.Errorf("IDs mismatch (-want +got):\n%s", diff)
		}

		wall, ok := catalog.Lookup(5)
		if !ok {
			t.Fatal("expected prototype 5")
		}
		want := model.Prototype{ID: 5, Type: model.ItemTypeWall, File: "walls.fopro"}
		if diff := cmp.Diff(want, wall); diff != "" {
			t.Errorf("prototype mismatch (-want +got):\n%s", diff)
		}
		if wall.Category() != model.CategoryScenery {
			t.Errorf("expected scenery, got %s", wall.Category())
		}

		if _, ok := catalog.Lookup(7); ok {
			t.Error("expected unknown ID to be absent")
		}
	})

	t.Run("missing list returns ErrListNotFound", func(t *testing.T) {
		t.Parallel()

		_, err := LoadItems(t.TempDir())
		if !errors.Is(err, ErrListNotFound) {
			t.Errorf("expected ErrListNotFound, got %v", err)
		}
	})

	t.Run("missing listed file fails the load", func(t *testing.T) {
		t.Parallel()

		root := writeCatalog(t, []string{"absent.fopro"}, nil)
		if _, err := LoadItems(root); err == nil {
			t.Error("expected error for missing prototype file")
		}
	})

	t.Run("duplicate id across files returns ErrDuplicateProto", func(t *testing.T) {
		t.Parallel()

		root := writeCatalog(t, []string{"a.fopro", "b.fopro"}, map[string]string{
			"a.fopro": "[Proto]\nProtoId=9\nType=1\n",
			"b.fopro": "[Proto]\nProtoId=9\nType=3\n",
		})
		_, err := LoadItems(root)
		if !errors.Is(err, ErrDuplicateProto) {
			t.Errorf("expected ErrDuplicateProto, got %v", err)
		}
	})
}

// TestParseFile tests parsing of individual .fopro files.
func TestParseFile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    string
		want    []model.Prototype
		wantErr error
	}{
		{
			name: "single section",
			data: "[Proto]\nProtoId=1\nType=3\n",
			want: []model.Prototype{{ID: 1, Type: 3, File: "f.fopro"}},
		},
		{
			name: "other sections are ignored",
			data: "[Header]\nVersion=2\n[Proto]\nProtoId=2\nType=11\n",
			want: []model.Prototype{{ID: 2, Type: 11, File: "f.fopro"}},
		},
		{
			name: "spaces around keys and values",
			data: "[Proto]\n ProtoId = 65535 \nType= 255\n",
			want: []model.Prototype{{ID: 65535, Type: 255, File: "f.fopro"}},
		},
		{
			name:    "missing type",
			data:    "[Proto]\nProtoId=1\n",
			wantErr: ErrMalformedProto,
		},
		{
			name:    "missing proto id",
			data:    "[Proto]\nType=1\n",
			wantErr: ErrMalformedProto,
		},
		{
			name:    "proto id out of range",
			data:    "[Proto]\nProtoId=65536\nType=1\n",
			wantErr: ErrMalformedProto,
		},
		{
			name:    "type out of range",
			data:    "[Proto]\nProtoId=1\nType=256\n",
			wantErr: ErrMalformedProto,
		},
		{
			name:    "line without equals sign",
			data:    "[Proto]\nProtoId 1\n",
			wantErr: ErrMalformedProto,
		},
		{
			name:    "unterminated header",
			data:    "[Proto\nProtoId=1\nType=1\n",
			wantErr: ErrMalformedProto,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseFile("f.fopro", []byte(tt.data))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("prototypes mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// TestNewCatalog tests catalog construction from prototypes.
func TestNewCatalog(t *testing.T) {
	t.Parallel()

	t.Run("empty catalog", func(t *testing.T) {
		t.Parallel()

		c, err := NewCatalog(nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if c.Len() != 0 || len(c.IDs()) != 0 {
			t.Error("expected empty catalog")
		}
	})

	t.Run("IDs returns a copy", func(t *testing.T) {
		t.Parallel()

		c, err := NewCatalog([]model.Prototype{{ID: 2}, {ID: 1}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		ids := c.IDs()
		ids[0] = 99
		if c.IDs()[0] != 1 {
			t.Error("expected catalog IDs to be unaffected by caller mutation")
		}
	})
}
