package proto

import (
	"slices"

	"github.com/nao1215/fomapcheck/internal/model"
)

// Catalog maps prototype IDs to prototypes. It has no mutating methods:
// once built it is read-only for the rest of the run.
type Catalog struct {
	items map[uint16]model.Prototype
	ids   []uint16
}

// NewCatalog builds a catalog from a list of prototypes.
// Duplicate IDs are rejected.
func NewCatalog(protos []model.Prototype) (*Catalog, error) {
	c := &Catalog{
		items: make(map[uint16]model.Prototype, len(protos)),
		ids:   make([]uint16, 0, len(protos)),
	}
	for _, p := range protos {
		if prev, ok := c.items[p.ID]; ok {
			return nil, duplicateError(p, prev)
		}
		c.items[p.ID] = p
		c.ids = append(c.ids, p.ID)
	}
	slices.Sort(c.ids)
	return c, nil
}

// Lookup returns the prototype with the given ID.
func (c *Catalog) Lookup(id uint16) (model.Prototype, bool) {
	p, ok := c.items[id]
	return p, ok
}

// Len returns the number of prototypes.
func (c *Catalog) Len() int {
	return len(c.items)
}

// IDs returns the prototype IDs in ascending order.
func (c *Catalog) IDs() []uint16 {
	return slices.Clone(c.ids)
}
