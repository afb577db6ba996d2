package model

// Prototype is an item prototype from the catalog.
type Prototype struct {
	// ID is the prototype identifier referenced by map objects.
	ID uint16 `json:"id"`

	// Type is the declared item type (see the ItemType constants).
	Type uint8 `json:"type"`

	// File is the .fopro file the prototype was loaded from.
	File string `json:"file,omitempty"`
}

// Category returns the category this prototype implies for placed objects.
func (p Prototype) Category() Category {
	return ImpliedCategory(p.Type)
}
