package model

import (
	"fmt"
	"strconv"
)

// Category is the classification of a placed map object as recorded in the
// MapObjType field of a map file.
type Category uint8

const (
	// CategoryCritter is a creature placed on the map. Critters are not
	// backed by item prototypes and are never checked against the catalog.
	CategoryCritter Category = iota

	// CategoryItem is a pickable or usable item.
	CategoryItem

	// CategoryScenery is static decoration: grids, generic scenery and walls.
	CategoryScenery

	// CategoryAny marks an object whose category could not be classified.
	// It has no digit code and is only ever reported, never rewritten.
	CategoryAny Category = 0xFF
)

// Item types declared by prototypes. Only the scenery-class values are
// significant to the category rule; the rest are listed for readability of
// reports and tests.
const (
	ItemTypeNone      uint8 = 0
	ItemTypeArmor     uint8 = 1
	ItemTypeDrug      uint8 = 2
	ItemTypeWeapon    uint8 = 3
	ItemTypeAmmo      uint8 = 4
	ItemTypeMisc      uint8 = 5
	ItemTypeMiscEx    uint8 = 6
	ItemTypeKey       uint8 = 7
	ItemTypeContainer uint8 = 8
	ItemTypeDoor      uint8 = 9
	ItemTypeGrid      uint8 = 10
	ItemTypeGeneric   uint8 = 11
	ItemTypeWall      uint8 = 12
	ItemTypeCar       uint8 = 13
)

// ImpliedCategory returns the category a prototype's declared type implies.
// Grid, generic and wall types are scenery; every other value, including
// values this package does not know about, is an item.
func ImpliedCategory(declaredType uint8) Category {
	switch declaredType {
	case ItemTypeGrid, ItemTypeGeneric, ItemTypeWall:
		return CategoryScenery
	default:
		return CategoryItem
	}
}

// ParseCategory converts a MapObjType value into a Category.
// Values other than the known digit codes yield CategoryAny.
func ParseCategory(value string) Category {
	n, err := strconv.ParseUint(value, 10, 8)
	if err != nil {
		return CategoryAny
	}
	switch c := Category(n); c {
	case CategoryCritter, CategoryItem, CategoryScenery:
		return c
	default:
		return CategoryAny
	}
}

// Code returns the numeric code stored in map files.
// The second return value is false for CategoryAny.
func (c Category) Code() (uint8, bool) {
	switch c {
	case CategoryCritter, CategoryItem, CategoryScenery:
		return uint8(c), true
	default:
		return 0, false
	}
}

// IsAny reports whether the category is unclassified.
func (c Category) IsAny() bool {
	return c == CategoryAny
}

// String returns a lower-case name of the category.
func (c Category) String() string {
	switch c {
	case CategoryCritter:
		return "critter"
	case CategoryItem:
		return "item"
	case CategoryScenery:
		return "scenery"
	case CategoryAny:
		return "any"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler so categories appear by name
// in JSON output.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Category) UnmarshalText(text []byte) error {
	switch string(text) {
	case "critter":
		*c = CategoryCritter
	case "item":
		*c = CategoryItem
	case "scenery":
		*c = CategoryScenery
	case "any":
		*c = CategoryAny
	default:
		return fmt.Errorf("unknown category %q", text)
	}
	return nil
}
