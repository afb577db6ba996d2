// Package proto loads the item prototype catalog.
//
// The catalog root contains items/items.lst, a list of .fopro files.
// Each .fopro file holds one or more [Proto] sections of Key=Value lines;
// only ProtoId and Type are used here. The loaded Catalog is immutable and
// may be shared by any number of goroutines without locking.
package proto
