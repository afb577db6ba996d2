// Package model defines the core data structures used throughout fomapcheck.
//
// This package contains the following main types:
//   - Category: The classification of a placed map object
//   - Prototype: A catalog entry describing an item prototype
//   - MapObject / MapDocument: The parsed form of a .fomap file
//   - ChangeRecord: A single-byte correction to a map file
//   - FileResult / RunSummary: Per-file and per-run outcomes
//
// Models live in their own package so that the parser, checker, patch
// writer, pipeline and report packages can share them without import cycles.
// Result types are serializable to JSON for summaries and history storage.
package model
