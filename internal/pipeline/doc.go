// Package pipeline processes map files through a fixed sequence of steps.
//
// Each file runs through its own Pipeline: read the bytes, parse the
// document, check objects against the prototype catalog and patch the
// disagreeing category bytes. BatchProcessor fans files out over a bounded
// errgroup and keeps one result per file in discovery order.
//
// A failure stops only the file it occurred in unless fail-fast is
// enabled, in which case the remaining files are skipped.
package pipeline
