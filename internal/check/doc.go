// Package check compares the category recorded for each placed map object
// with the category implied by its prototype, and collects objects whose
// category cannot be classified.
package check
