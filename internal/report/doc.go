// Package report renders run results.
//
// It contains:
//   - InvalidReport: the aggregate text report of unclassifiable objects
//   - SimpleWriter: human-readable run summaries for the terminal
//   - JSONWriter: structured output for tool integration
//   - MarkdownWriter: summaries for sharing in documentation or reviews
//
// Summary writers implement the Writer interface so they can be used
// interchangeably and combined with MultiWriter.
package report
