// Package report renders a finished run.
//
// This package contains writers for different output formats:
//   - TextWriter: the plain ranking and mutation listing for terminals and files
//   - MarkdownWriter: a shareable summary with tables and a word chart
//   - JSONWriter: the full run for tool integration
//
// Design decision: We separate report writing from the run data structure
// (which is in the model package). This allows adding new output formats
// without modifying the core data structures.
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed for multi-format output.
package report
