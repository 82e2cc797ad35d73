package report

import (
	"errors"
	"fmt"
	"io"

	"github.com/nao1215/wordfetch/internal/config"
	"github.com/nao1215/wordfetch/internal/model"
)

// ErrUnknownFormat is returned by NewWriter for an unsupported format.
var ErrUnknownFormat = errors.New("unknown report format")

// Writer defines the interface for report output.
//
// Design decision: We use an interface to allow different output formats
// and destinations. This enables writing to files or stdout with the same API.
type Writer interface {
	// Write outputs the run to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(run *model.Run) (int, error)
}

// Limits bounds how much of a run a human-oriented report shows.
type Limits struct {
	// TopWords is the number of ranked words listed.
	TopWords int

	// MutationWords is the number of words whose mutations are listed.
	MutationWords int

	// MutationsPerWord is the number of variants listed per word.
	MutationsPerWord int
}

// DefaultLimits returns the limits used when none are configured.
func DefaultLimits() Limits {
	return Limits{
		TopWords:         config.DefaultTopWords,
		MutationWords:    config.DefaultMutationWords,
		MutationsPerWord: config.DefaultMutationsPerWord,
	}
}

// NewWriter returns the writer for format ("text", "markdown" or "json").
// JSON output always contains the whole run wrapped with version; limits
// apply to the other formats.
func NewWriter(format string, output io.Writer, limits Limits, version string) (Writer, error) {
	switch format {
	case config.FormatText, "":
		return NewTextWriter(output, WithLimits(limits)), nil
	case config.FormatMarkdown:
		return NewMarkdownWriter(output, limits), nil
	case config.FormatJSON:
		return NewFullJSONWriter(output, version, WithPrettyPrint()), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// mutationsToShow returns the mutation sets a report lists, at most limit
// of them. A non-positive limit returns all.
func mutationsToShow(run *model.Run, limit int) []model.WordMutations {
	if limit <= 0 || limit >= len(run.Mutations) {
		return run.Mutations
	}
	return run.Mutations[:limit]
}

// firstN returns at most n items. A non-positive n returns all.
func firstN[T any](items []T, n int) []T {
	if n <= 0 || n >= len(items) {
		return items
	}
	return items[:n]
}
