package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/wordfetch/internal/model"
)

// ruleWidth is the width of the "=" separator lines.
const ruleWidth = 60

// TextWriter outputs the plain text report:
//
//	Top words from http://example.com (minimum length: 3):
//	============================================================
//
//	word: 12
//	...
//
// followed, when mutations were generated, by a PASSWORD MUTATIONS section
// listing the variants of each top word.
type TextWriter struct {
	baseWriter

	limits Limits
}

// TextWriterOption configures a TextWriter.
type TextWriterOption func(*TextWriter)

// WithLimits sets how many words and variants are listed.
func WithLimits(limits Limits) TextWriterOption {
	return func(w *TextWriter) {
		w.limits = limits
	}
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer, opts ...TextWriterOption) *TextWriter {
	w := &TextWriter{
		baseWriter: newBaseWriter(output),
		limits:     DefaultLimits(),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the run in text format.
func (w *TextWriter) Write(run *model.Run) (int, error) {
	return io.WriteString(w.output, w.Render(run))
}

// Render returns the text report without writing it.
func (w *TextWriter) Render(run *model.Run) string {
	var sb strings.Builder
	rule := strings.Repeat("=", ruleWidth)

	fmt.Fprintf(&sb, "Top words from %s (minimum length: %d):\n", run.SeedURL, run.MinLength)
	sb.WriteString(rule + "\n\n")

	for _, e := range run.TopWords(w.limits.TopWords) {
		fmt.Fprintf(&sb, "%s: %d\n", e.Word, e.Count)
	}

	if run.MutationsEnabled && len(run.Mutations) > 0 {
		sb.WriteString("\n" + rule + "\n")
		fmt.Fprintf(&sb, "PASSWORD MUTATIONS (Top %d words):\n", w.limits.MutationWords)
		sb.WriteString(rule + "\n\n")

		for _, m := range mutationsToShow(run, w.limits.MutationWords) {
			fmt.Fprintf(&sb, "\nMutations for '%s':\n", m.Word)
			for _, v := range firstN(m.Variants, w.limits.MutationsPerWord) {
				fmt.Fprintf(&sb, "  %s\n", v)
			}
		}
	}

	return sb.String()
}
