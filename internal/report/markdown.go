package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/nao1215/wordfetch/internal/model"
)

// chartWords is the number of top words drawn in the pie chart.
const chartWords = 10

// MarkdownWriter outputs runs in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter

	limits Limits
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer, limits Limits) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
		limits:     limits,
	}
}

// Write outputs the run in Markdown format.
func (w *MarkdownWriter) Write(run *model.Run) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, run)
	w.writeRanking(md, run)
	w.writeMutations(md, run)
	w.writePages(md, run)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the title and the run summary table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, run *model.Run) {
	md.H1("wordfetch Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Seed URL", "`" + run.SeedURL + "`"},
			{"Host", "`" + run.Host + "`"},
			{"Depth", strconv.Itoa(run.Depth)},
			{"Minimum Length", strconv.Itoa(run.MinLength)},
			{"Started", run.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Duration", run.Duration().String()},
			{"Pages Visited", strconv.Itoa(len(run.Pages))},
			{"Pages Failed", strconv.Itoa(len(run.Failures))},
			{"Total Words", strconv.Itoa(run.TotalWords)},
			{"Distinct Words", strconv.Itoa(len(run.Ranking))},
			{"Status", w.getStatusText(run)},
		},
	})
	md.PlainText("")
}

// getStatusText returns the status text based on run state.
func (w *MarkdownWriter) getStatusText(run *model.Run) string {
	if run.Cancelled {
		return "⚠️ Interrupted (partial results)"
	}
	if run.ErrorMessage != "" {
		return "❌ Error - " + run.ErrorMessage
	}
	return "✅ Complete"
}

// writeRanking writes the top words table and chart.
func (w *MarkdownWriter) writeRanking(md *markdown.Markdown, run *model.Run) {
	md.H2("Top Words")
	md.PlainText("")

	top := run.TopWords(w.limits.TopWords)
	if len(top) == 0 {
		md.Note("No words found with minimum length " + strconv.Itoa(run.MinLength) + ".")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(top))
	for i, e := range top {
		rows[i] = []string{strconv.Itoa(i + 1), escapeCell(e.Word), strconv.Itoa(e.Count)}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Rank", "Word", "Count"},
		Rows:   rows,
	})
	md.PlainText("")

	w.writePieChart(md, firstN(top, chartWords))
}

// writePieChart writes a mermaid pie chart of the most frequent words.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, entries []model.RankedEntry) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Word Frequency"),
		piechart.WithShowData(true),
	)

	for _, e := range entries {
		chart.LabelAndIntValue(e.Word, uint64(e.Count)) //nolint:gosec // counts are never negative
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeMutations writes the generated password variants.
func (w *MarkdownWriter) writeMutations(md *markdown.Markdown, run *model.Run) {
	if !run.MutationsEnabled {
		return
	}

	md.H2("Password Mutations")
	md.PlainText("")

	shown := mutationsToShow(run, w.limits.MutationWords)
	if len(shown) == 0 {
		md.PlainText("No words to mutate.")
		md.PlainText("")
		return
	}

	md.Warning("These candidates are intended for authorized password audits only.")
	md.PlainText("")

	for _, m := range shown {
		variants := firstN(m.Variants, w.limits.MutationsPerWord)
		items := make([]string, len(variants))
		for i, v := range variants {
			items[i] = "`" + v + "`"
		}
		md.Details(m.Word+" ("+strconv.Itoa(len(m.Variants))+" variants)", strings.Join(items, " "))
	}
	md.PlainText("")
}

// writePages writes the visited and failed pages.
func (w *MarkdownWriter) writePages(md *markdown.Markdown, run *model.Run) {
	md.H2("Crawled Pages")
	md.PlainText("")

	if len(run.Pages) == 0 {
		md.PlainText("No pages were fetched.")
		md.PlainText("")
	} else {
		rows := make([][]string, len(run.Pages))
		for i, p := range run.Pages {
			title := p.Title
			if title == "" {
				title = "-"
			}
			rows[i] = []string{
				truncateString(p.URL, 60),
				escapeCell(truncateString(title, 40)),
				strconv.Itoa(p.Depth),
				strconv.Itoa(p.Words),
			}
		}
		md.Table(markdown.TableSet{
			Header: []string{"URL", "Title", "Depth", "Words"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	if len(run.Failures) == 0 {
		return
	}

	md.H3("Failed Pages")
	md.PlainText("")
	rows := make([][]string, len(run.Failures))
	for i, f := range run.Failures {
		rows[i] = []string{truncateString(f.URL, 60), strconv.Itoa(f.Depth), escapeCell(f.Reason)}
	}
	md.Table(markdown.TableSet{
		Header: []string{"URL", "Depth", "Reason"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [wordfetch](https://github.com/nao1215/wordfetch)*")
}

// escapeCell escapes the pipe character, which would split a table cell.
func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// truncateString truncates a string to maxLen runes with ellipsis.
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
