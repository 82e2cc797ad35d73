package rank

import (
	"iter"
	"slices"
	"unicode/utf8"

	"github.com/nao1215/wordfetch/internal/model"
)

// Counter accumulates word counts while remembering first-seen order.
// The zero value is not usable; use NewCounter.
type Counter struct {
	minLength int
	counts    map[string]int
	order     []string
}

// NewCounter creates a Counter that ignores words shorter than minLength
// runes. A non-positive minLength counts every word.
func NewCounter(minLength int) *Counter {
	return &Counter{
		minLength: minLength,
		counts:    make(map[string]int),
		order:     make([]string, 0),
	}
}

// Add counts one word.
func (c *Counter) Add(word string) {
	if !c.accepts(word) {
		return
	}
	if _, ok := c.counts[word]; !ok {
		c.order = append(c.order, word)
	}
	c.counts[word]++
}

// AddAll counts every word of the sequence.
func (c *Counter) AddAll(words iter.Seq[string]) {
	for w := range words {
		c.Add(w)
	}
}

// Len returns the number of distinct words counted.
func (c *Counter) Len() int {
	return len(c.order)
}

// Ranking returns the counted words ordered by descending count.
// Words with equal counts keep their first-seen order.
func (c *Counter) Ranking() []model.RankedEntry {
	entries := make([]model.RankedEntry, 0, len(c.order))
	for _, w := range c.order {
		entries = append(entries, model.RankedEntry{Word: w, Count: c.counts[w]})
	}
	slices.SortStableFunc(entries, func(a, b model.RankedEntry) int {
		return b.Count - a.Count
	})
	return entries
}

func (c *Counter) accepts(word string) bool {
	if c.minLength <= 0 {
		return true
	}
	return utf8.RuneCountInString(word) >= c.minLength
}

// Rank counts words at least minLength runes long and returns them ordered
// by descending count, ties in first-seen order.
//
// The sum of the returned counts equals the number of qualifying tokens
// in words.
func Rank(words iter.Seq[string], minLength int) []model.RankedEntry {
	c := NewCounter(minLength)
	c.AddAll(words)
	return c.Ranking()
}
