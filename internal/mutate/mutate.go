package mutate

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FirstYear and LastYear bound the appended years, inclusive.
const (
	FirstYear = 2019
	LastYear  = 2025
)

var (
	// numberSuffixes are appended to the word and its capitalized form.
	numberSuffixes = [...]string{"1", "12", "123", "1234", "01", "001"}

	// symbolSuffixes are appended to the word and its capitalized form.
	symbolSuffixes = [...]string{"!", "!!", "!1", "1!", "2!", "3!", "@", "#", "$"}

	// yearSymbols follow a year in the capitalized year-plus-symbol form.
	yearSymbols = [...]string{"!", "@", "#"}
)

// MaxVariants is the number of candidates before deduplication.
const MaxVariants = 4 +
	2*(LastYear-FirstYear+1) +
	2*len(numberSuffixes) +
	2*len(symbolSuffixes) +
	(LastYear-FirstYear+1)*len(yearSymbols)

// Generator produces mutation sets.
// A Generator holds case mappers that keep internal state, so it must not be
// shared between goroutines. Create one per goroutine or use Generate.
type Generator struct {
	lower cases.Caser
	upper cases.Caser
	title cases.Caser
}

// NewGenerator creates a Generator using language-neutral case mapping.
func NewGenerator() *Generator {
	return &Generator{
		lower: cases.Lower(language.Und),
		upper: cases.Upper(language.Und),
		title: cases.Title(language.Und),
	}
}

// Generate returns the variants of word in generation order with duplicates
// removed. The first occurrence of a candidate keeps its position.
//
// Order: lowercase, uppercase, capitalized, title case; then for each year
// lower+year and Capitalized+year; for each number lower+number and
// Capitalized+number; for each symbol lower+symbol and Capitalized+symbol;
// finally Capitalized+year+symbol for each year and each of "!@#".
// Suffixes go on the lowercase form, so "Summer" yields "summer2020" as
// well as "Summer2020". For mixed-case input the literal word plus suffix
// is therefore not generated: "iPhone" yields "iphone2020" and
// "Iphone2020" but not "iPhone2020".
//
// Capitalized and title case start each word with its titlecase mapping.
// Title case begins a new word after every rune without case, so
// "foo_bar" becomes "Foo_Bar" and "abc1def" becomes "Abc1Def".
//
// Empty candidates are skipped, so an empty word yields only the bare
// suffixes.
func (g *Generator) Generate(word string) []string {
	lower := g.lower.String(word)
	capitalized := g.capitalize(word)

	set := newOrderedSet(MaxVariants)
	set.add(lower)
	set.add(g.upper.String(word))
	set.add(capitalized)
	set.add(g.titleCase(word))

	for year := FirstYear; year <= LastYear; year++ {
		y := strconv.Itoa(year)
		set.add(lower + y)
		set.add(capitalized + y)
	}
	for _, n := range numberSuffixes {
		set.add(lower + n)
		set.add(capitalized + n)
	}
	for _, s := range symbolSuffixes {
		set.add(lower + s)
		set.add(capitalized + s)
	}
	for year := FirstYear; year <= LastYear; year++ {
		y := strconv.Itoa(year)
		for _, s := range yearSymbols {
			set.add(capitalized + y + s)
		}
	}

	return set.items
}

// capitalize title-cases the first rune and lower-cases the rest.
func (g *Generator) capitalize(word string) string {
	if word == "" {
		return ""
	}
	_, size := utf8.DecodeRuneInString(word)
	return g.title.String(word[:size]) + g.lower.String(word[size:])
}

// titleCase capitalizes every run of cased letters and leaves the runes
// between them unchanged.
func (g *Generator) titleCase(word string) string {
	var b strings.Builder
	b.Grow(len(word))

	for word != "" {
		start := strings.IndexFunc(word, isCased)
		if start < 0 {
			b.WriteString(word)
			break
		}
		b.WriteString(word[:start])
		word = word[start:]

		end := strings.IndexFunc(word, func(r rune) bool { return !isCased(r) })
		if end < 0 {
			end = len(word)
		}
		b.WriteString(g.capitalize(word[:end]))
		word = word[end:]
	}

	return b.String()
}

// isCased reports whether r has case, as letters of most alphabets do.
func isCased(r rune) bool {
	return unicode.IsUpper(r) || unicode.IsLower(r) || unicode.IsTitle(r)
}

// Generate returns the variants of word using a fresh Generator.
// It is safe for concurrent use.
func Generate(word string) []string {
	return NewGenerator().Generate(word)
}

// orderedSet keeps insertion order and drops repeats.
type orderedSet struct {
	seen  map[string]struct{}
	items []string
}

func newOrderedSet(capacity int) *orderedSet {
	return &orderedSet{
		seen:  make(map[string]struct{}, capacity),
		items: make([]string, 0, capacity),
	}
}

func (s *orderedSet) add(v string) {
	if v == "" {
		return
	}
	if _, ok := s.seen[v]; ok {
		return
	}
	s.seen[v] = struct{}{}
	s.items = append(s.items, v)
}
