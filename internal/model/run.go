package model

import (
	"net/url"
	"time"

	"github.com/google/uuid"
)

// Run is the result of a single wordfetch invocation.
// It is filled in step by step by the pipeline: the crawl step records pages
// and words, the rank step produces the ranking, and the optional mutate step
// attaches password variants.
type Run struct {
	// ID uniquely identifies the run. It is used as the primary key
	// when the run is archived in the history database.
	ID string `json:"id"`

	// SeedURL is the URL the crawl started from, exactly as given.
	SeedURL string `json:"seed_url"`

	// Host is the host component (host[:port]) of SeedURL.
	// Only links with exactly this host are followed.
	Host string `json:"host"`

	// Depth is the crawl depth limit. 0 means only the seed page.
	Depth int `json:"depth"`

	// MinLength is the minimum word length (in runes) counted by the ranker.
	MinLength int `json:"min_length"`

	// MutationsEnabled reports whether password mutations were requested.
	MutationsEnabled bool `json:"mutations_enabled"`

	// StartedAt and FinishedAt bound the pipeline execution.
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// Pages lists successfully fetched pages in BFS order.
	Pages []PageVisit `json:"pages"`

	// Failures lists URLs whose fetch failed. These pages contribute no words.
	Failures []FetchFailure `json:"failures,omitempty"`

	// Words is the accumulated word sequence across all fetched pages,
	// in crawl order. It is not serialized because it can be very large;
	// TotalWords keeps its length.
	Words []string `json:"-"`

	// TotalWords is the number of tokens extracted before length filtering.
	TotalWords int `json:"total_words"`

	// Ranking holds the length-filtered words ordered by descending count.
	Ranking []RankedEntry `json:"ranking"`

	// Mutations holds the generated variants for the top ranked words.
	Mutations []WordMutations `json:"mutations,omitempty"`

	// PerformedSteps lists the pipeline steps that ran, in order.
	PerformedSteps []string `json:"performed_steps"`

	// Cancelled is true when the run was interrupted before completion.
	// Partial results are kept.
	Cancelled bool `json:"cancelled"`

	// Error is the last step error, if any.
	Error error `json:"-"`

	// ErrorMessage is the serializable form of Error.
	ErrorMessage string `json:"error,omitempty"`
}

// PageVisit records one successfully fetched page.
type PageVisit struct {
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
	Depth int    `json:"depth"`
	Words int    `json:"words"`
}

// FetchFailure records one URL that could not be fetched.
type FetchFailure struct {
	URL   string `json:"url"`
	Depth int    `json:"depth"`

	// StatusCode is the HTTP status for status failures, 0 otherwise.
	StatusCode int `json:"status_code,omitempty"`

	// Reason is the human-readable failure cause.
	Reason string `json:"reason"`
}

// RankedEntry is a word together with its occurrence count.
type RankedEntry struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// WordMutations holds the password variants generated for one ranked word.
type WordMutations struct {
	Word     string   `json:"word"`
	Count    int      `json:"count"`
	Variants []string `json:"variants"`
}

// NewRun creates a Run for the given seed URL with a fresh ID.
// Host is left empty when seedURL cannot be parsed; the crawler reports
// that error when the run executes.
func NewRun(seedURL string, depth, minLength int) *Run {
	r := &Run{
		ID:             uuid.NewString(),
		SeedURL:        seedURL,
		Depth:          depth,
		MinLength:      minLength,
		StartedAt:      time.Now(),
		Pages:          make([]PageVisit, 0),
		Ranking:        make([]RankedEntry, 0),
		PerformedSteps: make([]string, 0),
	}
	if u, err := url.Parse(seedURL); err == nil {
		r.Host = u.Host
	}
	return r
}

// Duration returns how long the run took.
// It returns zero if the run has not finished.
func (r *Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// HasWords reports whether the crawl produced any word at all.
func (r *Run) HasWords() bool {
	return r.TotalWords > 0 || len(r.Words) > 0
}

// TopWords returns at most n entries from the head of the ranking.
// A non-positive n returns the whole ranking.
func (r *Run) TopWords(n int) []RankedEntry {
	if n <= 0 || n >= len(r.Ranking) {
		return r.Ranking
	}
	return r.Ranking[:n]
}

// MutationsFor returns the variants generated for word, or nil.
func (r *Run) MutationsFor(word string) []string {
	for _, m := range r.Mutations {
		if m.Word == word {
			return m.Variants
		}
	}
	return nil
}

// AddPage appends a successfully fetched page and its words.
func (r *Run) AddPage(pageURL, title string, depth int, words []string) {
	r.Pages = append(r.Pages, PageVisit{URL: pageURL, Title: title, Depth: depth, Words: len(words)})
	r.Words = append(r.Words, words...)
	r.TotalWords = len(r.Words)
}

// AddFailure records a URL whose fetch failed.
func (r *Run) AddFailure(f FetchFailure) {
	r.Failures = append(r.Failures, f)
}
