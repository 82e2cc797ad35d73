package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"slices"

	"github.com/nao1215/wordfetch/internal/extract"
	"github.com/nao1215/wordfetch/internal/fetcher"
	"github.com/nao1215/wordfetch/internal/model"
)

// ErrInvalidStartURL is returned when the start URL is not an absolute
// http(s) URL with a host.
var ErrInvalidStartURL = errors.New("invalid start URL: expected an absolute http(s) URL")

// Fetcher retrieves the textual content of a page.
// *fetcher.Fetcher is the production implementation.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (string, error)
}

// Spider crawls a site breadth-first from a start URL.
//
// Design decision: We call it "Spider" rather than "Crawler" because it
// distinguishes the component from the package name:
// crawler.NewSpider() vs crawler.NewCrawler().
type Spider struct {
	// fetcher retrieves page content.
	fetcher Fetcher

	// maxDepth limits how deep to crawl from the starting URL.
	// 0 means only the starting page, 1 means one level of links, etc.
	maxDepth int

	// onVisit is called before each page is fetched.
	onVisit func(pageURL string, depth int)

	// logger for structured logging.
	logger *slog.Logger
}

// SpiderOption configures a Spider.
type SpiderOption func(*Spider)

// WithMaxDepth sets the maximum crawl depth.
// 0 = only the starting page, 1 = starting page plus linked pages, etc.
// Negative values are treated as 0.
func WithMaxDepth(depth int) SpiderOption {
	return func(s *Spider) {
		s.maxDepth = max(depth, 0)
	}
}

// WithVisitHook registers a function called before each page fetch.
// The CLI uses it to print crawl progress.
func WithVisitHook(fn func(pageURL string, depth int)) SpiderOption {
	return func(s *Spider) {
		s.onVisit = fn
	}
}

// WithSpiderLogger sets a custom logger.
func WithSpiderLogger(logger *slog.Logger) SpiderOption {
	return func(s *Spider) {
		s.logger = logger
	}
}

// NewSpider creates a new Spider that retrieves pages with f.
func NewSpider(f Fetcher, opts ...SpiderOption) *Spider {
	s := &Spider{
		fetcher:  f,
		maxDepth: 0,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// MaxDepth returns the configured depth limit.
func (s *Spider) MaxDepth() int {
	return s.maxDepth
}

// Result is the outcome of one crawl.
type Result struct {
	// Words is the accumulated word sequence of all fetched pages,
	// in crawl order.
	Words []string

	// Pages lists the successfully fetched pages in BFS order.
	Pages []model.PageVisit

	// Failures lists the URLs whose fetch failed.
	Failures []model.FetchFailure

	// Visited lists every URL that was dequeued and marked, in order.
	// It includes failed URLs.
	Visited []string
}

// task is one pending crawl item.
type task struct {
	url   string
	depth int
}

// crawlState is the queue and visited set owned by a single Crawl call.
type crawlState struct {
	pending []task
	visited map[string]bool
}

// Crawl starts crawling from startURL and returns everything it collected.
//
// On context cancellation it stops before the next fetch and returns the
// partial result together with ctx.Err(). Fetch failures never abort the
// crawl.
func (s *Spider) Crawl(ctx context.Context, startURL string) (*Result, error) {
	start, err := url.Parse(startURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidStartURL, err)
	}
	if (start.Scheme != "http" && start.Scheme != "https") || start.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStartURL, startURL)
	}

	result := &Result{
		Words:    make([]string, 0),
		Pages:    make([]model.PageVisit, 0),
		Failures: make([]model.FetchFailure, 0),
		Visited:  make([]string, 0),
	}
	state := &crawlState{
		pending: []task{{url: startURL, depth: 0}},
		visited: make(map[string]bool),
	}

	for len(state.pending) > 0 {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		item := state.pending[0]
		state.pending = state.pending[1:]

		if state.visited[item.url] || item.depth > s.maxDepth {
			continue
		}
		state.visited[item.url] = true
		result.Visited = append(result.Visited, item.url)

		if s.onVisit != nil {
			s.onVisit(item.url, item.depth)
		}
		s.logger.Info("crawling", "url", item.url, "depth", item.depth)

		content, err := s.fetcher.Fetch(ctx, item.url)
		if err != nil {
			// A fetch aborted by cancellation is not a failure of the page.
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			s.recordFailure(result, item, err)
			continue
		}

		doc := extract.Parse(content)
		words := slices.Collect(doc.Words())
		result.Words = append(result.Words, words...)
		result.Pages = append(result.Pages, model.PageVisit{
			URL:   item.url,
			Title: doc.Title(),
			Depth: item.depth,
			Words: len(words),
		})

		if item.depth < s.maxDepth {
			for _, link := range doc.Links(item.url) {
				if !state.visited[link] && sameHost(start.Host, link) {
					state.pending = append(state.pending, task{url: link, depth: item.depth + 1})
				}
			}
		}
	}

	return result, nil
}

// recordFailure logs a failed fetch and adds it to the result.
func (s *Spider) recordFailure(result *Result, item task, err error) {
	failure := model.FetchFailure{
		URL:    item.url,
		Depth:  item.depth,
		Reason: err.Error(),
	}

	var fetchErr *fetcher.FetchError
	if errors.As(err, &fetchErr) {
		failure.StatusCode = fetchErr.StatusCode
		failure.Reason = fetchErr.Reason()
	}

	s.logger.Warn("fetch failed",
		"url", item.url,
		"depth", item.depth,
		"error", err,
	)
	result.Failures = append(result.Failures, failure)
}

// sameHost reports whether targetURL's host equals baseHost exactly.
// The host includes the port when one is present, and no case folding or
// "www." normalization is applied.
func sameHost(baseHost, targetURL string) bool {
	u, err := url.Parse(targetURL)
	if err != nil {
		return false
	}
	return u.Host == baseHost
}
