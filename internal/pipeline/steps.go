package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/nao1215/wordfetch/internal/config"
	"github.com/nao1215/wordfetch/internal/crawler"
	"github.com/nao1215/wordfetch/internal/model"
	"github.com/nao1215/wordfetch/internal/rank"
)

// CrawlStep crawls the site of run.SeedURL up to run.Depth and records the
// visited pages, the failures and the accumulated words in the run.
type CrawlStep struct {
	// fetcher retrieves page content.
	fetcher crawler.Fetcher

	// onVisit is passed to the spider as its visit hook.
	onVisit func(pageURL string, depth int)

	// logger for structured logging.
	logger *slog.Logger
}

// CrawlStepOption configures a CrawlStep.
type CrawlStepOption func(*CrawlStep)

// WithCrawlVisitHook sets a function called before each page fetch.
func WithCrawlVisitHook(fn func(pageURL string, depth int)) CrawlStepOption {
	return func(s *CrawlStep) {
		s.onVisit = fn
	}
}

// WithCrawlLogger sets a custom logger for the crawl step.
func WithCrawlLogger(logger *slog.Logger) CrawlStepOption {
	return func(s *CrawlStep) {
		s.logger = logger
	}
}

// NewCrawlStep creates a new crawl step that fetches pages with f.
func NewCrawlStep(f crawler.Fetcher, opts ...CrawlStepOption) *CrawlStep {
	s := &CrawlStep{
		fetcher: f,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *CrawlStep) Name() string {
	return "crawl"
}

// Do executes the crawl step.
// Partial results are stored in the run even when the crawl is cancelled.
func (s *CrawlStep) Do(ctx context.Context, run *model.Run) error {
	spiderOpts := []crawler.SpiderOption{
		crawler.WithMaxDepth(run.Depth),
		crawler.WithSpiderLogger(s.logger),
	}
	if s.onVisit != nil {
		spiderOpts = append(spiderOpts, crawler.WithVisitHook(s.onVisit))
	}

	spider := crawler.NewSpider(s.fetcher, spiderOpts...)
	result, err := spider.Crawl(ctx, run.SeedURL)
	if result != nil {
		// result.Words holds the words of result.Pages in page order.
		offset := 0
		for _, page := range result.Pages {
			run.AddPage(page.URL, page.Title, page.Depth, result.Words[offset:offset+page.Words])
			offset += page.Words
		}
		for _, f := range result.Failures {
			run.AddFailure(f)
		}
	}
	if err != nil {
		return fmt.Errorf("crawl %s: %w", run.SeedURL, err)
	}

	s.logger.Info("crawl completed",
		"url", run.SeedURL,
		"pages", len(run.Pages),
		"failures", len(run.Failures),
		"words", run.TotalWords,
	)

	return nil
}

// RankStep counts the run's words of at least run.MinLength runes and
// stores them ordered by descending frequency.
type RankStep struct {
	logger *slog.Logger
}

// NewRankStep creates a new ranking step.
func NewRankStep(logger *slog.Logger) *RankStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &RankStep{logger: logger}
}

// Name returns the step name.
func (s *RankStep) Name() string {
	return "rank"
}

// Do executes the ranking step.
func (s *RankStep) Do(_ context.Context, run *model.Run) error {
	run.Ranking = rank.Rank(slices.Values(run.Words), run.MinLength)

	s.logger.Debug("ranking completed",
		"distinct_words", len(run.Ranking),
		"min_length", run.MinLength,
	)

	return nil
}

// MutateStep generates password mutations for the top ranked words.
type MutateStep struct {
	// words is the number of top ranked words to mutate.
	words int

	// batch performs the concurrent generation.
	batch *MutationBatch

	logger *slog.Logger
}

// MutateStepOption configures a MutateStep.
type MutateStepOption func(*MutateStep)

// WithMutationWords sets how many top ranked words are mutated.
// Non-positive values are ignored.
func WithMutationWords(n int) MutateStepOption {
	return func(s *MutateStep) {
		if n > 0 {
			s.words = n
		}
	}
}

// WithMutationBatch replaces the batch processor.
func WithMutationBatch(b *MutationBatch) MutateStepOption {
	return func(s *MutateStep) {
		s.batch = b
	}
}

// WithMutateLogger sets a custom logger for the mutation step.
func WithMutateLogger(logger *slog.Logger) MutateStepOption {
	return func(s *MutateStep) {
		s.logger = logger
	}
}

// NewMutateStep creates a new mutation step.
func NewMutateStep(opts ...MutateStepOption) *MutateStep {
	s := &MutateStep{
		words:  config.DefaultMutationWords,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.batch == nil {
		s.batch = NewMutationBatch(WithBatchLogger(s.logger))
	}

	return s
}

// Name returns the step name.
func (s *MutateStep) Name() string {
	return "mutate"
}

// Do executes the mutation step. It marks the run as having mutations
// enabled and does nothing more when the ranking is empty.
func (s *MutateStep) Do(ctx context.Context, run *model.Run) error {
	run.MutationsEnabled = true

	top := run.TopWords(s.words)
	if len(top) == 0 {
		return nil
	}

	mutations, err := s.batch.Process(ctx, top)
	if err != nil {
		return fmt.Errorf("generate mutations: %w", err)
	}
	run.Mutations = mutations

	s.logger.Debug("mutations generated", "words", len(mutations))

	return nil
}

// DefaultPipelineConfig holds the settings used by DefaultPipeline.
type DefaultPipelineConfig struct {
	// Mutations adds the mutation step.
	Mutations bool

	// MutationWords is the number of top words to mutate.
	MutationWords int

	// Concurrency bounds the mutation workers. Zero means one per CPU.
	Concurrency int

	// VisitHook is called before each page fetch.
	VisitHook func(pageURL string, depth int)
}

// DefaultPipelineOption configures DefaultPipelineConfig.
type DefaultPipelineOption func(*DefaultPipelineConfig)

// WithPipelineMutations enables or disables the mutation step.
func WithPipelineMutations(enabled bool) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Mutations = enabled
	}
}

// WithPipelineMutationWords sets the number of top words to mutate.
func WithPipelineMutationWords(n int) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.MutationWords = n
	}
}

// WithPipelineConcurrency sets the mutation worker limit.
func WithPipelineConcurrency(n int) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Concurrency = n
	}
}

// WithPipelineVisitHook sets a function called before each page fetch.
func WithPipelineVisitHook(fn func(pageURL string, depth int)) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.VisitHook = fn
	}
}

// DefaultPipeline creates the standard crawl, rank and optional mutate
// pipeline. Pages are fetched with f.
//
// The first variadic parameter accepts pipeline options (WithLogger, etc).
// The second accepts pipeline config options (WithPipelineMutations, etc).
func DefaultPipeline(f crawler.Fetcher, pipelineOpts []Option, configOpts ...DefaultPipelineOption) *Pipeline {
	p := New(pipelineOpts...)

	cfg := &DefaultPipelineConfig{
		MutationWords: config.DefaultMutationWords,
	}
	for _, opt := range configOpts {
		opt(cfg)
	}

	crawlOpts := []CrawlStepOption{WithCrawlLogger(p.logger)}
	if cfg.VisitHook != nil {
		crawlOpts = append(crawlOpts, WithCrawlVisitHook(cfg.VisitHook))
	}

	p.AddSteps(
		NewCrawlStep(f, crawlOpts...),
		NewRankStep(p.logger),
	)

	if cfg.Mutations {
		p.AddStep(NewMutateStep(
			WithMutationWords(cfg.MutationWords),
			WithMutateLogger(p.logger),
			WithMutationBatch(NewMutationBatch(
				WithConcurrency(cfg.Concurrency),
				WithBatchLogger(p.logger),
			)),
		))
	}

	return p
}
