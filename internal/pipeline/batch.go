package pipeline

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/nao1215/wordfetch/internal/model"
	"github.com/nao1215/wordfetch/internal/mutate"
	"golang.org/x/sync/errgroup"
)

// MutationBatch generates mutation sets for many ranked words concurrently.
// It uses errgroup to manage goroutines and respect the concurrency limit.
//
// Design decision: We use a separate MutationBatch rather than looping inside
// MutateStep because:
// 1. It keeps MutateStep focused on selecting the words
// 2. It allows the fan-out to be reused and tested on its own
//
// The work is CPU-only; no goroutine started here touches the network.
type MutationBatch struct {
	// concurrency is the maximum number of words processed at once.
	concurrency int

	// generate produces the variants of one word.
	generate func(word string) []string

	// logger is used for batch-level logging.
	logger *slog.Logger
}

// BatchOption configures a MutationBatch.
type BatchOption func(*MutationBatch)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *MutationBatch) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent workers.
// Default is runtime.NumCPU(). Non-positive values are ignored.
func WithConcurrency(n int) BatchOption {
	return func(b *MutationBatch) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithGenerator replaces the variant generator. It must be safe for
// concurrent use.
func WithGenerator(fn func(word string) []string) BatchOption {
	return func(b *MutationBatch) {
		if fn != nil {
			b.generate = fn
		}
	}
}

// NewMutationBatch creates a new MutationBatch that uses mutate.Generate.
func NewMutationBatch(opts ...BatchOption) *MutationBatch {
	b := &MutationBatch{
		concurrency: runtime.NumCPU(),
		generate:    mutate.Generate,
	}

	for _, opt := range opts {
		opt(b)
	}

	if b.logger == nil {
		b.logger = slog.Default()
	}

	return b
}

// Process generates the variants of every entry.
// The returned slice is in the same order as entries, regardless of the
// order in which workers finish.
//
// On cancellation the error is returned together with the sets that were
// completed; unfinished slots hold only the word and count.
func (b *MutationBatch) Process(ctx context.Context, entries []model.RankedEntry) ([]model.WordMutations, error) {
	b.logger.Debug("starting mutation batch",
		"words", len(entries),
		"concurrency", b.concurrency,
	)

	startTime := time.Now()

	// Pre-allocate so each worker writes only its own index.
	results := make([]model.WordMutations, len(entries))
	for i, e := range entries {
		results[i] = model.WordMutations{Word: e.Word, Count: e.Count}
	}

	err := b.ProcessWithCallback(ctx, entries, func(m model.WordMutations, index int) {
		results[index] = m
	})

	b.logger.Debug("mutation batch complete",
		"words", len(entries),
		"elapsed", time.Since(startTime),
	)

	return results, err
}

// ProcessWithCallback generates the variants of every entry and calls
// callback for each completed set with its index in entries.
//
// The callback is called from worker goroutines, so it must be safe for
// concurrent use if it touches shared state.
func (b *MutationBatch) ProcessWithCallback(
	ctx context.Context,
	entries []model.RankedEntry,
	callback func(m model.WordMutations, index int),
) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for i, entry := range entries {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			callback(model.WordMutations{
				Word:     entry.Word,
				Count:    entry.Count,
				Variants: b.generate(entry.Word),
			}, i)

			return nil
		})
	}

	return g.Wait()
}
