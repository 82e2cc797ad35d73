// Package pipeline runs the stages of a wordfetch run in sequence.
//
// A run moves through three stages: crawling the site to collect words,
// ranking the words by frequency, and optionally generating password
// mutations for the top ranked words. Each stage is implemented as a Step
// that receives the current model.Run and fills in its part.
//
// Design decision: We use a pipeline pattern instead of direct function calls
// because:
// 1. It allows the mutation stage to be added or left out without touching
// the other stages
// 2. It provides consistent error handling and logging across steps
// 3. It supports cancellation via context between stages
//
// Crawling is strictly sequential. The only concurrency is the mutation
// fan-out in MutationBatch, which is CPU-only and bounded with errgroup.
package pipeline
