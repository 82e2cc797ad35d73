// Package model defines the core data structures shared by wordfetch packages.
//
// This package contains the following main types:
//   - Run: The result of one crawl → rank → mutate invocation
//   - PageVisit and FetchFailure: Per-URL outcomes recorded by the crawler
//   - RankedEntry: A word and its occurrence count
//   - WordMutations: Password-like variants generated for one ranked word
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. The crawler, pipeline, report and database packages all need
// these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output and
// database storage.
package model
