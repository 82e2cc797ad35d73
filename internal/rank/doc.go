// Package rank counts word occurrences and orders them by frequency.
//
// Words are compared exactly: "Cat" and "cat" are different words.
// Length is measured in Unicode code points, so "café" has length 4.
//
// Design decision: Ties are broken by first-seen order rather than
// alphabetically. The ranking is built from insertion order and sorted
// stably, so two words with the same count appear in the order they were
// first encountered during the crawl.
package rank
