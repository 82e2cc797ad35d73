// Package mutate derives password-like variants from a word.
//
// Generate applies a fixed set of transformations that mirror the habits
// people show when building passwords from familiar words: case changes,
// appended years, appended numbers, appended symbols and a capitalized
// year-plus-symbol suffix. The output is deterministic and duplicate free.
//
// Case mapping uses golang.org/x/text/cases with the language-neutral tag,
// so results do not depend on the host locale.
package mutate
