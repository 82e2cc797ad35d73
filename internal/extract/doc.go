// Package extract turns fetched page content into word tokens and links.
//
// Parsing uses golang.org/x/net/html, which tolerates the malformed markup
// common on the web: broken documents degrade to fewer words or links, never
// to an error.
//
// Words are the maximal runs of letters, digits and underscore found in the
// rendered text of the page, in document order. Script, style, noscript and
// template contents as well as comments are not part of the rendered text.
//
// Links are the href targets of anchor elements, resolved against the page
// URL with standard relative reference resolution.
package extract
