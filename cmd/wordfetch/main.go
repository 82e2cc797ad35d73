// Package main provides the entry point for the wordfetch CLI.
//
// wordfetch crawls a website breadth-first from a seed URL, ranks the words
// it finds by frequency, and optionally derives password candidates from the
// most frequent ones.
//
// Usage:
//
//	wordfetch crawl https://example.com
//	wordfetch crawl -u https://example.com -d 2 -l 5 -m -o words.txt
//
// See --help for all available options.
package main

// main is the entry point for wordfetch.
func main() {
	Execute()
}
