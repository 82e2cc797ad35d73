// Package crawler provides the breadth-first web crawler.
//
// # Architecture
//
// The Spider type drives the crawl. It owns no network code itself: pages
// are retrieved through a Fetcher and turned into words and links by the
// extract package. All per-crawl state (pending queue and visited set) lives
// in a value created by each Crawl call, so one Spider can run many crawls.
//
// # Traversal rules
//
//   - Breadth-first: every depth-k page is fetched before any depth-k+1 page
//   - A URL is fetched at most once per crawl; the visited check happens
//     when a task is dequeued, so duplicate queue entries collapse to one fetch
//   - Links are followed only from pages whose depth is below the limit
//   - Only links whose host (including any port) equals the start URL's host
//     are followed; subdomains count as different hosts
//   - A failed fetch is logged and skipped, never retried
//
// # Usage
//
//	spider := crawler.NewSpider(fetcher.New(client), crawler.WithMaxDepth(2))
//	result, err := spider.Crawl(ctx, "https://example.com/")
//
// The crawler does not read robots.txt, does not throttle, and never fetches
// in parallel.
package crawler
