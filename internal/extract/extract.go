package extract

import (
	"iter"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// wordPattern matches one word token: a maximal run of Unicode letters,
// Unicode digits and underscore.
var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// skippedElements hold content that is never rendered as page text.
var skippedElements = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Template: true,
}

// blockElements start on a new line when rendered. Their boundaries separate
// words so that "<p>foo</p><p>bar</p>" yields two tokens, while inline markup
// such as "foo<b>bar</b>" still yields one.
var blockElements = map[atom.Atom]bool{
	atom.Address: true, atom.Article: true, atom.Aside: true, atom.Blockquote: true,
	atom.Br: true, atom.Dd: true, atom.Div: true, atom.Dl: true, atom.Dt: true,
	atom.Fieldset: true, atom.Figcaption: true, atom.Figure: true, atom.Footer: true,
	atom.Form: true, atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true,
	atom.H5: true, atom.H6: true, atom.Header: true, atom.Hr: true, atom.Li: true,
	atom.Main: true, atom.Nav: true, atom.Ol: true, atom.Option: true, atom.P: true,
	atom.Pre: true, atom.Section: true, atom.Table: true, atom.Td: true, atom.Th: true,
	atom.Title: true, atom.Tr: true, atom.Ul: true,
}

// Document is a parsed page.
// Parse once and ask for words and links separately.
type Document struct {
	root *html.Node
}

// Parse parses page content.
// It never fails: content that is not HTML is treated as text.
func Parse(content string) *Document {
	root, err := html.Parse(strings.NewReader(content))
	if err != nil {
		// html.Parse only fails on reader errors, which strings.Reader never returns.
		root = &html.Node{Type: html.DocumentNode}
		root.AppendChild(&html.Node{Type: html.TextNode, Data: content})
	}
	return &Document{root: root}
}

// Text returns the rendered text of the document.
func (d *Document) Text() string {
	var sb strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			sb.WriteString(n.Data)
			return
		case html.CommentNode:
			return
		case html.ElementNode:
			if skippedElements[n.DataAtom] {
				return
			}
			if blockElements[n.DataAtom] {
				sb.WriteByte('\n')
				defer sb.WriteByte('\n')
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(d.root)
	return sb.String()
}

// Title returns the trimmed content of the first <title> element.
func (d *Document) Title() string {
	var title string

	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.DataAtom == atom.Title {
			if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
				title = strings.TrimSpace(n.FirstChild.Data)
			}
			return true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}

	walk(d.root)
	return title
}

// Words returns the word tokens of the rendered text in document order.
// The sequence is produced lazily from a single pass over the text.
func (d *Document) Words() iter.Seq[string] {
	return tokens(d.Text())
}

// Links returns the absolute targets of all anchor href attributes,
// resolved against baseURL. Each target appears once, in document order.
// References that cannot be parsed are dropped, and an unparsable baseURL
// yields no links.
func (d *Document) Links(baseURL string) []string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return []string{}
	}

	links := make([]string, 0)
	seen := make(map[string]bool)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.A {
			if href, ok := getAttr(n, "href"); ok {
				if resolved, ok := resolve(base, href); ok && !seen[resolved] {
					seen[resolved] = true
					links = append(links, resolved)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(d.root)
	return links
}

// Words parses content and returns its word tokens.
func Words(content string) iter.Seq[string] {
	return Parse(content).Words()
}

// Links parses content and returns its anchor targets resolved against baseURL.
func Links(content, baseURL string) []string {
	return Parse(content).Links(baseURL)
}

// tokens yields the word matches of text one at a time.
func tokens(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		rest := text
		for {
			loc := wordPattern.FindStringIndex(rest)
			if loc == nil {
				return
			}
			if !yield(rest[loc[0]:loc[1]]) {
				return
			}
			rest = rest[loc[1]:]
		}
	}
}

// resolve resolves href against base.
// Surrounding whitespace is stripped first, as browsers do.
func resolve(base *url.URL, href string) (string, bool) {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", false
	}
	return base.ResolveReference(ref).String(), true
}

// getAttr retrieves an attribute value from an HTML node.
// The boolean reports whether the attribute is present, even if empty.
func getAttr(n *html.Node, key string) (string, bool) {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val, true
		}
	}
	return "", false
}
