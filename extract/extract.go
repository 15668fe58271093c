// Package extract locates the meaningful body of a scraped legacy page.
// The markup shape varies per WordPress theme, so extraction tries an
// ordered list of locator strategies and falls back to a fixed fragment
// instead of failing.
package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
)

// Fallback is returned when no locator matches anything in the document.
const Fallback = "<p>Content niet beschikbaar.</p>"

// Untitled is the sentinel title for pages with no recoverable heading.
const Untitled = "Untitled"

// Strategy is one way of locating the main content region. Extract returns
// the inner markup of the region and whether the strategy matched.
type Strategy struct {
	Name    string
	Extract func(doc *goquery.Document, raw string) (string, bool)
}

// Selector returns a Strategy that matches a CSS selector and yields the
// first match's inner HTML.
func Selector(name, sel string) Strategy {
	return Strategy{
		Name: name,
		Extract: func(doc *goquery.Document, _ string) (string, bool) {
			found := doc.Find(sel)
			if found.Length() == 0 {
				return "", false
			}
			inner, err := found.First().Html()
			if err != nil {
				return "", false
			}
			return inner, true
		},
	}
}

// Readability returns a Strategy backed by the go-readability heuristic,
// for themes none of the known selectors cover.
func Readability(pageURL string) Strategy {
	base, _ := url.Parse(pageURL)
	return Strategy{
		Name: "readability",
		Extract: func(_ *goquery.Document, raw string) (string, bool) {
			article, err := readability.FromReader(strings.NewReader(raw), base)
			if err != nil || strings.TrimSpace(article.Content) == "" {
				return "", false
			}
			return article.Content, true
		},
	}
}

// DefaultStrategies lists the known legacy markup shapes in priority order.
// Adding a new shape means adding one entry here.
func DefaultStrategies() []Strategy {
	return []Strategy{
		Selector("entry-content", ".entry-content"),
		Selector("post-content", ".post-content"),
		Selector("content-area", "#content .content-area"),
		Selector("article", "article"),
		Selector("page-content", ".page-content"),
		Selector("main", "main"),
	}
}

// Extractor finds main content, titles and listing segments in scraped
// documents. It never returns errors: malformed input degrades to the
// fallback fragment or the Untitled sentinel.
type Extractor struct {
	strategies      []Strategy
	headingDenylist []string
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithStrategies replaces the default locator list.
func WithStrategies(strategies []Strategy) Option {
	return func(e *Extractor) { e.strategies = strategies }
}

// WithReadability appends the readability heuristic after the selector
// strategies. Off by default so the fixed fallback stays deterministic.
func WithReadability(pageURL string) Option {
	return func(e *Extractor) { e.strategies = append(e.strategies, Readability(pageURL)) }
}

// WithHeadingDenylist sets the non-article headings rejected in listing mode.
func WithHeadingDenylist(headings []string) Option {
	return func(e *Extractor) { e.headingDenylist = headings }
}

// New creates an Extractor with the default strategies.
func New(opts ...Option) *Extractor {
	e := &Extractor{strategies: DefaultStrategies()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// MainContent returns the inner markup of the page's main content region.
// Framework noise is stripped first; a microdata article-body container
// supersedes every locator. When nothing matches, the fixed Fallback
// fragment is returned.
func (e *Extractor) MainContent(rawHTML string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return Fallback
	}
	stripNoise(doc)

	if body := doc.Find(`[itemprop="articleBody"]`); body.Length() > 0 {
		if inner, err := body.First().Html(); err == nil {
			return inner
		}
	}

	for _, st := range e.strategies {
		if inner, ok := st.Extract(doc, rawHTML); ok {
			return inner
		}
	}
	return Fallback
}

// Title returns the document title: a title-like heading class first, then
// any h1, then the <title> element with its " - sitename" suffix stripped.
func (e *Extractor) Title(rawHTML string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return Untitled
	}
	for _, sel := range []string{"h1.entry-title", "h1.page-title", "header h1", "h1"} {
		found := doc.Find(sel)
		if found.Length() == 0 {
			continue
		}
		if t := strings.TrimSpace(found.First().Text()); t != "" {
			return t
		}
	}
	if found := doc.Find("title"); found.Length() > 0 {
		t := found.First().Text()
		// Cut at the first " - ": legacy titles put the site name after it.
		// A page title containing " - " itself loses its tail here, which
		// matches how these titles have always been displayed.
		if i := strings.Index(t, " - "); i >= 0 {
			t = t[:i]
		}
		if t = strings.TrimSpace(t); t != "" {
			return t
		}
	}
	return Untitled
}

func stripNoise(doc *goquery.Document) {
	doc.Find("script, style, noscript").Remove()
	doc.Find(`[itemprop="author"], [itemprop="publisher"]`).Remove()
	for _, n := range doc.Nodes {
		removeComments(n)
	}
}

func removeComments(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.CommentNode {
			n.RemoveChild(c)
		} else {
			removeComments(c)
		}
		c = next
	}
}

// Segment is one candidate post carved out of a listing page: its heading
// text and the markup up to (excluding) the next same-level heading.
type Segment struct {
	Heading string
	HTML    string
}

var headingLevels = []string{"h1", "h2", "h3", "h4"}

// ListingSegments splits an archive page into candidate posts by heading
// boundaries. Segments whose heading is on the denylist or shorter than 5
// characters are rejected as navigation/pagination labels.
func (e *Extractor) ListingSegments(rawHTML string) []Segment {
	content := e.MainContent(rawHTML)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil
	}
	body := doc.Find("body")
	if body.Length() == 0 {
		return nil
	}
	root := body.Get(0)

	level := boundaryLevel(root, doc)
	if level == "" {
		return nil
	}

	var segments []Segment
	var current *Segment
	var buf strings.Builder
	flush := func() {
		if current == nil {
			return
		}
		current.HTML = strings.TrimSpace(buf.String())
		if e.acceptHeading(current.Heading) {
			segments = append(segments, *current)
		}
		current = nil
		buf.Reset()
	}

	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == level {
			flush()
			current = &Segment{Heading: strings.TrimSpace(textContent(c))}
			continue
		}
		if current != nil {
			html.Render(&buf, c)
		}
	}
	flush()
	return segments
}

// boundaryLevel picks the heading level that delimits posts: the first
// top-level heading, falling back to the shallowest heading level present
// anywhere in the fragment.
func boundaryLevel(root *html.Node, doc *goquery.Document) string {
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		for _, h := range headingLevels {
			if c.Data == h {
				return h
			}
		}
	}
	for _, h := range headingLevels {
		if doc.Find(h).Length() > 0 {
			return h
		}
	}
	return ""
}

func (e *Extractor) acceptHeading(heading string) bool {
	if len([]rune(heading)) < 5 {
		return false
	}
	for _, d := range e.headingDenylist {
		if strings.EqualFold(strings.TrimSpace(d), heading) {
			return false
		}
	}
	return true
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(textContent(c))
	}
	return b.String()
}
