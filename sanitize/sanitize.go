// Package sanitize reduces scraped WordPress markup to a closed allow-list
// of tags and attributes. Sanitize is pure, total and idempotent: admin
// surfaces may re-save already-sanitized content, so sanitizing a second
// time must return the input unchanged.
package sanitize

import (
	"regexp"
	"strings"
)

// Config customizes a Policy. Zero-value fields fall back to the defaults
// used for the legacy site.
type Config struct {
	AllowedTags  []string
	AllowedAttrs map[string][]string
	NoiseClasses []string // class-name substrings whose wrapper divs are dropped with content
	LegacyOrigin string   // absolute origin rewritten to a relative prefix
}

// Policy is an immutable, compiled sanitization configuration.
type Policy struct {
	allowedTags  map[string]bool
	allowedAttrs map[string]map[string]bool
	noiseRes     []*regexp.Regexp
	legacyOrigin string
}

// DefaultAllowedTags is the closed set of tags that survive sanitization.
var DefaultAllowedTags = []string{
	"p", "br", "strong", "b", "em", "i", "u", "a",
	"ul", "ol", "li",
	"h2", "h3", "h4", "h5", "h6",
	"blockquote", "pre", "code",
	"table", "thead", "tbody", "tr", "th", "td",
	"img", "figure", "figcaption",
	"hr", "sup", "sub", "span",
}

// DefaultAllowedAttrs is the per-tag attribute allow-list. Tags not listed
// keep no attributes at all.
var DefaultAllowedAttrs = map[string][]string{
	"a":   {"href", "title", "target", "rel"},
	"img": {"src", "alt", "width", "height", "loading"},
	"td":  {"colspan", "rowspan"},
	"th":  {"colspan", "rowspan"},
}

// DefaultNoiseClasses are WordPress wrapper classes whose elements carry no
// content: share widgets, block-editor button groups, tracking containers.
var DefaultNoiseClasses = []string{"sharedaddy", "wp-block-buttons", "sd-content"}

// New compiles a Policy from cfg.
func New(cfg Config) *Policy {
	tags := cfg.AllowedTags
	if tags == nil {
		tags = DefaultAllowedTags
	}
	attrs := cfg.AllowedAttrs
	if attrs == nil {
		attrs = DefaultAllowedAttrs
	}
	classes := cfg.NoiseClasses
	if classes == nil {
		classes = DefaultNoiseClasses
	}

	p := &Policy{
		allowedTags:  make(map[string]bool, len(tags)),
		allowedAttrs: make(map[string]map[string]bool, len(attrs)),
		legacyOrigin: cfg.LegacyOrigin,
	}
	for _, t := range tags {
		p.allowedTags[strings.ToLower(t)] = true
	}
	for tag, names := range attrs {
		set := make(map[string]bool, len(names))
		for _, n := range names {
			set[strings.ToLower(n)] = true
		}
		p.allowedAttrs[strings.ToLower(tag)] = set
	}
	for _, c := range classes {
		p.noiseRes = append(p.noiseRes, regexp.MustCompile(
			`(?is)<div[^>]*class="[^"]*`+regexp.QuoteMeta(c)+`[^"]*"[^>]*>.*?</div>`))
	}
	return p
}

// Default returns the policy for the legacy site with the given origin.
func Default(legacyOrigin string) *Policy {
	return New(Config{LegacyOrigin: legacyOrigin})
}

var (
	reComment     = regexp.MustCompile(`(?s)<!--.*?-->`)
	reDeclaration = regexp.MustCompile(`(?s)<![^>]*>`)
	reScript      = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script>`)
	reStyle       = regexp.MustCompile(`(?is)<style\b[^>]*>.*?</style>`)
	reNoscript    = regexp.MustCompile(`(?is)<noscript\b[^>]*>.*?</noscript>`)
	reHeaderEl    = regexp.MustCompile(`(?is)<header\b[^>]*>.*?</header>`)
	reAuthor      = regexp.MustCompile(`(?is)<div\s+itemprop="author"[^>]*>.*?</div>`)
	rePublisher   = regexp.MustCompile(`(?is)<div\s+itemprop="publisher"[^>]*>.*?</div>`)
	reMeta        = regexp.MustCompile(`(?is)<meta[^>]*/?>`)
	reArticleBody = regexp.MustCompile(`(?is)<div\s+itemprop="articleBody"[^>]*>(.*?)</div>`)
	reEntryWrap   = regexp.MustCompile(`(?is)<div[^>]*class="[^"]*entry-content[^"]*"[^>]*>(.*?)</div>`)
	reBareDate    = regexp.MustCompile(`(?m)^\s*\d{2}-\d{2}-\d{4}\s*`)
	reEmptyP      = regexp.MustCompile(`(?i)<p>\s*(?:&nbsp;|\x{00A0})?\s*</p>`)
	reNewlines    = regexp.MustCompile(`\n{3,}`)

	// A tag token: optional /, a name, attributes up to the closing bracket.
	reTag  = regexp.MustCompile(`(?s)<(/?)([a-zA-Z][a-zA-Z0-9]*)([^>]*)>`)
	reAttr = regexp.MustCompile(`([a-zA-Z][a-zA-Z0-9_:-]*)\s*=\s*(?:"([^"]*)"|'([^']*)')`)
)

// Sanitize reduces html to the policy's allow-list. It never fails; empty
// input yields an empty string. The cleanup passes run in a fixed order;
// later passes assume earlier ones already happened.
func (p *Policy) Sanitize(html string) string {
	if html == "" {
		return ""
	}

	// 1. Comments and stray declarations.
	html = reComment.ReplaceAllString(html, "")
	html = reDeclaration.ReplaceAllString(html, "")

	// 2. Executable and presentational blocks, including content.
	html = reScript.ReplaceAllString(html, "")
	html = reStyle.ReplaceAllString(html, "")
	html = reNoscript.ReplaceAllString(html, "")

	// 3. Known noise wrappers, dropped entirely.
	for _, re := range p.noiseRes {
		html = re.ReplaceAllString(html, "")
	}
	html = reHeaderEl.ReplaceAllString(html, "")
	html = reAuthor.ReplaceAllString(html, "")
	html = rePublisher.ReplaceAllString(html, "")
	html = reMeta.ReplaceAllString(html, "")

	// 4. A structured article body supersedes everything around it.
	if m := reArticleBody.FindStringSubmatch(html); m != nil {
		html = m[1]
	}
	html = reEntryWrap.ReplaceAllString(html, "$1")
	html = reBareDate.ReplaceAllString(html, "")

	// 5. Strip tags outside the allow-list, keeping their text content.
	// Removing a tag can join surrounding text into a new tag token, so
	// iterate to a fixed point.
	for {
		stripped := p.stripDisallowed(html)
		if stripped == html {
			break
		}
		html = stripped
	}

	// 6. Filter attributes on surviving tags.
	html = p.filterAttrs(html)

	// 7. Empty paragraphs, to a fixed point (removal can empty a parent).
	for {
		cleaned := reEmptyP.ReplaceAllString(html, "")
		if cleaned == html {
			break
		}
		html = cleaned
	}

	// 8. Collapse runs of blank lines.
	html = reNewlines.ReplaceAllString(html, "\n\n")

	// 9. Legacy no-op attribute and absolute internal links.
	html = strings.ReplaceAll(html, ` target="_self"`, "")
	if p.legacyOrigin != "" {
		for strings.Contains(html, p.legacyOrigin) {
			html = strings.ReplaceAll(html, p.legacyOrigin, "")
		}
	}

	// 10. Outer whitespace.
	return strings.TrimSpace(html)
}

func (p *Policy) stripDisallowed(html string) string {
	return reTag.ReplaceAllStringFunc(html, func(tag string) string {
		m := reTag.FindStringSubmatch(tag)
		if p.allowedTags[strings.ToLower(m[2])] {
			return tag
		}
		return ""
	})
}

func (p *Policy) filterAttrs(html string) string {
	return reTag.ReplaceAllStringFunc(html, func(tag string) string {
		m := reTag.FindStringSubmatch(tag)
		closing, name, rest := m[1] != "", strings.ToLower(m[2]), m[3]
		if closing {
			return "</" + name + ">"
		}

		var b strings.Builder
		b.WriteByte('<')
		b.WriteString(name)
		allowed := p.allowedAttrs[name]
		for _, am := range reAttr.FindAllStringSubmatch(rest, -1) {
			key := strings.ToLower(am[1])
			val := am[2]
			if val == "" {
				val = am[3]
			}
			if strings.HasPrefix(key, "on") || !allowed[key] {
				continue
			}
			switch {
			case key == "href" && hasScheme(val, "javascript:"):
				val = "#"
			case key == "src" && hasScheme(val, "data:") && !hasScheme(val, "data:image"):
				val = ""
			}
			b.WriteByte(' ')
			b.WriteString(key)
			b.WriteString(`="`)
			b.WriteString(val)
			b.WriteByte('"')
		}
		b.WriteByte('>')
		return b.String()
	})
}

func hasScheme(val, scheme string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(val)), scheme)
}

// StripTags removes all tag markup, keeping text content. Entities are left
// as-is.
func StripTags(html string) string {
	html = reComment.ReplaceAllString(html, "")
	html = reDeclaration.ReplaceAllString(html, "")
	for {
		stripped := reTag.ReplaceAllString(html, "")
		if stripped == html {
			return html
		}
		html = stripped
	}
}

var reSpaces = regexp.MustCompile(`\s+`)

// CollapseWhitespace folds runs of whitespace into single spaces and trims.
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(s, " "))
}

var reLeadingDate = regexp.MustCompile(`^\d{2}-\d{2}-\d{4}\s*`)

// Excerpt derives a plain-text excerpt from sanitized body HTML: tags
// stripped, whitespace collapsed, a leading duplicate of the title dropped,
// capped at limit runes with an ellipsis marker.
func Excerpt(body, title string, limit int) string {
	text := CollapseWhitespace(StripTags(body))
	if title != "" && strings.HasPrefix(text, title) {
		text = strings.TrimSpace(strings.TrimPrefix(text, title))
	}
	text = reLeadingDate.ReplaceAllString(text, "")
	runes := []rune(text)
	if limit > 3 && len(runes) > limit {
		text = string(runes[:limit-3]) + "..."
	}
	return text
}

// Rewrite maps a legacy internal href prefix to its new route.
type Rewrite struct {
	From string
	To   string
}

// RewriteLinks applies href prefix rewrites in order.
func RewriteLinks(html string, rules []Rewrite) string {
	for _, r := range rules {
		html = strings.ReplaceAll(html, `href="`+r.From, `href="`+r.To)
	}
	return html
}
