package wpmigrate

import (
	"fmt"
	"html"
	"log"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	reImgTag = regexp.MustCompile(`(?i)<img[^>]+src=["']([^"']+)["'][^>]*>`)
	reImgAlt = regexp.MustCompile(`(?i)alt=["']([^"']*)["']`)
)

// Relocator copies binary assets referenced by scraped markup into local
// storage. Image references are rewritten in place; PDFs are downloaded
// into a separate bucket and tracked as RelocatedAsset records. Every
// failure is per-asset: the original reference is left untouched and the
// rest of the fragment is still processed.
type Relocator struct {
	fetcher       *Fetcher
	storage       Storage
	baseURL       string
	legacyHost    string
	maxImageWidth int
}

// NewRelocator creates a Relocator for the configured legacy origin.
func NewRelocator(cfg Config, fetcher *Fetcher, storage Storage) *Relocator {
	host := ""
	if u, err := url.Parse(cfg.BaseURL); err == nil {
		host = u.Host
	}
	return &Relocator{
		fetcher:       fetcher,
		storage:       storage,
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		legacyHost:    host,
		maxImageWidth: cfg.MaxImageWidth,
	}
}

// RelocateImages downloads every qualifying <img> reference in the
// fragment into bucket and rewrites the tag to the new local URL, keeping
// only a re-escaped alt text. Non-qualifying or failing references pass
// through unchanged.
func (r *Relocator) RelocateImages(fragment, slug, bucket string) string {
	return reImgTag.ReplaceAllStringFunc(fragment, func(tag string) string {
		src := reImgTag.FindStringSubmatch(tag)[1]
		resolved, ok := r.resolveAssetURL(src)
		if !ok {
			return tag
		}

		data, err := r.fetcher.Fetch(resolved)
		if err != nil {
			log.Printf("    image skipped: %v", err)
			return tag
		}

		ext := urlExtension(resolved)
		if ext == "" {
			ext = "jpg"
		}
		if normalized, newExt, changed := NormalizeImage(data, r.maxImageWidth); changed {
			data, ext = normalized, newExt
		}

		path := bucket + "/" + Slugify(slug) + "-" + randomToken(6) + "." + ext
		if err := r.storage.Put(path, data); err != nil {
			log.Printf("    image skipped: %v", err)
			return tag
		}

		alt := ""
		if m := reImgAlt.FindStringSubmatch(tag); m != nil {
			alt = m[1]
		}
		return `<img src="` + html.EscapeString(r.storage.URL(path)) + `" alt="` + html.EscapeString(alt) + `">`
	})
}

// resolveAssetURL normalizes an image reference against the legacy origin
// and reports whether it qualifies for relocation. Data URIs, SVGs,
// unresolvable references and foreign hosts pass through untouched.
func (r *Relocator) resolveAssetURL(src string) (string, bool) {
	if strings.HasPrefix(src, "data:") || strings.HasSuffix(strings.ToLower(src), ".svg") {
		return "", false
	}
	switch {
	case strings.HasPrefix(src, "//"):
		src = "https:" + src
	case strings.HasPrefix(src, "/"):
		src = r.baseURL + src
	case !strings.HasPrefix(src, "http"):
		return "", false
	}
	// Only relocate assets hosted by the legacy site or its uploads CDN;
	// unrelated third-party images stay where they are.
	if !strings.Contains(src, r.legacyHost) && !strings.Contains(src, "wp-content") {
		return "", false
	}
	return src, true
}

// CollectPDFLinks returns the PDF hrefs referenced by a fragment, in
// document order.
func CollectPDFLinks(fragment string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return nil
	}
	var links []string
	doc.Find(`a[href$=".pdf"]`).Each(func(_ int, sel *goquery.Selection) {
		if href, ok := sel.Attr("href"); ok && href != "" {
			links = append(links, href)
		}
	})
	return links
}

// RelocatePDF downloads one PDF link into bucket and returns its metadata
// record. Deduplication across documents is the caller's job: the same URL
// must be passed here at most once per run.
func (r *Relocator) RelocatePDF(href, bucket string) (RelocatedAsset, error) {
	full := href
	if !strings.HasPrefix(full, "http") {
		full = r.baseURL + "/" + strings.TrimLeft(href, "/")
	}

	data, err := r.fetcher.Fetch(full)
	if err != nil {
		return RelocatedAsset{}, err
	}

	name := urlBasename(full, "document.pdf")
	path := bucket + "/" + name
	if err := r.storage.Put(path, data); err != nil {
		return RelocatedAsset{}, fmt.Errorf("store %s: %w", href, err)
	}
	return RelocatedAsset{
		Path:         path,
		OriginalURL:  href,
		OriginalName: name,
		MimeType:     "application/pdf",
		Size:         len(data),
	}, nil
}
