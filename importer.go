package wpmigrate

import (
	"log"
	"path"
	"regexp"
	"strconv"
	"time"

	"github.com/eringen/wpmigrate/extract"
	"github.com/eringen/wpmigrate/sanitize"
)

// RunStats summarizes a migration run for the operator.
type RunStats struct {
	PagesImported   int
	PostsImported   int
	PostsSkipped    int
	LogosDownloaded int
	PDFsDownloaded  int
}

// Importer drives the migration end to end: fetch, extract, relocate,
// sanitize, persist. Items are processed strictly one at a time; a failure
// is contained at the item boundary and never aborts the run.
type Importer struct {
	cfg       Config
	fetcher   *Fetcher
	store     *Store
	storage   Storage
	extractor *extract.Extractor
	policy    *sanitize.Policy
	relocator *Relocator
}

// Option configures an Importer.
type Option func(*Importer)

// WithExtractor replaces the default content extractor.
func WithExtractor(e *extract.Extractor) Option {
	return func(im *Importer) { im.extractor = e }
}

// WithFetcher replaces the default fetcher.
func WithFetcher(f *Fetcher) Option {
	return func(im *Importer) {
		im.fetcher = f
		im.relocator = NewRelocator(im.cfg, f, im.storage)
	}
}

// NewImporter wires an Importer from its collaborators.
func NewImporter(cfg Config, store *Store, storage Storage, opts ...Option) *Importer {
	fetcher := NewFetcher(cfg)
	im := &Importer{
		cfg:     cfg,
		fetcher: fetcher,
		store:   store,
		storage: storage,
		extractor: extract.New(
			extract.WithHeadingDenylist(cfg.ListingHeadingDenylist),
		),
		policy: sanitize.New(sanitize.Config{
			NoiseClasses: cfg.NoiseClasses,
			LegacyOrigin: cfg.BaseURL,
		}),
		relocator: NewRelocator(cfg, fetcher, storage),
	}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// Run executes the whole migration: pages, posts, archives, member logos,
// PDFs. It returns an error only for unrecoverable setup failures before
// the worklist starts; per-item failures are logged and counted.
func (im *Importer) Run() (RunStats, error) {
	var stats RunStats

	for _, dir := range []string{im.cfg.PostsDir, im.cfg.UploadsDir, im.cfg.LogosDir} {
		if err := im.storage.MakeDirectory(dir); err != nil {
			return stats, err
		}
	}

	im.importPages(&stats)
	im.importPosts(&stats)
	im.importArchives(&stats)
	im.downloadLogos(&stats)
	im.downloadPDFs(&stats)

	return stats, nil
}

func (im *Importer) importPages(stats *RunStats) {
	log.Println("Importing pages...")

	// Parent page grouping the about-section children.
	parent := Document{
		Slug:        "over-ons",
		Kind:        KindPage,
		Title:       "Over ons",
		Content:     "<p>Informatie over de branchevereniging Nederland Crowdfunding.</p>",
		Status:      StatusPublished,
		SortOrder:   2,
		PublishedAt: time.Now(),
	}
	if err := im.store.SaveDocument(parent); err != nil {
		log.Printf("  warning: save parent page: %v", err)
	}

	for _, pg := range im.cfg.Pages {
		pageURL := im.cfg.BaseURL + pg.Path

		raw, err := im.fetcher.FetchHTML(pageURL)
		if err != nil {
			log.Printf("  Skipped %s: %v", pg.Slug, err)
			continue
		}

		content := im.extractor.MainContent(raw)
		content = sanitize.RewriteLinks(content, im.rewrites())
		content = im.policy.Sanitize(content)

		doc := Document{
			Slug:        pg.Slug,
			Kind:        KindPage,
			Title:       im.extractor.Title(raw),
			SourceURL:   pageURL,
			Content:     content,
			Status:      StatusPublished,
			PublishedAt: time.Now(),
			ParentSlug:  pg.ParentSlug,
			SortOrder:   pg.SortOrder,
		}
		if err := im.store.SaveDocument(doc); err != nil {
			log.Printf("  warning: %v", err)
			continue
		}
		stats.PagesImported++
		log.Printf("  Imported page: %s", doc.Title)
	}

	// Draft placeholder until the gedragscode is republished.
	placeholder := Document{
		Slug:       "gedragscode",
		Kind:       KindPage,
		Title:      "Gedragscode",
		Content:    "<p>De gedragscode wordt binnenkort gepubliceerd.</p>",
		Status:     StatusDraft,
		ParentSlug: "over-ons",
		SortOrder:  3,
	}
	if err := im.store.SaveDocument(placeholder); err != nil {
		log.Printf("  warning: save placeholder: %v", err)
	}
}

func (im *Importer) importPosts(stats *RunStats) {
	log.Println("Importing blog posts...")

	for _, urlPath := range im.cfg.BlogPaths {
		postURL := im.cfg.BaseURL + "/" + urlPath + "/"
		log.Printf("  Scraping: %s", postURL)

		raw, err := im.fetcher.FetchHTML(postURL)
		if err != nil {
			log.Printf("  warning: %v", err)
			stats.PostsSkipped++
			continue
		}

		title := im.extractor.Title(raw)
		content := im.extractor.MainContent(raw)
		slug := im.deriveSlug(urlPath, title)

		if im.importDocument(slug, title, postURL, publishedAtFromPath(urlPath), content) {
			stats.PostsImported++
		} else {
			stats.PostsSkipped++
		}
	}

	log.Printf("Blog posts imported: %d", stats.PostsImported)
}

// importArchives handles paginated archive pages holding many short posts
// under heading boundaries, for content that never had its own permalink.
func (im *Importer) importArchives(stats *RunStats) {
	if len(im.cfg.ArchivePaths) == 0 {
		return
	}
	log.Println("Importing archive pages...")

	for _, urlPath := range im.cfg.ArchivePaths {
		archiveURL := im.cfg.BaseURL + "/" + urlPath + "/"
		log.Printf("  Scraping: %s", archiveURL)

		raw, err := im.fetcher.FetchHTML(archiveURL)
		if err != nil {
			log.Printf("  warning: %v", err)
			continue
		}

		for i, seg := range im.extractor.ListingSegments(raw) {
			slug := TruncateRunes(Slugify(seg.Heading), im.cfg.MaxSlugLen)
			// Segments share the archive page's URL, so key each one by its
			// position too. Without this, two segments with the same heading
			// would collapse into one record instead of getting a suffix.
			sourceURL := archiveURL + "#" + strconv.Itoa(i)
			if im.importDocument(slug, seg.Heading, sourceURL, publishedAtFromPath(urlPath), seg.HTML) {
				stats.PostsImported++
			} else {
				stats.PostsSkipped++
			}
		}
	}
}

// importDocument runs the shared tail of the post pipeline: relocate
// assets, sanitize, validate length, derive the excerpt and upsert. It
// reports whether the document was persisted; rejected documents leave any
// previously stored record untouched.
func (im *Importer) importDocument(slug, title, sourceURL string, publishedAt time.Time, content string) bool {
	content = im.relocator.RelocateImages(content, slug, im.cfg.PostsDir)
	content = sanitize.RewriteLinks(content, im.rewrites())
	content = im.policy.Sanitize(content)

	if len([]rune(content)) < im.cfg.MinContentLen {
		log.Printf("  warning: content too short, skipping %s (%s)", slug, sourceURL)
		return false
	}

	slug, err := im.store.UniqueSlug(slug, sourceURL)
	if err != nil {
		log.Printf("  warning: resolve slug %s: %v", slug, err)
		return false
	}

	doc := Document{
		Slug:        slug,
		Kind:        KindPost,
		Title:       title,
		SourceURL:   sourceURL,
		Excerpt:     sanitize.Excerpt(content, title, im.cfg.ExcerptLen),
		Content:     content,
		Status:      StatusPublished,
		PublishedAt: publishedAt,
	}
	if err := im.store.SaveDocument(doc); err != nil {
		log.Printf("  warning: %v", err)
		return false
	}
	log.Printf("    Saved: %s (%s)", title, doc.PublishedAt.Format("2006-01-02"))
	return true
}

func (im *Importer) downloadLogos(stats *RunStats) {
	if len(im.cfg.Logos) == 0 {
		return
	}
	log.Println("Downloading member logos...")

	for _, lg := range im.cfg.Logos {
		if a, err := im.store.AssetByOriginalURL(lg.URL); err == nil && im.storage.Exists(a.Path) {
			log.Printf("  Already exists: %s", lg.Name)
			continue
		}

		data, err := im.fetcher.Fetch(lg.URL)
		if err != nil {
			log.Printf("  warning: logo %s: %v", lg.Name, err)
			continue
		}

		ext := urlExtension(lg.URL)
		if ext == "" {
			ext = "png"
		}
		assetPath := im.cfg.LogosDir + "/" + Slugify(lg.Name) + "." + ext
		if err := im.storage.Put(assetPath, data); err != nil {
			log.Printf("  warning: logo %s: %v", lg.Name, err)
			continue
		}
		if err := im.store.SaveAsset(RelocatedAsset{
			Path:         assetPath,
			OriginalURL:  lg.URL,
			OriginalName: urlBasename(lg.URL, Slugify(lg.Name)+"."+ext),
			MimeType:     mimeForExtension(ext),
			Size:         len(data),
		}); err != nil {
			log.Printf("  warning: logo %s: %v", lg.Name, err)
			continue
		}
		stats.LogosDownloaded++
		log.Printf("  Downloaded: %s -> %s", lg.Name, assetPath)
	}
}

// downloadPDFs scans every stored document for PDF links and downloads
// each distinct URL once across the whole run.
func (im *Importer) downloadPDFs(stats *RunStats) {
	log.Println("Downloading PDF files...")

	docs, err := im.store.AllDocuments()
	if err != nil {
		log.Printf("  warning: list documents: %v", err)
		return
	}

	seen := make(map[string]bool)
	var ordered []string
	for _, d := range docs {
		for _, href := range CollectPDFLinks(d.Content) {
			if !seen[href] {
				seen[href] = true
				ordered = append(ordered, href)
			}
		}
	}

	for _, href := range ordered {
		if a, err := im.store.AssetByOriginalURL(href); err == nil && im.storage.Exists(a.Path) {
			continue
		}
		asset, err := im.relocator.RelocatePDF(href, im.cfg.UploadsDir)
		if err != nil {
			log.Printf("  warning: %v", err)
			continue
		}
		if err := im.store.SaveAsset(asset); err != nil {
			log.Printf("  warning: %v", err)
			continue
		}
		stats.PDFsDownloaded++
		log.Printf("  Downloaded: %s", asset.OriginalName)
	}
}

// Resanitize re-runs the sanitizer and excerpt derivation over every
// stored document. Because sanitization is idempotent this is a no-op on
// an already-clean store; it exists for policy updates and imports made
// before a rule was added. It returns the number of changed documents.
func (im *Importer) Resanitize() (int, error) {
	docs, err := im.store.AllDocuments()
	if err != nil {
		return 0, err
	}

	changed := 0
	for _, d := range docs {
		content := im.policy.Sanitize(d.Content)
		excerpt := sanitize.Excerpt(content, d.Title, im.cfg.ExcerptLen)
		if content == d.Content && excerpt == d.Excerpt {
			continue
		}
		d.Content, d.Excerpt = content, excerpt
		if err := im.store.SaveDocument(d); err != nil {
			return changed, err
		}
		changed++
	}
	return changed, nil
}

// deriveSlug takes the URL path basename, falling back to a truncated
// title slug when the basename yields something unusably short.
func (im *Importer) deriveSlug(urlPath, title string) string {
	slug := Slugify(path.Base(urlPath))
	if len(slug) < 3 {
		slug = TruncateRunes(Slugify(title), im.cfg.MaxSlugLen)
	}
	return slug
}

func (im *Importer) rewrites() []sanitize.Rewrite {
	rules := make([]sanitize.Rewrite, len(im.cfg.Rewrites))
	for i, r := range im.cfg.Rewrites {
		rules[i] = sanitize.Rewrite{From: r.From, To: r.To}
	}
	return rules
}

var reDatePath = regexp.MustCompile(`^(\d{4})/(\d{2})/(\d{2})/`)

// publishedAtFromPath reads a YYYY/MM/DD prefix from a legacy permalink
// path, normalized to noon. Paths without a date fall back to now.
func publishedAtFromPath(urlPath string) time.Time {
	m := reDatePath.FindStringSubmatch(urlPath)
	if m == nil {
		return time.Now()
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	return time.Date(year, time.Month(month), day, 12, 0, 0, 0, time.Local)
}

func mimeForExtension(ext string) string {
	switch ext {
	case "png":
		return "image/png"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "gif":
		return "image/gif"
	case "pdf":
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}
