package wpmigrate

import "time"

// Status marks whether a migrated document is publicly visible.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// DocumentKind distinguishes blog posts from static pages.
type DocumentKind string

const (
	KindPost DocumentKind = "post"
	KindPage DocumentKind = "page"
)

// Document is the normalized record produced for one legacy page or post.
// Slug is the unique key; re-importing the same source upserts in place.
type Document struct {
	Slug        string
	Kind        DocumentKind
	Title       string
	SourceURL   string
	Excerpt     string
	Content     string // sanitized HTML
	Status      Status
	PublishedAt time.Time // zero when unknown
	ParentSlug  string    // page hierarchy, empty for posts and top-level pages
	SortOrder   int
}

// RelocatedAsset is a binary file (image or PDF) copied from the legacy
// site into local storage. Path is the unique key; documents reference
// assets by path, never by embedding.
type RelocatedAsset struct {
	Path         string
	OriginalURL  string
	OriginalName string
	MimeType     string
	Size         int
}
