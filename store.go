package wpmigrate

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = sql.ErrNoRows

const timeLayout = "2006-01-02 15:04:05"

// Store wraps a SQLite database holding migrated documents and relocated
// asset metadata. Documents are keyed by slug, assets by storage path.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL with a busy timeout so the preview server can read while the
	// importer writes; synchronous=NORMAL is safe under WAL.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS documents (
    slug TEXT PRIMARY KEY,
    kind TEXT NOT NULL,
    title TEXT NOT NULL,
    source_url TEXT NOT NULL DEFAULT '',
    excerpt TEXT NOT NULL DEFAULT '',
    content TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL DEFAULT 'draft',
    published_at TEXT NOT NULL DEFAULT '',
    parent_slug TEXT NOT NULL DEFAULT '',
    sort_order INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS file_uploads (
    path TEXT PRIMARY KEY,
    original_url TEXT NOT NULL DEFAULT '',
    original_name TEXT NOT NULL DEFAULT '',
    mime_type TEXT NOT NULL DEFAULT '',
    size INTEGER NOT NULL DEFAULT 0
);
`)
	return err
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(timeLayout)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.ParseInLocation(timeLayout, s, time.Local)
	if err != nil {
		return time.Time{}
	}
	return t
}

// SaveDocument upserts a document by slug.
func (s *Store) SaveDocument(d Document) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO documents
		(slug, kind, title, source_url, excerpt, content, status, published_at, parent_slug, sort_order)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.Slug, string(d.Kind), d.Title, d.SourceURL, d.Excerpt, d.Content,
		string(d.Status), formatTime(d.PublishedAt), d.ParentSlug, d.SortOrder)
	if err != nil {
		return fmt.Errorf("save document %s: %w", d.Slug, err)
	}
	return nil
}

func scanDocument(row interface{ Scan(...any) error }) (Document, error) {
	var d Document
	var kind, status, publishedAt string
	err := row.Scan(&d.Slug, &kind, &d.Title, &d.SourceURL, &d.Excerpt,
		&d.Content, &status, &publishedAt, &d.ParentSlug, &d.SortOrder)
	if err != nil {
		return Document{}, err
	}
	d.Kind = DocumentKind(kind)
	d.Status = Status(status)
	d.PublishedAt = parseTime(publishedAt)
	return d, nil
}

const documentColumns = `slug, kind, title, source_url, excerpt, content, status, published_at, parent_slug, sort_order`

// GetDocument returns a single document by slug.
func (s *Store) GetDocument(slug string) (Document, error) {
	row := s.db.QueryRow(`SELECT `+documentColumns+` FROM documents WHERE slug = ?`, slug)
	return scanDocument(row)
}

// ListDocuments returns documents of one kind. Posts come newest first,
// pages in their configured sort order.
func (s *Store) ListDocuments(kind DocumentKind) ([]Document, error) {
	order := `published_at DESC`
	if kind == KindPage {
		order = `sort_order ASC, slug ASC`
	}
	rows, err := s.db.Query(`SELECT `+documentColumns+` FROM documents WHERE kind = ? ORDER BY `+order, string(kind))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDocuments(rows)
}

// AllDocuments returns every stored document.
func (s *Store) AllDocuments() ([]Document, error) {
	rows, err := s.db.Query(`SELECT ` + documentColumns + ` FROM documents ORDER BY slug ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDocuments(rows)
}

func collectDocuments(rows *sql.Rows) ([]Document, error) {
	var docs []Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// CountDocuments returns the number of stored documents.
func (s *Store) CountDocuments() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM documents`).Scan(&n)
	return n, err
}

// UniqueSlug resolves a slug collision by appending an incrementing numeric
// suffix. A slug already owned by the same source URL is reused unchanged
// so that re-imports upsert instead of duplicating.
func (s *Store) UniqueSlug(base, sourceURL string) (string, error) {
	slug := base
	counter := 2
	for {
		existing, err := s.GetDocument(slug)
		if err == ErrNotFound {
			return slug, nil
		}
		if err != nil {
			return "", err
		}
		if existing.SourceURL == sourceURL {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, counter)
		counter++
	}
}

// SaveAsset upserts asset metadata by storage path.
func (s *Store) SaveAsset(a RelocatedAsset) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO file_uploads
		(path, original_url, original_name, mime_type, size)
		VALUES (?, ?, ?, ?, ?)`,
		a.Path, a.OriginalURL, a.OriginalName, a.MimeType, a.Size)
	if err != nil {
		return fmt.Errorf("save asset %s: %w", a.Path, err)
	}
	return nil
}

// AssetByOriginalURL returns the asset record for a legacy URL, if any.
func (s *Store) AssetByOriginalURL(url string) (RelocatedAsset, error) {
	var a RelocatedAsset
	err := s.db.QueryRow(`SELECT path, original_url, original_name, mime_type, size
		FROM file_uploads WHERE original_url = ?`, url).
		Scan(&a.Path, &a.OriginalURL, &a.OriginalName, &a.MimeType, &a.Size)
	if err != nil {
		return RelocatedAsset{}, err
	}
	return a, nil
}

// ListAssets returns all relocated asset records.
func (s *Store) ListAssets() ([]RelocatedAsset, error) {
	rows, err := s.db.Query(`SELECT path, original_url, original_name, mime_type, size
		FROM file_uploads ORDER BY path ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assets []RelocatedAsset
	for rows.Next() {
		var a RelocatedAsset
		if err := rows.Scan(&a.Path, &a.OriginalURL, &a.OriginalName, &a.MimeType, &a.Size); err != nil {
			return nil, err
		}
		assets = append(assets, a)
	}
	return assets, rows.Err()
}
