package wpmigrate

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func setupServer(t *testing.T) (*Server, *Store) {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return NewServer(DefaultConfig(), store), store
}

func (s *Server) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

func TestServerPageRoutes(t *testing.T) {
	srv, store := setupServer(t)

	docs := []Document{
		{Slug: "contact", Kind: KindPage, Title: "Contact", Content: "<p>contactgegevens</p>", Status: StatusPublished},
		{Slug: "leden", Kind: KindPage, Title: "Leden", Content: "<p>ledenlijst</p>", Status: StatusPublished, ParentSlug: "over-ons"},
		{Slug: "gedragscode", Kind: KindPage, Title: "Gedragscode", Content: "<p>concept</p>", Status: StatusDraft, ParentSlug: "over-ons"},
	}
	for _, d := range docs {
		if err := store.SaveDocument(d); err != nil {
			t.Fatalf("SaveDocument: %v", err)
		}
	}

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantBody   string
	}{
		{"top-level page", "/contact", http.StatusOK, "contactgegevens"},
		{"child page under its parent", "/over-ons/leden", http.StatusOK, "ledenlijst"},
		{"child page under wrong parent", "/verkeerd/leden", http.StatusNotFound, ""},
		{"child page at top level", "/leden", http.StatusNotFound, ""},
		{"top-level page under a parent", "/over-ons/contact", http.StatusNotFound, ""},
		{"draft page hidden", "/over-ons/gedragscode", http.StatusNotFound, ""},
		{"unknown slug", "/bestaat-niet", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := srv.get(t, tt.path)
			if rec.Code != tt.wantStatus {
				t.Fatalf("GET %s = %d, want %d", tt.path, rec.Code, tt.wantStatus)
			}
			if tt.wantBody != "" && !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("GET %s body %q lacks %q", tt.path, rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestServerPostRoute(t *testing.T) {
	srv, store := setupServer(t)

	post := Document{
		Slug:        "nieuw-bericht",
		Kind:        KindPost,
		Title:       "Nieuw bericht",
		Content:     "<p>berichtinhoud</p>",
		Status:      StatusPublished,
		PublishedAt: time.Date(2019, 1, 15, 12, 0, 0, 0, time.Local),
	}
	if err := store.SaveDocument(post); err != nil {
		t.Fatalf("SaveDocument: %v", err)
	}

	rec := srv.get(t, "/actueel/nieuw-bericht")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /actueel/nieuw-bericht = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "berichtinhoud") {
		t.Errorf("body %q lacks post content", rec.Body.String())
	}

	if rec := srv.get(t, "/actueel/bestaat-niet"); rec.Code != http.StatusNotFound {
		t.Errorf("GET unknown post = %d, want 404", rec.Code)
	}

	rec = srv.get(t, "/actueel")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "nieuw-bericht") {
		t.Errorf("GET /actueel = %d body %q", rec.Code, rec.Body.String())
	}
}

func TestServerSitemap(t *testing.T) {
	srv, store := setupServer(t)

	docs := []Document{
		{Slug: "contact", Kind: KindPage, Title: "Contact", Status: StatusPublished},
		{Slug: "nieuw-bericht", Kind: KindPost, Title: "Nieuw bericht", Status: StatusPublished,
			PublishedAt: time.Date(2019, 1, 15, 12, 0, 0, 0, time.Local)},
		{Slug: "concept", Kind: KindPage, Title: "Concept", Status: StatusDraft},
	}
	for _, d := range docs {
		if err := store.SaveDocument(d); err != nil {
			t.Fatalf("SaveDocument: %v", err)
		}
	}

	rec := srv.get(t, "/sitemap.xml")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /sitemap.xml = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, loc := range []string{"<loc>/contact</loc>", "<loc>/actueel/nieuw-bericht</loc>"} {
		if !strings.Contains(body, loc) {
			t.Errorf("sitemap lacks %s: %q", loc, body)
		}
	}
	if strings.Contains(body, "concept") {
		t.Errorf("draft page listed in sitemap: %q", body)
	}
}
