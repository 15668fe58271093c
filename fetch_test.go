package wpmigrate

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestFetchSendsUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	cfg := DefaultConfig()
	f := NewFetcher(cfg)
	data, err := f.Fetch(srv.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(data) != "ok" {
		t.Errorf("body = %q, want %q", data, "ok")
	}
	if gotUA != cfg.UserAgent {
		t.Errorf("User-Agent = %q, want %q", gotUA, cfg.UserAgent)
	}
}

func TestFetchRejectsNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f := NewFetcher(DefaultConfig())
	if _, err := f.Fetch(srv.URL + "/weg"); err == nil {
		t.Fatal("expected error for 404")
	} else if !strings.Contains(err.Error(), "HTTP 404") {
		t.Errorf("err = %v, want HTTP 404", err)
	}
}

func TestFetchHTMLDecodesCharset(t *testing.T) {
	// "café" in ISO-8859-1: é is a single 0xE9 byte.
	latin1 := []byte{'c', 'a', 'f', 0xE9}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		w.Write(latin1)
	}))
	defer srv.Close()

	f := NewFetcher(DefaultConfig())
	got, err := f.FetchHTML(srv.URL)
	if err != nil {
		t.Fatalf("FetchHTML: %v", err)
	}
	if got != "café" {
		t.Errorf("FetchHTML = %q, want %q", got, "café")
	}
}
