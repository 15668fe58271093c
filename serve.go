package wpmigrate

import (
	"encoding/xml"
	"html/template"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Server is a read-only preview of the migrated site, for checking the
// imported content and relocated assets before the real CMS takes over.
type Server struct {
	cfg   Config
	store *Store
	echo  *echo.Echo
	tmpl  *template.Template
}

const previewTemplate = `<!DOCTYPE html>
<html lang="nl">
<head>
<meta charset="utf-8">
<title>{{.Title}} - {{.SiteName}}</title>
<meta name="viewport" content="width=device-width, initial-scale=1">
<style>body{max-width:48rem;margin:2rem auto;padding:0 1rem;font-family:sans-serif;line-height:1.6}img{max-width:100%;height:auto}nav a{margin-right:1rem}</style>
</head>
<body>
<nav><a href="/">Home</a><a href="/actueel">Actueel</a></nav>
<h1>{{.Title}}</h1>
{{.Body}}
</body>
</html>`

type previewPage struct {
	Title    string
	SiteName string
	Body     template.HTML
}

// NewServer builds the preview server around a populated store.
func NewServer(cfg Config, store *Store) *Server {
	s := &Server{
		cfg:   cfg,
		store: store,
		echo:  echo.New(),
		tmpl:  template.Must(template.New("page").Parse(previewTemplate)),
	}
	s.echo.HideBanner = true
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.Logger())
	s.echo.Static(cfg.StorageURL, cfg.StorageDir)

	s.echo.GET("/", s.handleHome)
	s.echo.GET("/actueel", s.handlePostIndex)
	s.echo.GET("/actueel/:slug", s.handlePost)
	s.echo.GET("/sitemap.xml", s.handleSitemap)
	s.echo.GET("/:slug", s.handlePage)
	s.echo.GET("/:parent/:slug", s.handlePage)
	return s
}

// Start serves until the listener fails.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

func (s *Server) render(c echo.Context, status int, title, body string) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(status)
	return s.tmpl.Execute(c.Response(), previewPage{
		Title:    title,
		SiteName: s.cfg.SiteName,
		Body:     template.HTML(body),
	})
}

func (s *Server) handleHome(c echo.Context) error {
	pages, err := s.store.ListDocuments(KindPage)
	if err != nil {
		return err
	}
	body := "<ul>"
	for _, p := range pages {
		if p.Status != StatusPublished {
			continue
		}
		body += `<li><a href="/` + p.Slug + `">` + template.HTMLEscapeString(p.Title) + "</a></li>"
	}
	body += "</ul>"
	return s.render(c, http.StatusOK, s.cfg.SiteName, body)
}

func (s *Server) handlePostIndex(c echo.Context) error {
	posts, err := s.store.ListDocuments(KindPost)
	if err != nil {
		return err
	}
	body := "<ul>"
	for _, p := range posts {
		body += `<li>` + p.PublishedAt.Format("2006-01-02") +
			` <a href="/actueel/` + p.Slug + `">` + template.HTMLEscapeString(p.Title) + "</a></li>"
	}
	body += "</ul>"
	return s.render(c, http.StatusOK, "Actueel", body)
}

func (s *Server) handlePost(c echo.Context) error {
	doc, err := s.store.GetDocument(c.Param("slug"))
	if err != nil {
		if err == ErrNotFound {
			return s.render(c, http.StatusNotFound, "Niet gevonden", "<p>Pagina niet gevonden.</p>")
		}
		return err
	}
	return s.render(c, http.StatusOK, doc.Title, doc.Content)
}

func (s *Server) handlePage(c echo.Context) error {
	doc, err := s.store.GetDocument(c.Param("slug"))
	if err != nil {
		if err != ErrNotFound {
			return err
		}
		return s.render(c, http.StatusNotFound, "Niet gevonden", "<p>Pagina niet gevonden.</p>")
	}
	// The URL must mirror the page hierarchy: child pages live under their
	// parent's slug, top-level pages directly under the root.
	if doc.Kind != KindPage || doc.Status != StatusPublished || doc.ParentSlug != c.Param("parent") {
		return s.render(c, http.StatusNotFound, "Niet gevonden", "<p>Pagina niet gevonden.</p>")
	}
	return s.render(c, http.StatusOK, doc.Title, doc.Content)
}

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

func (s *Server) handleSitemap(c echo.Context) error {
	docs, err := s.store.AllDocuments()
	if err != nil {
		return err
	}
	urls := []sitemapURL{{Loc: "/"}}
	for _, d := range docs {
		if d.Status != StatusPublished {
			continue
		}
		u := sitemapURL{LastMod: d.PublishedAt.Format("2006-01-02")}
		if d.Kind == KindPost {
			u.Loc = BuildURL("/", "actueel", d.Slug)
		} else {
			u.Loc = BuildURL("/", d.Slug)
		}
		urls = append(urls, u)
	}
	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(sitemap)
}
