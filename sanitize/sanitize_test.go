package sanitize

import (
	"strings"
	"testing"
)

func TestSanitizeRemovesDangerousContent(t *testing.T) {
	p := Default("https://old.example.com")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "script with content",
			in:   `<p>voor</p><script>alert(1)</script><p>na</p>`,
			want: `<p>voor</p><p>na</p>`,
		},
		{
			name: "style block",
			in:   `<style>p{color:red}</style><p>tekst</p>`,
			want: `<p>tekst</p>`,
		},
		{
			name: "comments",
			in:   `<!-- hidden --><p>zichtbaar</p>`,
			want: `<p>zichtbaar</p>`,
		},
		{
			name: "event handler stripped",
			in:   `<p onclick="steal()">klik</p>`,
			want: `<p>klik</p>`,
		},
		{
			name: "javascript href neutralized",
			in:   `<a href="javascript:alert(1)">x</a>`,
			want: `<a href="#">x</a>`,
		},
		{
			name: "non-image data src emptied",
			in:   `<img src="data:text/html,<script>x</script>" alt="y">`,
			want: `<img src="" alt="y">`,
		},
		{
			name: "disallowed tag keeps text",
			in:   `<div class="wrap"><p>inhoud</p></div>`,
			want: `<p>inhoud</p>`,
		},
		{
			name: "reconstructed tag token",
			in:   `<<script>script><p>ok</p>`,
			want: `<p>ok</p>`,
		},
		{
			name: "target self removed",
			in:   `<a href="/actueel" target="_self">lees</a>`,
			want: `<a href="/actueel">lees</a>`,
		},
		{
			name: "legacy origin stripped from links",
			in:   `<a href="https://old.example.com/over-ons">over ons</a>`,
			want: `<a href="/over-ons">over ons</a>`,
		},
		{
			name: "empty paragraphs removed",
			in:   `<p>een</p><p> &nbsp; </p><p></p><p>twee</p>`,
			want: `<p>een</p><p>twee</p>`,
		},
		{
			name: "sharedaddy noise dropped",
			in:   `<p>tekst</p><div class="sharedaddy sd-like">Like this</div>`,
			want: `<p>tekst</p>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Sanitize(tt.in)
			if got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeArticleBodySupersedes(t *testing.T) {
	p := Default("")
	in := `<header><h1>Titel</h1></header><div itemprop="articleBody"><p>Hello World</p></div><footer>meta</footer>`
	got := p.Sanitize(in)
	if got != "<p>Hello World</p>" {
		t.Errorf("Sanitize(%q) = %q, want %q", in, got, "<p>Hello World</p>")
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	p := Default("https://old.example.com")

	inputs := []string{
		`<div itemprop="articleBody"><p>Hello <strong>World</strong></p></div>`,
		`<p>een</p><script>x</script><p onmouseover="y">twee</p><p></p>`,
		`<a href="https://old.example.com/actueel/bericht" target="_self">bericht</a>`,
		`<table><tr><td colspan="2">cel</td></tr></table>`,
		`<img src="/storage/posts/foto.jpg" alt="foto &amp; meer">`,
	}
	for _, in := range inputs {
		once := p.Sanitize(in)
		twice := p.Sanitize(once)
		if once != twice {
			t.Errorf("not idempotent:\n in: %q\nonce: %q\ntwice: %q", in, once, twice)
		}
	}
}

func TestSanitizeOnlyAllowedTagsSurvive(t *testing.T) {
	p := Default("")
	in := `<article><section><p>alinea</p><h2>kop</h2><video src="x"></video><iframe src="y"></iframe><ul><li>punt</li></ul></section></article>`
	got := p.Sanitize(in)

	for _, tag := range []string{"<article", "<section", "<video", "<iframe"} {
		if strings.Contains(got, tag) {
			t.Errorf("Sanitize left disallowed tag %s in %q", tag, got)
		}
	}
	for _, tag := range []string{"<p>", "<h2>", "<ul>", "<li>"} {
		if !strings.Contains(got, tag) {
			t.Errorf("Sanitize dropped allowed tag %s from %q", tag, got)
		}
	}
}

func TestExcerpt(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		title string
		limit int
		want  string
	}{
		{
			name:  "strips markup and collapses whitespace",
			body:  "<p>Eerste   regel</p>\n<p>tweede regel</p>",
			title: "",
			limit: 300,
			want:  "Eerste regel tweede regel",
		},
		{
			name:  "drops duplicated title",
			body:  "<h2>Nieuw bericht</h2><p>De inhoud.</p>",
			title: "Nieuw bericht",
			limit: 300,
			want:  "De inhoud.",
		},
		{
			name:  "drops leading date",
			body:  "<p>01-02-2019 De aankondiging.</p>",
			title: "",
			limit: 300,
			want:  "De aankondiging.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Excerpt(tt.body, tt.title, tt.limit)
			if got != tt.want {
				t.Errorf("Excerpt() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExcerptLength(t *testing.T) {
	body := "<p>" + strings.Repeat("woord ", 200) + "</p>"
	got := Excerpt(body, "", 300)
	if n := len([]rune(got)); n > 300 {
		t.Errorf("excerpt is %d runes, want at most 300", n)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("truncated excerpt %q lacks ellipsis", got)
	}
}

func TestRewriteLinks(t *testing.T) {
	rules := []Rewrite{
		{From: "https://old.example.com/2019/", To: "/actueel/"},
		{From: "/leden/", To: "/over-ons/leden/"},
	}
	in := `<a href="https://old.example.com/2019/01/15/bericht/">a</a> <a href="/leden/">b</a>`
	want := `<a href="/actueel/01/15/bericht/">a</a> <a href="/over-ons/leden/">b</a>`
	if got := RewriteLinks(in, rules); got != want {
		t.Errorf("RewriteLinks() = %q, want %q", got, want)
	}
}

func TestStripTags(t *testing.T) {
	in := `<p>Hallo <strong>wereld</strong></p><!-- weg -->`
	if got := StripTags(in); got != "Hallo wereld" {
		t.Errorf("StripTags(%q) = %q, want %q", in, got, "Hallo wereld")
	}
}
