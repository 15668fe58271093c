package wpmigrate

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PageImport describes one static legacy page to migrate.
type PageImport struct {
	Slug       string `yaml:"slug"`
	Path       string `yaml:"path"`
	ParentSlug string `yaml:"parent"`
	SortOrder  int    `yaml:"sort_order"`
}

// LinkRewrite maps a legacy internal href prefix to its new route.
// Rules are applied in order, longest legacy paths first.
type LinkRewrite struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// LogoImport describes one member logo to download into the logos bucket.
type LogoImport struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// Config holds all configuration for a migration run. The behavioral knobs
// have defaults; the data-shaped parts (worklists, rewrite rules, denylists)
// default to the known legacy site and can be overridden from a YAML file.
type Config struct {
	BaseURL   string `yaml:"base_url"`   // legacy origin, no trailing slash
	SiteName  string `yaml:"site_name"`  // stripped from <title> suffixes
	UserAgent string `yaml:"user_agent"` // sent on every fetch

	TimeoutSec   int    `yaml:"timeout_sec"`
	DatabasePath string `yaml:"database_path"`
	StorageDir   string `yaml:"storage_dir"` // disk root for relocated assets
	StorageURL   string `yaml:"storage_url"` // public URL prefix for assets

	PostsDir   string `yaml:"posts_dir"`   // bucket for relocated post images
	UploadsDir string `yaml:"uploads_dir"` // bucket for PDFs
	LogosDir   string `yaml:"logos_dir"`   // bucket for member logos

	MaxImageWidth int `yaml:"max_image_width"` // wider images are downscaled
	MinContentLen int `yaml:"min_content_len"` // shorter documents are rejected
	ExcerptLen    int `yaml:"excerpt_len"`
	MaxSlugLen    int `yaml:"max_slug_len"`

	BlogPaths    []string      `yaml:"blog_paths"`    // YYYY/MM/DD/slug permalink paths
	ArchivePaths []string      `yaml:"archive_paths"` // paginated archive pages, segmented by heading
	Pages        []PageImport  `yaml:"pages"`
	Logos        []LogoImport  `yaml:"logos"`
	Rewrites     []LinkRewrite `yaml:"rewrites"`

	NoiseClasses           []string `yaml:"noise_classes"`            // wrapper class substrings dropped with content
	ListingHeadingDenylist []string `yaml:"listing_heading_denylist"` // non-article headings on archive pages
}

func (c *Config) setDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "https://nederlandcrowdfunding.nl"
	}
	if c.SiteName == "" {
		c.SiteName = "Nederland Crowdfunding"
	}
	if c.UserAgent == "" {
		c.UserAgent = "Mozilla/5.0 (compatible; NLCFImporter/1.0)"
	}
	if c.TimeoutSec == 0 {
		c.TimeoutSec = 30
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/site.db"
	}
	if c.StorageDir == "" {
		c.StorageDir = "public/storage"
	}
	if c.StorageURL == "" {
		c.StorageURL = "/storage"
	}
	if c.PostsDir == "" {
		c.PostsDir = "posts"
	}
	if c.UploadsDir == "" {
		c.UploadsDir = "uploads"
	}
	if c.LogosDir == "" {
		c.LogosDir = "leden-logos"
	}
	if c.MaxImageWidth == 0 {
		c.MaxImageWidth = 1600
	}
	if c.MinContentLen == 0 {
		c.MinContentLen = 50
	}
	if c.ExcerptLen == 0 {
		c.ExcerptLen = 300
	}
	if c.MaxSlugLen == 0 {
		c.MaxSlugLen = 200
	}
	if c.BlogPaths == nil {
		c.BlogPaths = defaultBlogPaths()
	}
	if c.Pages == nil {
		c.Pages = defaultPages()
	}
	if c.Logos == nil {
		c.Logos = defaultLogos()
	}
	if c.Rewrites == nil {
		c.Rewrites = defaultRewrites(c.BaseURL)
	}
	if c.NoiseClasses == nil {
		c.NoiseClasses = []string{"sharedaddy", "wp-block-buttons", "sd-content"}
	}
	if c.ListingHeadingDenylist == nil {
		// Site-specific non-article headings seen on archive pages.
		c.ListingHeadingDenylist = []string{
			"Berichtnavigatie",
			"Berichten navigatie",
			"Post navigation",
			"Geef een reactie",
			"Gerelateerde berichten",
		}
	}
}

// DefaultConfig returns a Config populated with the legacy site's worklist.
func DefaultConfig() Config {
	var c Config
	c.setDefaults()
	return c
}

// LoadConfig reads a YAML file over the defaults. Fields absent from the
// file keep their default values.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	c.setDefaults()
	return c, nil
}

func defaultBlogPaths() []string {
	return []string{
		"2026/01/15/2026-start-met-twee-nieuwe-leden-voor-de-branchevereniging",
		"2025/11/10/crowdfinance-ruim-23mld-aan-spaargeld-actief-in-de-nederlandse-economie",
		"2025/10/28/eerste-week-van-de-crowdfinance-van-10-tot-met-14-november-2025",
		"2025/10/28/nieuw-lid-voor-de-branchevereniging",
		"2025/09/16/stappenplan-afm-nu-ook-gepubliceerd",
		"2025/07/17/branchevereniging-nederland-crowdfunding-roept-op-tot-structurele-beleidsaandacht-in-verkiezingsprogrammas",
		"2025/06/26/nieuwe-leden-voor-de-branchevereniging",
		"2025/05/06/fd-over-crowdfunding",
		"2025/02/07/zoeken-op-naam-in-het-kadaster-weer-mogelijk",
		"2025/02/04/vijf-nieuwe-leden",
		"2024/04/05/crowdfundplatforms-verzoeken-toegang-tot-regelingen-van-essentieel-belang-voor-een-financieel-gezond-mkb",
		"2023/11/13/afm-vergunning",
		"2021/09/13/activeer-uw-spaargeld-sept21",
		"2021/06/24/activeer-uw-spaargeld-jun21",
		"2021/05/04/activeer-uw-spaargeld-apr21",
		"2021/03/29/crowdfundplatforms-bieden-investeerders-transparante-informatie",
		"2021/03/17/opinie-activeer-uw-spaargeld",
		"2021/03/15/activeer-uw-spaargeld-mrt21",
		"2021/02/10/activeer-uw-spaargeld-feb21",
		"2021/01/18/activeer-uw-spaargeld-jan21",
		"2020/11/17/activeer-uw-spaargeld",
		"2020/10/17/betrek-investerende-particulier-bij-herstel-nederlandse-mkb",
		"2020/10/15/activeer-uw-spaargeld-okt20",
		"2020/10/07/eu-parlement-stemt-in-met-crowdfund-regelgeving",
		"2020/07/20/ledenmutaties-matchingcapital-en-waardevoorjegeld-nieuwe-leden",
		"2020/01/28/financieringsmonitor-bevestigt-belangrijke-rol-crowdfunding-in-nederlands-financieringslandschap",
		"2019/10/07/crowdfundingscan-helpt-ondernemers-financiering-te-vinden",
		"2019/05/09/leden-nederland-crowdfunding-presenteren-reele-netto-rendementscijfers",
		"2019/04/02/robbert-loos-directeur-nederland-crowdfunding",
		"2019/02/28/crowdfundingplatformen-verbeteren-hun-informatieverstrekking",
		"2019/01/28/complementaire-financiering-wint-terrein",
		"2019/01/01/crowdfunding-groeit-hard-door-in-2018",
		"2018/11/28/europees-parlement-stemt-over-crowdfunding-regelgeving",
	}
}

func defaultPages() []PageImport {
	return []PageImport{
		{Slug: "home", Path: "/", SortOrder: 0},
		{Slug: "de-vereniging", Path: "/de-vereniging-2/", ParentSlug: "over-ons", SortOrder: 0},
		{Slug: "leden", Path: "/leden/", ParentSlug: "over-ons", SortOrder: 1},
		{Slug: "bestuur-directie", Path: "/bestuur-directie/", ParentSlug: "over-ons", SortOrder: 2},
		{Slug: "contact", Path: "/contact/", SortOrder: 3},
		{Slug: "privacybeleid", Path: "/privacybeleid/", SortOrder: 4},
	}
}

func defaultLogos() []LogoImport {
	return []LogoImport{
		{Name: "Collin Crowdfund", URL: "https://nederlandcrowdfunding.nl/wp-content/uploads/2018/11/Collin-Crowdfund.png"},
		{Name: "Samen in Geld", URL: "https://nederlandcrowdfunding.nl/wp-content/uploads/2023/11/sameningeld-logo-300x236.png"},
		{Name: "Waardevoorjegeld", URL: "https://nederlandcrowdfunding.nl/wp-content/uploads/2020/08/waarde.png"},
		{Name: "Mogelijk Vastgoedfinancieringen", URL: "https://nederlandcrowdfunding.nl/wp-content/uploads/2025/06/Mogelijk_Logo_RGBPayoff.jpg"},
		{Name: "NL Investeert", URL: "https://nederlandcrowdfunding.nl/wp-content/uploads/2025/02/NL-Investeert.jpg"},
		{Name: "Invesdor", URL: "https://nederlandcrowdfunding.nl/wp-content/uploads/2025/02/Invesdor.jpg"},
		{Name: "Geldvoorelkaar", URL: "https://nederlandcrowdfunding.nl/wp-content/uploads/2025/02/Geld-voor-Elkaar.jpg"},
		{Name: "NPEX", URL: "https://nederlandcrowdfunding.nl/wp-content/uploads/2025/02/NPEX.jpg"},
		{Name: "Zonhub", URL: "https://nederlandcrowdfunding.nl/wp-content/uploads/2025/10/zonhub.png"},
		{Name: "Crowdrealestate", URL: "https://nederlandcrowdfunding.nl/wp-content/uploads/2025/06/Crowdrealestate-logo-lichte-achtergrond.png"},
		{Name: "Lendahand", URL: "https://nederlandcrowdfunding.nl/wp-content/uploads/2026/01/Logo-Lendahand.png"},
		{Name: "Broccoli", URL: "https://nederlandcrowdfunding.nl/wp-content/uploads/2026/01/broccoli-scaled.png"},
	}
}

func defaultRewrites(baseURL string) []LinkRewrite {
	rules := []LinkRewrite{
		{From: "/de-vereniging-2/", To: "/over-ons/de-vereniging"},
		{From: "/leden/", To: "/over-ons/leden"},
		{From: "/bestuur-directie/", To: "/over-ons/bestuur-directie"},
		{From: "/contact/", To: "/contact"},
		{From: "/actueel/", To: "/actueel"},
		{From: "/privacybeleid/", To: "/privacybeleid"},
	}
	// Absolute variants first so the relative ones don't partially match.
	out := make([]LinkRewrite, 0, len(rules)*2)
	for _, r := range rules {
		out = append(out, LinkRewrite{From: baseURL + r.From, To: r.To})
	}
	out = append(out, rules...)
	return out
}
