package config

// NavItem is one link of the site navigation
type NavItem struct {
	Title string `json:"title"`
	Href  string `json:"href"`
}

// Theme holds the design tokens handed to templates
type Theme struct {
	Primary    string `json:"primary"`
	Background string `json:"background"`
	Foreground string `json:"foreground"`
	Muted      string `json:"muted"`
	Accent     string `json:"accent"`
	FontFamily string `json:"font_family"`
	Radius     string `json:"radius"`
}

// SiteConfig is built once at startup and shared read-only by all handlers.
// Navigation is unexported so callers only ever get copies.
type SiteConfig struct {
	Name        string `json:"name" mapstructure:"name"`
	Tagline     string `json:"tagline" mapstructure:"tagline"`
	BaseURL     string `json:"base_url" mapstructure:"base_url"`
	Theme       Theme  `json:"theme" mapstructure:"-"`
	nav         []NavItem
	footerLinks []NavItem
}

var defaultNav = []NavItem{
	{Title: "Tools", Href: "/"},
	{Title: "Blog", Href: "/blog"},
	{Title: "Portfolio", Href: "/portfolio"},
	{Title: "About", Href: "/about"},
}

var defaultFooter = []NavItem{
	{Title: "Posts API", Href: "/api/posts"},
	{Title: "Tools API", Href: "/api/tools"},
	{Title: "Health", Href: "/api/health"},
}

// DefaultSiteConfig returns the stock navigation and theme
func DefaultSiteConfig() SiteConfig {
	return NewSiteConfig("AI Tools Directory", "Curated AI tools, notes and experiments", defaultNav, defaultFooter)
}

// NewSiteConfig copies nav and footer so later changes to the caller's slices are not visible
func NewSiteConfig(name, tagline string, nav, footer []NavItem) SiteConfig {
	return SiteConfig{
		Name:    name,
		Tagline: tagline,
		Theme: Theme{
			Primary:    "#6d28d9",
			Background: "#0b0b10",
			Foreground: "#ededf2",
			Muted:      "#8b8b99",
			Accent:     "#22d3ee",
			FontFamily: "Inter, system-ui, sans-serif",
			Radius:     "0.75rem",
		},
		nav:         append([]NavItem(nil), nav...),
		footerLinks: append([]NavItem(nil), footer...),
	}
}

// Navigation returns a copy of the navigation list
func (sc SiteConfig) Navigation() []NavItem {
	return append([]NavItem(nil), sc.nav...)
}

// FooterLinks returns a copy of the footer links
func (sc SiteConfig) FooterLinks() []NavItem {
	return append([]NavItem(nil), sc.footerLinks...)
}
