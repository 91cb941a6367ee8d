// Package config provides configuration management for go-toolsite.
package config

import (
	"log"
	"time"
)

var AppVersion = "-unset-" // will be set at build time

const (
	// Default web settings
	DefaultListenPort = 11980

	// Default catalog settings
	DefaultRemoteTimeout = 5 * time.Second

	// Default content settings
	DefaultContentRoot     = "content/blog"
	DefaultContentFileName = "page.md"

	// Default blob settings
	DefaultImagePrefix = "images/"
	DefaultImageLimit  = 1000
)

// MainConfig holds the main configuration for go-toolsite
type MainConfig struct {
	// Web interface settings
	Web WebConfig `json:"web" mapstructure:"web"`

	// Site presentation settings (navigation, theme)
	Site SiteConfig `json:"site" mapstructure:"site"`

	// Tool catalog data sources
	Catalog CatalogConfig `json:"catalog" mapstructure:"catalog"`

	// Blog content settings
	Content ContentConfig `json:"content" mapstructure:"content"`

	// Blob storage for the images listing
	Blob BlobConfig `json:"blob" mapstructure:"blob"`

	// Database settings
	Database DatabaseConfig `json:"database" mapstructure:"database"`

	AppVersion string `json:"app_version" mapstructure:"-"` // Application version, set at build time
}

// WebConfig holds web interface configuration
type WebConfig struct {
	ListenPort int    `json:"listen_port" mapstructure:"listen_port"`
	SSL        bool   `json:"ssl" mapstructure:"ssl"`
	CertFile   string `json:"cert_file,omitempty" mapstructure:"cert_file"`
	KeyFile    string `json:"key_file,omitempty" mapstructure:"key_file"`
	Debug      bool   `json:"debug" mapstructure:"debug"` // gin debug mode and request logging
}

// CatalogConfig selects where the tool directory is fetched from.
// With RemoteURL empty and UseDatabase false the site always serves the bundled datasets.
type CatalogConfig struct {
	RemoteURL     string        `json:"remote_url" mapstructure:"remote_url"`
	RemoteTimeout time.Duration `json:"remote_timeout" mapstructure:"remote_timeout"`
	UseDatabase   bool          `json:"use_database" mapstructure:"use_database"` // read tools from the sqlite tools table
	PageSize      int           `json:"page_size" mapstructure:"page_size"`
}

// ContentConfig holds the blog content store location
type ContentConfig struct {
	Root     string `json:"root" mapstructure:"root"`
	FileName string `json:"file_name" mapstructure:"file_name"`
	Watch    bool   `json:"watch" mapstructure:"watch"` // rescan the registry on file changes
}

// BlobConfig holds the S3-compatible bucket used by the images endpoint
type BlobConfig struct {
	Bucket        string `json:"bucket" mapstructure:"bucket"`
	Region        string `json:"region" mapstructure:"region"`
	Endpoint      string `json:"endpoint,omitempty" mapstructure:"endpoint"` // custom endpoint for S3-compatible stores
	PublicBaseURL string `json:"public_base_url,omitempty" mapstructure:"public_base_url"`
	Prefix        string `json:"prefix" mapstructure:"prefix"`
	MaxKeys       int    `json:"max_keys" mapstructure:"max_keys"`
	PathStyle     bool   `json:"path_style" mapstructure:"path_style"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	DataDir string `json:"data_dir" mapstructure:"data_dir"` // main database lives in DataDir/cfg/toolsite.sq3
}

// NewDefaultConfig returns a configuration with sensible defaults
func NewDefaultConfig() *MainConfig {
	maincfg := &MainConfig{
		AppVersion: AppVersion,
		Web: WebConfig{
			ListenPort: DefaultListenPort,
		},
		Site: DefaultSiteConfig(),
		Catalog: CatalogConfig{
			RemoteTimeout: DefaultRemoteTimeout,
			PageSize:      48,
		},
		Content: ContentConfig{
			Root:     DefaultContentRoot,
			FileName: DefaultContentFileName,
			Watch:    true,
		},
		Blob: BlobConfig{
			Region:  "us-east-1",
			Prefix:  DefaultImagePrefix,
			MaxKeys: DefaultImageLimit,
		},
		Database: DatabaseConfig{
			DataDir: "./data",
		},
	}
	log.Printf("MainConfig initialized with %d navigation items", len(maincfg.Site.nav))
	return maincfg
}
