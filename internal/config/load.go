package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. TOOLSITE_WEB_LISTEN_PORT
const EnvPrefix = "TOOLSITE"

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, NewDefaultConfig())
	return v
}

// setDefaults registers every key so AutomaticEnv can see it
func setDefaults(v *viper.Viper, def *MainConfig) {
	v.SetDefault("web.listen_port", def.Web.ListenPort)
	v.SetDefault("web.ssl", def.Web.SSL)
	v.SetDefault("web.cert_file", def.Web.CertFile)
	v.SetDefault("web.key_file", def.Web.KeyFile)
	v.SetDefault("web.debug", def.Web.Debug)
	v.SetDefault("site.name", def.Site.Name)
	v.SetDefault("site.tagline", def.Site.Tagline)
	v.SetDefault("site.base_url", def.Site.BaseURL)
	v.SetDefault("catalog.remote_url", def.Catalog.RemoteURL)
	v.SetDefault("catalog.remote_timeout", def.Catalog.RemoteTimeout)
	v.SetDefault("catalog.use_database", def.Catalog.UseDatabase)
	v.SetDefault("catalog.page_size", def.Catalog.PageSize)
	v.SetDefault("content.root", def.Content.Root)
	v.SetDefault("content.file_name", def.Content.FileName)
	v.SetDefault("content.watch", def.Content.Watch)
	v.SetDefault("blob.bucket", def.Blob.Bucket)
	v.SetDefault("blob.region", def.Blob.Region)
	v.SetDefault("blob.endpoint", def.Blob.Endpoint)
	v.SetDefault("blob.public_base_url", def.Blob.PublicBaseURL)
	v.SetDefault("blob.prefix", def.Blob.Prefix)
	v.SetDefault("blob.max_keys", def.Blob.MaxKeys)
	v.SetDefault("blob.path_style", def.Blob.PathStyle)
	v.SetDefault("database.data_dir", def.Database.DataDir)
}

// LoadConfig layers an optional config file (yaml, json or toml by extension)
// and TOOLSITE_* environment variables over NewDefaultConfig.
// An empty path skips the file.
func LoadConfig(path string) (*MainConfig, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		log.Printf("Loaded config file: %s", v.ConfigFileUsed())
	}

	cfg := NewDefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	// Unmarshal leaves the unexported navigation alone, rebuild the site with the decoded names
	site := NewSiteConfig(cfg.Site.Name, cfg.Site.Tagline, defaultNav, defaultFooter)
	site.BaseURL = cfg.Site.BaseURL
	cfg.Site = site
	cfg.AppVersion = AppVersion

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail late at runtime
func (c *MainConfig) Validate() error {
	if c.Web.ListenPort < 1024 || c.Web.ListenPort > 65535 {
		return fmt.Errorf("invalid port number: %d (must be between 1024 and 65535)", c.Web.ListenPort)
	}
	if c.Web.SSL && (c.Web.CertFile == "" || c.Web.KeyFile == "") {
		return fmt.Errorf("SSL enabled but cert_file or key_file not specified in config")
	}
	if c.Content.Root == "" || c.Content.FileName == "" {
		return fmt.Errorf("content root and file name must be set")
	}
	if c.Catalog.RemoteTimeout < 0 {
		return fmt.Errorf("catalog remote_timeout must not be negative")
	}
	return nil
}
