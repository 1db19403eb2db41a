package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// SiteConfig is the contents of config.yaml. Every section is optional;
// accessors supply defaults for unset fields.
type SiteConfig struct {
	Version int `yaml:"version"`
	Site    struct {
		Name    string `yaml:"name"`
		Project string `yaml:"project"`
	} `yaml:"site"`
	Preview struct {
		Port    int    `yaml:"port"`
		FPS     int    `yaml:"fps"`
		TLSCert string `yaml:"tls_cert"`
		TLSKey  string `yaml:"tls_key"`
	} `yaml:"preview"`
	Export struct {
		Title    string `yaml:"title"`
		Output   string `yaml:"output"`
		Tailwind *bool  `yaml:"tailwind"`
	} `yaml:"export"`
	MQTT struct {
		Broker      string `yaml:"broker"`
		TopicPrefix string `yaml:"topic_prefix"`
		ClientID    string `yaml:"client_id"`
	} `yaml:"mqtt"`
	Redis struct {
		Addr string        `yaml:"addr"`
		DB   int           `yaml:"db"`
		TTL  time.Duration `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		Enabled  bool   `yaml:"enabled"`
		SiteID   string `yaml:"site_id"`
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Database string `yaml:"database"`
		SSLMode  string `yaml:"sslmode"`
	} `yaml:"postgres"`
}

// Default returns the configuration used when no config file is given.
func Default() *SiteConfig {
	return &SiteConfig{Version: 1}
}

// PreviewPort returns the preview server port, defaulting to 8080.
func (c *SiteConfig) PreviewPort() int {
	if c.Preview.Port == 0 {
		return 8080
	}
	return c.Preview.Port
}

// FPS returns the preview runtime frame rate, defaulting to 60.
func (c *SiteConfig) FPS() int {
	if c.Preview.FPS <= 0 {
		return 60
	}
	return c.Preview.FPS
}

// Tailwind reports whether exports load the Tailwind CDN. Defaults to true.
func (c *SiteConfig) Tailwind() bool {
	return c.Export.Tailwind == nil || *c.Export.Tailwind
}

// ExportOutput returns the export file path, defaulting to index.html.
func (c *SiteConfig) ExportOutput() string {
	if c.Export.Output == "" {
		return "index.html"
	}
	return c.Export.Output
}

// TopicPrefix returns the MQTT topic prefix, defaulting to "proektsite".
func (c *SiteConfig) TopicPrefix() string {
	if c.MQTT.TopicPrefix == "" {
		return "proektsite"
	}
	return c.MQTT.TopicPrefix
}

// MQTTClientID returns the MQTT client id, defaulting to "proektsite-preview".
func (c *SiteConfig) MQTTClientID() string {
	if c.MQTT.ClientID == "" {
		return "proektsite-preview"
	}
	return c.MQTT.ClientID
}

// SessionTTL returns how long saved preview sessions live, defaulting to 24h.
func (c *SiteConfig) SessionTTL() time.Duration {
	if c.Redis.TTL <= 0 {
		return 24 * time.Hour
	}
	return c.Redis.TTL
}

// SiteID identifies this site in the event log: postgres.site_id, then
// site.name, then "default".
func (c *SiteConfig) SiteID() string {
	switch {
	case c.Postgres.SiteID != "":
		return c.Postgres.SiteID
	case c.Site.Name != "":
		return c.Site.Name
	default:
		return "default"
	}
}

// Load reads and checks a config.yaml file.
func Load(path string) (*SiteConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg SiteConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if cfg.Version != 1 {
		return nil, fmt.Errorf("unsupported config.yaml version: %d", cfg.Version)
	}
	if cfg.Preview.Port < 0 || cfg.Preview.Port > 65535 {
		return nil, fmt.Errorf("preview.port out of range: %d", cfg.Preview.Port)
	}
	if (cfg.Preview.TLSCert == "") != (cfg.Preview.TLSKey == "") {
		return nil, fmt.Errorf("preview.tls_cert and preview.tls_key must be set together")
	}

	return &cfg, nil
}
