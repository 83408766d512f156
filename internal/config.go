package internal

import (
	"fmt"
	"log/slog"
	"net/url"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Source  SourceConfig      `yaml:"source"`
	Content ContentConfig     `yaml:"content"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Source.Validate(); err != nil {
		return err
	}
	return c.Content.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// SourceConfig holds the remote content source configuration. The base
// URL is the site root; the REST prefix is appended by the client.
type SourceConfig struct {
	BaseURL       string      `yaml:"base_url"`
	Timeout       Duration    `yaml:"timeout"`
	UserAgent     string      `yaml:"user_agent"`
	IndexPageSize int         `yaml:"index_page_size"`
	Cache         CacheConfig `yaml:"cache"`
}

// Validate validates the source configuration.
func (c *SourceConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.BaseURL, validation.Required),
		validation.Field(&c.IndexPageSize, validation.Min(1), validation.Max(100)),
	); err != nil {
		return err
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("source: base_url %q is not an absolute URL", c.BaseURL)
	}
	return c.Cache.Validate()
}

// CacheConfig declares the per-call staleness window for each read kind.
// Zero means always refetch; one hour is the ceiling.
type CacheConfig struct {
	Post    Duration `yaml:"post"`
	Index   Duration `yaml:"index"`
	Related Duration `yaml:"related"`
}

// Validate validates the cache configuration.
func (c *CacheConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Post, validation.Min(Duration(0)), validation.Max(Duration(time.Hour))),
		validation.Field(&c.Index, validation.Min(Duration(0)), validation.Max(Duration(time.Hour))),
		validation.Field(&c.Related, validation.Min(Duration(0)), validation.Max(Duration(time.Hour))),
	)
}

// ContentConfig holds pipeline tuning. These fields are hot-reloadable.
type ContentConfig struct {
	RelatedLimit       int  `yaml:"related_limit"`
	FallbackCategoryID int  `yaml:"fallback_category_id"`
	TitleRecovery      bool `yaml:"title_recovery"`
}

// Validate validates the content configuration.
func (c *ContentConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.RelatedLimit, validation.Required, validation.Min(1), validation.Max(100)),
		validation.Field(&c.FallbackCategoryID, validation.Min(0)),
	)
}

// Duration is a time.Duration that accepts human-readable YAML values
// ("30s", "1h") as well as plain integer seconds.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		parsed, parseErr := time.ParseDuration(s)
		if parseErr != nil {
			return fmt.Errorf("invalid duration %q: %w", s, parseErr)
		}
		*d = Duration(parsed)
		return nil
	}

	var seconds int64
	if err := value.Decode(&seconds); err != nil {
		return fmt.Errorf("invalid duration value: %w", err)
	}
	*d = Duration(time.Duration(seconds) * time.Second)
	return nil
}

// Std returns the standard library duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// NewDefaultConfig returns a new Config with sensible default values.
// The post cache defaults to always-refetch; list reads tolerate short
// staleness.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Source: SourceConfig{
			BaseURL:       "https://example.com",
			Timeout:       Duration(15 * time.Second),
			IndexPageSize: 100,
			Cache: CacheConfig{
				Post:    Duration(0),
				Index:   Duration(5 * time.Minute),
				Related: Duration(5 * time.Minute),
			},
		},
		Content: ContentConfig{
			RelatedLimit:       4,
			FallbackCategoryID: 1,
			TitleRecovery:      true,
		},
	}
}
