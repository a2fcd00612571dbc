package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/starford/worklog/internal/contentsync"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Content ContentConfig     `yaml:"content"`
	Sync    SyncConfig        `yaml:"sync"`
	Build   BuildConfig       `yaml:"build"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Content.Validate(); err != nil {
		return err
	}
	if err := c.Sync.Validate(); err != nil {
		return err
	}
	return c.Build.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
	Site     SiteConfig `yaml:"site"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	if err := c.HTTP.Validate(); err != nil {
		return err
	}
	return c.Site.Validate()
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

// SiteConfig holds the values printed on every page.
type SiteConfig struct {
	Title string `yaml:"title"`
	Owner string `yaml:"owner"`
}

// Validate validates the site configuration.
func (c *SiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Title, validation.Required),
	)
}

// ContentConfig holds the location of the content tree and how it is served.
type ContentConfig struct {
	Root string `yaml:"root"`
	// Cache memoises query results until the watcher reports a change.
	Cache bool `yaml:"cache"`
	// Watch enables the file watcher and the live reload stream.
	Watch bool `yaml:"watch"`
}

// Validate validates the content configuration.
func (c *ContentConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Root, validation.Required),
	)
}

// ServeCached reports whether the server may cache queries. Only the watcher
// invalidates the cache, so caching without it would serve stale content.
func (c *ContentConfig) ServeCached() bool {
	return c.Cache && c.Watch
}

// SyncConfig selects the GitHub repository holding the content.
type SyncConfig struct {
	APIBaseURL string        `yaml:"api_base_url"`
	Owner      string        `yaml:"owner"`
	Repo       string        `yaml:"repo"`
	Ref        string        `yaml:"ref"`
	Token      string        `yaml:"token"`
	Timeout    time.Duration `yaml:"timeout"`
}

// Validate validates the sync configuration. An empty ref is normalised to
// the default branch.
func (c *SyncConfig) Validate() error {
	if c.Ref == "" {
		c.Ref = contentsync.DefaultRef
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.APIBaseURL, validation.Required, is.URL),
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
	)
}

// Syncer returns the contentsync configuration.
func (c *SyncConfig) Syncer() contentsync.Config {
	return contentsync.Config{
		APIBaseURL: c.APIBaseURL,
		Owner:      c.Owner,
		Repo:       c.Repo,
		Ref:        c.Ref,
		Token:      c.Token,
		Timeout:    c.Timeout,
	}
}

// BuildConfig holds static build configuration.
type BuildConfig struct {
	OutputDir string `yaml:"output_dir"`
	Minify    bool   `yaml:"minify"`
}

// Validate validates the build configuration.
func (c *BuildConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.OutputDir, validation.Required),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
			Site: SiteConfig{
				Title: "worklog",
			},
		},
		Content: ContentConfig{
			Root:  "./content",
			Cache: true,
			Watch: true,
		},
		Sync: SyncConfig{
			APIBaseURL: contentsync.DefaultAPIBaseURL,
			Ref:        contentsync.DefaultRef,
			Timeout:    time.Minute,
		},
		Build: BuildConfig{
			OutputDir: "./public",
			Minify:    true,
		},
	}
}
