package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"time"

	"github.com/graphlang/gqlanalyzer/internal/pluck"
	"github.com/graphlang/gqlanalyzer/pkg/lint"
)

// SchemaSource is one of the project's schema inputs, per spec.md §6's
// `schema: <path | paths | {url,headers?,timeout?,retry?}>`. A
// URL-shaped source is resolved by internal/introspection, never here.
type SchemaSource struct {
	Type     string            `yaml:"type,omitempty"`      // "file" | "url" | "introspection"
	Path     string            `yaml:"path,omitempty"`      // For file-based schemas
	URL      string            `yaml:"url,omitempty"`       // For remote/introspected schemas
	Headers  map[string]string `yaml:"headers,omitempty"`   // For authentication; values may be ${ENV} or keyring:<service>/<user>
	Timeout  string            `yaml:"timeout,omitempty"`   // HTTP timeout (e.g., "30s")
	Retries  int               `yaml:"retries,omitempty"`   // Number of retry attempts
	CacheTTL string            `yaml:"cache_ttl,omitempty" json:"cache_ttl,omitempty" mapstructure:"cache_ttl"` // Disk cache TTL (e.g., "5m")
}

// Documents is spec.md §6's `documents`/`include`/`exclude`: glob
// patterns (including `!`-prefixed negations and `{a,b}` brace
// expansion) that populate DocumentFileIds. node_modules/ is always
// excluded regardless of these patterns.
type Documents struct {
	Include []string `yaml:"include"` // Glob patterns for files to include
	Exclude []string `yaml:"exclude"` // Glob patterns for files to exclude
}

// ExtractConfig mirrors internal/pluck.Config for spec.md §6's
// `extensions.extractConfig`.
type ExtractConfig struct {
	TagIdentifiers         []string `yaml:"tagIdentifiers,omitempty"`
	Modules                []string `yaml:"modules,omitempty"`
	AllowGlobalIdentifiers bool     `yaml:"allowGlobalIdentifiers,omitempty"`
	MagicComment           string   `yaml:"magicComment,omitempty"`
}

// ToExtractorConfig converts the YAML-facing shape into internal/pluck's
// Config. An entirely empty ExtractConfig falls back to pluck's
// gql/graphql tag convention rather than an extractor that matches
// nothing.
func (e ExtractConfig) ToExtractorConfig() pluck.Config {
	if len(e.TagIdentifiers) == 0 && len(e.Modules) == 0 && !e.AllowGlobalIdentifiers && e.MagicComment == "" {
		return pluck.DefaultConfig()
	}
	return pluck.Config{
		TagIdentifiers:         e.TagIdentifiers,
		Modules:                e.Modules,
		AllowGlobalIdentifiers: e.AllowGlobalIdentifiers,
		MagicComment:           e.MagicComment,
	}
}

// Extensions holds spec.md §6's three `extensions.*` keys.
type Extensions struct {
	Lint          map[string]string `yaml:"lint,omitempty"`          // rule name -> "error" | "warn" | "off"
	ExtractConfig ExtractConfig     `yaml:"extractConfig,omitempty"` // see §4.3
	Client        string            `yaml:"client,omitempty"`        // "apollo" | "relay" | "none"
}

// ToLintConfig converts the YAML-facing severity map into pkg/lint's
// Config, the shape Runner actually consumes.
func (e Extensions) ToLintConfig() lint.Config {
	if len(e.Lint) == 0 {
		return lint.Config{}
	}
	severities := make(map[string]lint.Severity, len(e.Lint))
	for rule, sev := range e.Lint {
		severities[rule] = lint.Severity(sev)
	}
	return lint.Config{Severities: severities}
}

// Config is spec.md §6's project configuration — the table there calls
// it "consumed but not implemented here"; pkg/config is that consumer.
type Config struct {
	Schema         []SchemaSource `yaml:"schema"`         // Schema sources
	Documents      Documents      `yaml:"documents"`      // Document sources
	Extensions     Extensions     `yaml:"extensions"`      // lint / extractConfig / client
	Watch          bool           `yaml:"watch"`           // Enable watch mode (internal/watch)
	Verbose        bool           `yaml:"verbose"`         // Verbose output
	OnTypeConflict string         `yaml:"onTypeConflict"`  // Schema-merge conflict strategy: "error" (default), "useFirst", "useLast"
}

// LoadFile loads configuration from a file (YAML, TypeScript, or
// JavaScript) via the loader registry.
func LoadFile(path string) (*Config, error) {
	registry := NewLoaderRegistry()
	return registry.Load(path)
}

// setDefaults fills in values spec.md §6 treats as implicit.
func (c *Config) setDefaults() error {
	for i := range c.Schema {
		if c.Schema[i].Type == "" {
			switch {
			case c.Schema[i].Path != "":
				c.Schema[i].Type = "file"
			case c.Schema[i].URL != "":
				c.Schema[i].Type = "url"
			}
		}
	}

	if len(c.Documents.Include) == 0 {
		c.Documents.Include = []string{
			"**/*.graphql",
			"**/*.gql",
			"**/*.ts",
			"**/*.tsx",
			"**/*.js",
			"**/*.jsx",
		}
	}

	if c.Extensions.Client == "" {
		c.Extensions.Client = "none"
	}

	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if len(c.Schema) == 0 {
		return fmt.Errorf("at least one schema source is required")
	}

	if err := ValidateConflictStrategy(c.OnTypeConflict); err != nil {
		return err
	}

	if err := validateClient(c.Extensions.Client); err != nil {
		return err
	}

	for i, source := range c.Schema {
		if source.Type == "" {
			return fmt.Errorf("schema[%d]: type is required", i)
		}

		switch source.Type {
		case "file":
			if source.Path == "" {
				return fmt.Errorf("schema[%d]: path is required for file type", i)
			}
		case "url", "introspection":
			if source.URL == "" {
				return fmt.Errorf("schema[%d]: url is required for %s type", i, source.Type)
			}
			if err := validateURL(source.URL); err != nil {
				return fmt.Errorf("schema[%d]: invalid URL: %w", i, err)
			}
			if source.Timeout != "" {
				if err := validateDuration(source.Timeout); err != nil {
					return fmt.Errorf("schema[%d]: invalid timeout: %w", i, err)
				}
			}
			if source.CacheTTL != "" {
				if err := validateDuration(source.CacheTTL); err != nil {
					return fmt.Errorf("schema[%d]: invalid cache_ttl: %w", i, err)
				}
			}
		default:
			return fmt.Errorf("schema[%d]: invalid type %q", i, source.Type)
		}
	}

	if len(c.Documents.Include) == 0 {
		return fmt.Errorf("documents.include cannot be empty")
	}

	for rule, sev := range c.Extensions.Lint {
		switch lint.Severity(sev) {
		case lint.SeverityOff, lint.SeverityWarn, lint.SeverityError:
		default:
			return fmt.Errorf("extensions.lint[%s]: invalid severity %q (must be 'error', 'warn', or 'off')", rule, sev)
		}
	}

	return nil
}

func validateClient(client string) error {
	switch client {
	case "", "apollo", "relay", "none":
		return nil
	default:
		return fmt.Errorf("extensions.client: invalid value %q (must be 'apollo', 'relay', or 'none')", client)
	}
}

// validateURL checks if a URL string is valid
func validateURL(urlStr string) error {
	u, err := url.Parse(urlStr)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL must use http or https scheme")
	}
	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}
	return nil
}

// validateDuration checks if a duration string is valid
func validateDuration(duration string) error {
	_, err := time.ParseDuration(duration)
	return err
}

// ResolveRelativePaths resolves all relative paths in the config
// relative to the config file's own directory.
func (c *Config) ResolveRelativePaths(configPath string) {
	baseDir := filepath.Dir(configPath)

	for i := range c.Schema {
		if c.Schema[i].Path != "" && !filepath.IsAbs(c.Schema[i].Path) {
			c.Schema[i].Path = filepath.Join(baseDir, c.Schema[i].Path)
		}
	}

	for i := range c.Documents.Include {
		if !filepath.IsAbs(c.Documents.Include[i]) {
			c.Documents.Include[i] = filepath.Join(baseDir, c.Documents.Include[i])
		}
	}
	for i := range c.Documents.Exclude {
		if !filepath.IsAbs(c.Documents.Exclude[i]) {
			c.Documents.Exclude[i] = filepath.Join(baseDir, c.Documents.Exclude[i])
		}
	}
}
