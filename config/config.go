// Package config loads connector settings from YAML with environment
// overrides for secrets.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/yairfalse/silta/mapper"
	"github.com/yairfalse/silta/types"
)

// Config is the root configuration
type Config struct {
	Backstage BackstageConfig `yaml:"backstage"`
	Glean     GleanConfig     `yaml:"glean"`
	Sync      SyncConfig      `yaml:"sync"`
	OTEL      OTELConfig      `yaml:"otel,omitempty"`
	Log       LogConfig       `yaml:"log,omitempty"`
}

// BackstageConfig holds catalog API settings
type BackstageConfig struct {
	BaseURL   string `yaml:"base_url"`
	Token     string `yaml:"token,omitempty"`
	PageSize  int    `yaml:"page_size,omitempty"`
	VerifySSL *bool  `yaml:"verify_ssl,omitempty"`
}

// GleanConfig holds indexing API settings
type GleanConfig struct {
	Instance              string `yaml:"instance"`
	APIKey                string `yaml:"api_key"`
	Datasource            string `yaml:"datasource,omitempty"`
	DatasourceDisplayName string `yaml:"datasource_display_name,omitempty"`
}

// SyncConfig holds sync behavior settings
type SyncConfig struct {
	BatchSize     int      `yaml:"batch_size,omitempty"`
	Kinds         []string `yaml:"kinds,omitempty"`
	Permissions   string   `yaml:"permissions,omitempty"`
	DryRun        bool     `yaml:"dry_run,omitempty"`
	OutputJSONDir string   `yaml:"output_json_dir,omitempty"`
	JournalDir    string   `yaml:"journal_dir,omitempty"`
}

// OTELConfig holds telemetry export settings
type OTELConfig struct {
	Endpoint string `yaml:"endpoint,omitempty"`
	Insecure bool   `yaml:"insecure,omitempty"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `yaml:"level,omitempty"`
}

// Load reads, defaults, and validates a config file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is intentional user input
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// applyEnv lets secrets come from the environment instead of the file
func (c *Config) applyEnv() {
	if v := os.Getenv("BACKSTAGE_BASE_URL"); v != "" {
		c.Backstage.BaseURL = v
	}
	if v := os.Getenv("BACKSTAGE_API_TOKEN"); v != "" {
		c.Backstage.Token = v
	}
	if v := os.Getenv("GLEAN_INSTANCE_NAME"); v != "" {
		c.Glean.Instance = v
	}
	if v := os.Getenv("GLEAN_INDEXING_API_KEY"); v != "" {
		c.Glean.APIKey = v
	}
}

func (c *Config) applyDefaults() {
	if c.Backstage.PageSize == 0 {
		c.Backstage.PageSize = 100
	}
	if c.Backstage.VerifySSL == nil {
		verify := true
		c.Backstage.VerifySSL = &verify
	}
	if c.Glean.Datasource == "" {
		c.Glean.Datasource = "backstage"
	}
	if c.Glean.DatasourceDisplayName == "" {
		c.Glean.DatasourceDisplayName = "Backstage Catalog"
	}
	if c.Sync.BatchSize == 0 {
		c.Sync.BatchSize = 50
	}
	if len(c.Sync.Kinds) == 0 {
		c.Sync.Kinds = append([]string{}, types.AllKinds...)
	}
	for i, kind := range c.Sync.Kinds {
		c.Sync.Kinds[i] = types.CanonicalKind(kind)
	}
	if c.Sync.JournalDir == "" {
		c.Sync.JournalDir = ".silta"
	}
	if c.Sync.OutputJSONDir == "" {
		c.Sync.OutputJSONDir = "silta-sync-output"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate ensures required fields and enum values are sane.
// Policy validation runs here, before any mapping starts.
func (c *Config) Validate() error {
	if c.Backstage.BaseURL == "" {
		return fmt.Errorf("backstage.base_url is required")
	}
	if c.Glean.Instance == "" {
		return fmt.Errorf("glean.instance is required")
	}
	if c.Glean.APIKey == "" {
		return fmt.Errorf("glean.api_key is required")
	}
	if c.Sync.BatchSize < 1 || c.Sync.BatchSize > 100 {
		return fmt.Errorf("sync.batch_size must be between 1 and 100, got %d", c.Sync.BatchSize)
	}
	if c.Backstage.PageSize < 1 || c.Backstage.PageSize > 1000 {
		return fmt.Errorf("backstage.page_size must be between 1 and 1000, got %d", c.Backstage.PageSize)
	}
	for _, kind := range c.Sync.Kinds {
		if !types.IsKnownKind(kind) {
			return fmt.Errorf("unknown entity kind %q in sync.kinds", kind)
		}
	}
	if _, err := mapper.ParsePolicy(c.Sync.Permissions); err != nil {
		return err
	}
	return nil
}

// Policy returns the validated permissions policy
func (c *Config) Policy() mapper.Policy {
	p, _ := mapper.ParsePolicy(c.Sync.Permissions)
	return p
}

// VerifySSL reports whether TLS verification is enabled
func (c *Config) VerifySSL() bool {
	return c.Backstage.VerifySSL == nil || *c.Backstage.VerifySSL
}
