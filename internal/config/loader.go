package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"gopkg.in/yaml.v3"

	"plandrift/pkg/logging"
)

// Loader reads scan configuration files
type Loader struct {
	logger logging.Logger
}

// NewLoader creates a new Loader with the default logger
func NewLoader() *Loader {
	return NewLoaderWithLogger(logging.NewDefaultLogger())
}

// NewLoaderWithLogger creates a new Loader with a specific logger
func NewLoaderWithLogger(logger logging.Logger) *Loader {
	return &Loader{
		logger: logger,
	}
}

// Load parses an HCL (.hcl) or YAML (.yaml, .yml) configuration file, fills
// in defaults and validates the result.
func (l *Loader) Load(path string) (*Config, error) {
	var (
		cfg *Config
		err error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".hcl":
		cfg, err = l.parseHCL(path)
	case ".yaml", ".yml":
		cfg, err = l.parseYAML(path)
	default:
		return nil, fmt.Errorf("unsupported configuration format: %s", path)
	}
	if err != nil {
		return nil, err
	}

	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration %s: %w", path, err)
	}

	l.logger.Debug("Loaded %d scan targets from %s", len(cfg.Targets), path)
	return cfg, nil
}

func (l *Loader) parseHCL(path string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %s", path, diags.Error())
	}

	if file == nil || file.Body == nil {
		return nil, fmt.Errorf("parsed HCL file is empty or invalid: %s", path)
	}

	var cfg Config
	diags = gohcl.DecodeBody(file.Body, nil, &cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL body %s: %s", path, diags.Error())
	}
	return &cfg, nil
}

func (l *Loader) parseYAML(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode YAML file %s: %w", path, err)
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = runtime.NumCPU()
	}
	if cfg.MaxPlanBytes <= 0 {
		cfg.MaxPlanBytes = DefaultMaxPlanBytes
	}
	if cfg.Store == nil {
		cfg.Store = &StoreConfig{Driver: DriverMemory}
	}
	if cfg.TFE != nil && cfg.TFE.Token == "" {
		cfg.TFE.Token = os.Getenv("TFE_TOKEN")
	}
	if cfg.Email != nil {
		if cfg.Email.SMTPPort == 0 {
			cfg.Email.SMTPPort = 587
		}
		if cfg.Email.Password == "" {
			cfg.Email.Password = os.Getenv("PLANDRIFT_SMTP_PASSWORD")
		}
	}
	for _, t := range cfg.Targets {
		if t.Source == "" {
			t.Source = SourceCLI
		}
		if t.Dir == "" && t.Source == SourceCLI {
			t.Dir = "."
		}
	}
}

// Validate checks that the configuration can drive a scan.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return fmt.Errorf("at least one target is required")
	}

	switch c.Store.Driver {
	case DriverMemory, DriverSQLite, DriverRedis:
	case DriverDynamoDB:
		if c.Store.Table == "" {
			return fmt.Errorf("store driver %q requires a table", c.Store.Driver)
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}

	seen := make(map[string]bool, len(c.Targets))
	for _, t := range c.Targets {
		if t.Name == "" {
			return fmt.Errorf("target name cannot be empty")
		}
		if strings.ContainsAny(t.Name, "#/") {
			return fmt.Errorf("target %q: name cannot contain '#' or '/'", t.Name)
		}
		if seen[t.Name] {
			return fmt.Errorf("duplicate target %q", t.Name)
		}
		seen[t.Name] = true

		switch t.Source {
		case SourceCLI:
		case SourceTFE:
			if c.TFE == nil {
				return fmt.Errorf("target %q uses source %q but no tfe block is configured", t.Name, t.Source)
			}
			if t.Workspace == "" {
				return fmt.Errorf("target %q: workspace is required for source %q", t.Name, t.Source)
			}
		default:
			return fmt.Errorf("target %q: unknown source %q", t.Name, t.Source)
		}

		switch t.AlertChannel {
		case "":
		case ChannelEmail:
			if c.Email == nil {
				return fmt.Errorf("target %q alerts by email but no email block is configured", t.Name)
			}
			if len(t.AlertTo) == 0 {
				return fmt.Errorf("target %q: alert_to is required for email alerts", t.Name)
			}
		case ChannelSlack:
			if c.Slack == nil {
				return fmt.Errorf("target %q alerts on slack but no slack block is configured", t.Name)
			}
		default:
			return fmt.Errorf("target %q: unknown alert channel %q", t.Name, t.AlertChannel)
		}
	}

	return nil
}

// Target returns the named target, or nil.
func (c *Config) Target(name string) *Target {
	for _, t := range c.Targets {
		if t.Name == name {
			return t
		}
	}
	return nil
}
