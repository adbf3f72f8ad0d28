// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment represents the deployment environment.
type Environment string

const (
	// Development is for local development machines.
	Development Environment = "development"
	// Staging is for pre-production testing.
	Staging Environment = "staging"
	// Production is for production deployments.
	Production Environment = "production"
)

// Duration is a time.Duration that unmarshals from YAML strings such
// as "30s" or "1m30s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var text string
	if err := value.Decode(&text); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(text)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the master configuration for the reporting binaries.
type Config struct {
	// Environment names the deployment. It is also reported as the
	// "environment" instance tag on every data point.
	Environment Environment `yaml:"environment"`

	// Node identifies this service instance.
	Node NodeConfig `yaml:"node"`

	// Report configures delivery to the metrics collector.
	Report ReportConfig `yaml:"report"`

	// Per-environment overrides, applied after the base config is
	// loaded.
	Development *ConfigOverrides `yaml:"development,omitempty"`
	Staging     *ConfigOverrides `yaml:"staging,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`
}

// ConfigOverrides contains fields that can be overridden per environment.
type ConfigOverrides struct {
	Node   *NodeConfig     `yaml:"node,omitempty"`
	Report *ReportOverride `yaml:"report,omitempty"`
}

// NodeConfig identifies the service instance.
type NodeConfig struct {
	// Application is the name of the service emitting metrics.
	Application string `yaml:"application"`

	// InternalHostname is the host name reported with every data
	// point. Empty means "use os.Hostname()".
	InternalHostname string `yaml:"internal_hostname"`

	// Pool groups instances of an application within an environment.
	// Default: general
	Pool string `yaml:"pool"`
}

// ReportConfig configures the report client.
type ReportConfig struct {
	// Enabled turns delivery on. When false every report is a no-op.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// URI is the base URI of the collector. The upload path is
	// resolved relative to it.
	URI string `yaml:"uri"`

	// Timeout bounds one upload, including streaming the body.
	// Default: 30s
	Timeout Duration `yaml:"timeout"`

	// Interval is how often the reporter daemon snapshots and
	// reports. Default: 60s
	Interval Duration `yaml:"interval"`

	// Tags are static tags attached to every data point, after the
	// node identity tags.
	Tags map[string]string `yaml:"tags"`
}

// ReportOverride is the per-environment form of ReportConfig. Nil
// and empty fields leave the base value alone; Tags are merged on
// top of the base tags.
type ReportOverride struct {
	Enabled  *bool             `yaml:"enabled,omitempty"`
	URI      string            `yaml:"uri,omitempty"`
	Timeout  Duration          `yaml:"timeout,omitempty"`
	Interval Duration          `yaml:"interval,omitempty"`
	Tags     map[string]string `yaml:"tags,omitempty"`
}

// Default returns the default configuration. These defaults are used
// as a base before loading the config file.
func Default() *Config {
	return &Config{
		Environment: Development,
		Node: NodeConfig{
			Pool: "general",
		},
		Report: ReportConfig{
			Enabled:  true,
			Timeout:  Duration(30 * time.Second),
			Interval: Duration(60 * time.Second),
		},
	}
}

// Load loads configuration from the REPORTING_CONFIG environment
// variable. There are no fallbacks - if REPORTING_CONFIG is not set,
// this fails.
func Load() (*Config, error) {
	configPath := os.Getenv("REPORTING_CONFIG")
	if configPath == "" {
		return nil, fmt.Errorf("REPORTING_CONFIG environment variable not set; " +
			"set it to the path of your reporting.yaml config file, or use --config flag")
	}

	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()

	return cfg, nil
}

// loadFile loads a single configuration file, merging into the current config.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// applyEnvironmentOverrides applies the environment-specific overrides.
func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides

	switch c.Environment {
	case Development:
		overrides = c.Development
	case Staging:
		overrides = c.Staging
	case Production:
		overrides = c.Production
	}

	if overrides == nil {
		return
	}

	if overrides.Node != nil {
		if overrides.Node.Application != "" {
			c.Node.Application = overrides.Node.Application
		}
		if overrides.Node.InternalHostname != "" {
			c.Node.InternalHostname = overrides.Node.InternalHostname
		}
		if overrides.Node.Pool != "" {
			c.Node.Pool = overrides.Node.Pool
		}
	}

	if report := overrides.Report; report != nil {
		if report.Enabled != nil {
			c.Report.Enabled = *report.Enabled
		}
		if report.URI != "" {
			c.Report.URI = report.URI
		}
		if report.Timeout != 0 {
			c.Report.Timeout = report.Timeout
		}
		if report.Interval != 0 {
			c.Report.Interval = report.Interval
		}
		if len(report.Tags) > 0 {
			merged := make(map[string]string, len(c.Report.Tags)+len(report.Tags))
			maps.Copy(merged, c.Report.Tags)
			maps.Copy(merged, report.Tags)
			c.Report.Tags = merged
		}
	}
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}

	c.Report.URI = expandVars(c.Report.URI, vars)
	c.Node.InternalHostname = expandVars(c.Node.InternalHostname, vars)
}

// expandVars expands ${VAR} and ${VAR:-default} patterns.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Check provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors. Every problem is
// reported, joined into one error.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment == "" {
		errs = append(errs, fmt.Errorf("environment is required"))
	}

	if c.Node.Application == "" {
		errs = append(errs, fmt.Errorf("node.application is required"))
	}

	if c.Node.Pool == "" {
		errs = append(errs, fmt.Errorf("node.pool is required"))
	}

	if c.Report.Enabled && c.Report.URI == "" {
		errs = append(errs, fmt.Errorf("report.uri is required when report.enabled is true"))
	}

	if c.Report.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("report.timeout must be positive, got %s", c.Report.Timeout.Std()))
	}

	if c.Report.Interval <= 0 {
		errs = append(errs, fmt.Errorf("report.interval must be positive, got %s", c.Report.Interval.Std()))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
