package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
	"k8s.io/apimachinery/pkg/labels"
)

// Output formats understood by the reporter.
const (
	OutputTable = "table"
	OutputJSON  = "json"
	OutputYAML  = "yaml"
)

// Target is one namespace/label-selector pair whose pods are reported.
type Target struct {
	Namespace     string `yaml:"namespace" json:"namespace"`
	LabelSelector string `yaml:"selector" json:"selector"`
}

func (t Target) String() string {
	return t.Namespace + ":" + t.LabelSelector
}

// Config holds everything a single report run needs.
type Config struct {
	Targets []Target `yaml:"targets"`

	// Report features
	IncludeReadiness  bool   `yaml:"include_readiness"`
	TrackUnused       bool   `yaml:"track_unused"`
	UnusedGroupPrefix string `yaml:"unused_group_prefix"`

	// Output configuration
	Output      string `yaml:"output"`
	NoColor     bool   `yaml:"no_color"`
	MarkdownDir string `yaml:"markdown_dir"`
}

// DefaultTargets are the Couchbase server and Sync Gateway workloads.
func DefaultTargets() []Target {
	return []Target{
		{Namespace: "couchbase", LabelSelector: "app=couchbase"},
		{Namespace: "couchbase-sync", LabelSelector: "app=sync-gateway"},
	}
}

// DefaultConfig returns the default configuration, equivalent to report version 2.
func DefaultConfig() *Config {
	return &Config{
		Targets:           DefaultTargets(),
		IncludeReadiness:  true,
		TrackUnused:       true,
		UnusedGroupPrefix: "cb",
		Output:            OutputTable,
	}
}

// ApplyVersion switches the report features to a historical report layout.
// Version 1 is the plain placement table; version 2 adds readiness and unused-node tracking.
func (c *Config) ApplyVersion(version int) error {
	switch version {
	case 1:
		c.IncludeReadiness = false
		c.TrackUnused = false
	case 2:
		c.IncludeReadiness = true
		c.TrackUnused = true
	default:
		return fmt.Errorf("report version must be 1 or 2, got %d", version)
	}
	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return fmt.Errorf("at least one target is required")
	}
	for i, t := range c.Targets {
		if t.Namespace == "" {
			return fmt.Errorf("targets[%d]: namespace must not be empty", i)
		}
		if _, err := labels.Parse(t.LabelSelector); err != nil {
			return fmt.Errorf("targets[%d]: invalid selector %q: %w", i, t.LabelSelector, err)
		}
	}

	validOutputs := map[string]bool{
		OutputTable: true,
		OutputJSON:  true,
		OutputYAML:  true,
	}
	if !validOutputs[strings.ToLower(c.Output)] {
		return fmt.Errorf("output must be one of: table, json, yaml, got %s", c.Output)
	}

	if c.TrackUnused && c.UnusedGroupPrefix == "" {
		return fmt.Errorf("unused_group_prefix must not be empty when unused tracking is enabled")
	}
	return nil
}

// LoadConfig reads a YAML file on top of base. An empty path returns base unchanged.
func LoadConfig(path string, base *Config) (*Config, error) {
	if base == nil {
		base = DefaultConfig()
	}
	if path == "" {
		return base, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, base); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return base, nil
}

// ParseTarget parses "namespace:selector". The selector may be empty to match every pod.
func ParseTarget(s string) (Target, error) {
	ns, sel, ok := strings.Cut(s, ":")
	if !ok {
		return Target{}, fmt.Errorf("target %q must be in the form NAMESPACE:SELECTOR", s)
	}
	ns = strings.TrimSpace(ns)
	if ns == "" {
		return Target{}, fmt.Errorf("target %q has an empty namespace", s)
	}
	return Target{Namespace: ns, LabelSelector: strings.TrimSpace(sel)}, nil
}
