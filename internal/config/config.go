package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"

	"github.com/rom111419/formtree/internal/errors"
	"github.com/rom111419/formtree/pkg/formtree"
	"gopkg.in/yaml.v3"
)

// Config represents the complete configuration for formtree
type Config struct {
	Build  BuildConfig  `yaml:"build"`
	Input  InputConfig  `yaml:"input"`
	Output OutputConfig `yaml:"output"`
	Labels LabelsConfig `yaml:"labels"`
	Dev    DevConfig    `yaml:"dev"`
}

// BuildConfig controls how form trees are built
type BuildConfig struct {
	RootField     string `yaml:"root_field"`     // Wraps the tree in a single-field group when set
	NestedObjects string `yaml:"nested_objects"` // "nest" or "drop"
	MaxDepth      int    `yaml:"max_depth"`
}

// InputConfig controls how input is read
type InputConfig struct {
	Format string `yaml:"format"` // auto, json or yaml
}

// OutputConfig controls output rendering
type OutputConfig struct {
	Format string `yaml:"format"` // json, yaml or outline
	Color  bool   `yaml:"color"`
	Indent string `yaml:"indent"`
}

// LabelsConfig controls how field names are shown in outlines
type LabelsConfig struct {
	Humanize      bool              `yaml:"humanize"`
	FieldMappings map[string]string `yaml:"field_mappings"`
	Rules         []LabelRule       `yaml:"rules"`
}

// LabelRule defines a pattern-based label for matching field names
type LabelRule struct {
	Pattern string `yaml:"pattern"`
	Label   string `yaml:"label"`

	// compiled regex (not serialized)
	regex *regexp.Regexp
}

// DevConfig contains development/debug options
type DevConfig struct {
	Debug   bool `yaml:"debug"`
	Verbose bool `yaml:"verbose"`
}

var (
	validInputFormats  = []string{"auto", "json", "yaml"}
	validOutputFormats = []string{"json", "yaml", "outline"}
)

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Build: BuildConfig{
			NestedObjects: string(formtree.NestObjects),
			MaxDepth:      formtree.DefaultMaxDepth,
		},
		Input: InputConfig{
			Format: "auto",
		},
		Output: OutputConfig{
			Format: "json",
			Color:  true,
			Indent: "  ",
		},
		Labels: LabelsConfig{
			Humanize:      true,
			FieldMappings: make(map[string]string),
			Rules:         []LabelRule{},
		},
		Dev: DevConfig{
			Debug:   false,
			Verbose: false,
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewConfigError("failed to read config file", err)
	}

	// Start with defaults
	cfg := NewConfig()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.NewConfigError("failed to parse config file", err)
	}

	if err := cfg.compilePatterns(); err != nil {
		return nil, errors.NewConfigError("failed to compile patterns", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	configNames := []string{".formtree.yml", ".formtree.yaml", "formtree.yml", "formtree.yaml"}

	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	// Search up the directory tree
	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root directory
			break
		}
		currentDir = parentDir
	}

	return ""
}

// Validate checks enumerated settings and limits
func (c *Config) Validate() error {
	if _, err := formtree.ParseNestedPolicy(c.Build.NestedObjects); err != nil {
		return errors.NewConfigError(fmt.Sprintf("invalid build.nested_objects %q", c.Build.NestedObjects), err)
	}
	if c.Build.MaxDepth < 0 {
		return errors.NewConfigError(fmt.Sprintf("build.max_depth must not be negative, got %d", c.Build.MaxDepth), nil)
	}
	if c.Input.Format != "" && !contains(validInputFormats, c.Input.Format) {
		return errors.NewConfigError(fmt.Sprintf("invalid input.format %q", c.Input.Format), errors.ErrUnsupportedFormat)
	}
	if c.Output.Format != "" && !contains(validOutputFormats, c.Output.Format) {
		return errors.NewConfigError(fmt.Sprintf("invalid output.format %q", c.Output.Format), errors.ErrUnsupportedFormat)
	}
	return nil
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

// compilePatterns compiles all regex patterns in the config
func (c *Config) compilePatterns() error {
	for i := range c.Labels.Rules {
		rule := &c.Labels.Rules[i]
		regex, err := regexp.Compile(rule.Pattern)
		if err != nil {
			return fmt.Errorf("invalid label rule pattern '%s': %w", rule.Pattern, err)
		}
		rule.regex = regex
	}
	return nil
}

// MatchesField checks if this label rule matches the given field name
func (lr *LabelRule) MatchesField(fieldName string) bool {
	if lr.regex == nil {
		// Try to compile if not already compiled (fallback)
		regex, err := regexp.Compile(lr.Pattern)
		if err != nil {
			return false
		}
		lr.regex = regex
	}
	return lr.regex.MatchString(fieldName)
}

// FindLabel returns the configured label for a field name: an exact mapping first,
// then the first matching rule.
func (c *Config) FindLabel(fieldName string) (string, bool) {
	if mapped, exists := c.Labels.FieldMappings[fieldName]; exists {
		return mapped, true
	}
	for i := range c.Labels.Rules {
		if c.Labels.Rules[i].MatchesField(fieldName) {
			return c.Labels.Rules[i].Label, true
		}
	}
	return "", false
}

// BuilderOptions maps the build section onto form tree builder options
func (c *Config) BuilderOptions(logger *slog.Logger) ([]formtree.Option, error) {
	policy, err := formtree.ParseNestedPolicy(c.Build.NestedObjects)
	if err != nil {
		return nil, errors.NewConfigError(fmt.Sprintf("invalid build.nested_objects %q", c.Build.NestedObjects), err)
	}
	return []formtree.Option{
		formtree.WithMaxDepth(c.Build.MaxDepth),
		formtree.WithNestedObjects(policy),
		formtree.WithLogger(logger),
	}, nil
}

// NewBuilderWithConfig creates a form tree builder configured from cfg
func NewBuilderWithConfig(cfg *Config, logger *slog.Logger) (*formtree.Builder, error) {
	opts, err := cfg.BuilderOptions(logger)
	if err != nil {
		return nil, err
	}
	return formtree.NewBuilder(opts...), nil
}

// MergeConfigs merges overrides into a base config. Non-empty values from override take
// precedence; colour and humanized labels can only be switched off, debug only on.
func MergeConfigs(base, override *Config) *Config {
	merged := *base // Start with a copy of base

	if override.Build.RootField != "" {
		merged.Build.RootField = override.Build.RootField
	}
	if override.Build.NestedObjects != "" {
		merged.Build.NestedObjects = override.Build.NestedObjects
	}
	if override.Build.MaxDepth > 0 {
		merged.Build.MaxDepth = override.Build.MaxDepth
	}
	if override.Input.Format != "" {
		merged.Input.Format = override.Input.Format
	}
	if override.Output.Format != "" {
		merged.Output.Format = override.Output.Format
	}
	if override.Output.Indent != "" {
		merged.Output.Indent = override.Output.Indent
	}
	merged.Output.Color = base.Output.Color && override.Output.Color
	merged.Labels.Humanize = base.Labels.Humanize && override.Labels.Humanize

	merged.Labels.FieldMappings = make(map[string]string, len(base.Labels.FieldMappings)+len(override.Labels.FieldMappings))
	for k, v := range base.Labels.FieldMappings {
		merged.Labels.FieldMappings[k] = v
	}
	for k, v := range override.Labels.FieldMappings {
		merged.Labels.FieldMappings[k] = v
	}
	merged.Labels.Rules = append(append([]LabelRule{}, override.Labels.Rules...), base.Labels.Rules...)

	merged.Dev.Debug = base.Dev.Debug || override.Dev.Debug
	merged.Dev.Verbose = base.Dev.Verbose || override.Dev.Verbose

	return &merged
}

// CLIOverrides holds the flag values that take precedence over the config file.
// Zero values mean the flag was not given.
type CLIOverrides struct {
	RootField     string
	NestedObjects string
	MaxDepth      int
	InputFormat   string
	OutputFormat  string
	NoColor       bool
	Debug         bool
}

// LoadConfigWithCLI loads config with CLI argument precedence: defaults, then the config
// file, then flags.
func LoadConfigWithCLI(configPath string, cli CLIOverrides) (*Config, error) {
	cfg := NewConfig()

	if configPath != "" {
		fileConfig, err := LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileConfig
	}

	override := &Config{
		Build: BuildConfig{
			RootField:     cli.RootField,
			NestedObjects: cli.NestedObjects,
			MaxDepth:      cli.MaxDepth,
		},
		Input:  InputConfig{Format: cli.InputFormat},
		Output: OutputConfig{Format: cli.OutputFormat, Color: !cli.NoColor},
		Labels: LabelsConfig{Humanize: true},
		Dev:    DevConfig{Debug: cli.Debug},
	}
	cfg = MergeConfigs(cfg, override)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
