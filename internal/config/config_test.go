package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rom111419/formtree/internal/errors"
	"github.com/rom111419/formtree/pkg/formtree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmpFile, err := os.CreateTemp("", "config_test_*.yml")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Remove(tmpFile.Name()) })

	_, err = tmpFile.WriteString(content)
	require.NoError(t, err)
	_ = tmpFile.Close()
	return tmpFile.Name()
}

func TestConfig_DefaultValues(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, "", cfg.Build.RootField)
	assert.Equal(t, "nest", cfg.Build.NestedObjects)
	assert.Equal(t, formtree.DefaultMaxDepth, cfg.Build.MaxDepth)
	assert.Equal(t, "auto", cfg.Input.Format)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.True(t, cfg.Output.Color)
	assert.Equal(t, "  ", cfg.Output.Indent)
	assert.True(t, cfg.Labels.Humanize)
	assert.Empty(t, cfg.Labels.FieldMappings)
	assert.False(t, cfg.Dev.Debug)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_LoadFromYAML(t *testing.T) {
	path := writeConfig(t, `
build:
  root_field: "profile"
  nested_objects: "drop"
  max_depth: 64
input:
  format: "yaml"
output:
  format: "outline"
  color: false
  indent: "    "
labels:
  humanize: false
  field_mappings:
    "dob": "Date of birth"
  rules:
    - pattern: ".*_id$"
      label: "Identifier"
dev:
  debug: true
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "profile", cfg.Build.RootField)
	assert.Equal(t, "drop", cfg.Build.NestedObjects)
	assert.Equal(t, 64, cfg.Build.MaxDepth)
	assert.Equal(t, "yaml", cfg.Input.Format)
	assert.Equal(t, "outline", cfg.Output.Format)
	assert.False(t, cfg.Output.Color)
	assert.Equal(t, "    ", cfg.Output.Indent)
	assert.False(t, cfg.Labels.Humanize)
	assert.Equal(t, "Date of birth", cfg.Labels.FieldMappings["dob"])
	assert.True(t, cfg.Dev.Debug)

	require.Len(t, cfg.Labels.Rules, 1)
	rule := cfg.Labels.Rules[0]
	assert.Equal(t, ".*_id$", rule.Pattern)
	assert.Equal(t, "Identifier", rule.Label)
}

func TestConfig_PartialFileKeepsDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "output:\n  format: yaml\n"))
	require.NoError(t, err)

	assert.Equal(t, "yaml", cfg.Output.Format)
	assert.True(t, cfg.Output.Color)
	assert.Equal(t, "nest", cfg.Build.NestedObjects)
	assert.Equal(t, formtree.DefaultMaxDepth, cfg.Build.MaxDepth)
}

func TestConfig_LoadNonExistentFile(t *testing.T) {
	_, err := LoadConfig("/non/existent/config.yml")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no such file or directory")
	assert.ErrorIs(t, err, &errors.AppError{Type: errors.ErrorTypeConfig})
}

func TestConfig_LoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, `
build:
  root_field: "x"
invalid_yaml: [unclosed array
`)

	_, err := LoadConfig(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestConfig_LoadInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantMsg string
	}{
		{"unknown nested policy", "build:\n  nested_objects: flatten\n", "build.nested_objects"},
		{"negative depth", "build:\n  max_depth: -1\n", "build.max_depth"},
		{"unknown input format", "input:\n  format: toml\n", "input.format"},
		{"unknown output format", "output:\n  format: html\n", "output.format"},
		{"bad label pattern", "labels:\n  rules:\n    - pattern: \"[oops\"\n      label: x\n", "invalid label rule pattern"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
			assert.ErrorIs(t, err, &errors.AppError{Type: errors.ErrorTypeConfig})
		})
	}
}

func TestConfig_FindConfigFile(t *testing.T) {
	tmpDir := t.TempDir()

	nestedDir := filepath.Join(tmpDir, "project", "subdir")
	err := os.MkdirAll(nestedDir, 0o755)
	require.NoError(t, err)

	// Create config file in project root
	configPath := filepath.Join(tmpDir, "project", ".formtree.yml")
	err = os.WriteFile(configPath, []byte("build:\n  root_field: found\n"), 0o644)
	require.NoError(t, err)

	originalWd, err := os.Getwd()
	require.NoError(t, err)
	defer func() { _ = os.Chdir(originalWd) }()

	err = os.Chdir(nestedDir)
	require.NoError(t, err)

	// Should find it in the parent directory
	foundPath := FindConfigFile()
	expected, err := filepath.EvalSymlinks(configPath)
	require.NoError(t, err)
	actual, err := filepath.EvalSymlinks(foundPath)
	require.NoError(t, err)
	assert.Equal(t, expected, actual)
}

func TestConfig_FindConfigFileNotFound(t *testing.T) {
	tmpDir := t.TempDir()

	originalWd, err := os.Getwd()
	require.NoError(t, err)
	defer func() { _ = os.Chdir(originalWd) }()

	err = os.Chdir(tmpDir)
	require.NoError(t, err)

	// Should not find config file
	foundPath := FindConfigFile()
	assert.Empty(t, foundPath)
}

func TestLabelRule_MatchesPattern(t *testing.T) {
	rule := LabelRule{
		Pattern: ".*_id$",
		Label:   "Identifier",
	}

	assert.True(t, rule.MatchesField("user_id"))
	assert.True(t, rule.MatchesField("product_id"))
	assert.False(t, rule.MatchesField("username"))
	assert.False(t, rule.MatchesField("id_number"))
}

func TestLabelRule_InvalidPattern(t *testing.T) {
	rule := LabelRule{Pattern: "[invalid regex", Label: "x"}

	// Should not panic and should return false for invalid regex
	assert.False(t, rule.MatchesField("user_id"))
}

func TestConfig_FindLabel(t *testing.T) {
	cfg := &Config{
		Labels: LabelsConfig{
			FieldMappings: map[string]string{
				"user_id": "User",
			},
			Rules: []LabelRule{
				{Pattern: ".*_id$", Label: "Identifier"},
				{Pattern: "^e?mail", Label: "Email"},
			},
		},
	}

	// Exact mappings take precedence over rules
	label, found := cfg.FindLabel("user_id")
	assert.True(t, found)
	assert.Equal(t, "User", label)

	label, found = cfg.FindLabel("order_id")
	assert.True(t, found)
	assert.Equal(t, "Identifier", label)

	label, found = cfg.FindLabel("email_address")
	assert.True(t, found)
	assert.Equal(t, "Email", label)

	_, found = cfg.FindLabel("username")
	assert.False(t, found)
}

func TestConfig_NewBuilderWithConfig(t *testing.T) {
	cfg := NewConfig()
	cfg.Build.NestedObjects = "drop"

	builder, err := NewBuilderWithConfig(cfg, nil)
	require.NoError(t, err)

	input := map[string]any{"name": "x", "address": map[string]any{"city": "y"}}
	node, err := builder.Build(input, "")
	require.NoError(t, err)

	group, ok := node.(*formtree.Group)
	require.True(t, ok)
	assert.Equal(t, []string{"name"}, group.Names())

	cfg.Build.NestedObjects = "sideways"
	_, err = NewBuilderWithConfig(cfg, nil)
	assert.Error(t, err)
}

func TestConfig_NewBuilderWithConfigMaxDepth(t *testing.T) {
	cfg := NewConfig()
	cfg.Build.MaxDepth = 2

	builder, err := NewBuilderWithConfig(cfg, nil)
	require.NoError(t, err)

	_, err = builder.Build([]any{[]any{[]any{1}}}, "")
	assert.ErrorIs(t, err, formtree.ErrMaxDepthExceeded)
}

func TestConfig_MergeConfigs(t *testing.T) {
	base := NewConfig()
	base.Build.RootField = "profile"
	base.Output.Format = "yaml"
	base.Labels.FieldMappings["dob"] = "Birthday"

	override := &Config{
		Build:  BuildConfig{NestedObjects: "drop"},
		Output: OutputConfig{Format: "outline", Color: false},
		Labels: LabelsConfig{
			Humanize:      true,
			FieldMappings: map[string]string{"zip": "Postcode"},
		},
		Dev: DevConfig{Debug: true},
	}

	merged := MergeConfigs(base, override)

	assert.Equal(t, "profile", merged.Build.RootField) // Kept from base
	assert.Equal(t, "drop", merged.Build.NestedObjects)
	assert.Equal(t, formtree.DefaultMaxDepth, merged.Build.MaxDepth)
	assert.Equal(t, "outline", merged.Output.Format)
	assert.False(t, merged.Output.Color)
	assert.True(t, merged.Labels.Humanize)
	assert.Equal(t, map[string]string{"dob": "Birthday", "zip": "Postcode"}, merged.Labels.FieldMappings)
	assert.True(t, merged.Dev.Debug)

	// The base config is untouched
	assert.Equal(t, "yaml", base.Output.Format)
	assert.NotContains(t, base.Labels.FieldMappings, "zip")
}

func TestLoadConfigWithPrecedence(t *testing.T) {
	path := writeConfig(t, `
build:
  root_field: "file_root"
  nested_objects: "drop"
output:
  format: "yaml"
`)

	cfg, err := LoadConfigWithCLI(path, CLIOverrides{
		RootField:    "cli_root",
		OutputFormat: "outline",
		MaxDepth:     10,
		NoColor:      true,
	})
	require.NoError(t, err)

	// Verify precedence: CLI > config file > defaults
	assert.Equal(t, "cli_root", cfg.Build.RootField)
	assert.Equal(t, "outline", cfg.Output.Format)
	assert.Equal(t, 10, cfg.Build.MaxDepth)
	assert.False(t, cfg.Output.Color)
	assert.Equal(t, "drop", cfg.Build.NestedObjects) // From config file
	assert.Equal(t, "auto", cfg.Input.Format)        // Default value
}

func TestLoadConfigWithPrecedence_NoOverrides(t *testing.T) {
	path := writeConfig(t, `
build:
  root_field: "file_root"
output:
  color: false
`)

	cfg, err := LoadConfigWithCLI(path, CLIOverrides{})
	require.NoError(t, err)

	assert.Equal(t, "file_root", cfg.Build.RootField)
	assert.False(t, cfg.Output.Color)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.False(t, cfg.Dev.Debug)
}

func TestLoadConfigWithCLI_NoFile(t *testing.T) {
	cfg, err := LoadConfigWithCLI("", CLIOverrides{Debug: true, NestedObjects: "drop"})
	require.NoError(t, err)
	assert.True(t, cfg.Dev.Debug)
	assert.Equal(t, "drop", cfg.Build.NestedObjects)

	_, err = LoadConfigWithCLI("", CLIOverrides{OutputFormat: "xml"})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrUnsupportedFormat)
}
