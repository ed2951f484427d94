package generator

import (
	"os"
	"testing"

	"github.com/rom111419/formtree/internal/config"
	"github.com/rom111419/formtree/internal/models"
	"github.com/rom111419/formtree/internal/parser"
	"github.com/rom111419/formtree/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegration_ParserBuilderGenerator(t *testing.T) {
	// Test the full pipeline: Parser -> Builder -> Generator
	jsonInput := `{
		"user_id": 123,
		"username": "johndoe",
		"is_active": true,
		"profile": {
			"full_name": "John Doe",
			"email": "john.doe@example.com"
		}
	}`

	doc, err := parser.ParseString(jsonInput, models.FormatAuto)
	require.NoError(t, err)

	builder, err := config.NewBuilderWithConfig(config.NewConfig(), nil)
	require.NoError(t, err)
	tree, err := builder.Build(doc.Root, "")
	require.NoError(t, err)

	generated, err := NewGenerator().Generate(tree, FormatOutline)
	require.NoError(t, err)

	expected := `$: group, 4 fields
  User id (user_id): 123
  Username (username): "johndoe"
  Is active (is_active): true
  Profile (profile): group, 2 fields
    Full name (full_name): "John Doe"
    Email (email): "john.doe@example.com"
`
	assert.Equal(t, expected, generated)
}

func TestIntegration_ArrayOfObjects(t *testing.T) {
	yamlInput := `
- id: 1
  name: Product 1
  price: 19.99
- id: 2
  name: Product 2
  price: 29.99
`

	doc, err := parser.ParseString(yamlInput, models.FormatYAML)
	require.NoError(t, err)

	builder, err := config.NewBuilderWithConfig(config.NewConfig(), nil)
	require.NoError(t, err)
	tree, err := builder.Build(doc.Root, "products")
	require.NoError(t, err)

	generated, err := NewGenerator().Generate(tree, FormatOutline)
	require.NoError(t, err)

	expected := `$: group, 1 field
  Products (products): list, 2 items
    [0]: group, 3 fields
      Id (id): 1
      Name (name): "Product 1"
      Price (price): 19.99
    [1]: group, 3 fields
      Id (id): 2
      Name (name): "Product 2"
      Price (price): 29.99
`
	assert.Equal(t, expected, generated)
}

func TestIntegration_ConfigDropsNestedObjects(t *testing.T) {
	configYAML := `
build:
  nested_objects: drop
  root_field: user
output:
  indent: "    "
labels:
  field_mappings:
    "dob": "Date of birth"
`

	tmpFile, err := os.CreateTemp("", "integration_test_*.yml")
	require.NoError(t, err)
	defer func() { _ = os.Remove(tmpFile.Name()) }()

	_, err = tmpFile.WriteString(configYAML)
	require.NoError(t, err)
	_ = tmpFile.Close()

	cfg, err := config.LoadConfig(tmpFile.Name())
	require.NoError(t, err)

	doc, err := parser.ParseString(`{"name": "Ann", "dob": "1990-01-01", "address": {"city": "Oslo"}}`, models.FormatJSON)
	require.NoError(t, err)

	builder, err := config.NewBuilderWithConfig(cfg, nil)
	require.NoError(t, err)
	tree, err := builder.Build(doc.Root, cfg.Build.RootField)
	require.NoError(t, err)

	generated, err := NewGeneratorWithConfig(cfg, nil).Generate(tree, FormatOutline)
	require.NoError(t, err)

	expected := `$: group, 1 field
    User (user): group, 2 fields
        Name (name): "Ann"
        Date of birth (dob): "1990-01-01"
`
	assert.Equal(t, expected, generated)
}

func TestIntegration_SchemaSeed(t *testing.T) {
	s, err := schema.ParseString(`{
		"type": "object",
		"properties": {
			"title": {"type": "string", "default": "Untitled"},
			"tags": {"type": "array", "items": {"type": "string"}, "minItems": 1},
			"meta": {"type": "object", "properties": {"draft": {"type": "boolean"}}}
		}
	}`)
	require.NoError(t, err)

	seed, err := schema.NewSeeder(s).Seed()
	require.NoError(t, err)

	builder, err := config.NewBuilderWithConfig(config.NewConfig(), nil)
	require.NoError(t, err)
	tree, err := builder.Build(seed, "")
	require.NoError(t, err)

	generated, err := NewGenerator().Generate(tree, FormatOutline)
	require.NoError(t, err)

	expected := `$: group, 3 fields
  Meta (meta): group, 1 field
    Draft (draft): false
  Tags (tags): list, 1 item
    [0]: ""
  Title (title): "Untitled"
`
	assert.Equal(t, expected, generated)
}
