// Package schema reads JSON Schema documents and seeds sample values from them, so a
// form tree can be built for a schema before any real data exists.
package schema

import (
	"bytes"
	"encoding/json"
	stderrors "errors" // Standard errors package
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/rom111419/formtree/internal/errors"
	"github.com/rom111419/formtree/internal/logging"
	"github.com/rom111419/formtree/pkg/formtree"
	"github.com/rom111419/formtree/pkg/value"
)

var (
	ErrUnresolvedRef = stderrors.New("unresolved $ref")
	ErrExternalRef   = stderrors.New("external $ref not supported")
)

// SchemaType handles JSON Schema type field which can be string or array of strings
type SchemaType struct {
	Types []string
}

// UnmarshalJSON handles both string and array forms of type
func (st *SchemaType) UnmarshalJSON(data []byte) error {
	// Try string first
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		st.Types = []string{s}
		return nil
	}

	// Try array of strings
	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		st.Types = arr
		return nil
	}

	return fmt.Errorf("type must be string or array of strings")
}

// Primary returns the first type that is not "null", or "null" when that is the only
// one, or empty string if none
func (st SchemaType) Primary() string {
	for _, t := range st.Types {
		if t != "null" {
			return t
		}
	}
	if len(st.Types) > 0 {
		return st.Types[0]
	}
	return ""
}

// IsNullable returns true if "null" is one of the allowed types
func (st SchemaType) IsNullable() bool {
	for _, t := range st.Types {
		if t == "null" {
			return true
		}
	}
	return false
}

// AdditionalProperties handles JSON Schema additionalProperties which can be bool or Schema
type AdditionalProperties struct {
	Allowed bool    // If true, any additional properties allowed; if false, none allowed
	Schema  *Schema // If set, additional properties must match this schema
}

// UnmarshalJSON handles both boolean and schema forms
func (ap *AdditionalProperties) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		ap.Allowed = b
		ap.Schema = nil
		return nil
	}

	var s Schema
	if err := decode(data, &s); err == nil {
		ap.Allowed = true
		ap.Schema = &s
		return nil
	}

	return fmt.Errorf("additionalProperties must be boolean or schema")
}

// Schema represents a JSON Schema document. Only the keywords that shape a seed are
// interpreted; the rest are kept so callers can inspect them.
type Schema struct {
	// Meta
	Schema      string `json:"$schema,omitempty"`
	ID          string `json:"$id,omitempty"`
	Ref         string `json:"$ref,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`

	// Type - can be string or array of strings in JSON Schema
	Type SchemaType `json:"type,omitempty"`

	// Object properties
	Properties           map[string]*Schema    `json:"properties,omitempty"`
	Required             []string              `json:"required,omitempty"`
	AdditionalProperties *AdditionalProperties `json:"additionalProperties,omitempty"`

	// Array items
	Items    *Schema `json:"items,omitempty"`
	MinItems *int    `json:"minItems,omitempty"`
	MaxItems *int    `json:"maxItems,omitempty"`

	Format string `json:"format,omitempty"`

	Const    any   `json:"const,omitempty"`
	Default  any   `json:"default,omitempty"`
	Examples []any `json:"examples,omitempty"`
	Enum     []any `json:"enum,omitempty"`

	Nullable bool `json:"nullable,omitempty"`

	AllOf []*Schema `json:"allOf,omitempty"`
	AnyOf []*Schema `json:"anyOf,omitempty"`
	OneOf []*Schema `json:"oneOf,omitempty"`

	// Definitions for $ref resolution
	Definitions map[string]*Schema `json:"definitions,omitempty"`
	Defs        map[string]*Schema `json:"$defs,omitempty"` // JSON Schema draft 2019-09+
}

// decode unmarshals JSON keeping numbers as json.Number, the same representation the
// input parser produces.
func decode(data []byte, v any) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	return decoder.Decode(v)
}

// ParseFile reads and parses a JSON Schema from a file
func ParseFile(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewInputError(fmt.Sprintf("schema file '%s' not found", path), errors.ErrFileNotFound)
		}
		return nil, errors.NewInputError(fmt.Sprintf("failed to read schema file '%s'", path), err)
	}

	return ParseBytes(data)
}

// ParseBytes parses JSON Schema from bytes
func ParseBytes(data []byte) (*Schema, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.NewSchemaError("schema is empty", errors.ErrEmptyInput)
	}
	var schema Schema
	if err := decode(data, &schema); err != nil {
		return nil, errors.NewSchemaError("failed to parse JSON Schema", err)
	}

	return &schema, nil
}

// ParseString parses JSON Schema from a string
func ParseString(s string) (*Schema, error) {
	return ParseBytes([]byte(s))
}

// DefaultMaxRefDepth is how many times a $ref may be expanded inside itself before the
// seed stops with null.
const DefaultMaxRefDepth = 2

// Seeder produces sample values from a schema.
type Seeder struct {
	schema      *Schema
	definitions map[string]*Schema // Merged definitions and $defs
	maxRefDepth int
	logger      *slog.Logger
	active      map[string]int // $refs being expanded on the current path
}

// SeederOption configures a Seeder.
type SeederOption func(*Seeder)

// WithMaxRefDepth sets how deep a recursive $ref is expanded.
func WithMaxRefDepth(n int) SeederOption {
	return func(s *Seeder) {
		if n > 0 {
			s.maxRefDepth = n
		}
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) SeederOption {
	return func(s *Seeder) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSeeder creates a seeder for schema
func NewSeeder(schema *Schema, opts ...SeederOption) *Seeder {
	definitions := make(map[string]*Schema)
	for k, v := range schema.Definitions {
		definitions[k] = v
	}
	for k, v := range schema.Defs {
		definitions[k] = v
	}

	s := &Seeder{
		schema:      schema,
		definitions: definitions,
		maxRefDepth: DefaultMaxRefDepth,
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Seed returns a sample value for the root schema. Objects come back as
// *value.Object with properties sorted by name.
func (s *Seeder) Seed() (any, error) {
	s.active = make(map[string]int)
	return s.seed(s.schema, nil)
}

func (s *Seeder) seed(schema *Schema, path formtree.Path) (any, error) {
	if schema == nil {
		return nil, nil
	}

	if schema.Ref != "" {
		return s.seedRef(schema.Ref, path)
	}

	if len(schema.AllOf) > 0 {
		merged, err := s.mergeAllOf(schema, path)
		if err != nil {
			return nil, err
		}
		return s.seed(merged, path)
	}

	// Only the first branch is seeded; the others describe alternatives.
	if len(schema.AnyOf) > 0 {
		return s.seed(schema.AnyOf[0], path)
	}
	if len(schema.OneOf) > 0 {
		return s.seed(schema.OneOf[0], path)
	}

	switch schemaType(schema) {
	case "object":
		return s.seedObject(schema, path)
	case "array":
		return s.seedArray(schema, path)
	default:
		return seedPrimitive(schema), nil
	}
}

// schemaType returns the schema's type, inferring it from properties and items when the
// type keyword is missing.
func schemaType(schema *Schema) string {
	if t := schema.Type.Primary(); t != "" {
		return t
	}
	if len(schema.Properties) > 0 {
		return "object"
	}
	if schema.Items != nil {
		return "array"
	}
	return ""
}

func (s *Seeder) seedObject(schema *Schema, path formtree.Path) (any, error) {
	// Sort property names for deterministic output
	names := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	obj := value.NewObject()
	for _, name := range names {
		v, err := s.seed(schema.Properties[name], path.Key(name))
		if err != nil {
			return nil, err
		}
		obj.Set(name, v)
	}
	return obj, nil
}

func (s *Seeder) seedArray(schema *Schema, path formtree.Path) (any, error) {
	count := 0
	if schema.MinItems != nil && *schema.MinItems > 0 {
		count = *schema.MinItems
	}

	arr := make(value.Array, 0, count)
	for i := 0; i < count; i++ {
		v, err := s.seed(schema.Items, path.Index(i))
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
	return arr, nil
}

// seedPrimitive picks const, default, the first example, the first enum entry, then the
// zero value of the type.
func seedPrimitive(schema *Schema) any {
	switch {
	case schema.Const != nil:
		return schema.Const
	case schema.Default != nil:
		return schema.Default
	case len(schema.Examples) > 0:
		return schema.Examples[0]
	case len(schema.Enum) > 0:
		return schema.Enum[0]
	}

	switch schemaType(schema) {
	case "string":
		return ""
	case "integer", "number":
		return json.Number("0")
	case "boolean":
		return false
	default:
		return nil
	}
}

func (s *Seeder) seedRef(ref string, path formtree.Path) (any, error) {
	def, err := s.resolveRef(ref, path)
	if err != nil {
		return nil, err
	}

	if s.active[ref] >= s.maxRefDepth {
		s.logger.Debug("stopping recursive $ref", "ref", ref, "path", path.String())
		return nil, nil
	}
	s.active[ref]++
	defer func() { s.active[ref]-- }()

	return s.seed(def, path)
}

// resolveRef resolves a local $ref like "#/definitions/User" or "#/$defs/User"
func (s *Seeder) resolveRef(ref string, path formtree.Path) (*Schema, error) {
	var defName string
	switch {
	case strings.HasPrefix(ref, "#/definitions/"):
		defName = strings.TrimPrefix(ref, "#/definitions/")
	case strings.HasPrefix(ref, "#/$defs/"):
		defName = strings.TrimPrefix(ref, "#/$defs/")
	default:
		return nil, errors.NewSchemaError(fmt.Sprintf("cannot follow %q at %s", ref, path), ErrExternalRef)
	}

	def, ok := s.definitions[defName]
	if !ok {
		return nil, errors.NewSchemaError(fmt.Sprintf("no definition for %q at %s", ref, path), ErrUnresolvedRef)
	}
	return def, nil
}

// mergeAllOf folds the allOf branches and the schema's own keywords into one schema.
// Properties from later branches replace earlier ones; the first type, title and seed
// keywords found win.
func (s *Seeder) mergeAllOf(schema *Schema, path formtree.Path) (*Schema, error) {
	own := *schema
	own.AllOf = nil

	merged := &Schema{
		Properties: make(map[string]*Schema),
		Required:   make([]string, 0),
	}

	var entered []string
	defer func() {
		for _, ref := range entered {
			s.active[ref]--
		}
	}()

	for _, branch := range append([]*Schema{&own}, schema.AllOf...) {
		resolved := branch
		if branch.Ref != "" {
			def, err := s.resolveRef(branch.Ref, path)
			if err != nil {
				return nil, err
			}
			if s.active[branch.Ref] >= s.maxRefDepth {
				s.logger.Debug("skipping recursive allOf $ref", "ref", branch.Ref, "path", path.String())
				continue
			}
			s.active[branch.Ref]++
			entered = append(entered, branch.Ref)
			resolved = def
		}
		if len(resolved.AllOf) > 0 {
			nested, err := s.mergeAllOf(resolved, path)
			if err != nil {
				return nil, err
			}
			resolved = nested
		}

		for k, v := range resolved.Properties {
			merged.Properties[k] = v
		}
		merged.Required = append(merged.Required, resolved.Required...)

		if len(merged.Type.Types) == 0 && len(resolved.Type.Types) > 0 {
			merged.Type = resolved.Type
		}
		if merged.Items == nil {
			merged.Items = resolved.Items
		}
		if merged.MinItems == nil {
			merged.MinItems = resolved.MinItems
		}
		if merged.Title == "" {
			merged.Title = resolved.Title
		}
		if merged.Description == "" {
			merged.Description = resolved.Description
		}
		if merged.Const == nil {
			merged.Const = resolved.Const
		}
		if merged.Default == nil {
			merged.Default = resolved.Default
		}
		if len(merged.Examples) == 0 {
			merged.Examples = resolved.Examples
		}
		if len(merged.Enum) == 0 {
			merged.Enum = resolved.Enum
		}
	}

	if len(merged.Type.Types) == 0 && len(merged.Properties) > 0 {
		merged.Type = SchemaType{Types: []string{"object"}}
	}
	return merged, nil
}
