package generator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rom111419/formtree/internal/config"
	"github.com/rom111419/formtree/internal/errors"
	"github.com/rom111419/formtree/internal/formatter"
	"github.com/rom111419/formtree/pkg/formtree"
	"gopkg.in/yaml.v3"
)

// OutputFormat names a rendering of a form tree
type OutputFormat string

const (
	FormatJSON    OutputFormat = "json"
	FormatYAML    OutputFormat = "yaml"
	FormatOutline OutputFormat = "outline"
)

// ParseOutputFormat converts a flag or config value into an OutputFormat. The empty
// string selects JSON.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatYAML:
		return FormatYAML, nil
	case FormatOutline:
		return FormatOutline, nil
	}
	return "", errors.NewOutputError(fmt.Sprintf("unknown output format %q", s), errors.ErrUnsupportedFormat)
}

// Generator renders form trees as JSON, YAML or an indented outline
type Generator struct {
	formatter *formatter.Formatter
	colors    *formatter.Colors
	indent    string
}

// Option configures a Generator
type Option func(*Generator)

// WithFormatter sets the formatter used for outline labels
func WithFormatter(f *formatter.Formatter) Option {
	return func(g *Generator) {
		if f != nil {
			g.formatter = f
		}
	}
}

// WithColors sets the outline palette
func WithColors(c *formatter.Colors) Option {
	return func(g *Generator) {
		if c != nil {
			g.colors = c
		}
	}
}

// WithIndent sets the indentation unit for every format
func WithIndent(indent string) Option {
	return func(g *Generator) {
		if indent != "" {
			g.indent = indent
		}
	}
}

// NewGenerator creates a new Generator instance
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		formatter: formatter.NewFormatter(),
		colors:    formatter.NoColors(),
		indent:    "  ",
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// NewGeneratorWithConfig creates a Generator using the label and indent settings of cfg
func NewGeneratorWithConfig(cfg *config.Config, colors *formatter.Colors) *Generator {
	return NewGenerator(
		WithFormatter(formatter.NewFormatterWithConfig(cfg)),
		WithColors(colors),
		WithIndent(cfg.Output.Indent),
	)
}

// Generate renders n in the given format. The output ends with a newline.
func (g *Generator) Generate(n formtree.Node, format OutputFormat) (string, error) {
	if n == nil {
		return "", errors.NewOutputError("nothing to render", nil)
	}

	var (
		out string
		err error
	)
	switch format {
	case "", FormatJSON:
		out, err = g.generateJSON(n)
	case FormatYAML:
		out, err = g.generateYAML(n)
	case FormatOutline:
		out = g.generateOutline(n)
	default:
		return "", errors.NewOutputError(fmt.Sprintf("unknown output format %q", format), errors.ErrUnsupportedFormat)
	}
	if err != nil {
		return "", err
	}
	return g.formatter.Format(out), nil
}

func (g *Generator) generateJSON(n formtree.Node) (string, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	if err := encoder.Encode(n); err != nil {
		return "", errors.NewOutputError("failed to encode JSON", err)
	}

	indented, err := formatter.IndentJSON(buf.Bytes(), g.indent)
	if err != nil {
		return "", errors.NewOutputError("failed to indent JSON", err)
	}
	return string(indented), nil
}

func (g *Generator) generateYAML(n formtree.Node) (string, error) {
	doc, err := yamlNode(n)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(len(g.indent))
	if err := encoder.Encode(doc); err != nil {
		return "", errors.NewOutputError("failed to encode YAML", err)
	}
	if err := encoder.Close(); err != nil {
		return "", errors.NewOutputError("failed to encode YAML", err)
	}
	return buf.String(), nil
}

// yamlNode mirrors the JSON shape: every node is a mapping with a kind and its payload.
// Group fields are written as a mapping so their order survives.
func yamlNode(n formtree.Node) (*yaml.Node, error) {
	switch n := n.(type) {
	case *formtree.Leaf:
		if num, ok := n.Value().(json.Number); ok {
			return tagged(formtree.LeafKind, "value", numberNode(num)), nil
		}
		var value yaml.Node
		if err := value.Encode(n.Value()); err != nil {
			return nil, errors.NewOutputError("failed to encode leaf value", err)
		}
		return tagged(formtree.LeafKind, "value", &value), nil
	case *formtree.List:
		items := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range n.Items() {
			child, err := yamlNode(item)
			if err != nil {
				return nil, err
			}
			items.Content = append(items.Content, child)
		}
		return tagged(formtree.ListKind, "items", items), nil
	case *formtree.Group:
		fields := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, f := range n.Fields() {
			child, err := yamlNode(f.Node)
			if err != nil {
				return nil, err
			}
			fields.Content = append(fields.Content, str(f.Name), child)
		}
		return tagged(formtree.GroupKind, "fields", fields), nil
	}
	return nil, errors.NewOutputError(fmt.Sprintf("unexpected node %T", n), nil)
}

func tagged(kind formtree.NodeKind, payloadKey string, payload *yaml.Node) *yaml.Node {
	return &yaml.Node{
		Kind:    yaml.MappingNode,
		Tag:     "!!map",
		Content: []*yaml.Node{str("kind"), str(string(kind)), str(payloadKey), payload},
	}
}

// numberNode writes a json.Number as a plain YAML number, keeping its source text.
func numberNode(num json.Number) *yaml.Node {
	tag := "!!float"
	if _, err := num.Int64(); err == nil {
		tag = "!!int"
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: num.String()}
}

func str(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

// generateOutline writes one line per node. Fields show their label and key, list items
// their index, and containers their size.
func (g *Generator) generateOutline(n formtree.Node) string {
	var buf strings.Builder
	g.writeOutline(&buf, "$", n, 0)
	return buf.String()
}

func (g *Generator) writeOutline(buf *strings.Builder, head string, n formtree.Node, depth int) {
	buf.WriteString(strings.Repeat(g.indent, depth))
	buf.WriteString(head)
	buf.WriteString(": ")

	switch n := n.(type) {
	case *formtree.Leaf:
		buf.WriteString(g.colors.Color(formatter.ValueAttr(n.Value()), formatter.FormatValue(n.Value())))
		buf.WriteString("\n")
	case *formtree.List:
		buf.WriteString(g.colors.Color(formatter.ListColor, "list, "+plural(n.Len(), "item")))
		buf.WriteString("\n")
		for i, item := range n.Items() {
			g.writeOutline(buf, g.colors.Color(formatter.IndexColor, fmt.Sprintf("[%d]", i)), item, depth+1)
		}
	case *formtree.Group:
		buf.WriteString(g.colors.Color(formatter.GroupColor, "group, "+plural(n.Len(), "field")))
		buf.WriteString("\n")
		for _, f := range n.Fields() {
			fieldHead := g.colors.Color(formatter.LabelColor, g.formatter.Label(f.Name)) +
				" " + g.colors.Color(formatter.KeyColor, "("+f.Name+")")
			g.writeOutline(buf, fieldHead, f.Node, depth+1)
		}
	}
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
