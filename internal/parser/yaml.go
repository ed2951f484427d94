package parser

import (
	"bytes"
	stderrors "errors" // Standard errors package
	"fmt"
	"io"
	"math"

	"github.com/rom111419/formtree/internal/errors"
	"github.com/rom111419/formtree/pkg/formtree"
	"github.com/rom111419/formtree/pkg/value"
	"gopkg.in/yaml.v3"
)

// maxYAMLNodes caps the number of values produced while expanding aliases.
const maxYAMLNodes = 1_000_000

// decodeYAML decodes a single YAML document into ordered values. Mapping keys keep
// their document order and aliases are expanded.
func decodeYAML(data []byte) (any, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	var doc yaml.Node
	if err := decoder.Decode(&doc); err != nil {
		if stderrors.Is(err, io.EOF) {
			return nil, errors.NewParsingError("input is empty or contains only whitespace", errors.ErrEmptyInput)
		}
		return nil, errors.NewParsingError(fmt.Sprintf("YAML syntax error: %v", err), errors.ErrInvalidYAML)
	}

	var extra yaml.Node
	if err := decoder.Decode(&extra); err == nil {
		return nil, errors.NewParsingError("multiple YAML documents found", errors.ErrMultipleDocuments)
	} else if !stderrors.Is(err, io.EOF) {
		return nil, errors.NewParsingError(fmt.Sprintf("YAML syntax error: %v", err), errors.ErrInvalidYAML)
	}

	c := &yamlConverter{}
	return c.convert(&doc, nil)
}

type yamlConverter struct {
	nodes int
}

func (c *yamlConverter) convert(n *yaml.Node, path formtree.Path) (any, error) {
	if len(path) > MaxNesting {
		return nil, errors.NewParsingError("document is nested too deeply",
			&formtree.MaxDepthExceededError{Path: path.String(), Limit: MaxNesting})
	}
	c.nodes++
	if c.nodes > maxYAMLNodes {
		return nil, errors.NewParsingError(fmt.Sprintf("document expands to more than %d values", maxYAMLNodes), errors.ErrInvalidYAML)
	}

	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return c.convert(n.Content[0], path)
	case yaml.AliasNode:
		return c.convert(n.Alias, path)
	case yaml.SequenceNode:
		arr := make(value.Array, 0, len(n.Content))
		for i, item := range n.Content {
			v, err := c.convert(item, path.Index(i))
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil
	case yaml.MappingNode:
		return c.convertMapping(n, path)
	case yaml.ScalarNode:
		return scalarValue(n)
	}
	return nil, errors.NewParsingError(fmt.Sprintf("unsupported YAML node at line %d", n.Line), errors.ErrInvalidYAML)
}

func (c *yamlConverter) convertMapping(n *yaml.Node, path formtree.Path) (any, error) {
	obj := value.NewObject()
	var merges []*yaml.Node
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		if key.Kind == yaml.AliasNode {
			key = key.Alias
		}
		if key.Kind != yaml.ScalarNode {
			return nil, errors.NewParsingError(
				fmt.Sprintf("mapping key at line %d is not a scalar", key.Line),
				errors.ErrInvalidYAML,
			)
		}
		if key.ShortTag() == "!!merge" {
			merges = append(merges, val)
			continue
		}
		v, err := c.convert(val, path.Key(key.Value))
		if err != nil {
			return nil, err
		}
		obj.Set(key.Value, v)
	}

	// Merged keys never override keys written in the mapping itself.
	for _, m := range merges {
		sources := []*yaml.Node{m}
		if m.Kind == yaml.SequenceNode {
			sources = m.Content
		}
		for _, src := range sources {
			merged, err := c.convert(src, path)
			if err != nil {
				return nil, err
			}
			mergedObj, ok := merged.(*value.Object)
			if !ok {
				return nil, errors.NewParsingError(
					fmt.Sprintf("merge value at line %d is not a mapping", src.Line),
					errors.ErrInvalidYAML,
				)
			}
			for pair := mergedObj.Oldest(); pair != nil; pair = pair.Next() {
				if _, exists := obj.Get(pair.Key); !exists {
					obj.Set(pair.Key, pair.Value)
				}
			}
		}
	}
	return obj, nil
}

// scalarValue keeps null, bool, int and float scalars typed. Every other tag
// (strings, timestamps, binary) stays the literal text, as do .nan and .inf.
func scalarValue(n *yaml.Node) (any, error) {
	switch n.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!bool", "!!int", "!!float":
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, errors.NewParsingError(fmt.Sprintf("invalid scalar at line %d", n.Line), err)
		}
		if f, ok := v.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
			return n.Value, nil
		}
		return v, nil
	}
	return n.Value, nil
}
