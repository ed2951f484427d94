// Package formtree turns JSON-like values into trees of editable fields.
//
// Every value maps to exactly one node:
//
//	primitive (string, number, bool, nil) -> *Leaf
//	array                                 -> *List, one item per element
//	object                                -> *Group, one field per key
//
// Build also accepts a root field name, in which case the whole tree is wrapped in a
// single-field Group under that name.
package formtree

import (
	"fmt"
	"log/slog"

	"github.com/rom111419/formtree/internal/logging"
	"github.com/rom111419/formtree/pkg/classifier"
	"github.com/rom111419/formtree/pkg/value"
)

// DefaultMaxDepth is the nesting limit used when none is configured.
const DefaultMaxDepth = 512

// NestedPolicy controls what happens to object-valued fields of an object.
type NestedPolicy string

const (
	// NestObjects attaches the nested object as a Group field.
	NestObjects NestedPolicy = "nest"
	// DropObjects builds the nested object and leaves it out of the parent Group.
	// Objects inside arrays are still kept.
	DropObjects NestedPolicy = "drop"
)

// ParseNestedPolicy converts a config or flag value into a NestedPolicy. The empty
// string selects NestObjects.
func ParseNestedPolicy(s string) (NestedPolicy, error) {
	switch NestedPolicy(s) {
	case "", NestObjects:
		return NestObjects, nil
	case DropObjects:
		return DropObjects, nil
	}
	return "", fmt.Errorf("unknown nested object policy %q, want %q or %q", s, NestObjects, DropObjects)
}

// Builder builds form trees. It holds no per-call state and may be shared.
type Builder struct {
	maxDepth int
	nested   NestedPolicy
	logger   *slog.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithMaxDepth sets the nesting limit. Values below one keep the default.
func WithMaxDepth(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.maxDepth = n
		}
	}
}

// WithNestedObjects sets the nested object policy.
func WithNestedObjects(p NestedPolicy) Option {
	return func(b *Builder) {
		if p != "" {
			b.nested = p
		}
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewBuilder creates a Builder with NestObjects and DefaultMaxDepth unless options say
// otherwise.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		maxDepth: DefaultMaxDepth,
		nested:   NestObjects,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

var defaultBuilder = NewBuilder()

// Build converts root with the default builder. See (*Builder).Build.
func Build(root any, fieldName string) (Node, error) {
	return defaultBuilder.Build(root, fieldName)
}

// Build converts root into a tree. With a non-empty fieldName the result is a Group
// holding the tree under that single field; the wrapping Group does not count towards
// the maximum depth. On error the returned node is nil.
func (b *Builder) Build(root any, fieldName string) (Node, error) {
	if fieldName == "" {
		return b.build(root, classifier.Classify(root), nil, 0)
	}
	path := Path{}.Key(fieldName)
	n, err := b.build(root, classifier.Classify(root), path, 0)
	if err != nil {
		return nil, err
	}
	g := newGroup(1)
	g.set(fieldName, n)
	return g, nil
}

func (b *Builder) build(v any, kind classifier.Kind, path Path, depth int) (Node, error) {
	if depth > b.maxDepth {
		return nil, &MaxDepthExceededError{Path: path.String(), Limit: b.maxDepth}
	}
	switch kind {
	case classifier.KindArray:
		return b.buildList(v, path, depth)
	case classifier.KindObject:
		return b.buildGroup(v, path, depth)
	case classifier.KindPrimitive:
		return NewLeaf(value.Unwrap(v)), nil
	}
	return nil, &InvalidInputError{
		Path:   path.String(),
		Type:   fmt.Sprintf("%T", v),
		Reason: classifier.Reason(v),
	}
}

func (b *Builder) buildList(v any, path Path, depth int) (Node, error) {
	items, _ := value.Items(v)
	nodes := make([]Node, 0, len(items))
	for i, item := range items {
		n, err := b.build(item, classifier.Classify(item), path.Index(i), depth+1)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return &List{items: nodes}, nil
}

func (b *Builder) buildGroup(v any, path Path, depth int) (Node, error) {
	fields, _ := value.Fields(v)
	g := newGroup(len(fields))
	for _, f := range fields {
		kind := classifier.Classify(f.Value)
		fieldPath := path.Key(f.Name)
		n, err := b.build(f.Value, kind, fieldPath, depth+1)
		if err != nil {
			return nil, err
		}
		if kind == classifier.KindObject && b.nested == DropObjects {
			b.logger.Debug("dropping nested object field", "path", fieldPath.String())
			continue
		}
		g.set(f.Name, n)
	}
	return g, nil
}
