package models

import "github.com/rom111419/formtree/pkg/classifier"

// Format names a serialization of input values.
type Format string

const (
	FormatAuto Format = "auto"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Document holds a parsed input value in a way that's easy for the builder to work with.
// Objects inside Root are *value.Object so key order survives.
type Document struct {
	Root     any
	RootKind classifier.Kind // Verdict for Root, computed once by the parser
	Format   Format          // Format the input was actually decoded from
	Source   string          // File path, or empty for stdin and strings
}
