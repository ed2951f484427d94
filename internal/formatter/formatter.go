// Package formatter turns field names and leaf values into display text.
package formatter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/iancoleman/strcase"
	"github.com/rom111419/formtree/internal/config"
)

// Formatter renders labels and values for human-readable output
type Formatter struct {
	cfg *config.Config
}

// NewFormatter creates a new Formatter instance with default settings
func NewFormatter() *Formatter {
	return &Formatter{cfg: config.NewConfig()}
}

// NewFormatterWithConfig creates a Formatter that applies the label settings of cfg
func NewFormatterWithConfig(cfg *config.Config) *Formatter {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return &Formatter{cfg: cfg}
}

// Label returns the display label for a field name. Configured mappings and rules win;
// otherwise the name is humanized unless that is switched off.
func (f *Formatter) Label(key string) string {
	if label, ok := f.cfg.FindLabel(key); ok {
		return label
	}
	if f.cfg.Labels.Humanize {
		return Humanize(key)
	}
	return key
}

// Label humanizes key with the default settings
func Label(key string) string {
	return Humanize(key)
}

// Humanize turns snake_case, kebab-case and camelCase keys into sentence case:
// "first_name" and "firstName" both become "First name".
func Humanize(key string) string {
	words := strings.TrimSpace(strcase.ToDelimited(key, ' '))
	if words == "" {
		return key
	}
	r, size := utf8.DecodeRuneInString(words)
	return string(unicode.ToUpper(r)) + words[size:]
}

// FormatValue renders a leaf value the way it would appear in JSON
func FormatValue(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}

// IndentJSON re-indents compact JSON, one level per indent
func IndentJSON(data []byte, indent string) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", indent); err != nil {
		return nil, fmt.Errorf("failed to indent JSON: %w", err)
	}
	return buf.Bytes(), nil
}

// Format normalizes generated output so it ends with exactly one newline
func (f *Formatter) Format(output string) string {
	trimmed := strings.TrimRight(output, "\n")
	if trimmed == "" {
		return ""
	}
	return trimmed + "\n"
}
