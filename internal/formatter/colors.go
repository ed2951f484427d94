package formatter

import (
	"encoding/json"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

type ColorAttr int

const (
	GroupColor ColorAttr = iota
	ListColor
	LabelColor
	KeyColor
	IndexColor
	StringColor
	NumberColor
	BoolColor
	NullColor
)

// Colors maps outline elements to styling functions. A missing entry falls back to
// Default, which leaves text as is.
type Colors struct {
	Default func(string) string
	Map     map[ColorAttr]func(string) string
}

// NewColors returns the outline palette. Colours are forced on, so callers decide
// whether to use it.
func NewColors() *Colors {
	colors := &Colors{
		Default: colorDefault,
		Map:     map[ColorAttr]func(string) string{},
	}
	colors.Map[GroupColor] = sprint(color.New(color.Bold))
	colors.Map[ListColor] = sprint(color.New(color.Bold, color.FgBlue))
	colors.Map[LabelColor] = sprint(color.RGB(128, 168, 196))
	colors.Map[KeyColor] = sprint(color.New(color.Faint))
	colors.Map[IndexColor] = sprint(color.RGB(196, 96, 16))
	colors.Map[StringColor] = sprint(color.RGB(8, 196, 16))
	colors.Map[NumberColor] = sprint(color.RGB(128, 216, 236))
	colors.Map[BoolColor] = sprint(color.New(color.FgCyan))
	colors.Map[NullColor] = sprint(color.RGB(168, 0, 196))
	return colors
}

// NoColors returns a palette that leaves all text plain.
func NoColors() *Colors {
	return &Colors{Default: colorDefault, Map: map[ColorAttr]func(string) string{}}
}

// ColorsFor picks NewColors when enabled and w is a terminal, NoColors otherwise.
func ColorsFor(w io.Writer, enabled bool) *Colors {
	if !enabled {
		return NoColors()
	}
	f, ok := w.(*os.File)
	if !ok {
		return NoColors()
	}
	if isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()) {
		return NewColors()
	}
	return NoColors()
}

func sprint(c *color.Color) func(string) string {
	c.EnableColor()
	return func(s string) string { return c.Sprint(s) }
}

func colorDefault(v string) string { return v }

func (c *Colors) Get(a ColorAttr) func(string) string {
	f := c.Map[a]
	if f == nil {
		return c.Default
	}
	return f
}

func (c *Colors) Color(a ColorAttr, s string) string {
	return c.Get(a)(s)
}

// ValueAttr picks the colour attribute for a leaf value.
func ValueAttr(v any) ColorAttr {
	switch v.(type) {
	case nil:
		return NullColor
	case string:
		return StringColor
	case bool:
		return BoolColor
	case json.Number, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, uintptr, float32, float64:
		return NumberColor
	}
	return StringColor
}
