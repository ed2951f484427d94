package formtree

import (
	"regexp"
	"strconv"
	"strings"
)

var identRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Step is one element of a Path: a field name or a list index.
type Step struct {
	Name    string
	Index   int
	IsIndex bool
}

// Path locates a node from the root of a tree.
type Path []Step

// Key returns a new path extended by a field name.
func (p Path) Key(name string) Path {
	return append(p[:len(p):len(p)], Step{Name: name})
}

// Index returns a new path extended by a list index.
func (p Path) Index(i int) Path {
	return append(p[:len(p):len(p)], Step{Index: i, IsIndex: true})
}

// String renders the path as $.name[0]["odd key"].
func (p Path) String() string {
	var b strings.Builder
	b.WriteString("$")
	for _, s := range p {
		switch {
		case s.IsIndex:
			b.WriteString("[")
			b.WriteString(strconv.Itoa(s.Index))
			b.WriteString("]")
		case identRegex.MatchString(s.Name):
			b.WriteString(".")
			b.WriteString(s.Name)
		default:
			b.WriteString("[")
			b.WriteString(strconv.Quote(s.Name))
			b.WriteString("]")
		}
	}
	return b.String()
}
