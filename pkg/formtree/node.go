package formtree

import (
	"encoding/json"
	"reflect"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// NodeKind names the variant of a Node.
type NodeKind string

const (
	LeafKind  NodeKind = "leaf"
	ListKind  NodeKind = "list"
	GroupKind NodeKind = "group"
)

// Node is an editable field. The set of implementations is closed: *Leaf, *List and
// *Group.
type Node interface {
	Kind() NodeKind
	isNode()
}

// Leaf is a terminal node holding one primitive value or nil.
type Leaf struct {
	value any
}

// NewLeaf returns a leaf holding v.
func NewLeaf(v any) *Leaf {
	return &Leaf{value: v}
}

func (*Leaf) isNode() {}

// Kind returns LeafKind.
func (*Leaf) Kind() NodeKind { return LeafKind }

// Value returns the primitive held by the leaf.
func (l *Leaf) Value() any { return l.value }

// MarshalJSON encodes the leaf as {"kind":"leaf","value":...}.
func (l *Leaf) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind  NodeKind `json:"kind"`
		Value any      `json:"value"`
	}{LeafKind, l.value})
}

// List is an ordered sequence of nodes mirroring a source array.
type List struct {
	items []Node
}

// NewList returns a list of the given nodes.
func NewList(items ...Node) *List {
	return &List{items: append([]Node(nil), items...)}
}

func (*List) isNode() {}

// Kind returns ListKind.
func (*List) Kind() NodeKind { return ListKind }

// Len returns the number of items.
func (l *List) Len() int { return len(l.items) }

// At returns the item at index i.
func (l *List) At(i int) Node { return l.items[i] }

// Items returns a copy of the items.
func (l *List) Items() []Node {
	return append([]Node(nil), l.items...)
}

// MarshalJSON encodes the list as {"kind":"list","items":[...]}.
func (l *List) MarshalJSON() ([]byte, error) {
	items := l.items
	if items == nil {
		items = []Node{}
	}
	return json.Marshal(struct {
		Kind  NodeKind `json:"kind"`
		Items []Node   `json:"items"`
	}{ListKind, items})
}

// Field is a named member of a Group.
type Field struct {
	Name string
	Node Node
}

// Group maps field names to nodes, mirroring a source object. Fields keep the order in
// which they were added.
type Group struct {
	fields *orderedmap.OrderedMap[string, Node]
}

// NewGroup returns a group of the given fields. A repeated name keeps its first
// position and takes the last node.
func NewGroup(fields ...Field) *Group {
	g := newGroup(len(fields))
	for _, f := range fields {
		g.set(f.Name, f.Node)
	}
	return g
}

func newGroup(capacity int) *Group {
	return &Group{fields: orderedmap.New[string, Node](capacity)}
}

func (g *Group) set(name string, n Node) {
	g.fields.Set(name, n)
}

func (*Group) isNode() {}

// Kind returns GroupKind.
func (*Group) Kind() NodeKind { return GroupKind }

// Len returns the number of fields.
func (g *Group) Len() int {
	if g.fields == nil {
		return 0
	}
	return g.fields.Len()
}

// Get returns the node stored under name.
func (g *Group) Get(name string) (Node, bool) {
	if g.fields == nil {
		return nil, false
	}
	return g.fields.Get(name)
}

// Names returns the field names in order.
func (g *Group) Names() []string {
	names := make([]string, 0, g.Len())
	for _, f := range g.Fields() {
		names = append(names, f.Name)
	}
	return names
}

// Fields returns the fields in order.
func (g *Group) Fields() []Field {
	fields := make([]Field, 0, g.Len())
	if g.fields == nil {
		return fields
	}
	for pair := g.fields.Oldest(); pair != nil; pair = pair.Next() {
		fields = append(fields, Field{Name: pair.Key, Node: pair.Value})
	}
	return fields
}

// MarshalJSON encodes the group as {"kind":"group","fields":{...}} with fields in order.
func (g *Group) MarshalJSON() ([]byte, error) {
	fields := g.fields
	if fields == nil {
		fields = orderedmap.New[string, Node]()
	}
	return json.Marshal(struct {
		Kind   NodeKind                             `json:"kind"`
		Fields *orderedmap.OrderedMap[string, Node] `json:"fields"`
	}{GroupKind, fields})
}

// Equal reports whether two trees have the same shape, field order and leaf values.
func Equal(a, b Node) bool {
	switch x := a.(type) {
	case *Leaf:
		y, ok := b.(*Leaf)
		return ok && reflect.DeepEqual(x.value, y.value)
	case *List:
		y, ok := b.(*List)
		if !ok || x.Len() != y.Len() {
			return false
		}
		for i := range x.items {
			if !Equal(x.items[i], y.items[i]) {
				return false
			}
		}
		return true
	case *Group:
		y, ok := b.(*Group)
		if !ok || x.Len() != y.Len() {
			return false
		}
		xf, yf := x.Fields(), y.Fields()
		for i := range xf {
			if xf[i].Name != yf[i].Name || !Equal(xf[i].Node, yf[i].Node) {
				return false
			}
		}
		return true
	case nil:
		return b == nil
	}
	return false
}
