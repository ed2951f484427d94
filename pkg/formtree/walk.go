package formtree

import "errors"

// SkipChildren can be returned by a WalkFunc to skip the children of the current node.
var SkipChildren = errors.New("skip children")

// WalkFunc is called for every node visited by Walk.
type WalkFunc func(path Path, n Node) error

// Walk visits n and its descendants depth first, parents before children, lists in
// index order and groups in field order. It stops at the first error other than
// SkipChildren.
func Walk(n Node, fn WalkFunc) error {
	return walk(nil, n, fn)
}

func walk(path Path, n Node, fn WalkFunc) error {
	if err := fn(path, n); err != nil {
		if errors.Is(err, SkipChildren) {
			return nil
		}
		return err
	}
	switch x := n.(type) {
	case *List:
		for i, item := range x.items {
			if err := walk(path.Index(i), item, fn); err != nil {
				return err
			}
		}
	case *Group:
		for _, f := range x.Fields() {
			if err := walk(path.Key(f.Name), f.Node, fn); err != nil {
				return err
			}
		}
	}
	return nil
}
