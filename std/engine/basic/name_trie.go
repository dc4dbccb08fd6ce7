package basic

import (
	"reflect"

	enc "github.com/named-data/ndnd-client/std/encoding"
)

// NameTrie is a trie over NDN names keyed component-by-component, used as
// the Engine's FIB (Interest handlers) and PIT (pending Interests). Every
// node is itself a NameTrie, so MatchAlways/ExactMatch/PrefixMatch return
// the node they land on rather than a separate node type.
type NameTrie[T any] struct {
	value    T
	parent   *NameTrie[T]
	depth    int
	children map[string]*NameTrie[T]
}

// NewNameTrie constructs an empty root node.
func NewNameTrie[T any]() *NameTrie[T] {
	return &NameTrie[T]{children: make(map[string]*NameTrie[T])}
}

// Value returns the value stored at this node; the zero value of T if
// none was ever set (callers rely on T's zero value being falsy/nil, as
// with func, slice, pointer and interface types).
func (n *NameTrie[T]) Value() T {
	return n.value
}

// SetValue stores v at this node.
func (n *NameTrie[T]) SetValue(v T) {
	n.value = v
}

// Parent returns the node one component up, or nil at the root.
func (n *NameTrie[T]) Parent() *NameTrie[T] {
	return n.parent
}

// Depth returns the number of name components from the root to this node.
func (n *NameTrie[T]) Depth() int {
	return n.depth
}

// Prune removes this node, and any now-childless ancestor, from the trie,
// provided it carries no value and has no children of its own.
func (n *NameTrie[T]) Prune() {
	n.PruneIf(func(v T) bool { return reflect.ValueOf(&v).Elem().IsZero() })
}

// PruneIf removes this node (and childless ancestors up the chain) if it
// has no children and test returns true for its current value.
func (n *NameTrie[T]) PruneIf(test func(T) bool) {
	cur := n
	for cur != nil && cur.parent != nil && len(cur.children) == 0 && test(cur.value) {
		parent := cur.parent
		for key, child := range parent.children {
			if child == cur {
				delete(parent.children, key)
				break
			}
		}
		cur = parent
	}
}

func nameKeys(name enc.Name) []string {
	keys := make([]string, len(name))
	for i, c := range name {
		keys[i] = string(c.Bytes())
	}
	return keys
}

// MatchAlways walks name from this node, creating any missing intermediate
// nodes, and returns the node for the full name.
func (n *NameTrie[T]) MatchAlways(name enc.Name) *NameTrie[T] {
	cur := n
	for _, key := range nameKeys(name) {
		child, ok := cur.children[key]
		if !ok {
			child = &NameTrie[T]{parent: cur, depth: cur.depth + 1, children: make(map[string]*NameTrie[T])}
			cur.children[key] = child
		}
		cur = child
	}
	return cur
}

// ExactMatch walks name from this node without creating missing nodes,
// returning nil if the full path does not already exist.
func (n *NameTrie[T]) ExactMatch(name enc.Name) *NameTrie[T] {
	cur := n
	for _, key := range nameKeys(name) {
		child, ok := cur.children[key]
		if !ok {
			return nil
		}
		cur = child
	}
	return cur
}

// PrefixMatch walks name from this node as far as existing nodes allow,
// returning the deepest node reached along name's path (which may be this
// node itself if name's first component has no child). Callers combine
// this with Parent()/Value() to implement longest-prefix match.
func (n *NameTrie[T]) PrefixMatch(name enc.Name) *NameTrie[T] {
	cur := n
	for _, key := range nameKeys(name) {
		child, ok := cur.children[key]
		if !ok {
			break
		}
		cur = child
	}
	return cur
}
