// Package schema infers the structural shape of a parsed JSON document: a
// tree with one node per distinct field path, each carrying an observed
// kind and a sample value for display. The tree is read-only once built
// and holds no reference back to the document.
package schema

import (
	"encoding/json"
	"sort"

	"github.com/jsift/jsift/internal/models"
	"github.com/jsift/jsift/internal/paths"
)

// Kind classifies what a path has been observed to hold.
type Kind string

const (
	KindObject  Kind = "object"
	KindArray   Kind = "array"
	KindString  Kind = "string"
	KindNumber  Kind = "number"
	KindBoolean Kind = "boolean"
	KindNull    Kind = "null"
	// KindMixed marks a path whose values disagree in kind across array
	// elements.
	KindMixed Kind = "mixed"
	// kindUnset is internal: the node exists but nothing has been observed
	// at it yet.
	kindUnset Kind = ""
)

// Node is one entry in the schema tree. A path appears exactly once no
// matter how many array elements produced it; children are kept in
// first-seen order.
type Node struct {
	Path     string
	Kind     Kind
	Children []*Node
	// Sample is one example value for display. It is never consulted
	// during extraction.
	Sample models.JSONValue

	byLabel map[string]*Node
}

func newNode(path string) *Node {
	return &Node{
		Path:    path,
		Kind:    kindUnset,
		byLabel: make(map[string]*Node),
	}
}

// Infer walks root and produces the schema tree. Any value, including
// empty or deeply nested structures, yields a valid tree; there are no
// error conditions.
func Infer(root models.JSONValue) *Node {
	n := newNode("")
	n.visit(root)
	return n
}

// visit merges one observed value into the node. Revisiting a path (the
// same key across array elements, arrays of arrays) unions children and
// reconciles kinds.
func (n *Node) visit(v models.JSONValue) {
	switch val := v.(type) {
	case *models.JSONObject:
		n.observe(KindObject, v)
		for _, key := range val.Keys() {
			child := n.child(key, false)
			cv, _ := val.Get(key)
			child.visit(cv)
		}
	case models.JSONArray:
		n.observe(KindArray, v)
		if len(val) == 0 {
			// Element type unknown; the node stays a childless array.
			return
		}
		elem := n.child("", true)
		for _, e := range val {
			elem.visit(e)
		}
	case string:
		n.observe(KindString, v)
	case json.Number:
		n.observe(KindNumber, v)
	case bool:
		n.observe(KindBoolean, v)
	case nil:
		n.observe(KindNull, v)
	}
}

// observe reconciles an incoming kind with what the node has already seen.
// Null never overrides a concrete kind; two different concrete kinds
// resolve to mixed.
func (n *Node) observe(kind Kind, sample models.JSONValue) {
	switch {
	case n.Kind == kindUnset:
		n.Kind = kind
	case n.Kind == kind:
		// no change
	case kind == KindNull:
		// A later null keeps the concrete kind.
	case n.Kind == KindNull:
		n.Kind = kind
	case n.Kind == KindMixed:
		// Mixed absorbs everything.
	default:
		n.Kind = KindMixed
	}
	if n.Sample == nil && sample != nil && models.IsScalar(sample) {
		n.Sample = sample
	}
}

// child returns the node for a key (or the "[]" element node when array is
// set), creating it in first-seen position if needed.
func (n *Node) child(key string, array bool) *Node {
	var label, path string
	if array {
		label = "[]"
		path = paths.ChildArray(n.Path)
	} else {
		label = paths.Escape(key)
		path = paths.Child(n.Path, key)
	}
	if c, ok := n.byLabel[label]; ok {
		return c
	}
	c := newNode(path)
	n.byLabel[label] = c
	n.Children = append(n.Children, c)
	return c
}

// Paths returns every path in the tree in discovery (preorder) order,
// excluding the synthetic root.
func (n *Node) Paths() []string {
	var out []string
	n.Walk(func(node *Node, depth int) {
		if node.Path != "" {
			out = append(out, node.Path)
		}
	})
	return out
}

// Walk visits every node in preorder, reporting its depth below the root.
func (n *Node) Walk(fn func(node *Node, depth int)) {
	n.walk(fn, 0)
}

func (n *Node) walk(fn func(node *Node, depth int), depth int) {
	fn(n, depth)
	for _, c := range n.Children {
		c.walk(fn, depth+1)
	}
}

// Lookup finds the node for a path, or nil if the path was never
// discovered.
func (n *Node) Lookup(path string) *Node {
	if paths.IsRoot(path) {
		return n
	}
	cur := n
	for _, seg := range paths.Split(path) {
		if seg.Key != "" {
			next, ok := cur.byLabel[paths.Escape(seg.Key)]
			if !ok {
				return nil
			}
			cur = next
		}
		if seg.Array {
			next, ok := cur.byLabel["[]"]
			if !ok {
				return nil
			}
			cur = next
		}
	}
	return cur
}

// ArrayPaths lists every path in the document that holds an array, sorted.
// These are the candidate root paths for extraction: each array element
// becomes one output record. An array-rooted document contributes the
// "(root)" path itself.
func ArrayPaths(root models.JSONValue) []string {
	var out []string
	switch val := root.(type) {
	case *models.JSONObject:
		collectArrayPaths(val, "", &out)
	case models.JSONArray:
		out = append(out, paths.Root)
		if len(val) > 0 {
			if obj, ok := val[0].(*models.JSONObject); ok {
				collectArrayPaths(obj, "", &out)
			}
		}
	}
	sort.Strings(out)
	return out
}

func collectArrayPaths(obj *models.JSONObject, parent string, out *[]string) {
	for _, key := range obj.Keys() {
		v, _ := obj.Get(key)
		current := paths.Child(parent, key)
		switch val := v.(type) {
		case models.JSONArray:
			*out = append(*out, current)
			if len(val) > 0 {
				if elem, ok := val[0].(*models.JSONObject); ok {
					collectArrayPaths(elem, current, out)
				}
			}
		case *models.JSONObject:
			collectArrayPaths(val, current, out)
		}
	}
}
