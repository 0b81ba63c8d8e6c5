// Package hierarchy assembles flat code/parent-code record lists into trees.
// Account and unit catalogs encode their hierarchy through parent-code
// back-references rather than a native tree structure, so every navigable
// view in the API is produced here.
package hierarchy

import "sort"

// Node wraps one input item together with its attached children.
type Node[T any] struct {
	Item     T          `json:"item"`
	Children []*Node[T] `json:"children"`
}

// Build assembles items into a forest. code and parent extract each item's
// own code and its parent code (empty string means root). An item whose
// parent code is absent from the input set becomes a root: filtering the
// input (e.g. by account group) can break chains, and the orphaned subtrees
// must still be reachable. Runs in O(n).
//
// Children keep the input order; callers pass code-sorted slices so sorting
// happens once upstream. Roots are sorted by code.
func Build[T any](items []T, code func(T) string, parent func(T) string) []*Node[T] {
	byCode := make(map[string]*Node[T], len(items))
	nodes := make([]*Node[T], 0, len(items))
	for _, item := range items {
		n := &Node[T]{Item: item, Children: []*Node[T]{}}
		byCode[code(item)] = n
		nodes = append(nodes, n)
	}

	roots := make([]*Node[T], 0)
	for _, n := range nodes {
		p := parent(n.Item)
		if p != "" {
			if parentNode, ok := byCode[p]; ok {
				parentNode.Children = append(parentNode.Children, n)
				continue
			}
		}
		roots = append(roots, n)
	}

	sort.Slice(roots, func(i, j int) bool {
		return code(roots[i].Item) < code(roots[j].Item)
	})
	return roots
}

// Flatten returns the forest's items in depth-first preorder. Building a
// forest from a flattened code-sorted forest reproduces the same structure.
func Flatten[T any](roots []*Node[T]) []T {
	var out []T
	var walk func(n *Node[T])
	walk = func(n *Node[T]) {
		out = append(out, n.Item)
		for _, c := range n.Children {
			walk(c)
		}
	}
	for _, r := range roots {
		walk(r)
	}
	return out
}

// Root follows parent pointers from code up to the ultimate ancestor present
// in parents. A visited set guards against parent_code cycles, which are a
// plausible data-entry error: the walk stops at the first repeated code
// instead of looping. Codes without a known parent are their own root.
func Root(code string, parents map[string]string) string {
	current := code
	visited := map[string]bool{}
	for {
		parent, ok := parents[current]
		if !ok || parent == "" || visited[current] {
			return current
		}
		visited[current] = true
		current = parent
	}
}
