package tree

// Visit is called by [Walk] for every reachable node with its depth
// (root = 0) and its parent (nil for the root). Returning false skips the
// node's children.
type Visit func(n, parent *Node, depth int) bool

// Walk traverses the tree rooted at root in preorder. A node id seen before
// is not visited again, which keeps the traversal finite on cyclic input.
func Walk(root *Node, fn Visit) {
	walk(root, nil, 0, map[string]bool{}, fn)
}

func walk(n, parent *Node, depth int, seen map[string]bool, fn Visit) {
	if n == nil || seen[n.ID] {
		return
	}
	seen[n.ID] = true
	if !fn(n, parent, depth) {
		return
	}
	for _, c := range n.Children {
		walk(c, n, depth+1, seen, fn)
	}
}

// Count returns the number of distinct node ids reachable from root.
func Count(root *Node) int {
	count := 0
	Walk(root, func(*Node, *Node, int) bool {
		count++
		return true
	})
	return count
}

// Depth returns the maximum depth below root (0 for a single node, -1 for nil).
func Depth(root *Node) int {
	deepest := -1
	Walk(root, func(_, _ *Node, d int) bool {
		if d > deepest {
			deepest = d
		}
		return true
	})
	return deepest
}

// CountPaths returns the number of distinct root-to-leaf paths. Children
// whose id already appears on the current path are ignored.
func CountPaths(root *Node) int {
	if root == nil {
		return 0
	}
	return countPaths(root, map[string]bool{})
}

func countPaths(n *Node, path map[string]bool) int {
	path[n.ID] = true
	defer delete(path, n.ID)

	total := 0
	for _, c := range n.Children {
		if c == nil || path[c.ID] {
			continue
		}
		total += countPaths(c, path)
	}
	if total == 0 {
		return 1
	}
	return total
}

// Nodes returns the reachable nodes in preorder, each id once.
func Nodes(root *Node) []*Node {
	var out []*Node
	Walk(root, func(n, _ *Node, _ int) bool {
		out = append(out, n)
		return true
	})
	return out
}

// Find returns the first node with the given id in preorder.
func Find(root *Node, id string) (*Node, bool) {
	var found *Node
	Walk(root, func(n, _ *Node, _ int) bool {
		if found != nil {
			return false
		}
		if n.ID == id {
			found = n
			return false
		}
		return true
	})
	return found, found != nil
}
