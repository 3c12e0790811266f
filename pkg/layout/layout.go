package layout

import (
	"math"
	"slices"

	"github.com/matzehuels/attacktree/pkg/tree"
)

// PositionedNode is a tree node annotated with layout coordinates.
type PositionedNode struct {
	ID    string
	Kind  tree.Kind
	Label string
	X     float64
	Y     float64
	Depth int
}

// Edge connects a parent to one of its children.
type Edge struct {
	ID     string // "<parent>-<child>"
	Source string
	Target string
}

// EdgeID returns the identifier of the edge from parent to child.
func EdgeID(parent, child string) string { return parent + "-" + child }

// Result holds the positioned nodes (preorder) and edges (depth-first).
type Result struct {
	Nodes []PositionedNode
	Edges []Edge
}

// Empty reports whether the result has no nodes.
func (r Result) Empty() bool { return len(r.Nodes) == 0 }

// Bounds returns the bounding box of all node positions. All values are
// zero for an empty result.
func (r Result) Bounds() (minX, minY, maxX, maxY float64) {
	if len(r.Nodes) == 0 {
		return 0, 0, 0, 0
	}
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, n := range r.Nodes {
		minX, maxX = math.Min(minX, n.X), math.Max(maxX, n.X)
		minY, maxY = math.Min(minY, n.Y), math.Max(maxY, n.Y)
	}
	return minX, minY, maxX, maxY
}

// Compute lays out the tree rooted at root. See the package documentation
// for the placement rules.
func Compute(root *tree.Node, cfg SpacingConfig) Result {
	if root == nil {
		return Result{}
	}
	return Result{
		Nodes: place(root, 0, 0, cfg, nil, nil),
		Edges: connect(root, nil, nil),
	}
}

// place appends n and its descendants to acc in preorder.
func place(n *tree.Node, x float64, depth int, cfg SpacingConfig, path []string, acc []PositionedNode) []PositionedNode {
	acc = append(acc, PositionedNode{
		ID:    n.ID,
		Kind:  n.Kind,
		Label: n.Label,
		X:     x,
		Y:     cfg.Y(depth),
		Depth: depth,
	})

	path = append(path, n.ID)
	kids := placeable(n, path)
	for i, c := range kids {
		acc = place(c, childX(x, depth+1, i, len(kids), cfg), depth+1, cfg, path, acc)
	}
	return acc
}

// connect appends one edge per placed parent-child pair to acc.
func connect(n *tree.Node, path []string, acc []Edge) []Edge {
	path = append(path, n.ID)
	kids := placeable(n, path)
	for _, c := range kids {
		acc = append(acc, Edge{ID: EdgeID(n.ID, c.ID), Source: n.ID, Target: c.ID})
	}
	for _, c := range kids {
		acc = connect(c, path, acc)
	}
	return acc
}

// placeable returns the children that are laid out: non-nil and not already
// on the path from the root.
func placeable(n *tree.Node, path []string) []*tree.Node {
	var out []*tree.Node
	for _, c := range n.Children {
		if c != nil && !slices.Contains(path, c.ID) {
			out = append(out, c)
		}
	}
	return out
}

// childX positions sibling index of count at depth below a parent at parentX.
func childX(parentX float64, depth, index, count int, cfg SpacingConfig) float64 {
	gap := cfg.Gap(depth, count)
	total := gap * float64(count-1)
	x := parentX - total/2 + float64(index)*gap
	if depth >= 2 {
		x += float64(index) * cfg.LateralOffset
	}
	return x
}
