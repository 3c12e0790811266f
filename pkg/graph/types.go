package graph

import (
	"fmt"

	"github.com/matzehuels/attacktree/pkg/layout"
	"github.com/matzehuels/attacktree/pkg/tree"
)

// =============================================================================
// Graph - Flat Tree Serialization
// =============================================================================

// Graph is the flat node-link serialization of an attack tree. Nodes are in
// preorder, so the first node is the root.
//
// Unlike the nested envelope the normalizer reads, this format is convenient
// for databases and tools that index nodes individually.
type Graph struct {
	Root  string `json:"root" bson:"root"`
	Nodes []Node `json:"nodes" bson:"nodes"`
	Edges []Edge `json:"edges" bson:"edges"`
}

// =============================================================================
// Node - Unified Node Type
// =============================================================================

// Node is the unified node type for graph and layout serialization. X, Y and
// Depth are only meaningful inside a [Layout].
type Node struct {
	ID    string    `json:"id" bson:"id"`
	Kind  tree.Kind `json:"type" bson:"type"`
	Label string    `json:"label" bson:"label"`
	X     float64   `json:"x" bson:"x"`
	Y     float64   `json:"y" bson:"y"`
	Depth int       `json:"depth" bson:"depth"`
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// =============================================================================
// Edge - Parent to Child
// =============================================================================

// Edge is a directed parent to child connection. ID has the form
// "<parent>-<child>".
type Edge struct {
	ID     string `json:"id" bson:"id"`
	Source string `json:"source" bson:"source"`
	Target string `json:"target" bson:"target"`
}

// =============================================================================
// Tree ↔ Graph Conversion
// =============================================================================

// FromTree flattens a tree into its serialization format. Traversal follows
// [tree.Walk], so shared references and cycles are emitted once.
func FromTree(root *tree.Node) Graph {
	out := Graph{Nodes: []Node{}, Edges: []Edge{}}
	if root == nil {
		return out
	}
	out.Root = root.ID
	tree.Walk(root, func(n, parent *tree.Node, depth int) bool {
		out.Nodes = append(out.Nodes, Node{ID: n.ID, Kind: n.Kind, Label: n.Label, Depth: depth})
		for _, c := range n.Children {
			if c != nil {
				out.Edges = append(out.Edges, Edge{ID: layout.EdgeID(n.ID, c.ID), Source: n.ID, Target: c.ID})
			}
		}
		return true
	})
	return out
}

// ToTree rebuilds the nested tree. Children keep edge order. Edges whose
// target is already attached are dropped, so the result is always a tree.
func ToTree(g Graph) (*tree.Node, error) {
	if len(g.Nodes) == 0 {
		return nil, nil
	}

	byID := make(map[string]*tree.Node, len(g.Nodes))
	for _, n := range g.Nodes {
		if n.ID == "" {
			return nil, fmt.Errorf("node with empty id")
		}
		if _, dup := byID[n.ID]; dup {
			return nil, fmt.Errorf("duplicate node id %q", n.ID)
		}
		byID[n.ID] = &tree.Node{ID: n.ID, Kind: n.Kind, Label: n.Label}
	}

	rootID := g.Root
	if rootID == "" {
		rootID = g.Nodes[0].ID
	}
	root, ok := byID[rootID]
	if !ok {
		return nil, fmt.Errorf("root %q is not a node", rootID)
	}

	attached := map[string]bool{rootID: true}
	for _, e := range g.Edges {
		parent, ok := byID[e.Source]
		if !ok {
			return nil, fmt.Errorf("edge %s: unknown source %q", e.ID, e.Source)
		}
		child, ok := byID[e.Target]
		if !ok {
			return nil, fmt.Errorf("edge %s: unknown target %q", e.ID, e.Target)
		}
		if attached[e.Target] {
			continue
		}
		attached[e.Target] = true
		parent.Children = append(parent.Children, child)
	}
	return root, nil
}
