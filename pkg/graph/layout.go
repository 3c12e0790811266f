package graph

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/matzehuels/attacktree/pkg/layout"
	"github.com/matzehuels/attacktree/pkg/tree"
)

// =============================================================================
// Layout - Visualization Adapter Format
// =============================================================================

// Layout is the positioned tree handed to a graph widget. Coordinates are in
// the layout engine's space: the root sits at (0, 0) and y grows downward.
//
// Width and Height span the node centers (MinX/MinY give the top-left
// corner); adapters add their own node sizes and padding.
type Layout struct {
	Root   string  `json:"root,omitempty" bson:"root,omitempty"`
	MinX   float64 `json:"min_x" bson:"min_x"`
	MinY   float64 `json:"min_y" bson:"min_y"`
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
	Nodes  []Node  `json:"nodes" bson:"nodes"`
	Edges  []Edge  `json:"edges" bson:"edges"`
	Stats  Stats   `json:"stats" bson:"stats"`
}

// Stats summarizes the laid-out tree.
type Stats struct {
	Nodes int `json:"nodes" bson:"nodes"`
	Edges int `json:"edges" bson:"edges"`
	Depth int `json:"depth" bson:"depth"`
	Paths int `json:"paths" bson:"paths"`
}

// IsEmpty reports whether the layout has no nodes.
func (l *Layout) IsEmpty() bool { return len(l.Nodes) == 0 }

// FromResult converts an engine result for root into its wire form.
func FromResult(root *tree.Node, r layout.Result) Layout {
	out := Layout{
		Nodes: make([]Node, len(r.Nodes)),
		Edges: make([]Edge, len(r.Edges)),
	}
	for i, n := range r.Nodes {
		out.Nodes[i] = Node{ID: n.ID, Kind: n.Kind, Label: n.Label, X: n.X, Y: n.Y, Depth: n.Depth}
	}
	for i, e := range r.Edges {
		out.Edges[i] = Edge{ID: e.ID, Source: e.Source, Target: e.Target}
	}

	if root != nil {
		out.Root = root.ID
		out.Stats = Stats{
			Nodes: len(r.Nodes),
			Edges: len(r.Edges),
			Depth: tree.Depth(root),
			Paths: tree.CountPaths(root),
		}
	}
	minX, minY, maxX, maxY := r.Bounds()
	out.MinX, out.MinY = minX, minY
	out.Width, out.Height = maxX-minX, maxY-minY
	return out
}

// Result converts a wire layout back into an engine result.
func (l Layout) Result() layout.Result {
	r := layout.Result{
		Nodes: make([]layout.PositionedNode, len(l.Nodes)),
		Edges: make([]layout.Edge, len(l.Edges)),
	}
	for i, n := range l.Nodes {
		r.Nodes[i] = layout.PositionedNode{ID: n.ID, Kind: n.Kind, Label: n.Label, X: n.X, Y: n.Y, Depth: n.Depth}
	}
	for i, e := range l.Edges {
		r.Edges[i] = layout.Edge{ID: e.ID, Source: e.Source, Target: e.Target}
	}
	return r
}

// =============================================================================
// Layout Serialization API
// =============================================================================

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes into a Layout.
// Validates that every edge endpoint is a node.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("unmarshal layout: %w", err)
	}

	ids := make(map[string]bool, len(l.Nodes))
	for _, n := range l.Nodes {
		ids[n.ID] = true
	}
	for _, e := range l.Edges {
		if !ids[e.Source] || !ids[e.Target] {
			return Layout{}, fmt.Errorf("edge %s references unknown node", e.ID)
		}
	}
	if l.Nodes == nil {
		l.Nodes = []Node{}
	}
	if l.Edges == nil {
		l.Edges = []Edge{}
	}
	return l, nil
}

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}
