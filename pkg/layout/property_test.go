package layout

import (
	"reflect"
	"strconv"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/matzehuels/attacktree/pkg/tree"
)

// buildTree turns a parent-choice list into a tree: node i+1 hangs below
// node choices[i] % (i+1). The result has len(choices)+1 nodes.
func buildTree(choices []int) *tree.Node {
	nodes := []*tree.Node{{ID: "n0", Kind: tree.KindGoal}}
	for i, c := range choices {
		n := &tree.Node{ID: "n" + strconv.Itoa(i+1), Kind: tree.Kinds[i%len(tree.Kinds)]}
		parent := nodes[c%(i+1)]
		parent.Children = append(parent.Children, n)
		nodes = append(nodes, n)
	}
	return nodes[0]
}

func TestLayoutProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)
	choices := gen.SliceOf(gen.IntRange(0, 1<<20))

	properties.Property("N nodes yield N positions and N-1 edges", prop.ForAll(
		func(cs []int) bool {
			r := Compute(buildTree(cs), DefaultSpacing())
			n := len(cs) + 1
			return len(r.Nodes) == n && len(r.Edges) == n-1
		},
		choices,
	))

	properties.Property("root is always at the origin", prop.ForAll(
		func(cs []int, base, mult, factor, vb, vi, lateral float64) bool {
			cfg := SpacingConfig{
				BaseWidth:         base,
				Levels:            []LevelSpacing{{Multiplier: mult, SiblingFactor: factor}},
				VerticalBase:      vb,
				VerticalIncrement: vi,
				LateralOffset:     lateral,
			}
			r := Compute(buildTree(cs), cfg)
			return r.Nodes[0].X == 0 && r.Nodes[0].Y == 0
		},
		choices,
		gen.Float64Range(1, 500),
		gen.Float64Range(0.1, 5),
		gen.Float64Range(0, 2),
		gen.Float64Range(0, 300),
		gen.Float64Range(0, 50),
		gen.Float64Range(0, 40),
	))

	properties.Property("layout is deterministic", prop.ForAll(
		func(cs []int) bool {
			root := buildTree(cs)
			return reflect.DeepEqual(Compute(root, DefaultSpacing()), Compute(root, DefaultSpacing()))
		},
		choices,
	))

	properties.Property("every edge endpoint is a positioned node", prop.ForAll(
		func(cs []int) bool {
			r := Compute(buildTree(cs), DefaultSpacing())
			pos := positions(r)
			for _, e := range r.Edges {
				if _, ok := pos[e.Source]; !ok {
					return false
				}
				if _, ok := pos[e.Target]; !ok {
					return false
				}
				if e.ID != EdgeID(e.Source, e.Target) {
					return false
				}
			}
			return true
		},
		choices,
	))

	properties.Property("children sit one level below their parent", prop.ForAll(
		func(cs []int) bool {
			cfg := DefaultSpacing()
			r := Compute(buildTree(cs), cfg)
			pos := positions(r)
			for _, e := range r.Edges {
				p, c := pos[e.Source], pos[e.Target]
				if c.Depth != p.Depth+1 || c.Y != cfg.Y(c.Depth) {
					return false
				}
			}
			return true
		},
		choices,
	))

	properties.TestingRun(t)
}
