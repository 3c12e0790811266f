package graph_test

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/attacktree/pkg/graph"
	"github.com/matzehuels/attacktree/pkg/layout"
	"github.com/matzehuels/attacktree/pkg/tree"
)

func ExampleWriteGraph() {
	root := &tree.Node{ID: "g", Kind: tree.KindGoal, Label: "Steal Data", Children: []*tree.Node{
		{ID: "a", Kind: tree.KindAttack, Label: "SQL Injection"},
	}}

	var buf bytes.Buffer
	if err := graph.WriteGraph(root, &buf); err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Print(buf.String())
	// Output:
	// {
	//   "root": "g",
	//   "nodes": [
	//     {
	//       "id": "g",
	//       "type": "goal",
	//       "label": "Steal Data",
	//       "x": 0,
	//       "y": 0,
	//       "depth": 0
	//     },
	//     {
	//       "id": "a",
	//       "type": "attack",
	//       "label": "SQL Injection",
	//       "x": 0,
	//       "y": 0,
	//       "depth": 1
	//     }
	//   ],
	//   "edges": [
	//     {
	//       "id": "g-a",
	//       "source": "g",
	//       "target": "a"
	//     }
	//   ]
	// }
}

func ExampleFromResult() {
	root := &tree.Node{ID: "g", Label: "Goal", Children: []*tree.Node{
		{ID: "a", Kind: tree.KindAttack, Label: "Left"},
		{ID: "b", Kind: tree.KindAttack, Label: "Right"},
	}}

	l := graph.FromResult(root, layout.Compute(root, layout.DefaultSpacing()))
	for _, n := range l.Nodes {
		fmt.Printf("%s (%s) at %.0f,%.0f\n", n.ID, n.Kind, n.X, n.Y)
	}
	fmt.Printf("%d edges, width %.0f\n", l.Stats.Edges, l.Width)
	// Output:
	// g (goal) at 0,0
	// a (attack) at -150,140
	// b (attack) at 150,140
	// 2 edges, width 300
}
