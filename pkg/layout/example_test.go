package layout_test

import (
	"fmt"

	"github.com/matzehuels/attacktree/pkg/layout"
	"github.com/matzehuels/attacktree/pkg/tree"
)

func ExampleCompute() {
	root := &tree.Node{ID: "root", Kind: tree.KindGoal, Label: "Compromise System", Children: []*tree.Node{
		{ID: "a1", Kind: tree.KindAttack, Label: "Phish Admin", Children: []*tree.Node{
			{ID: "v1", Kind: tree.KindVulnerability, Label: "Weak Password Policy"},
		}},
		{ID: "a2", Kind: tree.KindAttack, Label: "Exploit Web Vuln"},
	}}

	r := layout.Compute(root, layout.DefaultSpacing())
	for _, n := range r.Nodes {
		fmt.Printf("%-4s %-13s x=%6.1f y=%5.1f\n", n.ID, n.Kind, n.X, n.Y)
	}
	for _, e := range r.Edges {
		fmt.Println(e.ID)
	}
	// Output:
	// root goal          x=   0.0 y=  0.0
	// a1   attack        x=-150.0 y=140.0
	// v1   vulnerability x=-150.0 y=320.0
	// a2   attack        x= 150.0 y=140.0
	// root-a1
	// root-a2
	// a1-v1
}
