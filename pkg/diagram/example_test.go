package diagram_test

import (
	"fmt"

	"github.com/matzehuels/attacktree/pkg/diagram"
	"github.com/matzehuels/attacktree/pkg/tree"
)

func ExampleExport() {
	root := &tree.Node{ID: "root", Kind: tree.KindGoal, Label: "Compromise System", Children: []*tree.Node{
		{ID: "a1", Kind: tree.KindAttack, Label: `Phish "Admin"`},
	}}
	fmt.Print(diagram.Export(root))
	// Output:
	// graph TD
	//     root["Compromise System"]
	//     root --> a1
	//     a1["Phish 'Admin'"]
}
