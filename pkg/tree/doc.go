// Package tree defines the attack tree data model shared by the normalizer,
// the layout engine and the diagram exporter.
//
// # Overview
//
// An attack tree models how an adversary could reach a goal. Every [Node]
// carries an identifier, a [Kind] and a display label, and owns its ordered
// children exclusively:
//
//	root := &tree.Node{ID: "root", Kind: tree.KindGoal, Label: "Compromise System"}
//	root.Children = append(root.Children,
//	    &tree.Node{ID: "a1", Kind: tree.KindAttack, Label: "Phish Admin"})
//
// # Kinds
//
// [Kind] is a closed set: [KindGoal], [KindAttack] and [KindVulnerability].
// [ParseKind] maps any unrecognized value to [KindGoal], which is also the
// zero value, so lenient upstream data never produces an invalid kind.
//
// # Traversal
//
// [Walk], [Count], [Depth] and [CountPaths] traverse a tree in preorder. They
// track visited ids in an explicit set, so duplicated ids or accidental
// cycles introduced by upstream data cannot cause infinite recursion.
//
// # Validation
//
// [Validate] reports structural anomalies (duplicate ids, cycles, empty ids)
// as [Issue] values. Nothing in the layout or export path fails on them;
// callers decide whether to surface them.
package tree
