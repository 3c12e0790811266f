// Package normalize extracts a canonical attack tree from loosely structured
// report payloads.
//
// Attack tree payloads arrive wrapped in several envelope shapes depending
// on which service stored them. [Extract] looks for the node list at, in
// order:
//
//	nodes
//	attack_tree.nodes
//	result.attack_tree.nodes
//	result.nodes
//	result.result.attack_tree.nodes
//	result.result.nodes
//
// A bare top-level JSON array is accepted as the node list itself.
//
// Unrecognized shapes, empty lists and undecodable JSON yield [ErrNoData].
// Extraction never panics: the caller renders an empty state instead.
//
// Individual records are coerced leniently: the kind is read from "type"
// (or "kind") and unknown values fall back to goal, a missing id becomes
// node_<n>, a missing label becomes "Unnamed Node", and a children value that
// is not a list makes the node a leaf. Each coercion is recorded in
// [Forest.Notes].
package normalize
