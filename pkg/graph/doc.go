// Package graph provides serialization types for attack trees and layouts.
//
// This package defines the wire format handed to visualization adapters and
// stored in caches, API responses and files.
//
// # Core Types
//
//   - [Graph]: Flat node-link form of an attack tree
//   - [Layout]: Positioned nodes and edges for a graph widget
//   - [Node], [Edge]: Shared structural types
//
// # Layout Serialization
//
// A layout lists positioned nodes in preorder and edges in emission order:
//
//	{
//	  "root": "root",
//	  "nodes": [{"id": "root", "type": "goal", "label": "Compromise System", "x": 0, "y": 0, "depth": 0}],
//	  "edges": [{"id": "root-a1", "source": "root", "target": "a1"}],
//	  "stats": {"nodes": 4, "edges": 3, "depth": 2, "paths": 2}
//	}
//
// Common operations:
//
//	l := graph.FromResult(root, layout.Compute(root, cfg))
//	data, _ := graph.MarshalLayout(l)
//	l, _ = graph.ReadLayoutFile("layout.json")
//
// # Graph Serialization
//
//	root, _ := graph.ReadGraphFile("tree.json")   // File → tree
//	graph.WriteGraphFile(root, "output.json")     // tree → File
//	data, _ := graph.MarshalGraph(root)           // tree → []byte
//
// # Concurrency
//
// All functions are safe for concurrent reads but not concurrent writes.
package graph
