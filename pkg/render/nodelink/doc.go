// Package nodelink renders attack trees as Graphviz node-link diagrams.
//
// # Overview
//
// Goals, attacks and vulnerabilities get distinct shapes and colors matching
// the styled Mermaid export: goals are rounded red boxes, attacks orange
// hexagons and vulnerabilities blue boxes. Graphviz computes its own
// positions; use pkg/layout when the coordinates themselves are needed.
//
// # Usage
//
// Convert a tree to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(root, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// Rendering uses the WebAssembly build of Graphviz shipped with
// github.com/goccy/go-graphviz, so no system Graphviz is required.
package nodelink
