// Package render turns attack trees into static images.
//
// # Overview
//
// The [nodelink] subpackage converts a tree to Graphviz DOT and renders it
// to SVG. This package converts any SVG to PDF or PNG using the external
// rsvg-convert tool (from librsvg).
//
//	dot := nodelink.ToDOT(root, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
//
// [nodelink]: github.com/matzehuels/attacktree/pkg/render/nodelink
package render
