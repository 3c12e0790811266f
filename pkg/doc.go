// Package pkg provides the core libraries for attacktree.
//
// # Overview
//
// Attacktree turns attack tree reports into something a UI can draw. Reports
// arrive as loosely structured JSON envelopes produced by an analysis tool;
// the node list may sit at one of several key paths and individual records
// are often missing fields. The pkg directory is organized into four areas:
//
//  1. Domain: [tree], [normalize], [layout] and [diagram]
//  2. Serialization: [graph]
//  3. Infrastructure: [cache], [source], [observability], [errors]
//  4. Orchestration: [pipeline], with [render] and [render/nodelink] for drawings
//
// # Architecture
//
// The data flow through attacktree:
//
//	Assessment envelope (file, stdin, HTTP body, MongoDB)
//	         ↓
//	    [normalize] package (locate the node list, coerce records)
//	         ↓
//	    [tree] package (canonical tree + structural validation)
//	         ↓
//	    [layout] package (coordinates and edges)   [diagram] package (Mermaid text)
//	         ↓                                            ↓
//	    [graph] package (wire JSON)                 Markdown reports
//
// # Quick Start
//
// Normalize an envelope, lay it out and export it:
//
//	forest, err := normalize.Parse(envelope)
//	if err != nil {
//	    return err // normalize.ErrNoData when there is no attack tree
//	}
//	res := layout.Compute(forest.Root, layout.DefaultSpacing())
//	text := diagram.ExportWith(forest.Root, diagram.Options{Styled: true})
//
// Or run everything with caching through a pipeline runner:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, envelope, pipeline.Options{Styled: true})
//
// # Main Packages
//
// [tree] - The node model: three kinds (goal, attack, vulnerability), root
// selection, cycle-safe traversal and structural validation.
//
// [normalize] - Lenient extraction of the canonical forest from an envelope.
//
// [layout] - Deterministic coordinates for a graph widget. Spacing is
// configurable through TOML or YAML files.
//
// [diagram] - Mermaid flowchart export with optional per-kind styling.
//
// [graph] - Serialization types for trees and layouts.
//
// [cache] - File, Redis and null caches plus content-addressed keys.
//
// [source] - Stored assessments from a directory tree or MongoDB.
//
// [pipeline] - The normalize → layout → export pipeline used by the CLI and
// the HTTP server.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...               # All tests
//	go test ./pkg/layout/...        # Specific package
//	go test -run Example ./pkg/...  # Examples only
//
// [tree]: https://pkg.go.dev/github.com/matzehuels/attacktree/pkg/tree
// [normalize]: https://pkg.go.dev/github.com/matzehuels/attacktree/pkg/normalize
// [layout]: https://pkg.go.dev/github.com/matzehuels/attacktree/pkg/layout
// [diagram]: https://pkg.go.dev/github.com/matzehuels/attacktree/pkg/diagram
// [graph]: https://pkg.go.dev/github.com/matzehuels/attacktree/pkg/graph
// [cache]: https://pkg.go.dev/github.com/matzehuels/attacktree/pkg/cache
// [source]: https://pkg.go.dev/github.com/matzehuels/attacktree/pkg/source
// [observability]: https://pkg.go.dev/github.com/matzehuels/attacktree/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/attacktree/pkg/errors
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/attacktree/pkg/pipeline
// [render]: https://pkg.go.dev/github.com/matzehuels/attacktree/pkg/render
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/attacktree/pkg/render/nodelink
package pkg
