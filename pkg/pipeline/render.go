package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/attacktree/pkg/diagram"
	"github.com/matzehuels/attacktree/pkg/normalize"
	"github.com/matzehuels/attacktree/pkg/observability"
	"github.com/matzehuels/attacktree/pkg/render/nodelink"
	"github.com/matzehuels/attacktree/pkg/tree"
)

// ExportDiagram renders the forest's Mermaid text without fencing. Only the
// root tree is exported unless opts.Forest is set.
func ExportDiagram(ctx context.Context, forest *normalize.Forest, opts Options) string {
	hooks := observability.Pipeline()
	hooks.OnExportStart(ctx, opts.Styled)
	start := time.Now()

	var text string
	switch {
	case forest == nil:
		text = diagram.ExportWith(nil, opts.DiagramOptions())
	case opts.Forest:
		text = diagram.ExportForest(forest.Nodes, opts.DiagramOptions())
	default:
		text = diagram.ExportWith(forest.Root, opts.DiagramOptions())
	}

	hooks.OnExportComplete(ctx, len(text), time.Since(start))
	return text
}

func finishDiagram(text string, opts Options) string {
	if opts.Fenced {
		return diagram.Fence(text)
	}
	return text
}

// RenderArtifacts generates node-link renderings of root in every requested
// format.
func RenderArtifacts(ctx context.Context, root *tree.Node, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	nlOpts := nodelink.Options{
		Detailed:    opts.Detailed,
		LeftToRight: opts.Direction == string(diagram.LeftRight),
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := nodelink.Render(ctx, root, format, nlOpts, opts.Scale)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}
