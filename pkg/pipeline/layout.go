package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/attacktree/pkg/graph"
	"github.com/matzehuels/attacktree/pkg/layout"
	"github.com/matzehuels/attacktree/pkg/observability"
	"github.com/matzehuels/attacktree/pkg/tree"
)

// =============================================================================
// Layout Generation
// =============================================================================

// ComputeLayout positions root under the options' spacing and converts the
// result to its wire form. A nil root yields an empty layout.
func ComputeLayout(ctx context.Context, root *tree.Node, opts Options) graph.Layout {
	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, tree.Count(root))
	start := time.Now()

	res := layoutResultOf(root, opts)

	hooks.OnLayoutComplete(ctx, len(res.Nodes), len(res.Edges), time.Since(start))
	return graph.FromResult(root, res)
}

func layoutResultOf(root *tree.Node, opts Options) layout.Result {
	spacing := layout.DefaultSpacing()
	if opts.Spacing != nil {
		spacing = *opts.Spacing
	}
	return layout.Compute(root, spacing)
}
