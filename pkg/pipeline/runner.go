package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/attacktree/pkg/cache"
	apperrors "github.com/matzehuels/attacktree/pkg/errors"
	"github.com/matzehuels/attacktree/pkg/graph"
	"github.com/matzehuels/attacktree/pkg/layout"
	"github.com/matzehuels/attacktree/pkg/normalize"
	"github.com/matzehuels/attacktree/pkg/observability"
	"github.com/matzehuels/attacktree/pkg/source"
	"github.com/matzehuels/attacktree/pkg/tree"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete normalize → layout → export pipeline with caching.
// An envelope without an attack tree yields a Result with Empty set and a
// nil error.
func (r *Runner) Execute(ctx context.Context, envelope []byte, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{}

	// Stage 1: Normalize
	normalizeStart := time.Now()
	forest, err := Normalize(ctx, envelope)
	result.Stats.NormalizeTime = time.Since(normalizeStart)
	if err != nil {
		if IsNoData(err) {
			r.Logger.Warn("no attack tree data", "reason", err)
			result.Empty = true
			result.Layout = graph.FromResult(nil, layout.Result{})
			return result, nil
		}
		return nil, fmt.Errorf("normalize: %w", err)
	}
	result.Forest = forest

	for _, note := range forest.Notes {
		r.Logger.Debug("normalized input", "note", note)
	}
	r.Logger.Info("normalized attack tree",
		"root", forest.Root.ID,
		"distinct_ids", tree.Count(forest.Root),
		"trees", len(forest.Nodes),
		"path", forest.Path,
		"duration", result.Stats.NormalizeTime)

	// Stage 2: Validate
	result.Issues = r.Validate(ctx, forest.Root)

	if result.TreeHash, err = TreeHash(forest.Root); err != nil {
		return nil, err
	}

	// Stage 3: Layout
	layoutStart := time.Now()
	l, layoutHit, err := r.layoutWithHash(ctx, forest.Root, result.TreeHash, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = l
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.NodeCount = len(l.Nodes)
	result.Stats.EdgeCount = len(l.Edges)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"nodes", len(l.Nodes),
		"edges", len(l.Edges),
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	// Stage 4: Export
	if !opts.SkipDiagram {
		exportStart := time.Now()
		text, diagramHit, err := r.DiagramWithCacheInfo(ctx, forest, opts)
		if err != nil {
			return nil, fmt.Errorf("export: %w", err)
		}
		result.Diagram = text
		result.Stats.ExportTime = time.Since(exportStart)
		result.CacheInfo.DiagramHit = diagramHit

		r.Logger.Info("exported diagram",
			"bytes", len(text),
			"styled", opts.Styled,
			"cached", diagramHit,
			"duration", result.Stats.ExportTime)
	}

	// Stage 5: Render (optional)
	if len(opts.Formats) > 0 {
		renderStart := time.Now()
		artifacts, err := RenderArtifacts(ctx, forest.Root, opts)
		if err != nil {
			return nil, fmt.Errorf("render: %w", err)
		}
		result.Artifacts = artifacts
		result.Stats.RenderTime = time.Since(renderStart)

		r.Logger.Info("rendered outputs",
			"formats", opts.Formats,
			"duration", result.Stats.RenderTime)
	}

	return result, nil
}

// ExecuteAssessment fetches an assessment envelope from src and runs the
// pipeline on it. The id must be a canonical UUID.
func (r *Runner) ExecuteAssessment(ctx context.Context, src source.Source, id string, opts Options) (*Result, error) {
	if err := apperrors.ValidateAssessmentID(id); err != nil {
		return nil, err
	}
	envelope, err := src.Fetch(ctx, id)
	switch {
	case err == nil:
	case apperrors.GetCode(err) != "":
		return nil, err
	case errors.Is(err, source.ErrNotFound):
		return nil, apperrors.Wrap(apperrors.ErrCodeNotFound, err, "assessment %s", id)
	case errors.Is(err, context.DeadlineExceeded):
		return nil, apperrors.Wrap(apperrors.ErrCodeTimeout, err, "fetch assessment %s", id)
	default:
		return nil, apperrors.Wrap(apperrors.ErrCodeNetwork, err, "fetch assessment %s from %s", id, src.Name())
	}
	r.Logger.Debug("fetched assessment", "id", id, "source", src.Name(), "bytes", len(envelope))
	return r.Execute(ctx, envelope, opts)
}

// Validate reports structural anomalies in the tree. Each issue is logged as
// a warning; none of them stops the pipeline.
func (r *Runner) Validate(ctx context.Context, root *tree.Node) []tree.Issue {
	issues := tree.Validate(root)
	hooks := observability.Pipeline()
	for _, is := range issues {
		hooks.OnValidationIssue(ctx, string(is.Code))
		r.Logger.Warn("structural anomaly", "code", is.Code, "node", is.NodeID, "detail", is.Message)
	}
	return issues
}

// LayoutWithCacheInfo computes the layout of root with caching and returns cache hit info.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, root *tree.Node, opts Options) (graph.Layout, bool, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return graph.Layout{}, false, err
	}
	treeHash, err := TreeHash(root)
	if err != nil {
		return graph.Layout{}, false, err
	}
	return r.layoutWithHash(ctx, root, treeHash, opts)
}

// Layout is a convenience wrapper that calls LayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) Layout(ctx context.Context, root *tree.Node, opts Options) (graph.Layout, error) {
	l, _, err := r.LayoutWithCacheInfo(ctx, root, opts)
	return l, err
}

func (r *Runner) layoutWithHash(ctx context.Context, root *tree.Node, treeHash string, opts Options) (graph.Layout, bool, error) {
	keyOpts, err := opts.LayoutKeyOpts()
	if err != nil {
		return graph.Layout{}, false, err
	}
	cacheKey := r.Keyer.LayoutKey(treeHash, keyOpts)
	hooks := observability.Cache()

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			cached, err := graph.UnmarshalLayout(data)
			if err == nil {
				hooks.OnCacheHit(ctx, "layout")
				return cached, true, nil // Cache hit
			}
			// If deserialization fails, fall through to recompute
			r.Logger.Debug("discarding unreadable cached layout", "key", cacheKey, "error", err)
		}
	}
	hooks.OnCacheMiss(ctx, "layout")

	l := ComputeLayout(ctx, root, opts)

	// Cache the result
	if data, err := graph.MarshalLayout(l); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.LayoutTTL); err == nil {
			hooks.OnCacheSet(ctx, "layout", len(data))
		} else {
			r.Logger.Debug("cache layout", "error", err)
		}
	}

	return l, false, nil // Cache miss
}

// DiagramWithCacheInfo exports the forest's diagram with caching and returns
// cache hit info. Only the root tree is exported unless opts.Forest is set.
func (r *Runner) DiagramWithCacheInfo(ctx context.Context, forest *normalize.Forest, opts Options) (string, bool, error) {
	if err := opts.ValidateForDiagram(); err != nil {
		return "", false, err
	}
	if forest == nil {
		return "", false, apperrors.New(apperrors.ErrCodeNoData, "no attack tree to export")
	}

	var (
		treeHash string
		err      error
	)
	if opts.Forest {
		treeHash, err = ForestHash(forest.Nodes)
	} else {
		treeHash, err = TreeHash(forest.Root)
	}
	if err != nil {
		return "", false, err
	}
	cacheKey := r.Keyer.DiagramKey(treeHash, opts.DiagramKeyOpts())
	hooks := observability.Cache()

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			hooks.OnCacheHit(ctx, "diagram")
			return finishDiagram(string(data), opts), true, nil
		}
	}
	hooks.OnCacheMiss(ctx, "diagram")

	text := ExportDiagram(ctx, forest, opts)

	if err := r.Cache.Set(ctx, cacheKey, []byte(text), cache.DiagramTTL); err == nil {
		hooks.OnCacheSet(ctx, "diagram", len(text))
	} else {
		r.Logger.Debug("cache diagram", "error", err)
	}

	return finishDiagram(text, opts), false, nil
}

// Diagram is a convenience wrapper that calls DiagramWithCacheInfo and discards the cache hit info.
func (r *Runner) Diagram(ctx context.Context, forest *normalize.Forest, opts Options) (string, error) {
	text, _, err := r.DiagramWithCacheInfo(ctx, forest, opts)
	return text, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
