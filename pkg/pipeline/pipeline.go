// Package pipeline provides the attack tree processing pipeline.
//
// This package implements the complete normalize → layout → export pipeline
// shared by the CLI and the HTTP server. By centralizing this logic, both
// entry points cache, log and report statistics the same way.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Normalize: Extract the canonical tree from a loosely structured envelope
//  2. Validate: Report structural anomalies as warnings (never fatal)
//  3. Layout: Compute node coordinates and edges for a graph widget
//  4. Export: Generate Mermaid diagram text and optional rendered artifacts
//
// Layouts and diagrams are cached under content hashes of the normalized
// tree and the options that shape them.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, envelope, pipeline.Options{Styled: true})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if result.Empty {
//	    // no attack tree in the envelope
//	}
//	fmt.Println(result.Diagram)
//
// Run individual stages:
//
//	forest, err := pipeline.Normalize(ctx, envelope)
//	l, err := runner.Layout(ctx, forest.Root, opts)
//	text, err := runner.Diagram(ctx, forest, opts)
package pipeline

import (
	"fmt"
	"time"

	"github.com/matzehuels/attacktree/pkg/cache"
	"github.com/matzehuels/attacktree/pkg/diagram"
	apperrors "github.com/matzehuels/attacktree/pkg/errors"
	"github.com/matzehuels/attacktree/pkg/graph"
	"github.com/matzehuels/attacktree/pkg/layout"
	"github.com/matzehuels/attacktree/pkg/normalize"
	"github.com/matzehuels/attacktree/pkg/render"
	"github.com/matzehuels/attacktree/pkg/tree"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultDirection is the Mermaid flow direction of exported diagrams.
	DefaultDirection = diagram.TopDown

	// DefaultScale is the PNG scale factor for rendered artifacts.
	DefaultScale = 2.0

	// MaxScale bounds the PNG scale factor.
	MaxScale = 8.0
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Layout options
	Spacing *layout.SpacingConfig `json:"spacing,omitempty"` // nil uses layout.DefaultSpacing

	// Diagram options
	Direction   string `json:"direction,omitempty"`
	Styled      bool   `json:"styled,omitempty"`
	Forest      bool   `json:"forest,omitempty"` // export every top-level tree, not only the root
	Fenced      bool   `json:"fenced,omitempty"` // wrap the diagram in a Markdown code fence
	SkipDiagram bool   `json:"skip_diagram,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"` // svg, pdf, png, dot
	Detailed bool     `json:"detailed,omitempty"`
	Scale    float64  `json:"scale,omitempty"`

	// Refresh bypasses cached layouts and diagrams (results are still stored).
	Refresh bool `json:"refresh,omitempty"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Empty is set when the envelope held no attack tree. Layout is then an
	// empty layout and the remaining outputs are zero.
	Empty bool

	// Forest is the normalized input.
	Forest *normalize.Forest

	// TreeHash is the content hash of the normalized root tree.
	TreeHash string

	// Issues lists the structural anomalies found in the root tree.
	Issues []tree.Issue

	// Layout is the positioned tree in wire form.
	Layout graph.Layout

	// Diagram is the exported Mermaid text.
	Diagram string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Root returns the designated root, or nil for an empty result.
func (r *Result) Root() *tree.Node {
	if r == nil || r.Forest == nil {
		return nil
	}
	return r.Forest.Root
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount     int // Positioned nodes; a repeated id counts once per placement
	EdgeCount     int
	NormalizeTime time.Duration
	LayoutTime    time.Duration
	ExportTime    time.Duration
	RenderTime    time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit  bool // Whether the layout came from cache
	DiagramHit bool // Whether the diagram text came from cache
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks every option and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForDiagram(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLayout validates the spacing configuration, defaulting it when unset.
func (o *Options) ValidateForLayout() error {
	if o.Spacing == nil {
		def := layout.DefaultSpacing()
		o.Spacing = &def
		return nil
	}
	if err := o.Spacing.Validate(); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "invalid spacing")
	}
	return nil
}

// ValidateForDiagram validates the diagram direction, defaulting it when unset.
func (o *Options) ValidateForDiagram() error {
	if o.Direction == "" {
		o.Direction = string(DefaultDirection)
		return nil
	}
	d, err := diagram.ParseDirection(o.Direction)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "invalid direction")
	}
	o.Direction = string(d)
	return nil
}

// ValidateForRender validates artifact formats and the PNG scale.
func (o *Options) ValidateForRender() error {
	formats := make([]string, len(o.Formats))
	for i, f := range o.Formats {
		parsed, err := render.ParseFormat(f)
		if err != nil {
			return err
		}
		formats[i] = parsed
	}
	if o.Formats != nil {
		o.Formats = formats
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Scale < 0 || o.Scale > MaxScale {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "scale must be in (0, %g], got %g", MaxScale, o.Scale)
	}
	return nil
}

// DiagramOptions returns the exporter options.
func (o *Options) DiagramOptions() diagram.Options {
	dir := diagram.Direction(o.Direction)
	if dir == "" {
		dir = DefaultDirection
	}
	return diagram.Options{Direction: dir, Styled: o.Styled}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() (cache.LayoutKeyOpts, error) {
	spacing := layout.DefaultSpacing()
	if o.Spacing != nil {
		spacing = *o.Spacing
	}
	h, err := cache.HashJSON(spacing)
	if err != nil {
		return cache.LayoutKeyOpts{}, fmt.Errorf("hash spacing: %w", err)
	}
	return cache.LayoutKeyOpts{SpacingHash: h}, nil
}

// DiagramKeyOpts returns cache key options for diagram export.
func (o *Options) DiagramKeyOpts() cache.DiagramKeyOpts {
	return cache.DiagramKeyOpts{
		Direction: string(o.DiagramOptions().Direction),
		Styled:    o.Styled,
		Forest:    o.Forest,
	}
}
