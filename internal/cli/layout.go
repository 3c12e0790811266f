package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/attacktree/pkg/graph"
	"github.com/matzehuels/attacktree/pkg/layout"
	"github.com/matzehuels/attacktree/pkg/pipeline"
)

// spacingFlags overrides individual spacing values on top of the defaults
// or a spacing file.
type spacingFlags struct {
	file              string
	baseWidth         float64
	verticalBase      float64
	verticalIncrement float64
	lateralOffset     float64
}

func (f *spacingFlags) register(cmd *cobra.Command) {
	def := layout.DefaultSpacing()
	cmd.Flags().StringVar(&f.file, "spacing", "", "spacing config file (.toml, .yaml)")
	cmd.Flags().Float64Var(&f.baseWidth, "base-width", def.BaseWidth, "base horizontal unit")
	cmd.Flags().Float64Var(&f.verticalBase, "vertical-base", def.VerticalBase, "per-depth vertical offset")
	cmd.Flags().Float64Var(&f.verticalIncrement, "vertical-increment", def.VerticalIncrement, "vertical offset growth per depth")
	cmd.Flags().Float64Var(&f.lateralOffset, "lateral-offset", def.LateralOffset, "per-sibling lateral offset from depth 2")
}

// resolve builds the spacing configuration. Flags the user set win over the
// file, which wins over the defaults.
func (f *spacingFlags) resolve(cmd *cobra.Command) (*layout.SpacingConfig, error) {
	cfg := layout.DefaultSpacing()
	if f.file != "" {
		loaded, err := layout.LoadSpacingFile(f.file)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	flags := cmd.Flags()
	if flags.Changed("base-width") {
		cfg.BaseWidth = f.baseWidth
	}
	if flags.Changed("vertical-base") {
		cfg.VerticalBase = f.verticalBase
	}
	if flags.Changed("vertical-increment") {
		cfg.VerticalIncrement = f.verticalIncrement
	}
	if flags.Changed("lateral-offset") {
		cfg.LateralOffset = f.lateralOffset
	}
	return &cfg, nil
}

// layoutCommand creates the layout command for computing node coordinates.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		refresh bool
		caching cacheFlags
		input   inputFlags
		spacing spacingFlags
	)

	cmd := &cobra.Command{
		Use:   "layout [report.json | -]",
		Short: "Compute node coordinates and edges for an attack tree",
		Long: `Compute node coordinates and edges for an attack tree.

The root goal is placed at the origin and each level below it is spread
horizontally with gaps that grow with depth and sibling count. The output is
JSON ready for a graph widget: nodes with x/y/depth, edges with stable ids,
and the bounding box of the node centers.

Spacing can be tuned with a TOML or YAML file (--spacing) and individual flags.
Results are cached locally for faster subsequent runs.`,
		Args: input.inputArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := spacing.resolve(cmd)
			if err != nil {
				return err
			}
			opts := pipeline.Options{Spacing: cfg, SkipDiagram: true, Refresh: refresh}
			return c.runLayout(cmd.Context(), input, args, opts, caching, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recompute even when cached")
	caching.register(cmd)
	input.register(cmd)
	spacing.register(cmd)

	return cmd
}

// runLayout normalizes the input, computes the layout and writes it.
func (c *CLI) runLayout(ctx context.Context, input inputFlags, args []string, opts pipeline.Options, caching cacheFlags, output string) error {
	prog := newProgress(c.Logger)

	runner, err := c.newRunner(ctx, caching)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	result, err := c.execute(ctx, runner, input, args, opts)
	if err != nil {
		return err
	}
	if result.Empty {
		printWarning("No attack tree in input")
	}
	printIssues(result.Issues)

	data, err := graph.MarshalLayout(result.Layout)
	if err != nil {
		return fmt.Errorf("encode layout: %w", err)
	}
	if err := writeOutput(c.Out, output, append(data, '\n')); err != nil {
		return err
	}

	prog.done(fmt.Sprintf("Laid out %d nodes", len(result.Layout.Nodes)))
	if output != "" {
		printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.CacheInfo.LayoutHit)
		printNewline()
		printNextStep("Export", appName+" export "+inputHint(input, args))
	}
	return nil
}

// inputHint echoes the input of a command for next-step suggestions.
func inputHint(input inputFlags, args []string) string {
	if input.assessment != "" {
		return "--assessment " + input.assessment
	}
	if len(args) > 0 {
		return args[0]
	}
	return "-"
}
