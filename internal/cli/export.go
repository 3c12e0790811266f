package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/attacktree/pkg/pipeline"
)

// exportCommand creates the export command for generating Mermaid diagrams.
func (c *CLI) exportCommand() *cobra.Command {
	var (
		output  string
		caching cacheFlags
		input   inputFlags
	)
	opts := pipeline.Options{Direction: string(pipeline.DefaultDirection)}

	cmd := &cobra.Command{
		Use:   "export [report.json | -]",
		Short: "Export an attack tree as a Mermaid flowchart",
		Long: `Export an attack tree as a Mermaid flowchart.

Every node is declared once with its label, and every parent-child pair
becomes an arrow. With --styled, goals, attacks and vulnerabilities get
distinct fill colors. --fenced wraps the diagram in a Markdown code fence
so it can be pasted into a report.

An input without an attack tree produces no output.`,
		Args: input.inputArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExport(cmd.Context(), input, args, opts, caching, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&opts.Direction, "direction", "d", opts.Direction, "flow direction: TD, LR, BT, RL")
	cmd.Flags().BoolVar(&opts.Styled, "styled", false, "add per-kind styling")
	cmd.Flags().BoolVar(&opts.Fenced, "fenced", false, "wrap in a ```mermaid code fence")
	cmd.Flags().BoolVar(&opts.Forest, "forest", false, "export every top-level tree, not only the root")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute even when cached")
	caching.register(cmd)
	input.register(cmd)

	return cmd
}

// runExport normalizes the input and writes the Mermaid text.
func (c *CLI) runExport(ctx context.Context, input inputFlags, args []string, opts pipeline.Options, caching cacheFlags, output string) error {
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
		printWarning("No attack tree in input; nothing to export")
		return nil
	}
	printIssues(result.Issues)

	if err := writeOutput(c.Out, output, []byte(result.Diagram)); err != nil {
		return err
	}

	prog.done(fmt.Sprintf("Exported %d nodes", result.Stats.NodeCount))
	if output != "" {
		printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.CacheInfo.DiagramHit)
	}
	return nil
}
