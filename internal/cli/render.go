package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/attacktree/pkg/pipeline"
	"github.com/matzehuels/attacktree/pkg/render"
)

// renderCommand creates the render command for node-link drawings.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output     string
		formatsStr string
		caching    cacheFlags
		input      inputFlags
	)
	opts := pipeline.Options{Direction: string(pipeline.DefaultDirection), Scale: pipeline.DefaultScale}

	cmd := &cobra.Command{
		Use:   "render [report.json | -]",
		Short: "Render an attack tree to SVG, PDF, PNG or DOT",
		Long: `Render an attack tree as a node-link drawing.

The tree is laid out by Graphviz and written once per requested format.
PDF and PNG output require rsvg-convert (librsvg) on the PATH.`,
		Args: input.inputArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(formatsStr)
			return c.runRender(cmd.Context(), input, args, opts, caching, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), pdf, png, dot (comma-separated)")
	cmd.Flags().StringVarP(&opts.Direction, "direction", "d", opts.Direction, "flow direction: TD or LR")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "show node ids and kinds")
	cmd.Flags().Float64Var(&opts.Scale, "scale", opts.Scale, "PNG scale factor")
	caching.register(cmd)
	input.register(cmd)

	return cmd
}

// parseFormats parses the --format flag into a slice of output formats.
// If empty, defaults to ["svg"].
func parseFormats(s string) []string {
	if s == "" {
		return []string{render.FormatSVG}
	}
	return strings.Split(s, ",")
}

// basePath derives the base output path. An explicit output loses a known
// format extension; otherwise the input name or assessment id is used.
func basePath(output string, input inputFlags, args []string) string {
	if output != "" {
		ext := filepath.Ext(output)
		if _, err := render.ParseFormat(strings.TrimPrefix(ext, ".")); err == nil {
			return strings.TrimSuffix(output, ext)
		}
		return output
	}
	if input.assessment != "" {
		return input.assessment
	}
	if len(args) == 0 || args[0] == "-" {
		return appName
	}
	return strings.TrimSuffix(args[0], filepath.Ext(args[0]))
}

// runRender normalizes the input and writes one file per format.
func (c *CLI) runRender(ctx context.Context, input inputFlags, args []string, opts pipeline.Options, caching cacheFlags, output string) error {
	opts.SkipDiagram = true
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	prog := newProgress(c.Logger)

	runner, err := c.newRunner(ctx, caching)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spin := newSpinner(ctx, "Rendering "+strings.Join(opts.Formats, ", ")+"...")
	spin.Start()
	result, err := c.execute(ctx, runner, input, args, opts)
	if err != nil {
		spin.StopWithError("Render failed")
		return err
	}
	spin.Stop()

	if result.Empty {
		printWarning("No attack tree in input; nothing to render")
		return nil
	}
	printIssues(result.Issues)

	single := len(result.Artifacts) == 1 && output != ""
	base := basePath(output, input, args)

	formats := make([]string, 0, len(result.Artifacts))
	for f := range result.Artifacts {
		formats = append(formats, f)
	}
	sort.Strings(formats)

	printSuccess("Rendered %d nodes", result.Stats.NodeCount)
	for _, f := range formats {
		path := base + "." + f
		if single {
			path = output
		}
		if err := writeOutput(c.Out, path, result.Artifacts[f]); err != nil {
			return err
		}
	}
	prog.done(fmt.Sprintf("Rendered %d formats", len(formats)))
	return nil
}
