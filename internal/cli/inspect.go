package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/attacktree/pkg/pipeline"
)

// inspectCommand creates the inspect command for browsing a tree in the terminal.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		caching cacheFlags
		input   inputFlags
	)

	cmd := &cobra.Command{
		Use:   "inspect [report.json | -]",
		Short: "Browse an attack tree interactively",
		Long: `Browse an attack tree interactively.

Nodes can be expanded and collapsed; the selected node's id, kind and child
count are shown below the tree. Without an input file and with a storage
directory or MongoDB configured, an assessment picker is shown first.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if input.assessment == "" && len(args) == 0 && input.source.configured() {
				return nil
			}
			return input.inputArgs(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(cmd.Context(), input, args, caching)
		},
	}

	caching.register(cmd)
	input.register(cmd)

	return cmd
}

// runInspect resolves the input and runs the tree browser.
func (c *CLI) runInspect(ctx context.Context, input inputFlags, args []string, caching cacheFlags) error {
	runner, err := c.newRunner(ctx, caching)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	if input.assessment == "" && len(args) == 0 {
		id, err := c.pickAssessment(ctx, input.source, runner)
		if err != nil || id == "" {
			return err
		}
		input.assessment = id
	}

	opts := pipeline.Options{SkipDiagram: true}
	result, err := c.execute(ctx, runner, input, args, opts)
	if err != nil {
		return err
	}
	if result.Empty {
		printWarning("No attack tree in input")
		return nil
	}

	_, err = tea.NewProgram(NewTreeModel(result.Root(), result.Issues), tea.WithContext(ctx)).Run()
	return err
}

// pickAssessment shows the assessment picker and returns the chosen id, or
// "" when the user quit without choosing.
func (c *CLI) pickAssessment(ctx context.Context, f sourceFlags, runner *pipeline.Runner) (string, error) {
	src, closeSrc, err := c.openSource(ctx, f, runner.Cache)
	if err != nil {
		return "", err
	}
	defer closeSrc()

	assessments, err := src.List(ctx)
	if err != nil {
		return "", fmt.Errorf("list assessments: %w", err)
	}
	if len(assessments) == 0 {
		printInfo("No assessments with an attack tree in %s", src.Name())
		return "", nil
	}

	final, err := tea.NewProgram(NewAssessmentListModel(assessments), tea.WithContext(ctx)).Run()
	if err != nil {
		return "", err
	}
	if m, ok := final.(AssessmentListModel); ok && m.Selected != nil {
		return m.Selected.ID, nil
	}
	return "", nil
}

// listCommand creates the list command for stored assessments.
func (c *CLI) listCommand() *cobra.Command {
	var (
		asJSON bool
		flags  sourceFlags
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"assessments"},
		Short:   "List stored assessments that carry an attack tree",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runList(cmd.Context(), flags, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	flags.register(cmd)

	return cmd
}

// runList prints the assessments of the configured source, newest first.
func (c *CLI) runList(ctx context.Context, f sourceFlags, asJSON bool) error {
	src, closeSrc, err := c.openSource(ctx, f, nil)
	if err != nil {
		return err
	}
	defer closeSrc()

	assessments, err := src.List(ctx)
	if err != nil {
		return fmt.Errorf("list assessments: %w", err)
	}
	return c.printAssessments(src, assessments, asJSON)
}
