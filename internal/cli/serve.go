package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/attacktree/internal/metrics"
	"github.com/matzehuels/attacktree/internal/server"
)

// serveOpts holds the flags of the serve command.
type serveOpts struct {
	addr         string
	timeout      time.Duration
	maxBodyBytes int64
	noMetrics    bool
	caching      cacheFlags
	source       sourceFlags
}

// serveCommand creates the serve command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve layouts and diagrams over HTTP",
		Long: `Serve layouts and diagrams over HTTP.

POST an attack tree envelope to /v1/layout or /v1/diagram. With a storage
directory or MongoDB configured, stored assessments are available under
/v1/assessments/{id}/layout and /v1/assessments/{id}/diagram.

Prometheus metrics are exposed at /metrics unless --no-metrics is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", envOr("ADDR", server.DefaultAddr), "listen address [$"+envPrefix+"ADDR]")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", server.DefaultTimeout, "per-request timeout")
	cmd.Flags().Int64Var(&opts.maxBodyBytes, "max-body", server.DefaultMaxBodyBytes, "maximum request body size in bytes")
	cmd.Flags().BoolVar(&opts.noMetrics, "no-metrics", false, "disable the /metrics endpoint")
	opts.caching.register(cmd)
	opts.source.register(cmd)

	return cmd
}

// runServe wires the runner, source and metrics into a server and blocks
// until ctx is canceled.
func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	runner, err := c.newRunner(ctx, opts.caching)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	serverOpts := []server.Option{server.WithLogger(c.Logger)}

	if !opts.noMetrics {
		reg := metrics.NewRegistry()
		reg.Install()
		serverOpts = append(serverOpts, server.WithMetrics(reg.Handler()))
	}

	if opts.source.configured() {
		src, closeSrc, err := c.openSource(ctx, opts.source, runner.Cache)
		if err != nil {
			return err
		}
		defer closeSrc()
		serverOpts = append(serverOpts, server.WithSource(src))
		c.Logger.Info("serving assessments", "source", src.Name())
	}

	srv := server.New(server.Config{
		Addr:         opts.addr,
		MaxBodyBytes: opts.maxBodyBytes,
		Timeout:      opts.timeout,
	}, runner, serverOpts...)

	printInfo("Listening on %s", StyleHighlight.Render(opts.addr))
	return srv.ListenAndServe(ctx)
}
