// Package cli implements the attacktree command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/attacktree/pkg/buildinfo"
	"github.com/matzehuels/attacktree/pkg/cache"
	"github.com/matzehuels/attacktree/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "attacktree"

	// envPrefix prefixes every environment variable the CLI reads.
	envPrefix = "ATTACKTREE_"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Out receives command results; status lines go through the ui helpers.
	Out io.Writer
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Out:    os.Stdout,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Attacktree lays out and exports security attack trees",
		Long: `Attacktree turns attack tree reports into graph layouts and Mermaid diagrams.

Input is a JSON envelope holding a node list at any of the usual locations
(nodes, attack_tree.nodes, result.attack_tree.nodes, ...). Layouts place the
root goal at the origin; diagrams are flowcharts ready for Markdown reports.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.listCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// cacheFlags selects the cache backend of a command.
type cacheFlags struct {
	noCache  bool
	redisURL string
}

func (f *cacheFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&f.redisURL, "redis-url", os.Getenv(envPrefix+"REDIS_URL"), "cache in Redis instead of the local cache directory [$"+envPrefix+"REDIS_URL]")
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, flags cacheFlags) (*pipeline.Runner, error) {
	cache, err := c.newCache(ctx, flags)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache, nil, c.Logger), nil
}

func (c *CLI) newCache(ctx context.Context, flags cacheFlags) (cache.Cache, error) {
	if flags.noCache {
		nc := cache.Disabled("--no-cache")
		c.Logger.Debug("caching disabled", "cache", nc)
		return nc, nil
	}
	if flags.redisURL != "" {
		rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{URL: flags.redisURL})
		if err != nil {
			return nil, fmt.Errorf("open redis cache: %w", err)
		}
		c.Logger.Debug("using redis cache", "url", flags.redisURL)
		return rc, nil
	}
	dir, err := cacheDir()
	if err != nil {
		nc := cache.Disabled(err.Error())
		c.Logger.Warn("caching disabled", "cache", nc)
		return nc, nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("using file cache", "dir", dir)
	return fc, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/attacktree/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// envOr returns the environment variable ATTACKTREE_<name> or def.
func envOr(name, def string) string {
	if v := os.Getenv(envPrefix + name); v != "" {
		return v
	}
	return def
}
