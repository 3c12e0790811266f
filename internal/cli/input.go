package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/attacktree/pkg/cache"
	"github.com/matzehuels/attacktree/pkg/pipeline"
	"github.com/matzehuels/attacktree/pkg/source"
)

// =============================================================================
// Source Flags
// =============================================================================

// sourceFlags selects where stored assessments are read from. A Mongo URI
// takes precedence over the storage directory.
type sourceFlags struct {
	storageDir      string
	mongoURI        string
	mongoDatabase   string
	mongoCollection string
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.storageDir, "storage", envOr("STORAGE_DIR", ""), "assessment storage directory [$"+envPrefix+"STORAGE_DIR]")
	cmd.Flags().StringVar(&f.mongoURI, "mongo-uri", envOr("MONGO_URI", ""), "MongoDB connection string [$"+envPrefix+"MONGO_URI]")
	cmd.Flags().StringVar(&f.mongoDatabase, "mongo-db", envOr("MONGO_DB", source.DefaultMongoDatabase), "MongoDB database")
	cmd.Flags().StringVar(&f.mongoCollection, "mongo-collection", envOr("MONGO_COLLECTION", source.DefaultMongoCollection), "MongoDB collection")
}

// configured reports whether any backend was selected.
func (f sourceFlags) configured() bool {
	return f.storageDir != "" || f.mongoURI != ""
}

// openSource opens the selected backend, memoized through c. The returned
// close function releases the backend's connections.
func (c *CLI) openSource(ctx context.Context, f sourceFlags, cc cache.Cache) (source.Source, func(), error) {
	switch {
	case f.mongoURI != "":
		ms, err := source.NewMongoSource(ctx, source.MongoOptions{
			URI:        f.mongoURI,
			Database:   f.mongoDatabase,
			Collection: f.mongoCollection,
		})
		if err != nil {
			return nil, nil, err
		}
		c.Logger.Debug("using mongo source", "database", f.mongoDatabase, "collection", f.mongoCollection)
		closeFn := func() {
			if err := ms.Close(context.Background()); err != nil {
				c.Logger.Debug("close mongo source", "error", err)
			}
		}
		return source.NewCached(ms, cc, nil, 0), closeFn, nil
	case f.storageDir != "":
		c.Logger.Debug("using file source", "dir", f.storageDir)
		return source.NewCached(source.NewFileSource(f.storageDir), cc, nil, 0), func() {}, nil
	}
	return nil, nil, fmt.Errorf("no assessment source: set --storage or --mongo-uri")
}

// =============================================================================
// Input Flags
// =============================================================================

// inputFlags selects the envelope a command processes: a file argument,
// "-" for stdin, or a stored assessment.
type inputFlags struct {
	assessment string
	source     sourceFlags
}

func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.assessment, "assessment", "a", "", "process a stored assessment by id")
	f.source.register(cmd)
}

// inputArgs validates the positional arguments against the input flags.
func (f *inputFlags) inputArgs(cmd *cobra.Command, args []string) error {
	if f.assessment != "" {
		return cobra.NoArgs(cmd, args)
	}
	return cobra.ExactArgs(1)(cmd, args)
}

// execute runs the pipeline on the selected input.
func (c *CLI) execute(ctx context.Context, runner *pipeline.Runner, in inputFlags, args []string, opts pipeline.Options) (*pipeline.Result, error) {
	if in.assessment != "" {
		src, closeSrc, err := c.openSource(ctx, in.source, runner.Cache)
		if err != nil {
			return nil, err
		}
		defer closeSrc()

		spin := newSpinner(ctx, "Fetching assessment "+in.assessment+"...")
		spin.Start()
		result, err := runner.ExecuteAssessment(ctx, src, in.assessment, opts)
		spin.Stop()
		return result, err
	}

	envelope, err := readEnvelope(args[0], os.Stdin)
	if err != nil {
		return nil, err
	}
	return runner.Execute(ctx, envelope, opts)
}

// readEnvelope reads the input file, or stdin for "-".
func readEnvelope(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return data, nil
}

// writeOutput writes data to path, or to w when path is empty.
func writeOutput(w io.Writer, path string, data []byte) error {
	if path == "" {
		_, err := w.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	printFile(path)
	return nil
}
