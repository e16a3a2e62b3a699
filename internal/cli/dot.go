package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/metricflow/pkg/cache"
	"github.com/matzehuels/metricflow/pkg/render/nodelink"
	"github.com/matzehuels/metricflow/pkg/spec"
)

// graphvizTTL is how long rendered Graphviz output stays in the file cache.
const graphvizTTL = 7 * 24 * time.Hour

type dotOpts struct {
	inputFlags
	output   string
	format   string
	detailed bool
	noCache  bool
}

func (c *CLI) dotCommand() *cobra.Command {
	opts := dotOpts{format: string(nodelink.FormatDOT)}

	cmd := &cobra.Command{
		Use:   "dot SPEC",
		Short: "Export the laid-out canvas to Graphviz",
		Long: `Dot lays out a spec file and exports the canvas as Graphviz DOT with every
node pinned at its canvas position. With --format svg or png the DOT is
rendered in-process with the neato engine. Rendered output is cached in the
user cache directory; pass --no-cache to bypass it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := nodelink.ParseFormat(opts.format)
			if err != nil {
				return err
			}
			cfg, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}
			return runDot(cmd.Context(), cfg, args[0], format, opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file, - for stdout (default: SPEC with the format's extension)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: dot, svg, png")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include data rows in node labels")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "render without reading or writing the cache")
	return cmd
}

func runDot(ctx context.Context, cfg spec.Config, input string, format nodelink.Format, opts dotOpts) error {
	logger := loggerFromContext(ctx)

	doc, err := loadDocument(input, opts.inputFlags)
	if err != nil {
		return err
	}
	c, _, err := buildCanvas(cfg, doc, opts.inputFlags, logger)
	if err != nil {
		return err
	}

	dot := nodelink.ToDOT(c.Snapshot(), nodelink.Options{
		Detailed:  opts.detailed,
		LinkColor: c.Options().LinkColor,
	})

	prog := newProgress(logger)
	data, err := newRenderer(opts.noCache, logger).Render(ctx, dot, format)
	if err != nil {
		return err
	}
	if format != nodelink.FormatDOT {
		prog.done("Rendered with Graphviz")
	}
	logger.Debugf("Generated %s: %d bytes", format, len(data))

	path := outputPath(opts.output, input, string(format))
	if err := writeOutput(path, data); err != nil {
		return err
	}
	if path != "-" {
		printSuccess("Exported %s", input)
		printFile(path)
	}
	return nil
}

// newRenderer returns a Graphviz renderer backed by the user file cache.
// An unusable cache directory only disables caching.
func newRenderer(disabled bool, logger *log.Logger) *nodelink.Renderer {
	if disabled {
		return nodelink.NewRenderer(nil, 0)
	}
	dir, err := cache.DefaultDir("graphviz")
	if err == nil {
		var fc *cache.FileCache
		if fc, err = cache.NewFileCache(dir); err == nil {
			return nodelink.NewRenderer(fc, graphvizTTL)
		}
	}
	logger.Debug("graphviz cache disabled", "err", err)
	return nodelink.NewRenderer(nil, 0)
}
