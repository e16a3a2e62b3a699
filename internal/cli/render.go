package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/metricflow/pkg/graph"
	"github.com/matzehuels/metricflow/pkg/spec"
)

const (
	formatSVG  = "svg"
	formatJSON = "json"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	inputFlags
	output string
	format string // svg or json (snapshot)
}

func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{format: formatSVG}

	cmd := &cobra.Command{
		Use:   "render SPEC",
		Short: "Lay out a spec file and write the SVG document",
		Long: `Render lays out the nodes of a spec file (YAML, JSON or TOML), routes the
connectors and writes the canvas as an SVG document. With --format json the
laid-out snapshot is written instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.format != formatSVG && opts.format != formatJSON {
				return fmt.Errorf("invalid format: %s (must be 'svg' or 'json')", opts.format)
			}
			cfg, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}
			return runRender(cmd.Context(), cfg, args[0], opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file, - for stdout (default: SPEC with the format's extension)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: svg, json")
	return cmd
}

func runRender(ctx context.Context, cfg spec.Config, input string, opts renderOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	doc, err := loadDocument(input, opts.inputFlags)
	if err != nil {
		return err
	}
	c, surf, err := buildCanvas(cfg, doc, opts.inputFlags, logger)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Laid out %d nodes", c.Len()))

	var data []byte
	switch opts.format {
	case formatJSON:
		if data, err = graph.Marshal(c.Snapshot()); err != nil {
			return err
		}
	default:
		data = surf.Bytes()
	}

	path := outputPath(opts.output, input, opts.format)
	if err := writeOutput(path, data); err != nil {
		return err
	}
	if path != "-" {
		printSuccess("Rendered %s", input)
		printStats(c.Len(), len(c.Connectors()), string(c.Options().Flow))
		printFile(path)
	}
	return nil
}
