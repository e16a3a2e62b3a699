package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/metricflow/pkg/buildinfo"
	"github.com/matzehuels/metricflow/pkg/canvas"
	"github.com/matzehuels/metricflow/pkg/canvas/svg"
	"github.com/matzehuels/metricflow/pkg/errors"
	"github.com/matzehuels/metricflow/pkg/spec"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for display.
	appName = "metricflow"

	// canvasID is the element id used for canvases rendered by the CLI.
	canvasID = "metricflow"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// slowStyle highlights methods over the --threshold in method trees.
var slowStyle = canvas.Style{TitleColor: "#b5443b", BorderColor: "#b5443b"}

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "MetricFlow lays out and draws metric node trees",
		Long:         `MetricFlow places trees of metric nodes, routes directed connectors between them and renders the result as SVG, Graphviz or a live, draggable canvas.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", spec.DefaultConfigFile, "config file")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.dotCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.versionCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Input Loading
// =============================================================================

// inputFlags are shared by every command that reads a spec file.
type inputFlags struct {
	flow      string
	methods   bool
	threshold float64
}

func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.flow, "flow", "", "layout direction: horizontal, vertical (overrides config)")
	cmd.Flags().BoolVar(&f.methods, "methods", false, "read the input as a JSON method call tree")
	cmd.Flags().Float64Var(&f.threshold, "threshold", 0, "highlight methods with an average run time at or above this many ms (--methods)")
}

// overrides returns option overrides set by flags.
func (f *inputFlags) overrides() map[string]any {
	if f.flow == "" {
		return nil
	}
	return map[string]any{"flow": f.flow}
}

// loadConfig reads the config file. The default path is optional; an
// explicit --config must exist.
func (c *CLI) loadConfig(cmd *cobra.Command) (spec.Config, error) {
	optional := !cmd.Flags().Changed("config")
	return spec.LoadConfig(c.configPath, optional)
}

// loadDocument reads a spec file, or a method call tree with --methods.
func loadDocument(path string, f inputFlags) (spec.Document, error) {
	if !f.methods {
		return spec.LoadFile(path)
	}
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return spec.Document{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "method tree %s", path)
		}
		return spec.Document{}, err
	}
	defer file.Close()

	root, err := spec.ReadMethodTree(file)
	if err != nil {
		return spec.Document{}, err
	}
	tree := spec.MethodTree(root, 20, 20, spec.ThresholdStyle{Threshold: f.threshold, Slow: slowStyle})
	return spec.Document{Nodes: []canvas.NodeSpec{tree}}, nil
}

// buildCanvas creates a canvas drawn on a fresh SVG surface and populates it
// from doc. Options merge config, then the document, then flags.
func buildCanvas(cfg spec.Config, doc spec.Document, f inputFlags, logger *log.Logger) (*canvas.Canvas, *svg.Surface, error) {
	opts, err := cfg.Options(doc.Options, f.overrides())
	if err != nil {
		return nil, nil, err
	}
	surf, err := svg.New(canvasID, cfg.Server.Width, cfg.Server.Height)
	if err != nil {
		return nil, nil, err
	}
	c, err := canvas.New(surf, opts, canvas.WithLogger(logger))
	if err != nil {
		return nil, nil, err
	}
	if err := c.CreateNodes(doc.Nodes...); err != nil {
		return nil, nil, err
	}
	return c, surf, nil
}

// =============================================================================
// Output
// =============================================================================

// outputPath returns output, or input with its extension replaced by ext.
func outputPath(output, input, ext string) string {
	if output != "" {
		return output
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + "." + ext
}

// writeOutput writes data to path; "-" writes to stdout.
func writeOutput(path string, data []byte) error {
	if path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
