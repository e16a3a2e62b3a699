package cli

import (
	"context"
	"fmt"
	"maps"
	"net"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/matzehuels/metricflow/pkg/observability/prom"
	"github.com/matzehuels/metricflow/pkg/server"
	"github.com/matzehuels/metricflow/pkg/spec"
)

// reloadDebounce coalesces the burst of events editors emit on save.
const reloadDebounce = 100 * time.Millisecond

type serveOpts struct {
	inputFlags
	addr  string
	watch bool
}

func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve SPEC",
		Short: "Serve a spec file as a live canvas",
		Long: `Serve lays out a spec file and serves it over HTTP. Open the printed URL to
drag nodes around; every change is streamed to the browser over a WebSocket.
Further canvases can be created through the JSON API under /canvases, and
Prometheus metrics are exposed on /metrics.

With --watch the spec file is reloaded whenever it changes on disk.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}
			if opts.addr == "" {
				opts.addr = cfg.Server.Addr
			}
			return runServe(cmd.Context(), cfg, args[0], opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "reload the spec file when it changes")
	return cmd
}

func runServe(ctx context.Context, cfg spec.Config, input string, opts serveOpts) error {
	logger := loggerFromContext(ctx)

	reg := prometheus.NewRegistry()
	if _, err := prom.Register(reg); err != nil {
		return err
	}

	srv, err := server.New(server.Config{
		Width:   cfg.Server.Width,
		Height:  cfg.Server.Height,
		Options: cfg.Canvas,
		SpecDir: filepath.Dir(input),
	}, server.WithLogger(logger), server.WithGatherer(reg))
	if err != nil {
		return err
	}

	load := func() error {
		doc, err := loadDocument(input, opts.inputFlags)
		if err != nil {
			return err
		}
		if o := opts.overrides(); o != nil {
			if doc.Options == nil {
				doc.Options = make(map[string]any, len(o))
			}
			maps.Copy(doc.Options, o)
		}
		return srv.SetDefault(doc)
	}
	if err := load(); err != nil {
		return err
	}

	if opts.watch {
		go func() {
			if err := watchFile(ctx, input, logger, load); err != nil {
				logger.Warn("watch stopped", "err", err)
			}
		}()
	}

	url := serverURL(opts.addr)
	printSuccess("Serving %s", input)
	fmt.Println("  " + StyleLink.Render(url))
	printKeyValue("API", url+"/canvases")
	printKeyValue("Metrics", url+"/metrics")
	if opts.watch {
		printInfo("Watching %s for changes", input)
	}
	printNextStep("Create another canvas", fmt.Sprintf("curl -X POST %s/canvases -d @spec.json", url))

	return srv.ListenAndServe(ctx, opts.addr)
}

// serverURL turns a listen address into a browsable URL.
func serverURL(addr string) string {
	host, port := "localhost", addr
	if h, p, err := net.SplitHostPort(addr); err == nil {
		if h != "" && h != "0.0.0.0" && h != "::" {
			host = h
		}
		port = p
	}
	return "http://" + host + ":" + port
}

// watchFile calls reload after path is written or re-created. It watches the
// parent directory so editors that save by renaming are picked up.
func watchFile(ctx context.Context, path string, logger *log.Logger, reload func() error) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}
	logger.Debug("watching", "path", abs)

	var timer <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			timer = time.After(reloadDebounce)
		case <-timer:
			timer = nil
			if err := reload(); err != nil {
				printWarning("Reload failed: %v", err)
				continue
			}
			printSuccess("Reloaded %s", path)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "err", err)
		}
	}
}
