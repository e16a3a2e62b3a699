package server

import (
	"context"
	"io"
	"maps"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/metricflow/pkg/cache"
	"github.com/matzehuels/metricflow/pkg/canvas"
	"github.com/matzehuels/metricflow/pkg/canvas/svg"
	"github.com/matzehuels/metricflow/pkg/errors"
	"github.com/matzehuels/metricflow/pkg/render/nodelink"
	"github.com/matzehuels/metricflow/pkg/session"
	"github.com/matzehuels/metricflow/pkg/spec"
)

// DefaultCanvasID is the id of the canvas shown at "/".
const DefaultCanvasID = "default"

const (
	maxBodyBytes    = 1 << 20
	cleanupInterval = 10 * time.Minute
	shutdownTimeout = 5 * time.Second
	graphvizTTL     = time.Hour
)

// Config configures a Server.
type Config struct {
	// Width and Height are the canvas element size ("800px", "600", "100%").
	Width, Height string
	// Options are the base canvas options every canvas starts from.
	Options map[string]any
	// Handlers are registered on every canvas the server creates.
	Handlers map[string]canvas.HandlerFunc
	// SpecDir, when set, lets POST /canvases?spec=PATH load a spec file
	// relative to it.
	SpecDir string
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore replaces the in-memory session store.
func WithStore(st session.Store) Option { return func(s *Server) { s.store = st } }

// WithGatherer serves /metrics from g instead of the default registry.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.metrics = promhttp.HandlerFor(g, promhttp.HandlerOpts{}) }
}

// WithRenderCache keeps Graphviz exports in c instead of a private
// in-memory cache.
func WithRenderCache(c cache.Cache) Option {
	return func(s *Server) { s.graphviz = nodelink.NewRenderer(c, graphvizTTL) }
}

// Server hosts canvases.
type Server struct {
	cfg      Config
	logger   *log.Logger
	store    session.Store
	mem      *session.MemoryStore // set when store is the default memory store
	metrics  http.Handler
	graphviz *nodelink.Renderer
	upgrader websocket.Upgrader
	router   chi.Router
}

// New creates a server. The default canvas is empty until [Server.SetDefault]
// is called.
func New(cfg Config, opts ...Option) (*Server, error) {
	if cfg.Width == "" {
		cfg.Width = "800px"
	}
	if cfg.Height == "" {
		cfg.Height = "600px"
	}
	if _, err := canvas.DecodeOptions(cfg.Options); err != nil {
		return nil, err
	}
	mem := session.NewMemoryStore()
	s := &Server{
		cfg:     cfg,
		logger:  log.NewWithOptions(io.Discard, log.Options{}),
		store:   mem,
		mem:     mem,
		metrics:  promhttp.Handler(),
		graphviz: nodelink.NewRenderer(cache.NewMemoryCache(0), graphvizTTL),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store != session.Store(mem) {
		s.mem = nil
	}
	s.router = s.routes()
	if err := s.SetDefault(spec.Document{}); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/", s.handleIndex)
	r.Method(http.MethodGet, "/metrics", s.metrics)

	r.Route("/canvases", func(r chi.Router) {
		r.Get("/", s.handleListCanvases)
		r.Post("/", s.handleCreateCanvas)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleSnapshot)
			r.Delete("/", s.handleDeleteCanvas)
			r.Get("/svg", s.handleSVG)
			r.Get("/graphviz", s.handleGraphviz)
			r.Post("/nodes", s.handleCreateNodes)
			r.Get("/nodes/{node}", s.handleGetNode)
			r.Delete("/nodes/{node}", s.handleRemoveNode)
			r.Post("/links", s.handleCreateLink)
			r.Post("/redraw", s.handleRedraw)
			r.Get("/live", s.handleLive)
		})
	})
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// NewCanvas builds a canvas and its surface from option overrides and
// nodes. Overrides are applied over the server's base options.
func (s *Server) NewCanvas(id string, overrides map[string]any, nodes []canvas.NodeSpec) (*canvas.Canvas, *svg.Surface, error) {
	merged := make(map[string]any, len(s.cfg.Options)+len(overrides))
	maps.Copy(merged, s.cfg.Options)
	maps.Copy(merged, overrides)
	opts, err := canvas.DecodeOptions(merged)
	if err != nil {
		return nil, nil, err
	}

	surf, err := svg.New(id, s.cfg.Width, s.cfg.Height)
	if err != nil {
		return nil, nil, err
	}
	c, err := canvas.New(surf, opts, canvas.WithLogger(s.logger))
	if err != nil {
		return nil, nil, err
	}
	for name, fn := range s.cfg.Handlers {
		if err := c.Handle(name, fn); err != nil {
			return nil, nil, err
		}
	}
	if err := c.CreateNodes(nodes...); err != nil {
		return nil, nil, err
	}
	return c, surf, nil
}

// SetDefault replaces the default canvas with one built from doc. Live
// clients of the default canvas receive the new document.
func (s *Server) SetDefault(doc spec.Document) error {
	c, surf, err := s.NewCanvas(DefaultCanvasID, doc.Options, doc.Nodes)
	if err != nil {
		return err
	}
	ctx := context.Background()
	if sess, err := s.store.Get(ctx, DefaultCanvasID); err == nil {
		sess.Reset(c, surf)
		s.logger.Info("reloaded default canvas", "nodes", c.Len())
		return nil
	}
	sess := session.NewWithID(DefaultCanvasID, c, surf)
	if s.mem != nil {
		return s.mem.Pin(sess)
	}
	sess.TTL = 0
	return s.store.Set(ctx, sess)
}

// Session returns the session for a canvas id.
func (s *Server) Session(ctx context.Context, id string) (*session.Session, error) {
	return s.store.Get(ctx, id)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go session.RunCleanup(ctx, s.store, cleanupInterval)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return errors.Wrap(errors.ErrCodeInternal, err, "listen on %s", addr)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
