// Package prom implements the observability hooks on top of Prometheus
// collectors.
//
//	reg := prometheus.NewRegistry()
//	hooks, err := prom.Register(reg)
//	if err != nil { ... }
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
package prom

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/metricflow/pkg/observability"
)

const namespace = "metricflow"

// Hooks holds the collectors and implements both hook interfaces.
type Hooks struct {
	LayoutDuration  *prometheus.HistogramVec
	LayoutNodes     prometheus.Counter
	NodesCreated    *prometheus.CounterVec
	NodesRemoved    prometheus.Counter
	ConnectorsRoute *prometheus.CounterVec
	DragMoves       *prometheus.CounterVec
	DragRerouted    *prometheus.CounterVec
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
	LiveEvents      *prometheus.CounterVec
}

var (
	_ observability.CanvasHooks = (*Hooks)(nil)
	_ observability.HTTPHooks   = (*Hooks)(nil)
)

// New creates the collectors without registering them.
func New() *Hooks {
	return &Hooks{
		LayoutDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "layout_duration_seconds",
				Help:      "Duration of top-level layout passes",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
			},
			[]string{"result"},
		),
		LayoutNodes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "layout_nodes_total",
			Help:      "Nodes placed by layout passes",
		}),
		NodesCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "nodes_created_total",
				Help:      "Nodes materialized on a canvas",
			},
			[]string{"kind"},
		),
		NodesRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "nodes_removed_total",
			Help:      "Nodes removed from a canvas",
		}),
		ConnectorsRoute: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "connectors_routed_total",
				Help:      "Connectors routed, by chosen side",
			},
			[]string{"side"},
		),
		DragMoves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "drag_moves_total",
				Help:      "Pointer moves handled while dragging",
			},
			[]string{"target"},
		),
		DragRerouted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "drag_rerouted_connectors_total",
				Help:      "Connectors re-routed by drag moves",
			},
			[]string{"target"},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests served",
			},
			[]string{"method", "route", "code"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		LiveEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "live_events_total",
				Help:      "Pointer events received over live connections",
			},
			[]string{"type"},
		),
	}
}

// Collectors lists every collector owned by h.
func (h *Hooks) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		h.LayoutDuration, h.LayoutNodes, h.NodesCreated, h.NodesRemoved,
		h.ConnectorsRoute, h.DragMoves, h.DragRerouted,
		h.HTTPRequests, h.HTTPDuration, h.LiveEvents,
	}
}

// Register creates the collectors, registers them with reg and installs the
// hooks globally.
func Register(reg prometheus.Registerer) (*Hooks, error) {
	h := New()
	for _, c := range h.Collectors() {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	observability.SetCanvasHooks(h)
	observability.SetHTTPHooks(h)
	return h, nil
}

func (h *Hooks) OnLayoutStart(string, string) {}

func (h *Hooks) OnLayoutComplete(_ string, nodeCount int, d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	h.LayoutDuration.WithLabelValues(result).Observe(d.Seconds())
	h.LayoutNodes.Add(float64(nodeCount))
}

func (h *Hooks) OnNodeCreated(kind string) { h.NodesCreated.WithLabelValues(kind).Inc() }

func (h *Hooks) OnNodeRemoved(int) { h.NodesRemoved.Inc() }

func (h *Hooks) OnConnectorRouted(side string) { h.ConnectorsRoute.WithLabelValues(side).Inc() }

func (h *Hooks) OnDrag(target string, rerouted int) {
	h.DragMoves.WithLabelValues(target).Inc()
	h.DragRerouted.WithLabelValues(target).Add(float64(rerouted))
}

func (h *Hooks) OnRequest(context.Context, string, string) {}

func (h *Hooks) OnResponse(_ context.Context, method, route string, code int, d time.Duration) {
	h.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	h.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (h *Hooks) OnLiveEvent(_ context.Context, eventType string) {
	h.LiveEvents.WithLabelValues(eventType).Inc()
}
