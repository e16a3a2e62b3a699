// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific observability backends to the canvas library.
// Consumers register hooks at startup to receive events about layout passes,
// store mutations, connector routing, drag interactions and HTTP traffic.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// The Prometheus backend lives in the prom subpackage.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    prom.Register(prometheus.DefaultRegisterer)
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Canvas().OnLayoutStart(root, flow)
//	// ... lay out the tree ...
//	observability.Canvas().OnLayoutComplete(root, nodeCount, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Canvas Hooks
// =============================================================================

// CanvasHooks receives events from canvas operations. Canvas operations are
// synchronous and carry no context.
type CanvasHooks interface {
	// Layout events
	OnLayoutStart(root, flow string)
	OnLayoutComplete(root string, nodeCount int, duration time.Duration, err error)

	// Store events
	OnNodeCreated(kind string)
	OnNodeRemoved(connectors int)

	// OnConnectorRouted records one routed connector and the side it uses.
	OnConnectorRouted(side string)

	// OnDrag records one pointer-move while dragging. target is "node" or
	// "canvas"; rerouted is the number of connectors redrawn.
	OnDrag(target string, rerouted int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the live canvas server.
type HTTPHooks interface {
	// OnRequest records an incoming HTTP request.
	OnRequest(ctx context.Context, method, route string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)

	// OnLiveEvent records one pointer event received over a live connection.
	OnLiveEvent(ctx context.Context, eventType string)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopCanvasHooks is a no-op implementation of CanvasHooks.
type NoopCanvasHooks struct{}

func (NoopCanvasHooks) OnLayoutStart(string, string)                        {}
func (NoopCanvasHooks) OnLayoutComplete(string, int, time.Duration, error) {}
func (NoopCanvasHooks) OnNodeCreated(string)                                {}
func (NoopCanvasHooks) OnNodeRemoved(int)                                   {}
func (NoopCanvasHooks) OnConnectorRouted(string)                            {}
func (NoopCanvasHooks) OnDrag(string, int)                                  {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                     {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnLiveEvent(context.Context, string)                            {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	canvasHooks CanvasHooks = NoopCanvasHooks{}
	httpHooks   HTTPHooks   = NoopHTTPHooks{}
	hooksMu     sync.RWMutex
)

// SetCanvasHooks registers custom canvas hooks.
// This should be called once at application startup before any canvas is built.
func SetCanvasHooks(h CanvasHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		canvasHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup before the server starts.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Canvas returns the registered canvas hooks.
func Canvas() CanvasHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return canvasHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	canvasHooks = NoopCanvasHooks{}
	httpHooks = NoopHTTPHooks{}
}
