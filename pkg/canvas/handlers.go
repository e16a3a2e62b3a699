package canvas

import "github.com/matzehuels/metricflow/pkg/errors"

// HandlerFunc reacts to a gesture on a node.
type HandlerFunc func(ev Event, n *Node)

// Handle registers fn under name. Nodes bind gestures to names; the name is
// resolved when the gesture fires, so handlers may be registered before or
// after the nodes that use them. Registering a name again replaces it.
func (c *Canvas) Handle(name string, fn HandlerFunc) error {
	if err := errors.ValidateHandlerName(name); err != nil {
		return err
	}
	if fn == nil {
		return errors.New(errors.ErrCodeInvalidHandler, "handler %q is nil", name)
	}
	c.handlers[name] = fn
	return nil
}

// dispatch invokes the handler bound to ev.Type on the target node, if any.
func (c *Canvas) dispatch(ev Event) bool {
	n, ok := c.nodes[ev.Target]
	if !ok {
		return false
	}
	name, ok := n.Events[ev.Type]
	if !ok {
		return false
	}
	fn, ok := c.handlers[name]
	if !ok {
		c.logger.Warn("no handler registered", "node", n.ID, "gesture", ev.Type, "handler", name)
		return false
	}
	fn(ev, n)
	return true
}
