package watch

import "fmt"

// Handler processes the decoded payload of a single event. A returned
// error (or panic) is logged by the session and never terminates the
// stream.
type Handler func(payload map[string]any) error

// Registry maps each event kind to its handler. It is built once at
// startup and immutable afterwards.
type Registry struct {
	handlers map[EventKind]Handler
}

// NewRegistry builds a registry from the given handler map. The map is
// copied; later changes to it do not affect the registry.
func NewRegistry(handlers map[EventKind]Handler) *Registry {
	copied := make(map[EventKind]Handler, len(handlers))
	for kind, h := range handlers {
		copied[kind] = h
	}
	return &Registry{handlers: copied}
}

// Has reports whether a handler is registered for the given kind.
func (r *Registry) Has(kind EventKind) bool {
	return r.handlers[kind] != nil
}

// Dispatch invokes the handler registered for kind. Kinds without a
// handler fall back to the KindUnknown handler. A panicking handler is
// recovered and surfaced as an error.
func (r *Registry) Dispatch(kind EventKind, payload map[string]any) error {
	h := r.handlers[kind]
	if h == nil {
		h = r.handlers[KindUnknown]
	}
	if h == nil {
		return fmt.Errorf("watch: no handler for kind %q", kind)
	}
	return invoke(h, payload)
}

func invoke(h Handler, payload map[string]any) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("watch: handler panic: %v", rec)
		}
	}()
	return h(payload)
}
