// Package event provides listener registries for window events.
package event

// ResizeFunc receives the new drawable size in pixels.
type ResizeFunc func(width, height int)

// Resize is a registry of resize listeners. It is used from the loop thread
// only and is not safe for concurrent use.
type Resize struct {
	next      int
	listeners map[int]ResizeFunc
	order     []int
}

// NewResize creates an empty registry.
func NewResize() *Resize {
	return &Resize{listeners: make(map[int]ResizeFunc)}
}

// OnResize registers fn and returns a func that removes it. The cancel func
// may be called any number of times.
func (r *Resize) OnResize(fn ResizeFunc) (cancel func()) {
	id := r.next
	r.next++
	r.listeners[id] = fn
	r.order = append(r.order, id)

	return func() {
		if _, ok := r.listeners[id]; !ok {
			return
		}
		delete(r.listeners, id)
		for i, v := range r.order {
			if v == id {
				r.order = append(r.order[:i], r.order[i+1:]...)
				break
			}
		}
	}
}

// Dispatch calls every registered listener in registration order.
func (r *Resize) Dispatch(width, height int) {
	ids := append([]int(nil), r.order...)
	for _, id := range ids {
		if fn, ok := r.listeners[id]; ok {
			fn(width, height)
		}
	}
}

// Len returns the number of registered listeners.
func (r *Resize) Len() int {
	return len(r.listeners)
}
