package gateway

import (
	"context"
	"sync"
)

// Invalidation describes the request whose 401 tore the session down.
type Invalidation struct {
	Credential string
	Method     string
	Path       string
	RequestID  string

	ctx context.Context
}

// Context returns the context of the request that received the 401, so
// listeners can act on behalf of the caller that made it.
func (i Invalidation) Context() context.Context {
	if i.ctx == nil {
		return context.Background()
	}
	return i.ctx
}

// Events fans Invalidations out to subscribers. Delivery is synchronous, on
// the goroutine that received the 401, in subscription order.
type Events struct {
	mu        sync.RWMutex
	nextID    int
	listeners map[int]func(Invalidation)
	order     []int
}

func NewEvents() *Events {
	return &Events{listeners: make(map[int]func(Invalidation))}
}

// Subscribe registers fn and returns a function that removes it.
func (e *Events) Subscribe(fn func(Invalidation)) (unsubscribe func()) {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.nextID
	e.nextID++
	e.listeners[id] = fn
	e.order = append(e.order, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			delete(e.listeners, id)
			for i, v := range e.order {
				if v == id {
					e.order = append(e.order[:i], e.order[i+1:]...)
					break
				}
			}
		})
	}
}

func (e *Events) emit(inv Invalidation) {
	e.mu.RLock()
	fns := make([]func(Invalidation), 0, len(e.order))
	for _, id := range e.order {
		fns = append(fns, e.listeners[id])
	}
	e.mu.RUnlock()

	for _, fn := range fns {
		fn(inv)
	}
}
