package mcp

import (
	"fmt"
	"sync"

	"github.com/basefolk/supabase-mcp/internal/common"
)

// Notifier fans a catalog refresh out to registered listeners. Listeners
// run synchronously in registration order; a panicking listener is logged
// and does not prevent later listeners from running.
type Notifier struct {
	mu        sync.Mutex
	nextID    int
	order     []int
	listeners map[int]func()
	logger    *common.Logger
}

// NewNotifier creates an empty refresh notifier.
func NewNotifier(logger *common.Logger) *Notifier {
	return &Notifier{
		listeners: make(map[int]func()),
		logger:    logger,
	}
}

// OnRefresh registers a listener and returns its unregister func. Each
// registration is a distinct entry even for the same func value, and the
// unregister func is idempotent.
func (n *Notifier) OnRefresh(fn func()) func() {
	n.mu.Lock()
	id := n.nextID
	n.nextID++
	n.order = append(n.order, id)
	n.listeners[id] = fn
	n.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			delete(n.listeners, id)
			for i, v := range n.order {
				if v == id {
					n.order = append(n.order[:i], n.order[i+1:]...)
					break
				}
			}
		})
	}
}

// Notify invokes every listener in registration order, isolating panics.
func (n *Notifier) Notify() {
	n.mu.Lock()
	fns := make([]func(), 0, len(n.order))
	for _, id := range n.order {
		if fn, ok := n.listeners[id]; ok {
			fns = append(fns, fn)
		}
	}
	n.mu.Unlock()

	for _, fn := range fns {
		n.invoke(fn)
	}
}

func (n *Notifier) invoke(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.Warn().Str("panic", fmt.Sprint(r)).Msg("refresh listener panicked")
		}
	}()
	fn()
}

// Count returns the number of registered listeners.
func (n *Notifier) Count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.listeners)
}
