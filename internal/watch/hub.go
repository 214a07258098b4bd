// Package watch turns store queries into continuously updated views.
//
// A Feed re-runs its query whenever a repository reports a write to one of
// the tables the feed reads, and pushes the new result to every subscriber.
// Feeds are shared by key: all subscribers of "cart:7" see one query loop.
// When the last subscriber leaves, the loop keeps running for a grace
// window so a quick resubscribe gets the cached snapshot immediately.
package watch

import (
	"log/slog"
	"sync"
	"time"

	"github.com/Skotchmaster/amilimetros/internal/logging"
)

type source interface {
	watches(table string) bool
	invalidate()
}

type Hub struct {
	grace  time.Duration
	logger *slog.Logger

	mu       sync.Mutex
	feeds    map[string]source
	observer func(delta int)
}

func NewHub(grace time.Duration, l *slog.Logger) *Hub {
	if l == nil {
		l = logging.Discard()
	}
	return &Hub{
		grace:  grace,
		logger: l.With("component", "watch"),
		feeds:  make(map[string]source),
	}
}

// SetObserver registers fn to be called with +1/-1 as subscribers attach
// and detach.
func (h *Hub) SetObserver(fn func(delta int)) {
	h.mu.Lock()
	h.observer = fn
	h.mu.Unlock()
}

// Notify marks every live feed that reads any of tables as stale.
func (h *Hub) Notify(tables ...string) {
	h.mu.Lock()
	targets := make([]source, 0, len(h.feeds))
	for _, f := range h.feeds {
		for _, t := range tables {
			if f.watches(t) {
				targets = append(targets, f)
				break
			}
		}
	}
	h.mu.Unlock()

	for _, f := range targets {
		f.invalidate()
	}
}

// active returns the number of feeds with a running query loop.
func (h *Hub) active() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.feeds)
}

func (h *Hub) observe(delta int) {
	h.mu.Lock()
	fn := h.observer
	h.mu.Unlock()
	if fn != nil {
		fn(delta)
	}
}
