package watch

import (
	"context"
	"sync"
	"time"
)

type QueryFunc[T any] func(ctx context.Context) (T, error)

// Feed is a query result kept up to date. Snapshots are shared between
// subscribers and must be treated as read-only.
type Feed[T any] struct {
	hub    *Hub
	key    string
	tables []string
	query  QueryFunc[T]

	mu       sync.Mutex
	dirty    chan struct{}
	subs     map[uint64]chan T
	nextID   uint64
	last     T
	ready    bool
	running  bool
	cancel   context.CancelFunc
	teardown *time.Timer
	gen      uint64
}

// Open describes the feed for key. Nothing runs until Subscribe; if a feed
// with the same key is already live, Subscribe joins it.
func Open[T any](h *Hub, key string, query QueryFunc[T], tables ...string) *Feed[T] {
	return &Feed[T]{
		hub:    h,
		key:    key,
		tables: tables,
		query:  query,
		subs:   make(map[uint64]chan T),
	}
}

func (f *Feed[T]) Key() string { return f.key }

func (f *Feed[T]) watches(table string) bool {
	for _, t := range f.tables {
		if t == table {
			return true
		}
	}
	return false
}

// invalidate wakes the current query loop. Each loop owns its channel, so
// a loop that is shutting down cannot swallow a wakeup meant for its
// successor.
func (f *Feed[T]) invalidate() {
	f.mu.Lock()
	dirty := f.dirty
	f.mu.Unlock()
	if dirty == nil {
		return
	}
	select {
	case dirty <- struct{}{}:
	default:
	}
}

// Subscribe attaches a subscriber. The subscription ends when ctx is done or
// Close is called; its channel is closed then.
func (f *Feed[T]) Subscribe(ctx context.Context) *Subscription[T] {
	h := f.hub

	h.mu.Lock()
	target := f
	if cur, ok := h.feeds[f.key]; ok {
		if live, ok := cur.(*Feed[T]); ok {
			target = live
		}
	}
	h.feeds[f.key] = target

	target.mu.Lock()
	id := target.nextID
	target.nextID++
	ch := make(chan T, 1)
	target.subs[id] = ch
	if target.teardown != nil {
		target.teardown.Stop()
		target.teardown = nil
	}
	if !target.running {
		runCtx, cancel := context.WithCancel(context.Background())
		target.cancel = cancel
		target.dirty = make(chan struct{}, 1)
		target.running = true
		go target.run(runCtx, target.dirty)
	} else if target.ready {
		ch <- target.last
	}
	target.mu.Unlock()
	h.mu.Unlock()

	h.observe(1)

	sub := &Subscription[T]{C: ch, feed: target, id: id, done: make(chan struct{})}
	if ctx.Done() != nil {
		go func() {
			select {
			case <-ctx.Done():
				sub.Close()
			case <-sub.done:
			}
		}()
	}
	return sub
}

func (f *Feed[T]) run(ctx context.Context, dirty <-chan struct{}) {
	for {
		f.refresh(ctx)
		select {
		case <-ctx.Done():
			return
		case <-dirty:
		}
	}
}

func (f *Feed[T]) refresh(ctx context.Context) {
	v, err := f.query(ctx)
	if err != nil {
		if ctx.Err() == nil {
			f.hub.logger.Warn("feed_refresh_failed", "feed", f.key, "error", err)
		}
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if ctx.Err() != nil {
		return
	}
	f.last = v
	f.ready = true
	for _, ch := range f.subs {
		offer(ch, v)
	}
}

// offer replaces whatever the subscriber has not read yet with v. Callers
// hold f.mu, so nothing else sends on ch concurrently.
func offer[T any](ch chan T, v T) {
	select {
	case <-ch:
	default:
	}
	ch <- v
}

func (f *Feed[T]) unsubscribe(id uint64) {
	h := f.hub

	h.mu.Lock()
	f.mu.Lock()
	ch, ok := f.subs[id]
	if ok {
		delete(f.subs, id)
		close(ch)
	}
	if len(f.subs) == 0 && f.running && f.teardown == nil {
		f.gen++
		gen := f.gen
		f.teardown = time.AfterFunc(h.grace, func() { f.expire(gen) })
	}
	f.mu.Unlock()
	h.mu.Unlock()

	if ok {
		h.observe(-1)
	}
}

func (f *Feed[T]) expire(gen uint64) {
	h := f.hub

	h.mu.Lock()
	defer h.mu.Unlock()
	f.mu.Lock()
	defer f.mu.Unlock()

	if gen != f.gen || len(f.subs) > 0 || !f.running {
		return
	}
	f.teardown = nil
	f.cancel()
	f.dirty = nil
	f.running = false
	f.ready = false
	var zero T
	f.last = zero

	if cur, ok := h.feeds[f.key]; ok && cur == source(f) {
		delete(h.feeds, f.key)
	}
}

type Subscription[T any] struct {
	C <-chan T

	feed *Feed[T]
	id   uint64
	once sync.Once
	done chan struct{}
}

func (s *Subscription[T]) Close() {
	s.once.Do(func() {
		close(s.done)
		s.feed.unsubscribe(s.id)
	})
}
