package db

import (
	"context"
	"sync"
	"sync/atomic"

	"gorm.io/gorm"
)

type OpenFunc func(ctx context.Context) (*gorm.DB, error)

// Provider hands out the single process-wide store handle. The handle is
// built on the first Get; concurrent first callers wait for that one
// construction instead of racing to open their own.
type Provider struct {
	open OpenFunc

	mu sync.Mutex
	db atomic.Pointer[gorm.DB]
}

func NewProvider(open OpenFunc) *Provider {
	return &Provider{open: open}
}

func (p *Provider) Get(ctx context.Context) (*gorm.DB, error) {
	if db := p.db.Load(); db != nil {
		return db, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if db := p.db.Load(); db != nil {
		return db, nil
	}
	db, err := p.open(ctx)
	if err != nil {
		return nil, err
	}
	p.db.Store(db)
	return db, nil
}

// Close releases the handle if one was built. A later Get opens a new one.
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	db := p.db.Swap(nil)
	if db == nil {
		return nil
	}
	return Close(db)
}
