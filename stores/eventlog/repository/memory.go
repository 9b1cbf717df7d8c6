package repository

import (
	"sync"

	bCtx "github.com/x-xyz/catalog/base/ctx"
	"github.com/x-xyz/catalog/domain/catalog"
)

// Memory is an in-process event source, appends notify every watcher
type Memory struct {
	mu        sync.RWMutex
	listings  []*catalog.ListingCreatedEvent
	mints     []*catalog.MintStartedEvent
	purchases []*catalog.PurchaseEvent
	watchers  map[*watcher]struct{}
}

func NewMemory() *Memory {
	return &Memory{watchers: map[*watcher]struct{}{}}
}

func (m *Memory) AppendListings(events ...*catalog.ListingCreatedEvent) {
	m.mu.Lock()
	m.listings = append(m.listings, events...)
	m.mu.Unlock()
	m.notify()
}

func (m *Memory) AppendMints(events ...*catalog.MintStartedEvent) {
	m.mu.Lock()
	m.mints = append(m.mints, events...)
	m.mu.Unlock()
	m.notify()
}

func (m *Memory) AppendPurchases(events ...*catalog.PurchaseEvent) {
	m.mu.Lock()
	m.purchases = append(m.purchases, events...)
	m.mu.Unlock()
	m.notify()
}

func (m *Memory) ListingsCreated(bCtx.Ctx) ([]*catalog.ListingCreatedEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*catalog.ListingCreatedEvent{}, m.listings...), nil
}

func (m *Memory) MintsStarted(bCtx.Ctx) ([]*catalog.MintStartedEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*catalog.MintStartedEvent{}, m.mints...), nil
}

func (m *Memory) Purchases(bCtx.Ctx) ([]*catalog.PurchaseEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*catalog.PurchaseEvent{}, m.purchases...), nil
}

func (m *Memory) Watch(c bCtx.Ctx) (catalog.Watcher, error) {
	w := newWatcher(c)
	m.mu.Lock()
	m.watchers[w] = struct{}{}
	m.mu.Unlock()
	w.start(func() error {
		<-w.ctx.Done()
		m.mu.Lock()
		delete(m.watchers, w)
		m.mu.Unlock()
		return nil
	})
	return w, nil
}

func (m *Memory) notify() {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for w := range m.watchers {
		w.signal()
	}
}
