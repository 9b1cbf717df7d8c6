package catalog

import (
	"time"

	"github.com/x-xyz/catalog/base/ctx"
)

type TokenURIResolver interface {
	TokenURI(c ctx.Ctx, tokenId uint64) (string, error)
}

type MetadataResolver interface {
	Resolve(c ctx.Ctx, contentHash string) (*Metadata, error)
}

// EventSource delivers the full history of each log on every call
type EventSource interface {
	ListingsCreated(ctx.Ctx) ([]*ListingCreatedEvent, error)
	MintsStarted(ctx.Ctx) ([]*MintStartedEvent, error)
	Purchases(ctx.Ctx) ([]*PurchaseEvent, error)
	Watch(ctx.Ctx) (Watcher, error)
}

// Watcher signals that at least one of the logs may have grown
type Watcher interface {
	Changes() <-chan struct{}
	Err() <-chan error
	Unsubscribe()
}

// Notifier receives per record failures, e.g. to raise a toast or a chat message
type Notifier interface {
	Notify(c ctx.Ctx, err error)
}

type BuilderUseCase interface {
	Build(c ctx.Ctx, listings []*ListingCreatedEvent, mints []*MintStartedEvent) []*Collectible
}

type PipelineUseCase interface {
	Refresh(c ctx.Ctx) *View
	Run(c ctx.Ctx) error
	View() *View
	Select(tab Tab) *View
}

type Status string

const (
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusError   Status = "error"
)

// View is one published catalog. It is never mutated after publication.
type View struct {
	Status       Status
	Collectibles []*Collectible
	Err          error
	UpdatedAt    time.Time
	RunId        string
}
