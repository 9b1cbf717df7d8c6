package usecase

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/xerrors"

	bCtx "github.com/x-xyz/catalog/base/ctx"
	"github.com/x-xyz/catalog/base/goroutine"
	"github.com/x-xyz/catalog/base/log"
	"github.com/x-xyz/catalog/domain/catalog"
)

type PipelineCfg struct {
	Source  catalog.EventSource
	Builder catalog.BuilderUseCase
}

type pipeline struct {
	source  catalog.EventSource
	builder catalog.BuilderUseCase
	now     func() time.Time

	mu       sync.RWMutex
	view     *catalog.View
	inflight sync.WaitGroup
}

func NewPipeline(cfg *PipelineCfg) catalog.PipelineUseCase {
	return &pipeline{
		source:  cfg.Source,
		builder: cfg.Builder,
		now:     time.Now,
		view: &catalog.View{
			Status:       catalog.StatusLoading,
			Collectibles: []*catalog.Collectible{},
		},
	}
}

// Refresh recomputes the whole catalog from the full history of the three logs and publishes it
func (p *pipeline) Refresh(c bCtx.Ctx) *catalog.View {
	runId := uuid.NewString()
	c = bCtx.WithValue(c, "runId", runId)
	defer met.BumpTime("refresh.time").End()

	listings, err := p.source.ListingsCreated(c)
	if err != nil {
		c.WithField("err", err).Error("source.ListingsCreated failed")
		return p.fail(runId, xerrors.Errorf("failed to read %s log: %w", catalog.StreamListingCreated, err))
	}
	mints, err := p.source.MintsStarted(c)
	if err != nil {
		c.WithField("err", err).Error("source.MintsStarted failed")
		return p.fail(runId, xerrors.Errorf("failed to read %s log: %w", catalog.StreamMintStarted, err))
	}
	purchases, err := p.source.Purchases(c)
	if err != nil {
		c.WithField("err", err).Error("source.Purchases failed")
		return p.fail(runId, xerrors.Errorf("failed to read %s log: %w", catalog.StreamPurchase, err))
	}

	candidates := p.builder.Build(c, listings, mints)
	visible := FilterPurchased(c, candidates, purchases)

	c.WithFields(log.Fields{
		"listings":   len(listings),
		"mints":      len(mints),
		"purchases":  len(purchases),
		"candidates": len(candidates),
		"visible":    len(visible),
	}).Info("catalog refreshed")
	met.BumpAvg("items", float64(len(visible)))

	return p.publish(&catalog.View{
		Status:       catalog.StatusReady,
		Collectibles: visible,
		UpdatedAt:    p.now(),
		RunId:        runId,
	})
}

func (p *pipeline) fail(runId string, err error) *catalog.View {
	met.BumpSum("source.err", 1)
	return p.publish(&catalog.View{
		Status:       catalog.StatusError,
		Collectibles: []*catalog.Collectible{},
		Err:          err,
		UpdatedAt:    p.now(),
		RunId:        runId,
	})
}

// publish replaces the visible view, the last run to finish wins
func (p *pipeline) publish(v *catalog.View) *catalog.View {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.view = v
	return v
}

func (p *pipeline) View() *catalog.View {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.view
}

// Select narrows the current view to a tab without touching the published one
func (p *pipeline) Select(tab catalog.Tab) *catalog.View {
	v := p.View()
	selected := *v
	selected.Collectibles = Select(v.Collectibles, tab)
	return &selected
}

// Run refreshes once, then again on every change reported by the source, until c is done.
// Refreshes are not cancelled by newer ones and may overlap.
func (p *pipeline) Run(c bCtx.Ctx) error {
	w, err := p.source.Watch(c)
	if err != nil {
		c.WithField("err", err).Error("source.Watch failed")
		p.fail("", err)
		return err
	}
	defer w.Unsubscribe()

	p.spawn(c)
	changes, errs := w.Changes(), w.Err()
	for {
		select {
		case <-c.Done():
			p.inflight.Wait()
			return nil
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			c.WithField("err", err).Error("watch failed")
			p.inflight.Wait()
			p.fail("", err)
			return err
		case _, ok := <-changes:
			if !ok {
				changes = nil
				continue
			}
			p.spawn(c)
		}
	}
}

func (p *pipeline) spawn(c bCtx.Ctx) {
	p.inflight.Add(1)
	goroutine.RecoverableGo(
		func() { p.Refresh(c) },
		goroutine.WithAfterEnded(p.inflight.Done),
	)
}
