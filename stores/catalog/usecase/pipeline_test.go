package usecase

import (
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	bCtx "github.com/x-xyz/catalog/base/ctx"
	"github.com/x-xyz/catalog/base/ptr"
	"github.com/x-xyz/catalog/domain/catalog"
	"github.com/x-xyz/catalog/domain/mocks"
)

type stubBuilder struct {
	mu    sync.Mutex
	calls int
}

// Build turns each listing into an on-sale entry and each mint into a mintable one
func (b *stubBuilder) Build(c bCtx.Ctx, listings []*catalog.ListingCreatedEvent, mints []*catalog.MintStartedEvent) []*catalog.Collectible {
	b.mu.Lock()
	b.calls++
	b.mu.Unlock()
	out := []*catalog.Collectible{}
	for _, l := range listings {
		out = append(out, &catalog.Collectible{
			ListingId: ptr.Uint64(l.ListingId.Uint64()),
			Uri:       "listing-" + l.ListingId.String(),
			Price:     ptr.String(l.Price.String()),
		})
	}
	for _, m := range mints {
		out = append(out, &catalog.Collectible{Uri: m.TokenURI, MaxTokenId: ptr.Uint64(m.MaxTokenId.Uint64())})
	}
	return out
}

func (b *stubBuilder) Calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}

type fakeWatcher struct {
	changes      chan struct{}
	errs         chan error
	unsubscribed chan struct{}
	once         sync.Once
}

func newFakeWatcher() *fakeWatcher {
	return &fakeWatcher{
		changes:      make(chan struct{}),
		errs:         make(chan error, 1),
		unsubscribed: make(chan struct{}),
	}
}

func (w *fakeWatcher) Changes() <-chan struct{} { return w.changes }
func (w *fakeWatcher) Err() <-chan error        { return w.errs }
func (w *fakeWatcher) Unsubscribe()             { w.once.Do(func() { close(w.unsubscribed) }) }

type pipelineTestSuite struct {
	suite.Suite

	ctx     bCtx.Ctx
	source  *mocks.EventSource
	builder *stubBuilder
	p       catalog.PipelineUseCase
}

func TestPipelineSuite(t *testing.T) {
	suite.Run(t, new(pipelineTestSuite))
}

func (s *pipelineTestSuite) SetupTest() {
	s.ctx = bCtx.Background()
	s.source = &mocks.EventSource{}
	s.builder = &stubBuilder{}
	s.p = NewPipeline(&PipelineCfg{Source: s.source, Builder: s.builder})
}

func (s *pipelineTestSuite) mockLogs() {
	s.source.On("ListingsCreated", mock.Anything).Return([]*catalog.ListingCreatedEvent{
		{ListingId: big.NewInt(1), NftId: big.NewInt(1), Price: big.NewInt(10)},
		{ListingId: big.NewInt(2), NftId: big.NewInt(2), Price: big.NewInt(20)},
	}, nil)
	s.source.On("MintsStarted", mock.Anything).Return([]*catalog.MintStartedEvent{
		{TokenURI: "ipfs://QmMint", MaxTokenId: big.NewInt(5)},
	}, nil)
	s.source.On("Purchases", mock.Anything).Return([]*catalog.PurchaseEvent{
		{ItemId: big.NewInt(1)},
	}, nil)
}

func (s *pipelineTestSuite) TestInitialViewIsLoading() {
	v := s.p.View()
	s.Equal(catalog.StatusLoading, v.Status)
	s.Empty(v.Collectibles)
	s.NoError(v.Err)
}

func (s *pipelineTestSuite) TestRefresh() {
	s.mockLogs()

	v := s.p.Refresh(s.ctx)

	s.Equal(catalog.StatusReady, v.Status)
	s.Equal([]string{"listing-2", "ipfs://QmMint"}, uris(v.Collectibles))
	s.NotEmpty(v.RunId)
	s.False(v.UpdatedAt.IsZero())
	s.Same(v, s.p.View())
}

func (s *pipelineTestSuite) TestRefreshIsIdempotent() {
	s.mockLogs()

	first := s.p.Refresh(s.ctx)
	second := s.p.Refresh(s.ctx)

	s.Equal(uris(first.Collectibles), uris(second.Collectibles))
	s.NotEqual(first.RunId, second.RunId)
	s.Equal(2, s.builder.Calls())
}

func (s *pipelineTestSuite) TestSourceErrorPublishesErrorView() {
	s.mockLogs()
	s.p.Refresh(s.ctx)

	failing := &mocks.EventSource{}
	rpcErr := errors.New("rpc unavailable")
	failing.On("ListingsCreated", mock.Anything).Return(nil, nil)
	failing.On("MintsStarted", mock.Anything).Return(nil, rpcErr)
	p := NewPipeline(&PipelineCfg{Source: failing, Builder: s.builder})

	v := p.Refresh(s.ctx)

	s.Equal(catalog.StatusError, v.Status)
	s.Empty(v.Collectibles)
	s.True(errors.Is(v.Err, rpcErr))
	s.Contains(v.Err.Error(), string(catalog.StreamMintStarted))
	failing.AssertNotCalled(s.T(), "Purchases", mock.Anything)
}

func (s *pipelineTestSuite) TestSelectLeavesPublishedViewUntouched() {
	s.mockLogs()
	s.p.Refresh(s.ctx)

	onSale := s.p.Select(catalog.TabOnSale)
	mintables := s.p.Select(catalog.TabMintables)

	s.Equal([]string{"listing-2"}, uris(onSale.Collectibles))
	s.Equal([]string{"ipfs://QmMint"}, uris(mintables.Collectibles))
	s.Equal(catalog.StatusReady, onSale.Status)
	s.Equal([]string{"listing-2", "ipfs://QmMint"}, uris(s.p.View().Collectibles))
}

func (s *pipelineTestSuite) TestRunRefreshesOnChange() {
	s.mockLogs()
	w := newFakeWatcher()
	s.source.On("Watch", mock.Anything).Return(w, nil)
	c, cancel := bCtx.WithCancel(s.ctx)

	done := make(chan error, 1)
	go func() { done <- s.p.Run(c) }()

	s.Eventually(func() bool { return s.builder.Calls() == 1 }, time.Second, 5*time.Millisecond)
	w.changes <- struct{}{}
	s.Eventually(func() bool { return s.builder.Calls() == 2 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		s.NoError(err)
	case <-time.After(time.Second):
		s.Fail("Run did not return after cancel")
	}
	<-w.unsubscribed
	s.Equal(catalog.StatusReady, s.p.View().Status)
}

func (s *pipelineTestSuite) TestRunStopsOnWatchError() {
	s.mockLogs()
	w := newFakeWatcher()
	s.source.On("Watch", mock.Anything).Return(w, nil)
	subErr := errors.New("subscription dropped")
	w.errs <- subErr

	err := s.p.Run(s.ctx)

	s.Equal(subErr, err)
	s.Equal(catalog.StatusError, s.p.View().Status)
	<-w.unsubscribed
}

func (s *pipelineTestSuite) TestRunFailsWhenWatchFails() {
	watchErr := errors.New("no filter support")
	s.source.On("Watch", mock.Anything).Return(nil, watchErr)

	err := s.p.Run(s.ctx)

	s.Equal(watchErr, err)
	s.Equal(catalog.StatusError, s.p.View().Status)
	s.Equal(0, s.builder.Calls())
}
