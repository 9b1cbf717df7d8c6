package repository

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/suite"

	baseabi "github.com/x-xyz/catalog/base/abi"
	bCtx "github.com/x-xyz/catalog/base/ctx"
	"github.com/x-xyz/catalog/domain/catalog"
)

var (
	marketplace = common.HexToAddress("0x1000000000000000000000000000000000000001")
	simpleMint  = common.HexToAddress("0x2000000000000000000000000000000000000002")
	seller      = common.HexToAddress("0x3000000000000000000000000000000000000003")
	bidder      = common.HexToAddress("0x4000000000000000000000000000000000000004")
)

type fakeSubscription struct {
	errs chan error
	once sync.Once
}

func (s *fakeSubscription) Unsubscribe()      { s.once.Do(func() { close(s.errs) }) }
func (s *fakeSubscription) Err() <-chan error { return s.errs }

// fakeClient serves logs like a node that refuses ranges wider than maxRange blocks
type fakeClient struct {
	mu       sync.Mutex
	head     uint64
	logs     []types.Log
	maxRange uint64
	queries  int
	subErr   error
	sub      *fakeSubscription
	sink     chan<- types.Log
}

func (f *fakeClient) BlockNumber(context.Context) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.head, nil
}

func (f *fakeClient) FilterLogs(_ context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries++
	from, to := q.FromBlock.Uint64(), q.ToBlock.Uint64()
	if f.maxRange > 0 && to-from+1 > f.maxRange {
		return nil, errors.New("query returned more than 10000 results")
	}
	out := []types.Log{}
	for _, l := range f.logs {
		if l.BlockNumber < from || l.BlockNumber > to {
			continue
		}
		if !matches(q, l) {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func matches(q ethereum.FilterQuery, l types.Log) bool {
	addrOk := false
	for _, a := range q.Addresses {
		if a == l.Address {
			addrOk = true
		}
	}
	topicOk := false
	for _, t := range q.Topics[0] {
		if t == l.Topics[0] {
			topicOk = true
		}
	}
	return addrOk && topicOk
}

func (f *fakeClient) SubscribeFilterLogs(_ context.Context, _ ethereum.FilterQuery, ch chan<- types.Log) (ethereum.Subscription, error) {
	if f.subErr != nil {
		return nil, f.subErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sub = &fakeSubscription{errs: make(chan error, 1)}
	f.sink = ch
	return f.sub, nil
}

func (f *fakeClient) setHead(head uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.head = head
}

func listingLog(block uint64, listingId, nftId int64, highestBidder common.Address) types.Log {
	data, err := baseabi.MarketplaceABI.Events["ListingCreated"].Inputs.NonIndexed().Pack(
		big.NewInt(nftId), big.NewInt(1000), uint8(1), true, big.NewInt(1640995200), highestBidder,
	)
	if err != nil {
		panic(err)
	}
	return types.Log{
		Address:     marketplace,
		Topics:      []common.Hash{baseabi.ListingCreatedSig, common.BigToHash(big.NewInt(listingId)), common.BytesToHash(seller.Bytes())},
		Data:        data,
		BlockNumber: block,
	}
}

func purchaseLog(block uint64, itemId int64) types.Log {
	data, err := baseabi.MarketplaceABI.Events["Purchase"].Inputs.NonIndexed().Pack(big.NewInt(1000))
	if err != nil {
		panic(err)
	}
	return types.Log{
		Address:     marketplace,
		Topics:      []common.Hash{baseabi.PurchaseSig, common.BigToHash(big.NewInt(itemId)), common.BytesToHash(bidder.Bytes())},
		Data:        data,
		BlockNumber: block,
	}
}

func mintLog(block uint64, uri string, usdPrice, maxTokenId int64) types.Log {
	data, err := baseabi.SimpleMintABI.Events["CollectionStarted"].Inputs.NonIndexed().Pack(
		uri, big.NewInt(usdPrice), big.NewInt(maxTokenId),
	)
	if err != nil {
		panic(err)
	}
	return types.Log{
		Address:     simpleMint,
		Topics:      []common.Hash{baseabi.CollectionStartedSig, common.BytesToHash(seller.Bytes())},
		Data:        data,
		BlockNumber: block,
	}
}

type chainTestSuite struct {
	suite.Suite
	ctx    bCtx.Ctx
	client *fakeClient
	source catalog.EventSource
}

func TestChainSuite(t *testing.T) {
	suite.Run(t, new(chainTestSuite))
}

func (s *chainTestSuite) SetupTest() {
	s.ctx = bCtx.Background()
	removed := listingLog(30, 9, 9, common.Address{})
	removed.Removed = true
	truncated := listingLog(40, 10, 10, common.Address{})
	truncated.Topics = truncated.Topics[:2]
	s.client = &fakeClient{
		head:     100,
		maxRange: 16,
		logs: []types.Log{
			listingLog(5, 1, 11, bidder),
			mintLog(7, "ipfs://QmMint", 50, 100),
			listingLog(12, 2, 12, common.Address{}),
			purchaseLog(20, 1),
			removed,
			truncated,
			listingLog(90, 3, 13, common.Address{}),
			mintLog(95, "", 0, 0),
		},
	}
	s.source = NewChainSource(&ChainSourceCfg{
		Client:       s.client,
		Marketplace:  marketplace,
		SimpleMint:   simpleMint,
		PollInterval: 10 * time.Millisecond,
		Timeout:      time.Second,
	})
}

func (s *chainTestSuite) TestListingsCreated() {
	events, err := s.source.ListingsCreated(s.ctx)
	s.Require().NoError(err)

	s.Require().Len(events, 3)
	ids := []int64{}
	for _, e := range events {
		ids = append(ids, e.ListingId.Int64())
	}
	s.Equal([]int64{1, 2, 3}, ids)

	first := events[0]
	s.Equal(int64(11), first.NftId.Int64())
	s.Equal(seller.Hex(), first.Seller)
	s.Equal(int64(1000), first.Price.Int64())
	s.Equal(uint8(1), first.PayableCurrencyCode)
	s.True(first.IsAuction)
	s.Equal(int64(1640995200), first.TimestampSeconds.Int64())
	s.Equal(bidder.Hex(), first.HighestBidder)
	s.Equal(uint64(5), uint64(first.Meta.BlockNumber))
	s.Equal("", events[1].HighestBidder)

	// the node refused the full range, it was split until every query fit
	s.Greater(s.client.queries, 1)
}

func (s *chainTestSuite) TestMintsStarted() {
	events, err := s.source.MintsStarted(s.ctx)
	s.Require().NoError(err)

	s.Require().Len(events, 2)
	s.Equal("ipfs://QmMint", events[0].TokenURI)
	s.Equal(seller.Hex(), events[0].Artist)
	s.Equal(int64(50), events[0].UsdPrice.Int64())
	s.Equal(int64(100), events[0].MaxTokenId.Int64())
	s.Equal("", events[1].TokenURI)
	s.True(catalog.IsAbsent(events[1].UsdPrice))
}

func (s *chainTestSuite) TestPurchases() {
	events, err := s.source.Purchases(s.ctx)
	s.Require().NoError(err)

	s.Require().Len(events, 1)
	s.Equal(int64(1), events[0].ItemId.Int64())
}

func (s *chainTestSuite) TestFromBlockAfterHead() {
	source := NewChainSource(&ChainSourceCfg{
		Client:      s.client,
		Marketplace: marketplace,
		SimpleMint:  simpleMint,
		FromBlock:   500,
	})
	events, err := source.ListingsCreated(s.ctx)
	s.NoError(err)
	s.Empty(events)
}

func (s *chainTestSuite) TestSingleBlockFailureIsAnError() {
	s.client.maxRange = 0
	s.client.logs = nil
	source := NewChainSource(&ChainSourceCfg{
		Client:      &failingClient{s.client},
		Marketplace: marketplace,
		SimpleMint:  simpleMint,
		FromBlock:   99,
	})
	_, err := source.Purchases(s.ctx)
	s.Error(err)
}

func (s *chainTestSuite) TestWatchSubscription() {
	w, err := s.source.Watch(s.ctx)
	s.Require().NoError(err)
	defer w.Unsubscribe()

	s.client.sink <- purchaseLog(101, 2)
	select {
	case <-w.Changes():
	case <-time.After(time.Second):
		s.Fail("no change after a new log")
	}

	s.client.sub.errs <- errors.New("connection reset")
	select {
	case err := <-w.Err():
		s.Error(err)
	case <-time.After(time.Second):
		s.Fail("subscription error not forwarded")
	}
}

func (s *chainTestSuite) TestWatchPollsWithoutSubscriptions() {
	s.client.subErr = rpc.ErrNotificationsUnsupported
	w, err := s.source.Watch(s.ctx)
	s.Require().NoError(err)
	defer w.Unsubscribe()

	select {
	case <-w.Changes():
		s.Fail("signalled without a new block")
	case <-time.After(50 * time.Millisecond):
	}

	s.client.setHead(101)
	select {
	case <-w.Changes():
	case <-time.After(time.Second):
		s.Fail("no change after a new block")
	}
}

func (s *chainTestSuite) TestWatchFails() {
	s.client.subErr = errors.New("forbidden")
	_, err := s.source.Watch(s.ctx)
	s.Error(err)
}

type failingClient struct {
	*fakeClient
}

func (f *failingClient) FilterLogs(context.Context, ethereum.FilterQuery) ([]types.Log, error) {
	return nil, errors.New("internal error")
}
