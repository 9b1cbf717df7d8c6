package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"
	"golang.org/x/xerrors"

	baseabi "github.com/x-xyz/catalog/base/abi"
	bCtx "github.com/x-xyz/catalog/base/ctx"
	"github.com/x-xyz/catalog/base/log"
	"github.com/x-xyz/catalog/base/metrics"
	"github.com/x-xyz/catalog/domain"
	"github.com/x-xyz/catalog/domain/catalog"
)

const (
	DefaultPollInterval = 15 * time.Second
	TooManyLogsTimeout  = 30 * time.Second
)

var met = metrics.New("eventlog")

type ChainSourceCfg struct {
	Client      domain.EthLogClientRepo
	Marketplace common.Address
	SimpleMint  common.Address
	FromBlock   uint64
	// PollInterval is used when the client cannot subscribe to logs
	PollInterval time.Duration
	// Timeout bounds a single FilterLogs call
	Timeout time.Duration
}

type chainSource struct {
	client       domain.EthLogClientRepo
	marketplace  common.Address
	simpleMint   common.Address
	fromBlock    uint64
	pollInterval time.Duration
	timeout      time.Duration
}

// NewChainSource reads the marketplace and simple mint event logs from a node
func NewChainSource(cfg *ChainSourceCfg) catalog.EventSource {
	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = TooManyLogsTimeout
	}
	return &chainSource{
		client:       cfg.Client,
		marketplace:  cfg.Marketplace,
		simpleMint:   cfg.SimpleMint,
		fromBlock:    cfg.FromBlock,
		pollInterval: pollInterval,
		timeout:      timeout,
	}
}

func (s *chainSource) ListingsCreated(c bCtx.Ctx) ([]*catalog.ListingCreatedEvent, error) {
	logs, err := s.history(c, s.marketplace, baseabi.ListingCreatedSig)
	if err != nil {
		return nil, err
	}
	events := make([]*catalog.ListingCreatedEvent, 0, len(logs))
	for i := range logs {
		l, err := baseabi.ToListingCreatedLog(&logs[i])
		if err != nil {
			skipLog(c, catalog.StreamListingCreated, &logs[i], err)
			continue
		}
		events = append(events, &catalog.ListingCreatedEvent{
			ListingId:           l.ListingId,
			NftId:               l.NftId,
			Seller:              l.Seller.Hex(),
			Price:               l.Price,
			PayableCurrencyCode: l.PayableCurrency,
			IsAuction:           l.IsAuction,
			TimestampSeconds:    l.Date,
			HighestBidder:       addressOrEmpty(l.HighestBidder),
			Meta:                toLogMeta(&logs[i]),
		})
	}
	return events, nil
}

func (s *chainSource) MintsStarted(c bCtx.Ctx) ([]*catalog.MintStartedEvent, error) {
	logs, err := s.history(c, s.simpleMint, baseabi.CollectionStartedSig)
	if err != nil {
		return nil, err
	}
	events := make([]*catalog.MintStartedEvent, 0, len(logs))
	for i := range logs {
		l, err := baseabi.ToCollectionStartedLog(&logs[i])
		if err != nil {
			skipLog(c, catalog.StreamMintStarted, &logs[i], err)
			continue
		}
		events = append(events, &catalog.MintStartedEvent{
			Artist:     l.Artist.Hex(),
			TokenURI:   l.TokenURI,
			UsdPrice:   l.UsdPrice,
			MaxTokenId: l.MaxTokenId,
			Meta:       toLogMeta(&logs[i]),
		})
	}
	return events, nil
}

func (s *chainSource) Purchases(c bCtx.Ctx) ([]*catalog.PurchaseEvent, error) {
	logs, err := s.history(c, s.marketplace, baseabi.PurchaseSig)
	if err != nil {
		return nil, err
	}
	events := make([]*catalog.PurchaseEvent, 0, len(logs))
	for i := range logs {
		l, err := baseabi.ToPurchaseLog(&logs[i])
		if err != nil {
			skipLog(c, catalog.StreamPurchase, &logs[i], err)
			continue
		}
		events = append(events, &catalog.PurchaseEvent{
			ItemId: l.ItemId,
			Meta:   toLogMeta(&logs[i]),
		})
	}
	return events, nil
}

// history returns every log of one event from fromBlock to the current head, in chain order
func (s *chainSource) history(c bCtx.Ctx, addr common.Address, topic common.Hash) ([]types.Log, error) {
	head, err := s.client.BlockNumber(c)
	if err != nil {
		c.WithField("err", err).Error("client.BlockNumber failed")
		return nil, err
	}
	if head < s.fromBlock {
		return []types.Log{}, nil
	}
	filter := ethereum.FilterQuery{
		Addresses: []common.Address{addr},
		Topics:    [][]common.Hash{{topic}},
	}

	result := []types.Log{}
	ranges := []*blockRange{newBlockRange(s.fromBlock, head)}
	for len(ranges) > 0 {
		idx := len(ranges) - 1
		r := ranges[idx]
		ranges = ranges[:idx]
		filter.FromBlock = r.begin
		filter.ToBlock = r.end
		tCtx, cancel := bCtx.WithTimeout(c, s.timeout)
		logs, err := s.client.FilterLogs(tCtx, filter)
		cancel()
		if err != nil {
			if r.single() || c.Err() != nil {
				c.WithFields(log.Fields{
					"err":      err,
					"range":    r.String(),
					"contract": addr.Hex(),
				}).Error("client.FilterLogs failed")
				return nil, xerrors.Errorf("failed to get logs of %s: %w", addr.Hex(), err)
			}
			r1, r2 := r.split()
			ranges = append(ranges, r2, r1)
			c.WithFields(log.Fields{
				"contract":      addr.Hex(),
				"originalRange": r.String(),
				"range1":        r1.String(),
				"range2":        r2.String(),
			}).Info("splitting blockRange")
			continue
		}
		for _, l := range logs {
			if l.Removed {
				continue
			}
			result = append(result, l)
		}
	}
	met.BumpAvg("logs", float64(len(result)), "topic", topic.Hex())
	return result, nil
}

func (s *chainSource) Watch(c bCtx.Ctx) (catalog.Watcher, error) {
	filter := ethereum.FilterQuery{
		Addresses: []common.Address{s.marketplace, s.simpleMint},
		Topics: [][]common.Hash{{
			baseabi.ListingCreatedSig,
			baseabi.PurchaseSig,
			baseabi.CollectionStartedSig,
		}},
	}
	w := newWatcher(c)
	ch := make(chan types.Log, 64)
	sub, err := s.client.SubscribeFilterLogs(w.ctx, filter, ch)
	if errors.Is(err, rpc.ErrNotificationsUnsupported) {
		c.WithField("interval", s.pollInterval.String()).Info("log subscription unsupported, polling block number")
		w.start(func() error { return s.poll(w) })
		return w, nil
	} else if err != nil {
		w.cancel()
		c.WithField("err", err).Error("client.SubscribeFilterLogs failed")
		return nil, err
	}
	w.start(func() error {
		defer sub.Unsubscribe()
		for {
			select {
			case <-w.ctx.Done():
				return nil
			case err := <-sub.Err():
				if err == nil {
					return nil
				}
				return xerrors.Errorf("log subscription failed: %w", err)
			case l := <-ch:
				w.ctx.WithFields(log.Fields{
					"contract":    l.Address.Hex(),
					"blockNumber": l.BlockNumber,
					"removed":     l.Removed,
				}).Debug("receive log")
				w.signal()
			}
		}
	})
	return w, nil
}

// poll signals a change whenever the head moves, a missed block is harmless since every refresh reads full history
func (s *chainSource) poll(w *watcher) error {
	last, err := s.client.BlockNumber(w.ctx)
	if err != nil {
		w.ctx.WithField("err", err).Warn("client.BlockNumber failed")
	}
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-w.ctx.Done():
			return nil
		case <-ticker.C:
			head, err := s.client.BlockNumber(w.ctx)
			if err != nil {
				met.BumpSum("poll.err", 1)
				w.ctx.WithField("err", err).Warn("client.BlockNumber failed")
				continue
			}
			if head > last {
				last = head
				w.signal()
			}
		}
	}
}

func skipLog(c bCtx.Ctx, stream catalog.Stream, l *types.Log, err error) {
	met.BumpSum("decode.err", 1, "stream", string(stream))
	c.WithFields(log.Fields{
		"stream":      stream,
		"txHash":      l.TxHash.Hex(),
		"logIndex":    l.Index,
		"blockNumber": l.BlockNumber,
		"err":         err,
	}).Warn(fmt.Sprintf("undecodable %s log skipped", stream))
}

func toLogMeta(l *types.Log) *domain.LogMeta {
	return &domain.LogMeta{
		BlockNumber:     domain.BlockNumber(l.BlockNumber),
		TxHash:          domain.TxHash(l.TxHash.Hex()),
		TxIndex:         l.TxIndex,
		LogIndex:        l.Index,
		ContractAddress: domain.Address(l.Address.Hex()),
	}
}

func addressOrEmpty(a common.Address) string {
	addr := domain.Address(a.Hex())
	if addr.Equals(domain.EmptyAddress) {
		return ""
	}
	return string(addr)
}
