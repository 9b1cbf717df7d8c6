package repository

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	bCtx "github.com/x-xyz/catalog/base/ctx"
	"github.com/x-xyz/catalog/domain/catalog"
)

func TestMemory(t *testing.T) {
	req := require.New(t)
	ctx := bCtx.Background()
	m := NewMemory()

	w, err := m.Watch(ctx)
	req.NoError(err)

	m.AppendListings(&catalog.ListingCreatedEvent{ListingId: big.NewInt(1)})
	m.AppendMints(&catalog.MintStartedEvent{TokenURI: "ipfs://QmMint"})
	m.AppendPurchases(&catalog.PurchaseEvent{ItemId: big.NewInt(1)})

	select {
	case <-w.Changes():
	case <-time.After(time.Second):
		req.Fail("no change signalled")
	}
	// three appends coalesce into one pending signal
	select {
	case <-w.Changes():
		req.Fail("signals were not coalesced")
	default:
	}

	listings, err := m.ListingsCreated(ctx)
	req.NoError(err)
	req.Len(listings, 1)
	mints, err := m.MintsStarted(ctx)
	req.NoError(err)
	req.Len(mints, 1)
	purchases, err := m.Purchases(ctx)
	req.NoError(err)
	req.Len(purchases, 1)

	// returned slices are snapshots
	listings[0] = nil
	again, _ := m.ListingsCreated(ctx)
	req.NotNil(again[0])

	w.Unsubscribe()
	m.AppendListings(&catalog.ListingCreatedEvent{ListingId: big.NewInt(2)})
	select {
	case <-w.Changes():
		req.Fail("unsubscribed watcher signalled")
	default:
	}
}
