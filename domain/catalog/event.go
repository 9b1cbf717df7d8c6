package catalog

import (
	"math/big"

	"github.com/x-xyz/catalog/domain"
)

type ListingCreatedEvent struct {
	ListingId           *big.Int `validate:"required"`
	NftId               *big.Int `validate:"required"`
	Seller              string
	Price               *big.Int `validate:"required"`
	PayableCurrencyCode uint8
	IsAuction           bool
	TimestampSeconds    *big.Int
	HighestBidder       string
	Meta                *domain.LogMeta
}

// MintStartedEvent is emitted when an artist opens a collection for minting.
// A zero UsdPrice or MaxTokenId means the value is absent.
type MintStartedEvent struct {
	Artist     string
	TokenURI   string
	UsdPrice   *big.Int
	MaxTokenId *big.Int
	Meta       *domain.LogMeta
}

type PurchaseEvent struct {
	ItemId *big.Int `validate:"required"`
	Meta   *domain.LogMeta
}

// ToUint64 converts an on-chain integer, failing when it needs more than 64 bits
func ToUint64(i *big.Int) (uint64, error) {
	if i == nil || i.Sign() < 0 || !i.IsUint64() {
		return 0, ErrIdentifierOverflow
	}
	return i.Uint64(), nil
}

// IsAbsent reports an unset or zero on-chain value
func IsAbsent(i *big.Int) bool {
	return i == nil || i.Sign() == 0
}
