package abi

import (
	"errors"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var ErrUnexpectedTopics = errors.New("unexpected number of topics")

var (
	MarketplaceABI abi.ABI
	SimpleMintABI  abi.ABI
	ERC721TokenABI abi.ABI
)

var marketplaceABI = `[{"type":"event","anonymous":false,"name":"ListingCreated","inputs":[{"type":"uint256","name":"listingId","indexed":true},{"type":"address","name":"seller","indexed":true},{"type":"uint256","name":"nftId","indexed":false},{"type":"uint256","name":"price","indexed":false},{"type":"uint8","name":"payableCurrency","indexed":false},{"type":"bool","name":"isAuction","indexed":false},{"type":"uint256","name":"date","indexed":false},{"type":"address","name":"highestBidder","indexed":false}]},{"type":"event","anonymous":false,"name":"Purchase","inputs":[{"type":"uint256","name":"itemId","indexed":true},{"type":"address","name":"buyer","indexed":true},{"type":"uint256","name":"price","indexed":false}]}]`

var simpleMintABI = `[{"type":"event","anonymous":false,"name":"CollectionStarted","inputs":[{"type":"address","name":"artist","indexed":true},{"type":"string","name":"tokenURI","indexed":false},{"type":"uint256","name":"usdPrice","indexed":false},{"type":"uint256","name":"maxTokenId","indexed":false}]}]`

var erc721ABI = `[{"type":"function","name":"tokenURI","constant":true,"stateMutability":"view","payable":false,"inputs":[{"type":"uint256","name":"tokenId"}],"outputs":[{"type":"string"}]}]`

func mustParse(name, raw string) abi.ABI {
	_abi, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic("Failed to parse " + name + " abi")
	}
	return _abi
}

func init() {
	MarketplaceABI = mustParse("marketplace", marketplaceABI)
	SimpleMintABI = mustParse("simple mint", simpleMintABI)
	ERC721TokenABI = mustParse("erc721", erc721ABI)
}

var (
	ListingCreatedSig    = MarketplaceABI.Events["ListingCreated"].ID
	PurchaseSig          = MarketplaceABI.Events["Purchase"].ID
	CollectionStartedSig = SimpleMintABI.Events["CollectionStarted"].ID
)

type ListingCreatedLog struct {
	ListingId       *big.Int       // indexed
	Seller          common.Address // indexed
	NftId           *big.Int
	Price           *big.Int
	PayableCurrency uint8
	IsAuction       bool
	Date            *big.Int
	HighestBidder   common.Address
}

type PurchaseLog struct {
	ItemId *big.Int       // indexed
	Buyer  common.Address // indexed
	Price  *big.Int
}

type CollectionStartedLog struct {
	Artist     common.Address // indexed
	TokenURI   string
	UsdPrice   *big.Int
	MaxTokenId *big.Int
}

func ToListingCreatedLog(log *types.Log) (*ListingCreatedLog, error) {
	if len(log.Topics) != 3 {
		return nil, ErrUnexpectedTopics
	}
	var listing ListingCreatedLog
	if err := MarketplaceABI.UnpackIntoInterface(&listing, "ListingCreated", log.Data); err != nil {
		return nil, err
	}
	listing.ListingId = new(big.Int).SetBytes(log.Topics[1].Bytes())
	listing.Seller = common.BytesToAddress(log.Topics[2].Bytes())
	return &listing, nil
}

func ToPurchaseLog(log *types.Log) (*PurchaseLog, error) {
	if len(log.Topics) != 3 {
		return nil, ErrUnexpectedTopics
	}
	var purchase PurchaseLog
	if err := MarketplaceABI.UnpackIntoInterface(&purchase, "Purchase", log.Data); err != nil {
		return nil, err
	}
	purchase.ItemId = new(big.Int).SetBytes(log.Topics[1].Bytes())
	purchase.Buyer = common.BytesToAddress(log.Topics[2].Bytes())
	return &purchase, nil
}

func ToCollectionStartedLog(log *types.Log) (*CollectionStartedLog, error) {
	if len(log.Topics) != 2 {
		return nil, ErrUnexpectedTopics
	}
	var started CollectionStartedLog
	if err := SimpleMintABI.UnpackIntoInterface(&started, "CollectionStarted", log.Data); err != nil {
		return nil, err
	}
	started.Artist = common.BytesToAddress(log.Topics[1].Bytes())
	return &started, nil
}
