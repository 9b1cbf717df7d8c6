package contract

import (
	"math/big"

	ethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	baseabi "github.com/x-xyz/catalog/base/abi"
	bCtx "github.com/x-xyz/catalog/base/ctx"
	"github.com/x-xyz/catalog/service/chain"
)

type Erc721Contract interface {
	TokenURI(ctx bCtx.Ctx, tokenId *big.Int) (string, error)
}

type Erc721 struct {
	chainService chain.Client
	abi          ethabi.ABI
	addr         common.Address
}

func NewErc721(chainService chain.Client, addr common.Address) *Erc721 {
	return &Erc721{
		abi:          baseabi.ERC721TokenABI,
		chainService: chainService,
		addr:         addr,
	}
}

func (e *Erc721) TokenURI(ctx bCtx.Ctx, tokenId *big.Int) (string, error) {
	method := "tokenURI"
	unpacked, err := e.chainService.Call(ctx, e.addr, nil, e.abi, method, tokenId)
	if err != nil {
		return "", err
	}
	return unpacked[0].(string), nil
}
