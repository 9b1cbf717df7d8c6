package repository

import (
	"math/big"

	bCtx "github.com/x-xyz/catalog/base/ctx"
	"github.com/x-xyz/catalog/domain/catalog"
	"github.com/x-xyz/catalog/service/chain/contract"
)

type tokenURIRepo struct {
	nft contract.Erc721Contract
}

// NewTokenURIRepo reads token uris from the marketplace nft contract
func NewTokenURIRepo(nft contract.Erc721Contract) catalog.TokenURIResolver {
	return &tokenURIRepo{nft: nft}
}

func (r *tokenURIRepo) TokenURI(c bCtx.Ctx, tokenId uint64) (string, error) {
	uri, err := r.nft.TokenURI(c, new(big.Int).SetUint64(tokenId))
	if err != nil {
		c.WithField("err", err).WithField("tokenId", tokenId).Error("nft.TokenURI failed")
		return "", err
	}
	return uri, nil
}
