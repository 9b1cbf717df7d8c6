package usecase

import (
	"encoding/json"

	"golang.org/x/xerrors"

	bCtx "github.com/x-xyz/catalog/base/ctx"
	"github.com/x-xyz/catalog/domain"
	"github.com/x-xyz/catalog/domain/catalog"
	"github.com/x-xyz/catalog/service/cache"
)

const ipfsPrefix = "ipfs://"

type MetadataUseCaseCfg struct {
	WebResource domain.WebResourceUseCase
	// Cache is keyed by content hash, entries never go stale
	Cache cache.Service
}

type metadataUseCase struct {
	webResource domain.WebResourceUseCase
	cache       cache.Service
}

func NewMetadataUseCase(cfg *MetadataUseCaseCfg) catalog.MetadataResolver {
	return &metadataUseCase{
		webResource: cfg.WebResource,
		cache:       cfg.Cache,
	}
}

// Resolve fetches the metadata document stored under an ipfs content hash
func (u *metadataUseCase) Resolve(c bCtx.Ctx, contentHash string) (*catalog.Metadata, error) {
	c = bCtx.WithValue(c, "contentHash", contentHash)
	var raw json.RawMessage
	err := u.cache.GetByFunc(c, contentHash, &raw, func() (interface{}, error) {
		data, err := u.webResource.GetJson(c, ipfsPrefix+contentHash)
		if err != nil {
			return nil, err
		}
		doc := json.RawMessage(data)
		return &doc, nil
	})
	if err != nil {
		c.WithField("err", err).Error("webResource.GetJson failed")
		return nil, xerrors.Errorf("failed to fetch metadata %s: %w", contentHash, err)
	}
	md, err := catalog.ParseMetadata(raw)
	if err != nil {
		c.WithField("err", err).Error("catalog.ParseMetadata failed")
		return nil, err
	}
	return md, nil
}
