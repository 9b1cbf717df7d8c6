package repository

import (
	"net/http"
	"strings"
	"time"

	bCtx "github.com/x-xyz/catalog/base/ctx"
	"github.com/x-xyz/catalog/domain"
)

type ipfsGatewayReaderRepo struct {
	client     *http.Client
	gateway    string
	ctxTimeout time.Duration
}

// NewIpfsGatewayReaderRepo reads content hashes through a public gateway, e.g. https://ipfs.io/ipfs
func NewIpfsGatewayReaderRepo(client *http.Client, gateway string, timeout time.Duration) domain.WebResourceReaderRepository {
	return &ipfsGatewayReaderRepo{client: client, gateway: strings.TrimSuffix(gateway, "/"), ctxTimeout: timeout}
}

func (r *ipfsGatewayReaderRepo) Get(c bCtx.Ctx, cid string) ([]byte, error) {
	ctx, cancel := bCtx.WithTimeout(bCtx.WithValue(c, "cid", cid), r.ctxTimeout)
	defer cancel()
	return fetch(ctx, r.client, r.gateway+"/"+strings.TrimPrefix(cid, "/"), nil)
}
