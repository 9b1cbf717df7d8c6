package repository

import (
	"github.com/x-xyz/catalog/base/ctx"
	"github.com/x-xyz/catalog/domain"
	hcdomain "github.com/x-xyz/catalog/domain/healthcheck"
)

type chainRepo struct {
	client domain.EthLogClientRepo
}

// NewChainRepo reports the node as healthy when it answers the current block number
func NewChainRepo(client domain.EthLogClientRepo) hcdomain.HealthCheckRepo {
	return &chainRepo{client: client}
}

func (r *chainRepo) Name() string {
	return "chain"
}

func (r *chainRepo) Ping(c ctx.Ctx) error {
	if _, err := r.client.BlockNumber(c); err != nil {
		c.WithField("err", err).Error("client.BlockNumber failed")
		return err
	}
	return nil
}
