package usecase

import (
	"golang.org/x/xerrors"

	"github.com/x-xyz/catalog/base/ctx"
	hcdomain "github.com/x-xyz/catalog/domain/healthcheck"
)

type impl struct {
	repos []hcdomain.HealthCheckRepo
}

// New creates new healthCheckUsecase object representation of HealthCheckUsecase interface
func New(repos ...hcdomain.HealthCheckRepo) hcdomain.HealthCheckUsecase {
	return &impl{
		repos: repos,
	}
}

// Check fails on the first dependency that does not answer
func (im *impl) Check(context ctx.Ctx) error {
	for _, repo := range im.repos {
		if err := repo.Ping(context); err != nil {
			return xerrors.Errorf("%s: %w", repo.Name(), err)
		}
	}
	return nil
}
