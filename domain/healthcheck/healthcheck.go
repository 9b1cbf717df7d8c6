package healthcheck

import (
	"github.com/x-xyz/catalog/base/ctx"
)

// HealthCheckUsecase represents the healthCheck's usecases
type HealthCheckUsecase interface {
	Check(context ctx.Ctx) error
}

// HealthCheckRepo is one dependency the service cannot work without
type HealthCheckRepo interface {
	Name() string
	Ping(context ctx.Ctx) error
}
