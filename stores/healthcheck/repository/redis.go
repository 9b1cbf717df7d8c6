package repository

import (
	"github.com/gomodule/redigo/redis"

	"github.com/x-xyz/catalog/base/ctx"
	hcdomain "github.com/x-xyz/catalog/domain/healthcheck"
)

type redisRepo struct {
	pool *redis.Pool
}

func NewRedisRepo(pool *redis.Pool) hcdomain.HealthCheckRepo {
	return &redisRepo{pool: pool}
}

func (r *redisRepo) Name() string {
	return "redis"
}

func (r *redisRepo) Ping(c ctx.Ctx) error {
	conn, err := r.pool.GetContext(c)
	if err != nil {
		c.WithField("err", err).Error("pool.GetContext failed")
		return err
	}
	defer conn.Close()
	if _, err := conn.Do("PING"); err != nil {
		c.WithField("err", err).Error("redis PING failed")
		return err
	}
	return nil
}
