package redisclient

import (
	"context"
	"time"

	"github.com/gomodule/redigo/redis"

	"github.com/x-xyz/catalog/base/backoff"
	"github.com/x-xyz/catalog/base/log"
)

const (
	dialTimeout  = 2 * time.Second
	readTimeout  = 1500 * time.Millisecond
	writeTimeout = 1500 * time.Millisecond
	maxIdle      = 16
	maxActive    = 64
	retryStart   = time.Second
	retryLimit   = 8 * time.Second
)

// RedisParam is the optional param for redis connection
type RedisParam struct {
	Retry int
}

// MustConnectRedis connects to one redis uri
// NOTE This function panics if the connection fails.
func MustConnectRedis(uri, password string, param ...RedisParam) *redis.Pool {
	p, err := ConnectRedis(uri, password, param...)
	if err != nil {
		log.Log().WithFields(log.Fields{"redisURI": uri, "err": err}).Panic("fail to dial Redis")
	}
	return p
}

// ConnectRedis returns a pool after checking one connection with PING
func ConnectRedis(uri, password string, param ...RedisParam) (*redis.Pool, error) {
	retry := 0
	if len(param) > 0 {
		retry = param[0].Retry
	}

	opts := []redis.DialOption{
		redis.DialConnectTimeout(dialTimeout),
		redis.DialReadTimeout(readTimeout),
		redis.DialWriteTimeout(writeTimeout),
	}
	if password != "" {
		opts = append(opts, redis.DialPassword(password))
	}
	p := &redis.Pool{
		MaxIdle:     maxIdle,
		MaxActive:   maxActive,
		Wait:        true,
		IdleTimeout: 240 * time.Second,
		Dial: func() (redis.Conn, error) {
			return redis.Dial("tcp", uri, opts...)
		},
		TestOnBorrow: func(c redis.Conn, t time.Time) error {
			// No need to test if it's been recycled less than 1 sec.
			if time.Since(t) < time.Second {
				return nil
			}
			_, err := c.Do("PING")
			return err
		},
	}

	var err error
	bo := backoff.NewExponential(retryStart, retryLimit)
	for i := 0; i <= retry; i++ {
		if i > 0 {
			// context.Background never ends the wait early
			_ = bo.Wait(context.Background())
		}
		if err = ping(p); err == nil {
			log.Log().WithField("redisURI", uri).Info("redis connected")
			return p, nil
		}
		log.Log().WithFields(log.Fields{
			"redisURI": uri,
			"err":      err,
			"retry":    i,
		}).Error("fail to dial Redis")
	}
	p.Close()
	return nil, err
}

func ping(p *redis.Pool) error {
	c := p.Get()
	defer c.Close()
	_, err := c.Do("PING")
	return err
}
