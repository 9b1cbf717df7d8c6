package provider

import (
	"errors"
	"time"

	"github.com/x-xyz/catalog/base/ctx"
)

var (
	ErrNotFound = errors.New("Cache not found")
)

// raw cache implementation, a zero ttl keeps the entry until evicted
type Provider interface {
	Get(c ctx.Ctx, key string) ([]byte, time.Duration, error)
	Set(c ctx.Ctx, key string, value []byte, ttl time.Duration) error
	Del(c ctx.Ctx, key string) error
}
