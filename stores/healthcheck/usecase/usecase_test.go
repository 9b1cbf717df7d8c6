package usecase

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/x-xyz/catalog/base/ctx"
)

type fakeRepo struct {
	name   string
	err    error
	pinged bool
}

func (f *fakeRepo) Name() string {
	return f.name
}

func (f *fakeRepo) Ping(ctx.Ctx) error {
	f.pinged = true
	return f.err
}

func TestCheck(t *testing.T) {
	chain := &fakeRepo{name: "chain"}
	redis := &fakeRepo{name: "redis"}
	require.NoError(t, New(chain, redis).Check(ctx.Background()))
	require.True(t, chain.pinged)
	require.True(t, redis.pinged)

	errDown := errors.New("down")
	chain = &fakeRepo{name: "chain", err: errDown}
	redis = &fakeRepo{name: "redis"}
	err := New(chain, redis).Check(ctx.Background())
	require.ErrorIs(t, err, errDown)
	require.Contains(t, err.Error(), "chain")
	require.False(t, redis.pinged)
}

func TestCheckWithoutRepos(t *testing.T) {
	require.NoError(t, New().Check(ctx.Background()))
}
