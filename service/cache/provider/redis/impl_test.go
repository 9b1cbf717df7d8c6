package redis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/catalog/base/ctx"
	"github.com/x-xyz/catalog/base/database/redisclient"
	"github.com/x-xyz/catalog/service/cache/provider"
)

var (
	mockCtx = ctx.Background()
)

type testsuite struct {
	suite.Suite
	im *impl
}

func Test(t *testing.T) {
	// local redis required
	if testing.Short() {
		t.Skip()
	}
	suite.Run(t, new(testsuite))
}

func (ts *testsuite) SetupTest() {
	pool, err := redisclient.ConnectRedis("localhost:6379", "")
	ts.Require().NoError(err)
	ts.im = NewRedis(pool).(*impl)
}

func (ts *testsuite) TearDownTest() {
	ts.im.pool.Close()
}

func (ts *testsuite) TestSetGet() {
	k := "catalog-test:key"
	v := []byte("value")

	ts.NoError(ts.im.Set(mockCtx, k, v, 10*time.Second))
	res, ttl, err := ts.im.Get(mockCtx, k)
	ts.NoError(err)
	ts.Equal(v, res)
	ts.True(ttl > 0 && ttl <= 10*time.Second)

	ts.NoError(ts.im.Set(mockCtx, k, v, 0))
	_, ttl, err = ts.im.Get(mockCtx, k)
	ts.NoError(err)
	ts.Equal(time.Duration(0), ttl)

	ts.NoError(ts.im.Del(mockCtx, k))
	_, _, err = ts.im.Get(mockCtx, k)
	ts.Equal(provider.ErrNotFound, err)
}
