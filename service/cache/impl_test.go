package cache

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/catalog/base/ctx"
	"github.com/x-xyz/catalog/service/cache/provider"
	"github.com/x-xyz/catalog/service/cache/provider/primitive"
)

var (
	mockCtx = ctx.Background()
)

type value struct {
	Value string `json:"value"`
}

type testsuite struct {
	suite.Suite
	im    *impl
	cache provider.Provider
}

func (ts *testsuite) SetupTest() {
	ts.cache = primitive.NewPrimitive("test", 1)
	ts.im = New(ServiceConfig{
		Ttl:   time.Second,
		Pfx:   "testing",
		Cache: ts.cache,
	}).(*impl)
}

func Test(t *testing.T) {
	suite.Run(t, new(testsuite))
}

func (ts *testsuite) TestKey() {
	ts.Equal("testing:key", Key("testing", "key"))
}

func (ts *testsuite) TestGet() {
	var (
		k = "key"
		v = value{"value"}
		c = &value{}
	)

	ts.Equal(ErrNotFound, ts.im.Get(mockCtx, k, c))

	sv, err := json.Marshal(v)
	ts.NoError(err)
	ts.NoError(ts.cache.Set(mockCtx, Key(ts.im.pfx, k), sv, time.Second))
	ts.NoError(ts.im.Get(mockCtx, k, c))
	ts.Equal(v, *c)

	time.Sleep(1100 * time.Millisecond)

	_, _, err = ts.cache.Get(mockCtx, Key(ts.im.pfx, k))
	ts.Equal(provider.ErrNotFound, err)
}

func (ts *testsuite) TestSet() {
	var (
		k = "key"
		v = value{"value"}
		c = &value{}
	)

	ts.NoError(ts.im.Set(mockCtx, k, v))

	sv, _, err := ts.cache.Get(mockCtx, Key(ts.im.pfx, k))
	ts.NoError(err)
	ts.NoError(json.Unmarshal(sv, c))
	ts.Equal(v, *c)

	ts.NoError(ts.im.Del(mockCtx, k))
	ts.Equal(ErrNotFound, ts.im.Get(mockCtx, k, c))
}

func (ts *testsuite) TestGetByFunc() {
	var (
		k     = "key"
		v     = value{"value"}
		c     = &value{}
		calls = 0
	)
	getter := func() (interface{}, error) {
		calls++
		return &v, nil
	}

	ts.NoError(ts.im.GetByFunc(mockCtx, k, c, getter))
	ts.Equal(v, *c)

	again := &value{}
	ts.NoError(ts.im.GetByFunc(mockCtx, k, again, getter))
	ts.Equal(v, *again)
	ts.Equal(1, calls)
}

func (ts *testsuite) TestGetByFuncGetterFailed() {
	getterErr := errors.New("fetch failed")
	c := &value{}

	err := ts.im.GetByFunc(mockCtx, "key", c, func() (interface{}, error) {
		return nil, getterErr
	})

	ts.Equal(getterErr, err)
	ts.Equal(ErrNotFound, ts.im.Get(mockCtx, "key", c))
}

type downProvider struct {
	err error
}

func (d *downProvider) Get(ctx.Ctx, string) ([]byte, time.Duration, error) {
	return nil, 0, d.err
}

func (d *downProvider) Set(ctx.Ctx, string, []byte, time.Duration) error {
	return d.err
}

func (d *downProvider) Del(ctx.Ctx, string) error {
	return d.err
}

func (ts *testsuite) TestGetByFuncCacheDown() {
	im := New(ServiceConfig{
		Pfx:   "testing",
		Cache: &downProvider{errors.New("dial tcp: connection refused")},
	})
	v := value{"value"}
	calls := 0
	getter := func() (interface{}, error) {
		calls++
		return &v, nil
	}

	c := &value{}
	ts.NoError(im.GetByFunc(mockCtx, "key", c, getter))
	ts.Equal(v, *c)

	again := &value{}
	ts.NoError(im.GetByFunc(mockCtx, "key", again, getter))
	ts.Equal(v, *again)
	ts.Equal(2, calls)
}

func (ts *testsuite) TestGetByFuncCorruptEntry() {
	ts.NoError(ts.cache.Set(mockCtx, Key(ts.im.pfx, "key"), []byte("not json"), 0))
	v := value{"value"}
	c := &value{}

	ts.NoError(ts.im.GetByFunc(mockCtx, "key", c, func() (interface{}, error) {
		return &v, nil
	}))
	ts.Equal(v, *c)

	// the getter result replaced the corrupt entry
	again := &value{}
	ts.NoError(ts.im.Get(mockCtx, "key", again))
	ts.Equal(v, *again)
}
