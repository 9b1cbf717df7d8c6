package chain

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"golang.org/x/xerrors"

	bCtx "github.com/x-xyz/catalog/base/ctx"
	bEthereum "github.com/x-xyz/catalog/base/ethereum"
	"github.com/x-xyz/catalog/base/log"
	"github.com/x-xyz/catalog/domain"
)

type ClientCfg struct {
	RpcUrl string
	// WsUrl enables log subscriptions, the rpc url is used for logs when empty
	WsUrl   string
	ChainId domain.ChainId
	Timeout time.Duration
	// MaxConcurrentCalls caps in-flight requests per endpoint, 0 means unlimited
	MaxConcurrentCalls int
}

type Client interface {
	Call(bCtx.Ctx, common.Address, *big.Int, abi.ABI, string, ...interface{}) ([]interface{}, error)
	LogClient() domain.EthLogClientRepo
}

type clientImpl struct {
	caller    ethereum.ContractCaller
	logClient domain.EthLogClientRepo
	timeout   time.Duration
}

// NewClient dials the configured endpoints and checks they serve the expected chain
func NewClient(ctx bCtx.Ctx, cfg *ClientCfg) (Client, error) {
	rpc, err := dial(ctx, cfg.RpcUrl, cfg.ChainId)
	if err != nil {
		return nil, err
	}
	var backend bEthereum.Backend = rpc
	if cfg.MaxConcurrentCalls > 0 {
		backend = bEthereum.NewTrottledClient(rpc, cfg.MaxConcurrentCalls)
	}
	var logClient domain.EthLogClientRepo = backend
	if cfg.WsUrl != "" {
		ws, err := dial(ctx, cfg.WsUrl, cfg.ChainId)
		if err != nil {
			// soft warning, polling still works over rpc
			ctx.WithFields(log.Fields{
				"err": err,
				"url": cfg.WsUrl,
			}).Warn("failed to dial ws, falling back to rpc")
		} else if cfg.MaxConcurrentCalls > 0 {
			logClient = bEthereum.NewTrottledClient(ws, cfg.MaxConcurrentCalls)
		} else {
			logClient = ws
		}
	}
	return NewClientFrom(backend, logClient, cfg.Timeout), nil
}

func NewClientFrom(caller ethereum.ContractCaller, logClient domain.EthLogClientRepo, timeout time.Duration) Client {
	return &clientImpl{
		caller:    caller,
		logClient: logClient,
		timeout:   timeout,
	}
}

func dial(ctx bCtx.Ctx, url string, chainId domain.ChainId) (*ethclient.Client, error) {
	client, err := ethclient.DialContext(ctx, url)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"url": url,
		}).Error("ethclient.DialContext failed")
		return nil, err
	}
	if chainId == 0 {
		return client, nil
	}
	id, err := client.ChainID(ctx)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"url": url,
		}).Error("client.ChainID failed")
		return nil, err
	}
	if id.Cmp(big.NewInt(int64(chainId))) != 0 {
		client.Close()
		return nil, xerrors.Errorf("%s serves chain %s, want %d: %w", url, id, chainId, domain.ErrUnsupportedChain)
	}
	return client, nil
}

func (c *clientImpl) LogClient() domain.EthLogClientRepo {
	return c.logClient
}

func (c *clientImpl) Call(ctx bCtx.Ctx, addr common.Address, blk *big.Int, _abi abi.ABI, method string, params ...interface{}) ([]interface{}, error) {
	data, err := _abi.Pack(method, params...)
	if err != nil {
		ctx.WithFields(log.Fields{
			"method": method,
			"params": params,
			"err":    err,
		}).Error("abi.Pack failed")
		return nil, err
	}
	msg := ethereum.CallMsg{
		To:   &addr,
		Data: data,
	}
	callCtx, cancel := bCtx.WithTimeout(ctx, c.timeout)
	defer cancel()
	res, err := c.caller.CallContract(callCtx, msg, blk)
	if err != nil {
		ctx.WithField("err", err).Error("client.CallContract failed")
		return nil, err
	}
	unpacked, err := _abi.Unpack(method, res)
	if err != nil {
		ctx.WithField("err", err).Error("abi.Unpack failed")
		return nil, err
	}
	return unpacked, nil
}
