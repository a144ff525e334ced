package chain

import (
	"crypto/ecdsa"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	bCtx "github.com/metawood/goapi/base/ctx"
	beth "github.com/metawood/goapi/base/ethereum"
	"github.com/metawood/goapi/base/log"
)

const maxInflightRpcRequests = 16

var (
	ErrUnsupportedChain = errors.New("unsupported chain")
	ErrNoOperatorKey    = errors.New("no operator key configured")
)

type ClientCfg struct {
	RpcUrls        map[int32]string
	ArchiveRpcUrls map[int32]string
	// OperatorKey is the hex-encoded private key of the marketplace operator
	// account. Optional; Transact fails without it.
	OperatorKey string
}

type Client interface {
	Call(bCtx.Ctx, int32, common.Address, *big.Int, abi.ABI, string, ...interface{}) ([]interface{}, error)
	Transact(bCtx.Ctx, int32, common.Address, abi.ABI, string, ...interface{}) (common.Hash, error)
}

type clientImpl struct {
	clients        map[int32]*beth.ThrottledClient
	archiveClients map[int32]*beth.ThrottledClient
	operatorKey    *ecdsa.PrivateKey
}

func NewClient(ctx bCtx.Ctx, cfg *ClientCfg) (Client, error) {
	var (
		anyerr error
	)
	clients := make(map[int32]*beth.ThrottledClient)
	for chainId, url := range cfg.RpcUrls {
		client, err := ethclient.DialContext(ctx, url)
		if err != nil {
			anyerr = err
			ctx.WithFields(log.Fields{
				"err":     err,
				"chainId": chainId,
				"url":     url,
			}).Warn("failed to dial rpc")
			// soft warning, still let the server start
			continue
		}
		clients[chainId] = beth.NewTrottledClient(client, maxInflightRpcRequests)
	}
	archiveClients := make(map[int32]*beth.ThrottledClient)
	for chainId, url := range cfg.ArchiveRpcUrls {
		client, err := ethclient.DialContext(ctx, url)
		if err != nil {
			anyerr = err
			ctx.WithFields(log.Fields{
				"err":     err,
				"chainId": chainId,
				"url":     url,
			}).Warn("failed to dial rpc")
			// soft warning, still let the server start
			continue
		}
		archiveClients[chainId] = beth.NewTrottledClient(client, maxInflightRpcRequests)
	}
	var operatorKey *ecdsa.PrivateKey
	if cfg.OperatorKey != "" {
		key, err := crypto.HexToECDSA(cfg.OperatorKey)
		if err != nil {
			return nil, err
		}
		operatorKey = key
	}
	return &clientImpl{
		clients:        clients,
		archiveClients: archiveClients,
		operatorKey:    operatorKey,
	}, anyerr
}

func (c *clientImpl) Call(ctx bCtx.Ctx, chainId int32, addr common.Address, blk *big.Int, _abi abi.ABI, method string, params ...interface{}) ([]interface{}, error) {
	var (
		client *beth.ThrottledClient
		ok     bool
	)
	if blk == nil {
		client, ok = c.clients[chainId]
	} else {
		client, ok = c.archiveClients[chainId]
	}
	if !ok {
		return nil, ErrUnsupportedChain
	}

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
	res, err := client.CallContract(ctx, msg, blk)
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

// Transact signs a state-changing contract call with the operator key and
// broadcasts it.
func (c *clientImpl) Transact(ctx bCtx.Ctx, chainId int32, addr common.Address, _abi abi.ABI, method string, params ...interface{}) (common.Hash, error) {
	client, ok := c.clients[chainId]
	if !ok {
		return common.Hash{}, ErrUnsupportedChain
	}
	if c.operatorKey == nil {
		return common.Hash{}, ErrNoOperatorKey
	}

	data, err := _abi.Pack(method, params...)
	if err != nil {
		ctx.WithFields(log.Fields{
			"method": method,
			"params": params,
			"err":    err,
		}).Error("abi.Pack failed")
		return common.Hash{}, err
	}

	from := crypto.PubkeyToAddress(c.operatorKey.PublicKey)
	nonce, err := client.PendingNonceAt(ctx, from)
	if err != nil {
		ctx.WithField("err", err).Error("client.PendingNonceAt failed")
		return common.Hash{}, err
	}
	gasPrice, err := client.SuggestGasPrice(ctx)
	if err != nil {
		ctx.WithField("err", err).Error("client.SuggestGasPrice failed")
		return common.Hash{}, err
	}
	gasLimit, err := client.EstimateGas(ctx, ethereum.CallMsg{From: from, To: &addr, Data: data})
	if err != nil {
		ctx.WithFields(log.Fields{
			"method": method,
			"err":    err,
		}).Error("client.EstimateGas failed")
		return common.Hash{}, err
	}

	tx := types.NewTransaction(nonce, addr, big.NewInt(0), gasLimit, gasPrice, data)
	signed, err := types.SignTx(tx, types.NewEIP155Signer(big.NewInt(int64(chainId))), c.operatorKey)
	if err != nil {
		ctx.WithField("err", err).Error("types.SignTx failed")
		return common.Hash{}, err
	}
	if err := client.SendTransaction(ctx, signed); err != nil {
		ctx.WithFields(log.Fields{
			"method": method,
			"tx":     signed.Hash(),
			"err":    err,
		}).Error("client.SendTransaction failed")
		return common.Hash{}, err
	}
	return signed.Hash(), nil
}
