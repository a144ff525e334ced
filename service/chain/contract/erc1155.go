package contract

import (
	"math/big"

	ethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/xerrors"

	baseabi "github.com/metawood/goapi/base/abi"
	bCtx "github.com/metawood/goapi/base/ctx"
	"github.com/metawood/goapi/base/log"
	"github.com/metawood/goapi/domain"
	"github.com/metawood/goapi/domain/keys"
	"github.com/metawood/goapi/service/cache"
	"github.com/metawood/goapi/service/chain"
)

// Erc1155Custody adapts the on-chain custody token contract to
// domain.AssetLedger. The marketplace operator account signs transfers; the
// contract pre-approves it as operator for every holder.
type Erc1155Custody struct {
	chainService chain.Client
	chainId      int32
	contract     common.Address
	abi          ethabi.ABI
	existsCache  cache.Service
}

type CustodyOption func(*Erc1155Custody)

// WithExistsCache memoizes positive Exists lookups. Token existence is
// monotonic, a minted token never disappears, so only hits are cached.
func WithExistsCache(svc cache.Service) CustodyOption {
	return func(e *Erc1155Custody) {
		e.existsCache = svc
	}
}

func NewErc1155Custody(chainService chain.Client, chainId int32, contract string, opts ...CustodyOption) *Erc1155Custody {
	e := &Erc1155Custody{
		chainService: chainService,
		chainId:      chainId,
		contract:     common.HexToAddress(contract),
		abi:          baseabi.ERC1155TokenABI,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Erc1155Custody) BalanceOf(c bCtx.Ctx, owner domain.Address, tokenId domain.TokenId) (int64, error) {
	id, err := tokenIdToBig(tokenId)
	if err != nil {
		return 0, err
	}
	unpacked, err := e.chainService.Call(c, e.chainId, e.contract, nil, e.abi, "balanceOf", common.HexToAddress(owner.ToLowerStr()), id)
	if err != nil {
		return 0, err
	}
	return unpacked[0].(*big.Int).Int64(), nil
}

func (e *Erc1155Custody) Exists(c bCtx.Ctx, tokenId domain.TokenId) (bool, error) {
	key := keys.CacheKey("exists", tokenId.String())
	if e.existsCache != nil {
		var hit bool
		if err := e.existsCache.Get(c, key, &hit); err == nil && hit {
			return true, nil
		}
	}

	id, err := tokenIdToBig(tokenId)
	if err != nil {
		return false, err
	}
	unpacked, err := e.chainService.Call(c, e.chainId, e.contract, nil, e.abi, "exists", id)
	if err != nil {
		return false, xerrors.Errorf("exists(%s): %w", tokenId, err)
	}
	exists := unpacked[0].(bool)

	if exists && e.existsCache != nil {
		if err := e.existsCache.Set(c, key, true); err != nil {
			c.WithField("err", err).Warn("exists cache set failed")
		}
	}
	return exists, nil
}

func (e *Erc1155Custody) TokenCount(c bCtx.Ctx) (int64, error) {
	unpacked, err := e.chainService.Call(c, e.chainId, e.contract, nil, e.abi, "tokenCount")
	if err != nil {
		return 0, err
	}
	return unpacked[0].(*big.Int).Int64(), nil
}

func (e *Erc1155Custody) IsApprovedForAll(c bCtx.Ctx, owner, operator domain.Address) (bool, error) {
	unpacked, err := e.chainService.Call(c, e.chainId, e.contract, nil, e.abi, "isApprovedForAll",
		common.HexToAddress(owner.ToLowerStr()), common.HexToAddress(operator.ToLowerStr()))
	if err != nil {
		return false, err
	}
	return unpacked[0].(bool), nil
}

func (e *Erc1155Custody) Paused(c bCtx.Ctx) (bool, error) {
	unpacked, err := e.chainService.Call(c, e.chainId, e.contract, nil, e.abi, "paused")
	if err != nil {
		return false, err
	}
	return unpacked[0].(bool), nil
}

func (e *Erc1155Custody) Transfer(c bCtx.Ctx, from, to domain.Address, tokenId domain.TokenId, quantity int64) error {
	id, err := tokenIdToBig(tokenId)
	if err != nil {
		return err
	}
	txHash, err := e.chainService.Transact(c, e.chainId, e.contract, e.abi, "safeTransferFrom",
		common.HexToAddress(from.ToLowerStr()), common.HexToAddress(to.ToLowerStr()), id, big.NewInt(quantity), []byte{})
	if err != nil {
		return xerrors.Errorf("safeTransferFrom: %w", err)
	}
	c.WithFields(log.Fields{
		"tokenId": tokenId,
		"tx":      txHash.Hex(),
	}).Info("custody transfer sent")
	return nil
}

func tokenIdToBig(tokenId domain.TokenId) (*big.Int, error) {
	id, ok := new(big.Int).SetString(tokenId.String(), 10)
	if !ok {
		return nil, domain.ErrInvalidNumberFormat
	}
	return id, nil
}
