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
	"github.com/metawood/goapi/service/chain"
)

// Erc20Payment adapts the settlement token contract to domain.PaymentLedger.
// TransferFrom spends the payer's allowance granted to the operator account;
// Credit pays out of the operator's own escrow balance.
type Erc20Payment struct {
	chainService chain.Client
	chainId      int32
	contract     common.Address
	abi          ethabi.ABI
}

func NewErc20Payment(chainService chain.Client, chainId int32, contract string) *Erc20Payment {
	return &Erc20Payment{
		chainService: chainService,
		chainId:      chainId,
		contract:     common.HexToAddress(contract),
		abi:          baseabi.ERC20ABI,
	}
}

func (e *Erc20Payment) BalanceOf(c bCtx.Ctx, owner domain.Address) (domain.Amount, error) {
	unpacked, err := e.chainService.Call(c, e.chainId, e.contract, nil, e.abi, "balanceOf", common.HexToAddress(owner.ToLowerStr()))
	if err != nil {
		return domain.AmountZero, err
	}
	return domain.Amount(unpacked[0].(*big.Int).String()), nil
}

func (e *Erc20Payment) TransferFrom(c bCtx.Ctx, payer, payee domain.Address, amount domain.Amount) error {
	value, err := amountToBig(amount)
	if err != nil {
		return err
	}
	txHash, err := e.chainService.Transact(c, e.chainId, e.contract, e.abi, "transferFrom",
		common.HexToAddress(payer.ToLowerStr()), common.HexToAddress(payee.ToLowerStr()), value)
	if err != nil {
		return xerrors.Errorf("transferFrom: %w", err)
	}
	c.WithFields(log.Fields{
		"amount": amount,
		"tx":     txHash.Hex(),
	}).Info("payment transfer sent")
	return nil
}

func (e *Erc20Payment) Credit(c bCtx.Ctx, payee domain.Address, amount domain.Amount) error {
	value, err := amountToBig(amount)
	if err != nil {
		return err
	}
	txHash, err := e.chainService.Transact(c, e.chainId, e.contract, e.abi, "transfer",
		common.HexToAddress(payee.ToLowerStr()), value)
	if err != nil {
		return xerrors.Errorf("transfer: %w", err)
	}
	c.WithFields(log.Fields{
		"amount": amount,
		"tx":     txHash.Hex(),
	}).Info("escrow payout sent")
	return nil
}

func amountToBig(amount domain.Amount) (*big.Int, error) {
	d, err := amount.Decimal()
	if err != nil {
		return nil, err
	}
	return d.BigInt(), nil
}
