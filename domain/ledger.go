package domain

import (
	"github.com/metawood/goapi/base/ctx"
)

// AssetLedger is the custody ledger tracking per-owner balances of
// multi-instance asset classes. The registries only consume it; ownership,
// minting and the pause switch live outside the engine.
type AssetLedger interface {
	BalanceOf(c ctx.Ctx, owner Address, tokenId TokenId) (int64, error)
	Exists(c ctx.Ctx, tokenId TokenId) (bool, error)
	// TokenCount returns the number of minted asset classes. Token ids are
	// dense, so minted ids are exactly [0, TokenCount).
	TokenCount(c ctx.Ctx) (int64, error)
	IsApprovedForAll(c ctx.Ctx, owner, operator Address) (bool, error)
	// Transfer moves quantity units of tokenId on behalf of the approved
	// marketplace operator. Fails with ErrLedgerPaused while transfers are
	// halted and ErrInsufficientBalance when from holds too few units.
	Transfer(c ctx.Ctx, from, to Address, tokenId TokenId, quantity int64) error
	Paused(c ctx.Ctx) (bool, error)
}

// PaymentLedger is the fungible settlement-currency ledger. The registries
// collect funds into their escrow account through TransferFrom and disburse
// them through Credit.
type PaymentLedger interface {
	BalanceOf(c ctx.Ctx, owner Address) (Amount, error)
	// TransferFrom debits payer by amount on the engine's behalf. Fails with
	// ErrInsufficientBalance or ErrInsufficientAllowance.
	TransferFrom(c ctx.Ctx, payer, payee Address, amount Amount) error
	// Credit pays amount out of the engine's escrow account.
	Credit(c ctx.Ctx, payee Address, amount Amount) error
}
