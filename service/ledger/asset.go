package ledger

import (
	"sync"

	"github.com/metawood/goapi/base/ctx"
	"github.com/metawood/goapi/base/log"
	"github.com/metawood/goapi/domain"
)

// AssetLedger is the in-memory custody ledger. It is the authoritative
// ledger for a custodial deployment and doubles as the stateful test double
// for the registries. Token ids are minted densely from 0.
type AssetLedger struct {
	mu         sync.RWMutex
	operator   domain.Address
	balances   map[domain.TokenId]map[domain.Address]int64
	approvals  map[domain.Address]map[domain.Address]bool
	tokenCount int64
	paused     bool
}

// NewAssetLedger creates an empty custody ledger. The operator address is
// the marketplace escrow account; transfers initiated for any other holder
// require a prior SetApprovalForAll grant.
func NewAssetLedger(operator domain.Address) *AssetLedger {
	return &AssetLedger{
		operator:  operator.ToLower(),
		balances:  map[domain.TokenId]map[domain.Address]int64{},
		approvals: map[domain.Address]map[domain.Address]bool{},
	}
}

func (l *AssetLedger) BalanceOf(c ctx.Ctx, owner domain.Address, tokenId domain.TokenId) (int64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balances[tokenId][owner.ToLower()], nil
}

func (l *AssetLedger) Exists(c ctx.Ctx, tokenId domain.TokenId) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.balances[tokenId]
	return ok, nil
}

func (l *AssetLedger) TokenCount(c ctx.Ctx) (int64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.tokenCount, nil
}

func (l *AssetLedger) IsApprovedForAll(c ctx.Ctx, owner, operator domain.Address) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.approvals[owner.ToLower()][operator.ToLower()], nil
}

func (l *AssetLedger) Paused(c ctx.Ctx) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.paused, nil
}

func (l *AssetLedger) Transfer(c ctx.Ctx, from, to domain.Address, tokenId domain.TokenId, quantity int64) error {
	from = from.ToLower()
	to = to.ToLower()

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.paused {
		return domain.ErrLedgerPaused
	}
	holders, ok := l.balances[tokenId]
	if !ok {
		return domain.ErrAssetNotFound
	}
	if !from.Equals(l.operator) && !l.approvals[from][l.operator] {
		return domain.ErrOperatorNotApproved
	}
	if holders[from] < quantity {
		c.WithFields(log.Fields{
			"from":     from,
			"tokenId":  tokenId,
			"quantity": quantity,
			"balance":  holders[from],
		}).Warn("asset transfer with insufficient balance")
		return domain.ErrInsufficientBalance
	}

	holders[from] -= quantity
	if holders[from] == 0 {
		delete(holders, from)
	}
	holders[to] += quantity
	return nil
}

// Mint creates a new token class with quantity units owned by owner and
// returns its id.
func (l *AssetLedger) Mint(c ctx.Ctx, owner domain.Address, quantity int64) domain.TokenId {
	l.mu.Lock()
	defer l.mu.Unlock()

	id := domain.TokenIdFromInt(l.tokenCount)
	l.tokenCount++
	l.balances[id] = map[domain.Address]int64{owner.ToLower(): quantity}
	return id
}

// SetApprovalForAll grants or revokes operator rights over owner's holdings.
func (l *AssetLedger) SetApprovalForAll(c ctx.Ctx, owner, operator domain.Address, approved bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	owner = owner.ToLower()
	if l.approvals[owner] == nil {
		l.approvals[owner] = map[domain.Address]bool{}
	}
	l.approvals[owner][operator.ToLower()] = approved
}

// SetPaused flips the global transfer switch.
func (l *AssetLedger) SetPaused(c ctx.Ctx, paused bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.paused = paused
}
