package ledger

import (
	"sync"

	"github.com/shopspring/decimal"

	"github.com/metawood/goapi/base/ctx"
	"github.com/metawood/goapi/base/log"
	"github.com/metawood/goapi/domain"
)

// PaymentLedger is the in-memory settlement-currency ledger. The escrow
// account belongs to the marketplace; TransferFrom debits a payer on the
// engine's behalf and Credit disburses out of escrow.
type PaymentLedger struct {
	mu          sync.RWMutex
	escrow      domain.Address
	autoApprove bool
	balances    map[domain.Address]decimal.Decimal
	allowances  map[domain.Address]decimal.Decimal
}

type PaymentLedgerOption func(*PaymentLedger)

// WithAutoApprove waives allowance checks, mirroring a deployment where the
// marketplace is a pre-approved operator for every account.
func WithAutoApprove() PaymentLedgerOption {
	return func(l *PaymentLedger) {
		l.autoApprove = true
	}
}

func NewPaymentLedger(escrow domain.Address, opts ...PaymentLedgerOption) *PaymentLedger {
	l := &PaymentLedger{
		escrow:     escrow.ToLower(),
		balances:   map[domain.Address]decimal.Decimal{},
		allowances: map[domain.Address]decimal.Decimal{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *PaymentLedger) BalanceOf(c ctx.Ctx, owner domain.Address) (domain.Amount, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return domain.AmountFromDecimal(l.balance(owner)), nil
}

func (l *PaymentLedger) TransferFrom(c ctx.Ctx, payer, payee domain.Address, amount domain.Amount) error {
	d, err := amount.Decimal()
	if err != nil {
		return err
	}
	payer = payer.ToLower()
	payee = payee.ToLower()

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.balance(payer).LessThan(d) {
		c.WithFields(log.Fields{
			"payer":   payer,
			"amount":  amount,
			"balance": l.balance(payer),
		}).Warn("payment transfer with insufficient balance")
		return domain.ErrInsufficientBalance
	}
	if !l.autoApprove {
		if allowance := l.allowances[payer]; allowance.LessThan(d) {
			return domain.ErrInsufficientAllowance
		}
		l.allowances[payer] = l.allowances[payer].Sub(d)
	}

	l.balances[payer] = l.balance(payer).Sub(d)
	l.balances[payee] = l.balance(payee).Add(d)
	return nil
}

func (l *PaymentLedger) Credit(c ctx.Ctx, payee domain.Address, amount domain.Amount) error {
	d, err := amount.Decimal()
	if err != nil {
		return err
	}
	payee = payee.ToLower()

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.balance(l.escrow).LessThan(d) {
		c.WithFields(log.Fields{
			"payee":  payee,
			"amount": amount,
			"escrow": l.balance(l.escrow),
		}).Error("escrow credit exceeds escrowed funds")
		return domain.ErrInsufficientBalance
	}

	l.balances[l.escrow] = l.balance(l.escrow).Sub(d)
	l.balances[payee] = l.balance(payee).Add(d)
	return nil
}

// Deposit funds an account, standing in for an off-engine token grant.
func (l *PaymentLedger) Deposit(c ctx.Ctx, owner domain.Address, amount domain.Amount) error {
	d, err := amount.Decimal()
	if err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[owner.ToLower()] = l.balance(owner.ToLower()).Add(d)
	return nil
}

// Approve grants the engine an allowance to debit owner via TransferFrom.
func (l *PaymentLedger) Approve(c ctx.Ctx, owner domain.Address, amount domain.Amount) error {
	d, err := amount.Decimal()
	if err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.allowances[owner.ToLower()] = d
	return nil
}

// caller must hold l.mu
func (l *PaymentLedger) balance(owner domain.Address) decimal.Decimal {
	if b, ok := l.balances[owner]; ok {
		return b
	}
	return decimal.Zero
}
