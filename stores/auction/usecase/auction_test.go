package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/metawood/goapi/base/ctx"
	"github.com/metawood/goapi/domain"
	"github.com/metawood/goapi/domain/auction"
	"github.com/metawood/goapi/domain/auction/mocks"
	dmocks "github.com/metawood/goapi/domain/mocks"
	"github.com/metawood/goapi/service/ledger"
	"github.com/metawood/goapi/stores/auction/repository"
)

var (
	escrow  = domain.Address("0x000000000000000000000000000000000000beef")
	creator = domain.Address("0x1111111111111111111111111111111111111111")
	bidderA = domain.Address("0x2222222222222222222222222222222222222222")
	bidderB = domain.Address("0x3333333333333333333333333333333333333333")
)

type auctionEnv struct {
	assets   *ledger.AssetLedger
	payments *ledger.PaymentLedger
	repo     auction.Repo
	uc       auction.Usecase
}

func newAuctionEnv(c ctx.Ctx) *auctionEnv {
	env := &auctionEnv{
		assets:   ledger.NewAssetLedger(escrow),
		payments: ledger.NewPaymentLedger(escrow, ledger.WithAutoApprove()),
		repo:     repository.NewAuctionMemoryRepo(),
	}
	env.uc = New(&AuctionUseCaseCfg{
		AuctionRepo:   env.repo,
		AssetLedger:   env.assets,
		PaymentLedger: env.payments,
		EscrowAddress: escrow,
	})
	return env
}

func (env *auctionEnv) mintFor(c ctx.Ctx, owner domain.Address) domain.TokenId {
	tokenId := env.assets.Mint(c, owner, 1)
	env.assets.SetApprovalForAll(c, owner, escrow, true)
	return tokenId
}

func (env *auctionEnv) open(c ctx.Ctx, t *testing.T) (domain.AuctionId, domain.TokenId) {
	req := require.New(t)
	tokenId := env.mintFor(c, creator)
	id, err := env.uc.CreateAuction(c, creator, tokenId, "50", time.Now().Add(time.Hour))
	req.NoError(err)
	return id, tokenId
}

func TestCreateAuctionEscrowsAsset(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()
	env := newAuctionEnv(c)

	id, tokenId := env.open(c, t)
	req.Equal(domain.AuctionId(0), id)

	// the token left the creator's balance at creation time
	balance, err := env.assets.BalanceOf(c, creator, tokenId)
	req.NoError(err)
	req.Equal(int64(0), balance)

	held, err := env.assets.BalanceOf(c, escrow, tokenId)
	req.NoError(err)
	req.Equal(int64(1), held)

	a, err := env.uc.GetAuctionById(c, id)
	req.NoError(err)
	req.Equal(creator, a.Creator)
	req.Equal(auction.StatusOpen, a.Status)
	req.Equal(domain.AmountZero, a.HighestBid)
	req.True(a.HighestBidder.IsEmpty())
}

func TestCreateAuctionGuards(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()
	env := newAuctionEnv(c)

	tokenId := env.mintFor(c, creator)
	deadline := time.Now().Add(time.Hour)

	_, err := env.uc.CreateAuction(c, creator, domain.TokenId("999"), "50", deadline)
	req.ErrorIs(err, domain.ErrAssetNotFound)

	_, err = env.uc.CreateAuction(c, bidderA, tokenId, "50", deadline)
	req.ErrorIs(err, domain.ErrNotOwner)

	_, err = env.uc.CreateAuction(c, creator, tokenId, "50", time.Now().Add(-time.Minute))
	req.ErrorIs(err, domain.ErrInvalidDeadline)

	env.assets.SetApprovalForAll(c, creator, escrow, false)
	_, err = env.uc.CreateAuction(c, creator, tokenId, "50", deadline)
	req.ErrorIs(err, domain.ErrOperatorNotApproved)

	// failed attempts never moved the token
	balance, err := env.assets.BalanceOf(c, creator, tokenId)
	req.NoError(err)
	req.Equal(int64(1), balance)
}

func TestMakeBidRefundsPreviousBidder(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()
	env := newAuctionEnv(c)

	id, _ := env.open(c, t)

	req.NoError(env.payments.Deposit(c, bidderA, "120"))
	req.NoError(env.payments.Deposit(c, bidderB, "150"))

	req.NoError(env.uc.MakeBid(c, bidderA, id, "120"))

	held, err := env.payments.BalanceOf(c, escrow)
	req.NoError(err)
	req.Equal(domain.Amount("120"), held)

	req.NoError(env.uc.MakeBid(c, bidderB, id, "150"))

	// escrow holds exactly the highest bid, the outbid party is whole
	held, err = env.payments.BalanceOf(c, escrow)
	req.NoError(err)
	req.Equal(domain.Amount("150"), held)

	refunded, err := env.payments.BalanceOf(c, bidderA)
	req.NoError(err)
	req.Equal(domain.Amount("120"), refunded)

	a, err := env.uc.GetAuctionById(c, id)
	req.NoError(err)
	req.Equal(bidderB, a.HighestBidder)
	req.Equal(domain.Amount("150"), a.HighestBid)
}

func TestMakeBidGuards(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()
	env := newAuctionEnv(c)

	id, _ := env.open(c, t)
	req.NoError(env.payments.Deposit(c, bidderA, "200"))

	req.ErrorIs(env.uc.MakeBid(c, bidderA, domain.AuctionId(9), "100"), domain.ErrAuctionNotFound)
	req.ErrorIs(env.uc.MakeBid(c, bidderA, id, "0"), domain.ErrBidTooLow)

	req.NoError(env.uc.MakeBid(c, bidderA, id, "120"))

	// a tie is not an outbid
	req.NoError(env.payments.Deposit(c, bidderB, "120"))
	req.ErrorIs(env.uc.MakeBid(c, bidderB, id, "120"), domain.ErrBidTooLow)

	// an outbid the account cannot cover leaves state untouched
	req.ErrorIs(env.uc.MakeBid(c, bidderB, id, "150"), domain.ErrInsufficientFunds)

	held, err := env.payments.BalanceOf(c, escrow)
	req.NoError(err)
	req.Equal(domain.Amount("120"), held)
}

func TestSettleAuctionWithBid(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()
	env := newAuctionEnv(c)

	id, tokenId := env.open(c, t)
	req.NoError(env.payments.Deposit(c, bidderA, "150"))
	req.NoError(env.uc.MakeBid(c, bidderA, id, "150"))

	req.NoError(env.uc.SettleAuction(c, id))

	won, err := env.assets.BalanceOf(c, bidderA, tokenId)
	req.NoError(err)
	req.Equal(int64(1), won)

	paid, err := env.payments.BalanceOf(c, creator)
	req.NoError(err)
	req.Equal(domain.Amount("150"), paid)

	held, err := env.payments.BalanceOf(c, escrow)
	req.NoError(err)
	req.Equal(domain.Amount("0"), held)

	a, err := env.uc.GetAuctionById(c, id)
	req.NoError(err)
	req.Equal(auction.StatusSettled, a.Status)

	// terminal states are absorbing
	req.ErrorIs(env.uc.SettleAuction(c, id), domain.ErrAlreadyFinalized)
	req.ErrorIs(env.uc.TerminateAuction(c, creator, id), domain.ErrAlreadyFinalized)
}

func TestSettleAuctionWithoutBid(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()
	env := newAuctionEnv(c)

	id, tokenId := env.open(c, t)

	req.NoError(env.uc.SettleAuction(c, id))

	back, err := env.assets.BalanceOf(c, creator, tokenId)
	req.NoError(err)
	req.Equal(int64(1), back)

	a, err := env.uc.GetAuctionById(c, id)
	req.NoError(err)
	req.Equal(auction.StatusSettled, a.Status)
}

func TestTerminateAuction(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()
	env := newAuctionEnv(c)

	id, tokenId := env.open(c, t)
	req.NoError(env.payments.Deposit(c, bidderA, "120"))
	req.NoError(env.uc.MakeBid(c, bidderA, id, "120"))

	req.ErrorIs(env.uc.TerminateAuction(c, bidderA, id), domain.ErrNotCreator)

	req.NoError(env.uc.TerminateAuction(c, creator, id))

	back, err := env.assets.BalanceOf(c, creator, tokenId)
	req.NoError(err)
	req.Equal(int64(1), back)

	refunded, err := env.payments.BalanceOf(c, bidderA)
	req.NoError(err)
	req.Equal(domain.Amount("120"), refunded)

	held, err := env.payments.BalanceOf(c, escrow)
	req.NoError(err)
	req.Equal(domain.Amount("0"), held)

	a, err := env.uc.GetAuctionById(c, id)
	req.NoError(err)
	req.Equal(auction.StatusTerminated, a.Status)

	req.ErrorIs(env.uc.TerminateAuction(c, creator, id), domain.ErrAlreadyFinalized)
}

func TestTerminateAuctionWithoutBid(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()
	env := newAuctionEnv(c)

	id, tokenId := env.open(c, t)

	req.NoError(env.uc.TerminateAuction(c, creator, id))

	back, err := env.assets.BalanceOf(c, creator, tokenId)
	req.NoError(err)
	req.Equal(int64(1), back)

	// no bids, nothing to refund
	held, err := env.payments.BalanceOf(c, escrow)
	req.NoError(err)
	req.Equal(domain.Amount("0"), held)
}

func TestExpiredAuctionRejectsBids(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()
	env := newAuctionEnv(c)

	tokenId := env.mintFor(c, creator)
	id, err := env.uc.CreateAuction(c, creator, tokenId, "50", time.Now().Add(30*time.Millisecond))
	req.NoError(err)

	time.Sleep(50 * time.Millisecond)

	req.NoError(env.payments.Deposit(c, bidderA, "100"))
	req.ErrorIs(env.uc.MakeBid(c, bidderA, id, "100"), domain.ErrAuctionExpired)

	// settlement after the deadline still works and returns the asset
	req.NoError(env.uc.SettleAuction(c, id))
	back, err := env.assets.BalanceOf(c, creator, tokenId)
	req.NoError(err)
	req.Equal(int64(1), back)
}

func TestAuctionIdsStayDense(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()
	env := newAuctionEnv(c)

	tokenA := env.mintFor(c, creator)
	tokenB := env.mintFor(c, creator)

	idA, err := env.uc.CreateAuction(c, creator, tokenA, "50", time.Now().Add(time.Hour))
	req.NoError(err)
	req.Equal(domain.AuctionId(0), idA)

	_, err = env.uc.CreateAuction(c, creator, tokenB, "50", time.Now().Add(-time.Hour))
	req.ErrorIs(err, domain.ErrInvalidDeadline)

	idB, err := env.uc.CreateAuction(c, creator, tokenB, "50", time.Now().Add(time.Hour))
	req.NoError(err)
	req.Equal(domain.AuctionId(1), idB)
}

func TestAuctionQueries(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()
	env := newAuctionEnv(c)

	idA, _ := env.open(c, t)
	idB, _ := env.open(c, t)
	idC, _ := env.open(c, t)

	req.NoError(env.uc.SettleAuction(c, idB))

	all, err := env.uc.GetAllAuctions(c)
	req.NoError(err)
	req.Len(all, 3)

	active, err := env.uc.GetAllActiveAuctions(c)
	req.NoError(err)
	req.Len(active, 2)
	req.Equal(idA, active[0].AuctionId)
	req.Equal(idC, active[1].AuctionId)
}

func TestActiveAuctionsIncludeExpiredOpen(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()
	env := newAuctionEnv(c)

	idA, _ := env.open(c, t)

	// deadline passed but nobody settled yet, still open, token in escrow
	req.NoError(env.repo.Create(c, &auction.Auction{
		AuctionId:  1,
		Creator:    creator,
		TokenId:    env.assets.Mint(c, escrow, 1),
		Deadline:   time.Now().Add(-time.Hour),
		Status:     auction.StatusOpen,
		HighestBid: domain.AmountZero,
	}))

	active, err := env.uc.GetAllActiveAuctions(c)
	req.NoError(err)
	req.Len(active, 2)
	req.Equal(idA, active[0].AuctionId)
	req.Equal(domain.AuctionId(1), active[1].AuctionId)

	req.NoError(env.uc.SettleAuction(c, 1))

	active, err = env.uc.GetAllActiveAuctions(c)
	req.NoError(err)
	req.Len(active, 1)
	req.Equal(idA, active[0].AuctionId)
}

func TestMakeBidRefundsBidderWhenPatchFails(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()

	assets := ledger.NewAssetLedger(escrow)
	payments := ledger.NewPaymentLedger(escrow, ledger.WithAutoApprove())
	req.NoError(payments.Deposit(c, bidderA, "200"))

	repo := &mocks.Repo{}
	repo.On("FindOne", mock.Anything, domain.AuctionId(0)).Return(&auction.Auction{
		AuctionId:    0,
		Creator:      creator,
		TokenId:      domain.TokenId("0"),
		ReservePrice: "50",
		Deadline:     time.Now().Add(time.Hour),
		Status:       auction.StatusOpen,
		HighestBid:   domain.AmountZero,
	}, nil)
	repo.On("Patch", mock.Anything, domain.AuctionId(0), mock.Anything).Return(errors.New("mongo down"))

	uc := New(&AuctionUseCaseCfg{
		AuctionRepo:   repo,
		AssetLedger:   assets,
		PaymentLedger: payments,
		EscrowAddress: escrow,
	})

	err := uc.MakeBid(c, bidderA, 0, "120")
	req.Error(err)

	// the failed bid left no funds behind
	funds, err := payments.BalanceOf(c, bidderA)
	req.NoError(err)
	req.Equal(domain.Amount("200"), funds)
	escrowed, err := payments.BalanceOf(c, escrow)
	req.NoError(err)
	req.Equal(domain.Amount("0"), escrowed)
	repo.AssertExpectations(t)
}

func TestSettleAuctionReclaimsAssetWhenPayoutFails(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()

	assets := ledger.NewAssetLedger(escrow)
	tokenId := assets.Mint(c, escrow, 1)
	assets.SetApprovalForAll(c, bidderA, escrow, true)

	payments := &dmocks.PaymentLedger{}
	payments.On("Credit", mock.Anything, creator, domain.Amount("120")).Return(errors.New("payout failed"))

	repo := &mocks.Repo{}
	repo.On("FindOne", mock.Anything, domain.AuctionId(0)).Return(&auction.Auction{
		AuctionId:     0,
		Creator:       creator,
		TokenId:       tokenId,
		ReservePrice:  "50",
		Deadline:      time.Now().Add(time.Hour),
		Status:        auction.StatusOpen,
		HighestBid:    "120",
		HighestBidder: bidderA,
	}, nil)

	uc := New(&AuctionUseCaseCfg{
		AuctionRepo:   repo,
		AssetLedger:   assets,
		PaymentLedger: payments,
		EscrowAddress: escrow,
	})

	err := uc.SettleAuction(c, 0)
	req.Error(err)

	// the token went back into custody when the payout failed
	balance, err := assets.BalanceOf(c, escrow, tokenId)
	req.NoError(err)
	req.Equal(int64(1), balance)
	balance, err = assets.BalanceOf(c, bidderA, tokenId)
	req.NoError(err)
	req.Equal(int64(0), balance)
	payments.AssertExpectations(t)
}
