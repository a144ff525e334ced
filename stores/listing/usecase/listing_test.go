package usecase

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/metawood/goapi/base/ctx"
	"github.com/metawood/goapi/domain"
	"github.com/metawood/goapi/domain/listing"
	"github.com/metawood/goapi/domain/listing/mocks"
	dmocks "github.com/metawood/goapi/domain/mocks"
	"github.com/metawood/goapi/service/ledger"
	"github.com/metawood/goapi/stores/listing/repository"
)

var (
	escrow = domain.Address("0x000000000000000000000000000000000000beef")
	seller = domain.Address("0x1111111111111111111111111111111111111111")
	buyer  = domain.Address("0x2222222222222222222222222222222222222222")
	other  = domain.Address("0x3333333333333333333333333333333333333333")
)

type listingEnv struct {
	assets   *ledger.AssetLedger
	payments *ledger.PaymentLedger
	repo     listing.Repo
	uc       listing.Usecase
}

func newListingEnv(c ctx.Ctx) *listingEnv {
	env := &listingEnv{
		assets:   ledger.NewAssetLedger(escrow),
		payments: ledger.NewPaymentLedger(escrow, ledger.WithAutoApprove()),
		repo:     repository.NewListingMemoryRepo(),
	}
	env.uc = New(&ListingUseCaseCfg{
		ListingRepo:   env.repo,
		AssetLedger:   env.assets,
		PaymentLedger: env.payments,
		EscrowAddress: escrow,
	})
	return env
}

// mintFor mints a fresh token to owner and approves the escrow operator.
func (env *listingEnv) mintFor(c ctx.Ctx, owner domain.Address) domain.TokenId {
	tokenId := env.assets.Mint(c, owner, 1)
	env.assets.SetApprovalForAll(c, owner, escrow, true)
	return tokenId
}

func TestCreateListing(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()
	env := newListingEnv(c)

	tokenId := env.mintFor(c, seller)

	id, err := env.uc.CreateListing(c, seller, tokenId, "100")
	req.NoError(err)
	req.Equal(domain.ListingId(0), id)

	l, err := env.uc.GetListing(c, id)
	req.NoError(err)
	req.Equal(seller, l.Seller)
	req.Equal(tokenId, l.TokenId)
	req.Equal(domain.Amount("100"), l.Price)
	req.Equal(listing.StatusOpen, l.Status)
}

func TestCreateListingGuards(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()
	env := newListingEnv(c)

	tokenId := env.mintFor(c, seller)

	_, err := env.uc.CreateListing(c, seller, domain.TokenId("999"), "100")
	req.ErrorIs(err, domain.ErrAssetNotFound)

	_, err = env.uc.CreateListing(c, buyer, tokenId, "100")
	req.ErrorIs(err, domain.ErrNotOwner)

	_, err = env.uc.CreateListing(c, seller, tokenId, "0")
	req.ErrorIs(err, domain.ErrInvalidPrice)

	_, err = env.uc.CreateListing(c, seller, tokenId, "100")
	req.NoError(err)

	// only one open listing per token
	_, err = env.uc.CreateListing(c, seller, tokenId, "200")
	req.ErrorIs(err, domain.ErrDuplicateOpenListing)
}

func TestListingIdsStayDense(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()
	env := newListingEnv(c)

	tokenA := env.mintFor(c, seller)
	tokenB := env.mintFor(c, seller)

	idA, err := env.uc.CreateListing(c, seller, tokenA, "100")
	req.NoError(err)
	req.Equal(domain.ListingId(0), idA)

	// failed attempts consume no ids
	_, err = env.uc.CreateListing(c, seller, tokenB, "0")
	req.ErrorIs(err, domain.ErrInvalidPrice)

	idB, err := env.uc.CreateListing(c, seller, tokenB, "100")
	req.NoError(err)
	req.Equal(domain.ListingId(1), idB)

	count, err := env.uc.GetListingCount(c)
	req.NoError(err)
	req.Equal(2, count)
}

func TestChangeListingPrice(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()
	env := newListingEnv(c)

	tokenId := env.mintFor(c, seller)
	id, err := env.uc.CreateListing(c, seller, tokenId, "100")
	req.NoError(err)

	req.ErrorIs(env.uc.ChangeListingPrice(c, buyer, id, "200"), domain.ErrNotOwner)
	req.ErrorIs(env.uc.ChangeListingPrice(c, seller, id, "0"), domain.ErrInvalidPrice)
	req.ErrorIs(env.uc.ChangeListingPrice(c, seller, domain.ListingId(7), "200"), domain.ErrInvalidListing)

	req.NoError(env.uc.ChangeListingPrice(c, seller, id, "200"))
	l, err := env.uc.GetListing(c, id)
	req.NoError(err)
	req.Equal(domain.Amount("200"), l.Price)

	req.NoError(env.uc.CloseListing(c, seller, id))
	req.ErrorIs(env.uc.ChangeListingPrice(c, seller, id, "300"), domain.ErrAlreadyClosed)
}

func TestChangeListingPriceAfterTokenMoved(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()
	env := newListingEnv(c)

	tokenId := env.mintFor(c, seller)
	id, err := env.uc.CreateListing(c, seller, tokenId, "100")
	req.NoError(err)

	req.NoError(env.assets.Transfer(c, seller, other, tokenId, 1))

	req.ErrorIs(env.uc.ChangeListingPrice(c, seller, id, "200"), domain.ErrTokenNotOwned)

	// closing a stale listing stays possible
	req.NoError(env.uc.CloseListing(c, seller, id))
}

func TestCloseListing(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()
	env := newListingEnv(c)

	tokenId := env.mintFor(c, seller)
	id, err := env.uc.CreateListing(c, seller, tokenId, "100")
	req.NoError(err)

	req.ErrorIs(env.uc.CloseListing(c, buyer, id), domain.ErrNotOwner)
	req.NoError(env.uc.CloseListing(c, seller, id))
	req.ErrorIs(env.uc.CloseListing(c, seller, id), domain.ErrAlreadyClosed)

	// the token can be listed again once the previous listing is closed
	id2, err := env.uc.CreateListing(c, seller, tokenId, "150")
	req.NoError(err)
	req.Equal(domain.ListingId(1), id2)
}

func TestPurchaseNFT(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()
	env := newListingEnv(c)

	tokenId := env.mintFor(c, seller)
	id, err := env.uc.CreateListing(c, seller, tokenId, "100")
	req.NoError(err)

	req.NoError(env.payments.Deposit(c, buyer, "250"))

	req.NoError(env.uc.PurchaseNFT(c, buyer, id, "100"))

	balance, err := env.assets.BalanceOf(c, buyer, tokenId)
	req.NoError(err)
	req.Equal(int64(1), balance)

	sellerFunds, err := env.payments.BalanceOf(c, seller)
	req.NoError(err)
	req.Equal(domain.Amount("100"), sellerFunds)

	buyerFunds, err := env.payments.BalanceOf(c, buyer)
	req.NoError(err)
	req.Equal(domain.Amount("150"), buyerFunds)

	// nothing is left parked in escrow
	escrowFunds, err := env.payments.BalanceOf(c, escrow)
	req.NoError(err)
	req.Equal(domain.Amount("0"), escrowFunds)

	l, err := env.uc.GetListing(c, id)
	req.NoError(err)
	req.Equal(listing.StatusClosed, l.Status)

	req.ErrorIs(env.uc.PurchaseNFT(c, buyer, id, "100"), domain.ErrNotForSale)
}

func TestPurchaseNFTGuards(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()
	env := newListingEnv(c)

	tokenId := env.mintFor(c, seller)
	id, err := env.uc.CreateListing(c, seller, tokenId, "100")
	req.NoError(err)

	req.ErrorIs(env.uc.PurchaseNFT(c, buyer, domain.ListingId(9), "100"), domain.ErrInvalidListing)
	req.ErrorIs(env.uc.PurchaseNFT(c, seller, id, "100"), domain.ErrSelfPurchase)
	req.ErrorIs(env.uc.PurchaseNFT(c, buyer, id, "50"), domain.ErrInsufficientFunds)

	// offered enough but the account cannot cover it
	req.ErrorIs(env.uc.PurchaseNFT(c, buyer, id, "100"), domain.ErrInsufficientFunds)

	req.NoError(env.payments.Deposit(c, buyer, "100"))

	// the seller moved the token away after listing
	req.NoError(env.assets.Transfer(c, seller, other, tokenId, 1))
	req.ErrorIs(env.uc.PurchaseNFT(c, buyer, id, "100"), domain.ErrNotForSale)
}

func TestPurchaseNFTRevokedOperator(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()
	env := newListingEnv(c)

	tokenId := env.mintFor(c, seller)
	id, err := env.uc.CreateListing(c, seller, tokenId, "100")
	req.NoError(err)
	req.NoError(env.payments.Deposit(c, buyer, "100"))

	env.assets.SetApprovalForAll(c, seller, escrow, false)

	req.ErrorIs(env.uc.PurchaseNFT(c, buyer, id, "100"), domain.ErrOperatorNotApproved)

	// the failed purchase left the buyer's funds untouched
	buyerFunds, err := env.payments.BalanceOf(c, buyer)
	req.NoError(err)
	req.Equal(domain.Amount("100"), buyerFunds)
}

func TestListingQueries(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()
	env := newListingEnv(c)

	tokenA := env.mintFor(c, seller)
	tokenB := env.mintFor(c, other)

	idA, err := env.uc.CreateListing(c, seller, tokenA, "100")
	req.NoError(err)
	req.NoError(env.uc.CloseListing(c, seller, idA))
	idA2, err := env.uc.CreateListing(c, seller, tokenA, "120")
	req.NoError(err)
	idB, err := env.uc.CreateListing(c, other, tokenB, "300")
	req.NoError(err)

	latest, err := env.uc.GetLatestListingForToken(c, tokenA)
	req.NoError(err)
	req.Equal(idA2, latest.ListingId)

	_, err = env.uc.GetLatestListingForToken(c, domain.TokenId("999"))
	req.ErrorIs(err, domain.ErrNotFound)

	newest, err := env.uc.GetLatestListings(c, 2)
	req.NoError(err)
	req.Len(newest, 2)
	req.Equal(idB, newest[0].ListingId)
	req.Equal(idA2, newest[1].ListingId)

	open, err := env.uc.GetOpenListings(c, seller)
	req.NoError(err)
	req.Len(open, 1)
	req.Equal(idA2, open[0].ListingId)

	allOpen, err := env.uc.GetAllOpenListings(c)
	req.NoError(err)
	req.Len(allOpen, 2)
}

func TestGetOwnedTokens(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()
	env := newListingEnv(c)

	tokenA := env.mintFor(c, seller)
	env.mintFor(c, other)
	tokenC := env.mintFor(c, seller)

	owned, err := env.uc.GetOwnedTokens(c, seller)
	req.NoError(err)
	req.Equal([]domain.TokenId{tokenA, tokenC}, owned)

	none, err := env.uc.GetOwnedTokens(c, buyer)
	req.NoError(err)
	req.Empty(none)
}

func TestPurchaseNFTRollsBackWhenPatchFails(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()

	assets := ledger.NewAssetLedger(escrow)
	payments := ledger.NewPaymentLedger(escrow, ledger.WithAutoApprove())
	tokenId := assets.Mint(c, seller, 1)
	assets.SetApprovalForAll(c, seller, escrow, true)
	assets.SetApprovalForAll(c, buyer, escrow, true)
	req.NoError(payments.Deposit(c, buyer, "100"))

	repo := &mocks.Repo{}
	repo.On("FindOne", mock.Anything, domain.ListingId(0)).Return(&listing.Listing{
		ListingId: 0,
		Seller:    seller,
		TokenId:   tokenId,
		Price:     "100",
		Status:    listing.StatusOpen,
	}, nil)
	repo.On("Patch", mock.Anything, domain.ListingId(0), mock.Anything).Return(errors.New("mongo down"))

	uc := New(&ListingUseCaseCfg{
		ListingRepo:   repo,
		AssetLedger:   assets,
		PaymentLedger: payments,
		EscrowAddress: escrow,
	})

	err := uc.PurchaseNFT(c, buyer, 0, "100")
	req.Error(err)

	// the swap was fully unwound
	balance, err := assets.BalanceOf(c, seller, tokenId)
	req.NoError(err)
	req.Equal(int64(1), balance)
	funds, err := payments.BalanceOf(c, buyer)
	req.NoError(err)
	req.Equal(domain.Amount("100"), funds)
	repo.AssertExpectations(t)
}

func TestPurchaseNFTRollsBackWhenPayoutFails(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()

	assets := ledger.NewAssetLedger(escrow)
	repo := repository.NewListingMemoryRepo()

	payments := &dmocks.PaymentLedger{}
	payments.On("TransferFrom", mock.Anything, buyer, escrow, domain.Amount("100")).Return(nil)
	payments.On("Credit", mock.Anything, seller, domain.Amount("100")).Return(errors.New("payment ledger down"))
	payments.On("Credit", mock.Anything, buyer, domain.Amount("100")).Return(nil)

	uc := New(&ListingUseCaseCfg{
		ListingRepo:   repo,
		AssetLedger:   assets,
		PaymentLedger: payments,
		EscrowAddress: escrow,
	})

	tokenId := assets.Mint(c, seller, 1)
	assets.SetApprovalForAll(c, seller, escrow, true)
	assets.SetApprovalForAll(c, buyer, escrow, true)

	id, err := uc.CreateListing(c, seller, tokenId, "100")
	req.NoError(err)

	err = uc.PurchaseNFT(c, buyer, id, "100")
	req.Error(err)

	// the sale was fully unwound: seller holds the token, the buyer was
	// refunded, and the listing is purchasable again
	balance, err := assets.BalanceOf(c, seller, tokenId)
	req.NoError(err)
	req.Equal(int64(1), balance)

	l, err := uc.GetListing(c, id)
	req.NoError(err)
	req.Equal(listing.StatusOpen, l.Status)

	payments.AssertExpectations(t)
}
