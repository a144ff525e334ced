package usecase

import (
	"sync"

	"github.com/metawood/goapi/base/ctx"
	"github.com/metawood/goapi/base/log"
	"github.com/metawood/goapi/domain"
	"github.com/metawood/goapi/domain/listing"
)

type ListingUseCaseCfg struct {
	ListingRepo   listing.Repo
	AssetLedger   domain.AssetLedger
	PaymentLedger domain.PaymentLedger
	// EscrowAddress is the marketplace account. It must be an approved
	// operator on the custody ledger for every seller, and purchase funds
	// pass through it so a failed swap can be refunded atomically.
	EscrowAddress domain.Address
}

type impl struct {
	// mu serializes every mutating operation; the registry follows a
	// single-writer ledger model so invariants are checked and applied
	// without interleaving.
	mu sync.Mutex

	listingRepo listing.Repo
	assets      domain.AssetLedger
	payments    domain.PaymentLedger
	escrow      domain.Address
}

func New(cfg *ListingUseCaseCfg) listing.Usecase {
	return &impl{
		listingRepo: cfg.ListingRepo,
		assets:      cfg.AssetLedger,
		payments:    cfg.PaymentLedger,
		escrow:      cfg.EscrowAddress.ToLower(),
	}
}

func (im *impl) CreateListing(c ctx.Ctx, seller domain.Address, tokenId domain.TokenId, price domain.Amount) (domain.ListingId, error) {
	im.mu.Lock()
	defer im.mu.Unlock()

	seller = seller.ToLower()

	if exists, err := im.assets.Exists(c, tokenId); err != nil {
		c.WithField("err", err).Error("assets.Exists failed")
		return 0, err
	} else if !exists {
		return 0, domain.ErrAssetNotFound
	}

	if balance, err := im.assets.BalanceOf(c, seller, tokenId); err != nil {
		c.WithField("err", err).Error("assets.BalanceOf failed")
		return 0, err
	} else if balance < 1 {
		return 0, domain.ErrNotOwner
	}

	if !price.IsPositive() {
		return 0, domain.ErrInvalidPrice
	}

	// only the latest listing per token can be open (invariant: at most one
	// open listing per token)
	if latest, err := im.latestForToken(c, tokenId); err != nil {
		return 0, err
	} else if latest != nil && latest.IsOpen() {
		return 0, domain.ErrDuplicateOpenListing
	}

	count, err := im.listingRepo.Count(c)
	if err != nil {
		c.WithField("err", err).Error("listingRepo.Count failed")
		return 0, err
	}

	l := &listing.Listing{
		ListingId: domain.ListingId(count),
		Seller:    seller,
		TokenId:   tokenId,
		Price:     price,
		Status:    listing.StatusOpen,
	}
	if err := im.listingRepo.Create(c, l); err != nil {
		c.WithFields(log.Fields{
			"err":     err,
			"listing": l,
		}).Error("listingRepo.Create failed")
		return 0, err
	}
	return l.ListingId, nil
}

func (im *impl) ChangeListingPrice(c ctx.Ctx, caller domain.Address, id domain.ListingId, newPrice domain.Amount) error {
	im.mu.Lock()
	defer im.mu.Unlock()

	l, err := im.getListing(c, id)
	if err != nil {
		return err
	}

	if !l.Seller.Equals(caller) {
		return domain.ErrNotOwner
	}

	// the seller may have transferred the token away since listing time
	if balance, err := im.assets.BalanceOf(c, caller, l.TokenId); err != nil {
		c.WithField("err", err).Error("assets.BalanceOf failed")
		return err
	} else if balance < 1 {
		return domain.ErrTokenNotOwned
	}

	if !l.IsOpen() {
		return domain.ErrAlreadyClosed
	}

	if !newPrice.IsPositive() {
		return domain.ErrInvalidPrice
	}

	return im.listingRepo.Patch(c, id, listing.PatchableListing{Price: &newPrice})
}

// CloseListing requires only the original seller; current ownership is not
// checked so a stale listing can be cleaned up after the token moved away.
func (im *impl) CloseListing(c ctx.Ctx, caller domain.Address, id domain.ListingId) error {
	im.mu.Lock()
	defer im.mu.Unlock()

	l, err := im.getListing(c, id)
	if err != nil {
		return err
	}

	if !l.Seller.Equals(caller) {
		return domain.ErrNotOwner
	}

	if !l.IsOpen() {
		return domain.ErrAlreadyClosed
	}

	status := listing.StatusClosed
	return im.listingRepo.Patch(c, id, listing.PatchableListing{Status: &status})
}

func (im *impl) PurchaseNFT(c ctx.Ctx, buyer domain.Address, id domain.ListingId, payment domain.Amount) error {
	im.mu.Lock()
	defer im.mu.Unlock()

	buyer = buyer.ToLower()

	l, err := im.getListing(c, id)
	if err != nil {
		return err
	}

	if !l.IsOpen() {
		return domain.ErrNotForSale
	}

	// ownership is re-validated at purchase time, never trusted from listing
	// time; a listing whose seller lost the token is unpurchasable
	if balance, err := im.assets.BalanceOf(c, l.Seller, l.TokenId); err != nil {
		c.WithField("err", err).Error("assets.BalanceOf failed")
		return err
	} else if balance < 1 {
		return domain.ErrNotForSale
	}

	if l.Seller.Equals(buyer) {
		return domain.ErrSelfPurchase
	}

	price, err := l.Price.Decimal()
	if err != nil {
		return err
	}
	offered, err := payment.Decimal()
	if err != nil {
		return err
	}
	if offered.LessThan(price) {
		return domain.ErrInsufficientFunds
	}

	if approved, err := im.assets.IsApprovedForAll(c, l.Seller, im.escrow); err != nil {
		c.WithField("err", err).Error("assets.IsApprovedForAll failed")
		return err
	} else if !approved {
		return domain.ErrOperatorNotApproved
	}

	// exactly the listed price moves, whatever allowance the buyer offered
	if err := im.payments.TransferFrom(c, buyer, im.escrow, l.Price); err != nil {
		if err == domain.ErrInsufficientBalance || err == domain.ErrInsufficientAllowance {
			return domain.ErrInsufficientFunds
		}
		c.WithField("err", err).Error("payments.TransferFrom failed")
		return err
	}

	if err := im.assets.Transfer(c, l.Seller, buyer, l.TokenId, 1); err != nil {
		c.WithFields(log.Fields{
			"err":       err,
			"listingId": id,
		}).Error("assets.Transfer failed, refunding buyer")
		if cerr := im.payments.Credit(c, buyer, l.Price); cerr != nil {
			c.WithField("err", cerr).Error("refund after failed transfer failed")
		}
		return err
	}

	status := listing.StatusClosed
	if err := im.listingRepo.Patch(c, id, listing.PatchableListing{Status: &status}); err != nil {
		c.WithFields(log.Fields{
			"err":       err,
			"listingId": id,
		}).Error("listingRepo.Patch failed, rolling back swap")
		if cerr := im.assets.Transfer(c, buyer, l.Seller, l.TokenId, 1); cerr != nil {
			c.WithField("err", cerr).Error("asset rollback failed")
		}
		if cerr := im.payments.Credit(c, buyer, l.Price); cerr != nil {
			c.WithField("err", cerr).Error("payment rollback failed")
		}
		return err
	}

	if err := im.payments.Credit(c, l.Seller, l.Price); err != nil {
		c.WithFields(log.Fields{
			"err":       err,
			"listingId": id,
			"seller":    l.Seller,
		}).Error("seller payout failed, rolling back sale")
		open := listing.StatusOpen
		if cerr := im.listingRepo.Patch(c, id, listing.PatchableListing{Status: &open}); cerr != nil {
			c.WithField("err", cerr).Error("status rollback failed")
		}
		if cerr := im.assets.Transfer(c, buyer, l.Seller, l.TokenId, 1); cerr != nil {
			c.WithField("err", cerr).Error("asset rollback failed")
		}
		if cerr := im.payments.Credit(c, buyer, l.Price); cerr != nil {
			c.WithField("err", cerr).Error("payment rollback failed")
		}
		return err
	}
	return nil
}

func (im *impl) GetListing(c ctx.Ctx, id domain.ListingId) (*listing.Listing, error) {
	return im.getListing(c, id)
}

func (im *impl) GetListingCount(c ctx.Ctx) (int, error) {
	count, err := im.listingRepo.Count(c)
	if err != nil {
		c.WithField("err", err).Error("listingRepo.Count failed")
		return 0, err
	}
	return count, nil
}

// GetLatestListingForToken returns the most recent listing for tokenId
// regardless of status, or ErrNotFound when the token was never listed.
func (im *impl) GetLatestListingForToken(c ctx.Ctx, tokenId domain.TokenId) (*listing.Listing, error) {
	latest, err := im.latestForToken(c, tokenId)
	if err != nil {
		return nil, err
	}
	if latest == nil {
		return nil, domain.ErrNotFound
	}
	return latest, nil
}

// GetLatestListings returns the most recent limit listings, newest first.
func (im *impl) GetLatestListings(c ctx.Ctx, limit int32) ([]*listing.Listing, error) {
	res, err := im.listingRepo.FindAll(c, listing.WithSort("-listingId"), listing.WithPagination(0, limit))
	if err != nil {
		c.WithField("err", err).Error("listingRepo.FindAll failed")
		return nil, err
	}
	return res, nil
}

func (im *impl) GetOpenListings(c ctx.Ctx, seller domain.Address) ([]*listing.Listing, error) {
	res, err := im.listingRepo.FindAll(c, listing.WithSeller(seller), listing.WithStatus(listing.StatusOpen))
	if err != nil {
		c.WithField("err", err).Error("listingRepo.FindAll failed")
		return nil, err
	}
	return res, nil
}

func (im *impl) GetAllOpenListings(c ctx.Ctx) ([]*listing.Listing, error) {
	res, err := im.listingRepo.FindAll(c, listing.WithStatus(listing.StatusOpen))
	if err != nil {
		c.WithField("err", err).Error("listingRepo.FindAll failed")
		return nil, err
	}
	return res, nil
}

// GetOwnedTokens scans the minted token range on the custody ledger and
// returns the ids owner currently holds.
func (im *impl) GetOwnedTokens(c ctx.Ctx, owner domain.Address) ([]domain.TokenId, error) {
	count, err := im.assets.TokenCount(c)
	if err != nil {
		c.WithField("err", err).Error("assets.TokenCount failed")
		return nil, err
	}

	owned := []domain.TokenId{}
	for i := int64(0); i < count; i++ {
		tokenId := domain.TokenIdFromInt(i)
		balance, err := im.assets.BalanceOf(c, owner, tokenId)
		if err != nil {
			c.WithFields(log.Fields{
				"err":     err,
				"tokenId": tokenId,
			}).Error("assets.BalanceOf failed")
			return nil, err
		}
		if balance > 0 {
			owned = append(owned, tokenId)
		}
	}
	return owned, nil
}

func (im *impl) getListing(c ctx.Ctx, id domain.ListingId) (*listing.Listing, error) {
	l, err := im.listingRepo.FindOne(c, id)
	if err == domain.ErrNotFound {
		return nil, domain.ErrInvalidListing
	} else if err != nil {
		c.WithFields(log.Fields{
			"err":       err,
			"listingId": id,
		}).Error("listingRepo.FindOne failed")
		return nil, err
	}
	return l, nil
}

func (im *impl) latestForToken(c ctx.Ctx, tokenId domain.TokenId) (*listing.Listing, error) {
	res, err := im.listingRepo.FindAll(c,
		listing.WithTokenId(tokenId),
		listing.WithSort("-listingId"),
		listing.WithPagination(0, 1),
	)
	if err != nil {
		c.WithField("err", err).Error("listingRepo.FindAll failed")
		return nil, err
	}
	if len(res) == 0 {
		return nil, nil
	}
	return res[0], nil
}
