package usecase

import (
	"sync"
	"time"

	"github.com/metawood/goapi/base/ctx"
	"github.com/metawood/goapi/base/log"
	"github.com/metawood/goapi/domain"
	"github.com/metawood/goapi/domain/auction"
)

type AuctionUseCaseCfg struct {
	AuctionRepo   auction.Repo
	AssetLedger   domain.AssetLedger
	PaymentLedger domain.PaymentLedger
	EscrowAddress domain.Address
}

type impl struct {
	// mu serializes mutating operations; bids, settlement and termination
	// never interleave so the escrow balance always equals the highest bid.
	mu sync.Mutex

	auctionRepo auction.Repo
	assets      domain.AssetLedger
	payments    domain.PaymentLedger
	escrow      domain.Address
}

func New(cfg *AuctionUseCaseCfg) auction.Usecase {
	return &impl{
		auctionRepo: cfg.AuctionRepo,
		assets:      cfg.AssetLedger,
		payments:    cfg.PaymentLedger,
		escrow:      cfg.EscrowAddress.ToLower(),
	}
}

func (im *impl) CreateAuction(c ctx.Ctx, creator domain.Address, tokenId domain.TokenId, reservePrice domain.Amount, deadline time.Time) (domain.AuctionId, error) {
	im.mu.Lock()
	defer im.mu.Unlock()

	creator = creator.ToLower()

	if exists, err := im.assets.Exists(c, tokenId); err != nil {
		c.WithField("err", err).Error("assets.Exists failed")
		return 0, err
	} else if !exists {
		return 0, domain.ErrAssetNotFound
	}

	if balance, err := im.assets.BalanceOf(c, creator, tokenId); err != nil {
		c.WithField("err", err).Error("assets.BalanceOf failed")
		return 0, err
	} else if balance < 1 {
		return 0, domain.ErrNotOwner
	}

	if !deadline.After(time.Now()) {
		return 0, domain.ErrInvalidDeadline
	}

	if _, err := reservePrice.Decimal(); err != nil {
		return 0, domain.ErrInvalidPrice
	}

	if approved, err := im.assets.IsApprovedForAll(c, creator, im.escrow); err != nil {
		c.WithField("err", err).Error("assets.IsApprovedForAll failed")
		return 0, err
	} else if !approved {
		return 0, domain.ErrOperatorNotApproved
	}

	// the token is escrowed for the full auction lifetime starting now
	if err := im.assets.Transfer(c, creator, im.escrow, tokenId, 1); err != nil {
		c.WithFields(log.Fields{
			"err":     err,
			"tokenId": tokenId,
		}).Error("asset escrow failed")
		return 0, err
	}

	count, err := im.auctionRepo.Count(c)
	if err != nil {
		c.WithField("err", err).Error("auctionRepo.Count failed")
		im.returnAsset(c, creator, tokenId)
		return 0, err
	}

	a := &auction.Auction{
		AuctionId:    domain.AuctionId(count),
		Creator:      creator,
		TokenId:      tokenId,
		ReservePrice: reservePrice,
		Deadline:     deadline,
		Status:       auction.StatusOpen,
		HighestBid:   domain.AmountZero,
	}
	if err := im.auctionRepo.Create(c, a); err != nil {
		c.WithFields(log.Fields{
			"err":     err,
			"auction": a,
		}).Error("auctionRepo.Create failed")
		im.returnAsset(c, creator, tokenId)
		return 0, err
	}
	return a.AuctionId, nil
}

func (im *impl) MakeBid(c ctx.Ctx, bidder domain.Address, id domain.AuctionId, amount domain.Amount) error {
	im.mu.Lock()
	defer im.mu.Unlock()

	bidder = bidder.ToLower()

	a, err := im.getAuction(c, id)
	if err != nil {
		return err
	}

	if !a.IsOpen() {
		return domain.ErrAuctionClosed
	}

	if !time.Now().Before(a.Deadline) {
		return domain.ErrAuctionExpired
	}

	bid, err := amount.Decimal()
	if err != nil {
		return err
	}
	highest, err := a.HighestBid.Decimal()
	if err != nil {
		return err
	}
	// strictly increasing, ties rejected
	if !bid.GreaterThan(highest) {
		return domain.ErrBidTooLow
	}

	if err := im.payments.TransferFrom(c, bidder, im.escrow, amount); err != nil {
		if err == domain.ErrInsufficientBalance || err == domain.ErrInsufficientAllowance {
			return domain.ErrInsufficientFunds
		}
		c.WithField("err", err).Error("payments.TransferFrom failed")
		return err
	}

	if err := im.auctionRepo.Patch(c, id, auction.PatchableAuction{
		HighestBid:    &amount,
		HighestBidder: &bidder,
	}); err != nil {
		c.WithFields(log.Fields{
			"err":       err,
			"auctionId": id,
		}).Error("auctionRepo.Patch failed, refunding bid")
		if cerr := im.payments.Credit(c, bidder, amount); cerr != nil {
			c.WithField("err", cerr).Error("bid refund failed")
		}
		return err
	}

	// the previous bidder is made whole in the same operation, so escrowed
	// funds equal the highest bid exactly
	if a.HasBid() {
		if err := im.payments.Credit(c, a.HighestBidder, a.HighestBid); err != nil {
			c.WithFields(log.Fields{
				"err":       err,
				"auctionId": id,
				"bidder":    a.HighestBidder,
			}).Error("previous bidder refund failed")
			return err
		}
	}
	return nil
}

// SettleAuction is callable by any party while the auction is open, before or
// after the deadline.
func (im *impl) SettleAuction(c ctx.Ctx, id domain.AuctionId) error {
	im.mu.Lock()
	defer im.mu.Unlock()

	a, err := im.getAuction(c, id)
	if err != nil {
		return err
	}

	if !a.IsOpen() {
		return domain.ErrAlreadyFinalized
	}

	if a.HasBid() {
		if err := im.assets.Transfer(c, im.escrow, a.HighestBidder, a.TokenId, 1); err != nil {
			c.WithFields(log.Fields{
				"err":       err,
				"auctionId": id,
			}).Error("asset release to bidder failed")
			return err
		}
		if err := im.payments.Credit(c, a.Creator, a.HighestBid); err != nil {
			c.WithFields(log.Fields{
				"err":       err,
				"auctionId": id,
			}).Error("creator payout failed, rolling back asset release")
			im.reclaimAsset(c, a.HighestBidder, a.TokenId)
			return err
		}
	} else {
		if err := im.assets.Transfer(c, im.escrow, a.Creator, a.TokenId, 1); err != nil {
			c.WithFields(log.Fields{
				"err":       err,
				"auctionId": id,
			}).Error("asset return to creator failed")
			return err
		}
	}

	status := auction.StatusSettled
	if err := im.auctionRepo.Patch(c, id, auction.PatchableAuction{Status: &status}); err != nil {
		c.WithFields(log.Fields{
			"err":       err,
			"auctionId": id,
		}).Error("auctionRepo.Patch failed")
		return err
	}
	return nil
}

func (im *impl) TerminateAuction(c ctx.Ctx, caller domain.Address, id domain.AuctionId) error {
	im.mu.Lock()
	defer im.mu.Unlock()

	a, err := im.getAuction(c, id)
	if err != nil {
		return err
	}

	if !a.Creator.Equals(caller) {
		return domain.ErrNotCreator
	}

	if !a.IsOpen() {
		return domain.ErrAlreadyFinalized
	}

	if err := im.assets.Transfer(c, im.escrow, a.Creator, a.TokenId, 1); err != nil {
		c.WithFields(log.Fields{
			"err":       err,
			"auctionId": id,
		}).Error("asset return to creator failed")
		return err
	}

	if a.HasBid() {
		if err := im.payments.Credit(c, a.HighestBidder, a.HighestBid); err != nil {
			c.WithFields(log.Fields{
				"err":       err,
				"auctionId": id,
				"bidder":    a.HighestBidder,
			}).Error("bidder refund failed, rolling back asset return")
			im.reclaimAsset(c, a.Creator, a.TokenId)
			return err
		}
	}

	status := auction.StatusTerminated
	if err := im.auctionRepo.Patch(c, id, auction.PatchableAuction{Status: &status}); err != nil {
		c.WithFields(log.Fields{
			"err":       err,
			"auctionId": id,
		}).Error("auctionRepo.Patch failed")
		return err
	}
	return nil
}

func (im *impl) GetAuctionById(c ctx.Ctx, id domain.AuctionId) (*auction.Auction, error) {
	return im.getAuction(c, id)
}

func (im *impl) GetAllAuctions(c ctx.Ctx) ([]*auction.Auction, error) {
	res, err := im.auctionRepo.FindAll(c)
	if err != nil {
		c.WithField("err", err).Error("auctionRepo.FindAll failed")
		return nil, err
	}
	return res, nil
}

// GetAllActiveAuctions returns every open auction, expired ones included.
// An expired auction is still settleable, so it stays visible until
// settled or terminated.
func (im *impl) GetAllActiveAuctions(c ctx.Ctx) ([]*auction.Auction, error) {
	res, err := im.auctionRepo.FindAll(c, auction.WithStatus(auction.StatusOpen))
	if err != nil {
		c.WithField("err", err).Error("auctionRepo.FindAll failed")
		return nil, err
	}
	return res, nil
}

func (im *impl) getAuction(c ctx.Ctx, id domain.AuctionId) (*auction.Auction, error) {
	a, err := im.auctionRepo.FindOne(c, id)
	if err == domain.ErrNotFound {
		return nil, domain.ErrAuctionNotFound
	} else if err != nil {
		c.WithFields(log.Fields{
			"err":       err,
			"auctionId": id,
		}).Error("auctionRepo.FindOne failed")
		return nil, err
	}
	return a, nil
}

func (im *impl) returnAsset(c ctx.Ctx, to domain.Address, tokenId domain.TokenId) {
	if err := im.assets.Transfer(c, im.escrow, to, tokenId, 1); err != nil {
		c.WithFields(log.Fields{
			"err":     err,
			"tokenId": tokenId,
		}).Error("asset escrow rollback failed")
	}
}

func (im *impl) reclaimAsset(c ctx.Ctx, from domain.Address, tokenId domain.TokenId) {
	if err := im.assets.Transfer(c, from, im.escrow, tokenId, 1); err != nil {
		c.WithFields(log.Fields{
			"err":     err,
			"tokenId": tokenId,
		}).Error("asset reclaim failed")
	}
}
