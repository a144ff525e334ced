package auction

import (
	"time"

	"github.com/metawood/goapi/base/ctx"
	"github.com/metawood/goapi/domain"
)

type Status string

const (
	StatusOpen       = Status("open")
	StatusSettled    = Status("settled")
	StatusTerminated = Status("terminated")
)

// Auction is a time-bounded competitive-bidding offer over one escrowed
// token. The token sits in registry custody for the whole open duration and
// the escrowed funds equal exactly HighestBid at every instant.
type Auction struct {
	AuctionId    domain.AuctionId `json:"auctionId" bson:"auctionId"`
	Creator      domain.Address   `json:"creator" bson:"creator"`
	TokenId      domain.TokenId   `json:"tokenId" bson:"tokenId"`
	ReservePrice domain.Amount    `json:"reservePrice" bson:"reservePrice"`
	Deadline     time.Time        `json:"deadline" bson:"deadline"`
	Status       Status           `json:"status" bson:"status"`

	HighestBid    domain.Amount  `json:"highestBid" bson:"highestBid"`
	HighestBidder domain.Address `json:"highestBidder" bson:"highestBidder"`
}

func (a *Auction) IsOpen() bool {
	return a.Status == StatusOpen
}

func (a *Auction) HasBid() bool {
	return !a.HighestBidder.IsEmpty()
}

type PatchableAuction struct {
	Status        *Status         `bson:"status,omitempty"`
	HighestBid    *domain.Amount  `bson:"highestBid,omitempty"`
	HighestBidder *domain.Address `bson:"highestBidder,omitempty"`
}

type FindAllOptions struct {
	Creator *domain.Address
	TokenId *domain.TokenId
	Status  *Status
	SortBy  *string
	Offset  *int32
	Limit   *int32
}

type FindAllOptionsFunc func(*FindAllOptions) error

func GetFindAllOptions(opts ...FindAllOptionsFunc) (FindAllOptions, error) {
	res := FindAllOptions{}
	for _, opt := range opts {
		if err := opt(&res); err != nil {
			return res, err
		}
	}
	return res, nil
}

func WithCreator(creator domain.Address) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		creator = creator.ToLower()
		options.Creator = &creator
		return nil
	}
}

func WithTokenId(tokenId domain.TokenId) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.TokenId = &tokenId
		return nil
	}
}

func WithStatus(status Status) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.Status = &status
		return nil
	}
}

func WithSort(sortBy string) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.SortBy = &sortBy
		return nil
	}
}

func WithPagination(offset int32, limit int32) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.Offset = &offset
		options.Limit = &limit
		return nil
	}
}

type Repo interface {
	FindAll(c ctx.Ctx, opts ...FindAllOptionsFunc) ([]*Auction, error)
	FindOne(c ctx.Ctx, id domain.AuctionId) (*Auction, error)
	Count(c ctx.Ctx, opts ...FindAllOptionsFunc) (int, error)
	Create(c ctx.Ctx, a *Auction) error
	Patch(c ctx.Ctx, id domain.AuctionId, value PatchableAuction) error
}

type Usecase interface {
	CreateAuction(c ctx.Ctx, creator domain.Address, tokenId domain.TokenId, reservePrice domain.Amount, deadline time.Time) (domain.AuctionId, error)
	MakeBid(c ctx.Ctx, bidder domain.Address, id domain.AuctionId, amount domain.Amount) error
	SettleAuction(c ctx.Ctx, id domain.AuctionId) error
	TerminateAuction(c ctx.Ctx, caller domain.Address, id domain.AuctionId) error

	GetAuctionById(c ctx.Ctx, id domain.AuctionId) (*Auction, error)
	GetAllAuctions(c ctx.Ctx) ([]*Auction, error)
	GetAllActiveAuctions(c ctx.Ctx) ([]*Auction, error)
}
