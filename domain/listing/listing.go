package listing

import (
	"github.com/metawood/goapi/base/ctx"
	"github.com/metawood/goapi/domain"
)

type Status string

const (
	StatusOpen   = Status("open")
	StatusClosed = Status("closed")
)

// Listing is an open offer to sell one unit of a token at a fixed price.
// Listings are append-only: closing is terminal and history stays queryable.
type Listing struct {
	ListingId domain.ListingId `json:"listingId" bson:"listingId"`
	Seller    domain.Address   `json:"seller" bson:"seller"`
	TokenId   domain.TokenId   `json:"tokenId" bson:"tokenId"`
	Price     domain.Amount    `json:"price" bson:"price"`
	Status    Status           `json:"status" bson:"status"`
}

func (l *Listing) IsOpen() bool {
	return l.Status == StatusOpen
}

type PatchableListing struct {
	Price  *domain.Amount `bson:"price,omitempty"`
	Status *Status        `bson:"status,omitempty"`
}

type FindAllOptions struct {
	Seller  *domain.Address
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

func WithSeller(seller domain.Address) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		seller = seller.ToLower()
		options.Seller = &seller
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

// WithSort takes a sort field in mongo syntax, ex. "listingId" ascending or
// "-listingId" descending.
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
	FindAll(c ctx.Ctx, opts ...FindAllOptionsFunc) ([]*Listing, error)
	FindOne(c ctx.Ctx, id domain.ListingId) (*Listing, error)
	Count(c ctx.Ctx, opts ...FindAllOptionsFunc) (int, error)
	Create(c ctx.Ctx, l *Listing) error
	Patch(c ctx.Ctx, id domain.ListingId, value PatchableListing) error
}

type Usecase interface {
	CreateListing(c ctx.Ctx, seller domain.Address, tokenId domain.TokenId, price domain.Amount) (domain.ListingId, error)
	ChangeListingPrice(c ctx.Ctx, caller domain.Address, id domain.ListingId, newPrice domain.Amount) error
	CloseListing(c ctx.Ctx, caller domain.Address, id domain.ListingId) error
	PurchaseNFT(c ctx.Ctx, buyer domain.Address, id domain.ListingId, payment domain.Amount) error

	GetListing(c ctx.Ctx, id domain.ListingId) (*Listing, error)
	GetListingCount(c ctx.Ctx) (int, error)
	GetLatestListingForToken(c ctx.Ctx, tokenId domain.TokenId) (*Listing, error)
	GetLatestListings(c ctx.Ctx, limit int32) ([]*Listing, error)
	GetOpenListings(c ctx.Ctx, seller domain.Address) ([]*Listing, error)
	GetAllOpenListings(c ctx.Ctx) ([]*Listing, error)
	GetOwnedTokens(c ctx.Ctx, owner domain.Address) ([]domain.TokenId, error)
}
