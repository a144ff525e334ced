package repository

import (
	"sort"
	"sync"

	bCtx "github.com/metawood/goapi/base/ctx"
	"github.com/metawood/goapi/domain"
	"github.com/metawood/goapi/domain/auction"
)

// auctionMemoryRepo keeps the auctions in an append-only in-memory arena
// indexed by auctionId. It backs mongo-less deployments and tests.
type auctionMemoryRepo struct {
	mu       sync.RWMutex
	auctions []*auction.Auction
}

func NewAuctionMemoryRepo() auction.Repo {
	return &auctionMemoryRepo{}
}

func (r *auctionMemoryRepo) match(a *auction.Auction, options auction.FindAllOptions) bool {
	if options.Creator != nil && !a.Creator.Equals(*options.Creator) {
		return false
	}
	if options.TokenId != nil && a.TokenId != *options.TokenId {
		return false
	}
	if options.Status != nil && a.Status != *options.Status {
		return false
	}
	return true
}

func (r *auctionMemoryRepo) findAll(options auction.FindAllOptions) []*auction.Auction {
	res := []*auction.Auction{}
	for _, a := range r.auctions {
		if r.match(a, options) {
			clone := *a
			res = append(res, &clone)
		}
	}

	if options.SortBy != nil && *options.SortBy == "-auctionId" {
		sort.Slice(res, func(i, j int) bool { return res[i].AuctionId > res[j].AuctionId })
	}

	if options.Offset != nil {
		if off := int(*options.Offset); off < len(res) {
			res = res[off:]
		} else {
			res = []*auction.Auction{}
		}
	}
	if options.Limit != nil {
		if lim := int(*options.Limit); lim > 0 && lim < len(res) {
			res = res[:lim]
		}
	}
	return res
}

func (r *auctionMemoryRepo) FindAll(ctx bCtx.Ctx, opts ...auction.FindAllOptionsFunc) ([]*auction.Auction, error) {
	options, err := auction.GetFindAllOptions(opts...)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.findAll(options), nil
}

func (r *auctionMemoryRepo) FindOne(ctx bCtx.Ctx, id domain.AuctionId) (*auction.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if id < 0 || int(id) >= len(r.auctions) {
		return nil, domain.ErrNotFound
	}
	clone := *r.auctions[id]
	return &clone, nil
}

func (r *auctionMemoryRepo) Count(ctx bCtx.Ctx, opts ...auction.FindAllOptionsFunc) (int, error) {
	options, err := auction.GetFindAllOptions(opts...)
	if err != nil {
		return 0, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if options == (auction.FindAllOptions{}) {
		return len(r.auctions), nil
	}
	return len(r.findAll(options)), nil
}

func (r *auctionMemoryRepo) Create(ctx bCtx.Ctx, a *auction.Auction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if int(a.AuctionId) != len(r.auctions) {
		return domain.ErrBadParamInput
	}
	clone := *a
	clone.Creator = clone.Creator.ToLower()
	r.auctions = append(r.auctions, &clone)
	return nil
}

func (r *auctionMemoryRepo) Patch(ctx bCtx.Ctx, id domain.AuctionId, value auction.PatchableAuction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id < 0 || int(id) >= len(r.auctions) {
		return domain.ErrNotFound
	}
	if value.Status != nil {
		r.auctions[id].Status = *value.Status
	}
	if value.HighestBid != nil {
		r.auctions[id].HighestBid = *value.HighestBid
	}
	if value.HighestBidder != nil {
		r.auctions[id].HighestBidder = *value.HighestBidder
	}
	return nil
}
