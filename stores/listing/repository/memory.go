package repository

import (
	"sort"
	"sync"

	bCtx "github.com/metawood/goapi/base/ctx"
	"github.com/metawood/goapi/domain"
	"github.com/metawood/goapi/domain/listing"
)

// listingMemoryRepo keeps the listings in an append-only in-memory arena
// indexed by listingId. It backs mongo-less deployments and tests.
type listingMemoryRepo struct {
	mu       sync.RWMutex
	listings []*listing.Listing
}

func NewListingMemoryRepo() listing.Repo {
	return &listingMemoryRepo{}
}

func (r *listingMemoryRepo) match(l *listing.Listing, options listing.FindAllOptions) bool {
	if options.Seller != nil && !l.Seller.Equals(*options.Seller) {
		return false
	}
	if options.TokenId != nil && l.TokenId != *options.TokenId {
		return false
	}
	if options.Status != nil && l.Status != *options.Status {
		return false
	}
	return true
}

func (r *listingMemoryRepo) findAll(options listing.FindAllOptions) []*listing.Listing {
	res := []*listing.Listing{}
	for _, l := range r.listings {
		if r.match(l, options) {
			clone := *l
			res = append(res, &clone)
		}
	}

	if options.SortBy != nil && *options.SortBy == "-listingId" {
		sort.Slice(res, func(i, j int) bool { return res[i].ListingId > res[j].ListingId })
	}

	if options.Offset != nil {
		if off := int(*options.Offset); off < len(res) {
			res = res[off:]
		} else {
			res = []*listing.Listing{}
		}
	}
	if options.Limit != nil {
		if lim := int(*options.Limit); lim > 0 && lim < len(res) {
			res = res[:lim]
		}
	}
	return res
}

func (r *listingMemoryRepo) FindAll(ctx bCtx.Ctx, opts ...listing.FindAllOptionsFunc) ([]*listing.Listing, error) {
	options, err := listing.GetFindAllOptions(opts...)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.findAll(options), nil
}

func (r *listingMemoryRepo) FindOne(ctx bCtx.Ctx, id domain.ListingId) (*listing.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if id < 0 || int(id) >= len(r.listings) {
		return nil, domain.ErrNotFound
	}
	clone := *r.listings[id]
	return &clone, nil
}

func (r *listingMemoryRepo) Count(ctx bCtx.Ctx, opts ...listing.FindAllOptionsFunc) (int, error) {
	options, err := listing.GetFindAllOptions(opts...)
	if err != nil {
		return 0, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if options == (listing.FindAllOptions{}) {
		return len(r.listings), nil
	}
	return len(r.findAll(options)), nil
}

func (r *listingMemoryRepo) Create(ctx bCtx.Ctx, l *listing.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if int(l.ListingId) != len(r.listings) {
		return domain.ErrBadParamInput
	}
	clone := *l
	clone.Seller = clone.Seller.ToLower()
	r.listings = append(r.listings, &clone)
	return nil
}

func (r *listingMemoryRepo) Patch(ctx bCtx.Ctx, id domain.ListingId, value listing.PatchableListing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id < 0 || int(id) >= len(r.listings) {
		return domain.ErrNotFound
	}
	if value.Price != nil {
		r.listings[id].Price = *value.Price
	}
	if value.Status != nil {
		r.listings[id].Status = *value.Status
	}
	return nil
}
