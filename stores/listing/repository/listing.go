package repository

import (
	"go.mongodb.org/mongo-driver/bson"

	bCtx "github.com/metawood/goapi/base/ctx"
	"github.com/metawood/goapi/base/log"
	"github.com/metawood/goapi/domain"
	"github.com/metawood/goapi/domain/listing"
	"github.com/metawood/goapi/service/query"
)

type listingMongoRepo struct {
	q query.Mongo
}

func NewListingRepo(q query.Mongo) listing.Repo {
	return &listingMongoRepo{
		q: q,
	}
}

func (r *listingMongoRepo) makeQuery(options listing.FindAllOptions) bson.M {
	qry := bson.M{}
	if options.Seller != nil {
		qry["seller"] = *options.Seller
	}
	if options.TokenId != nil {
		qry["tokenId"] = *options.TokenId
	}
	if options.Status != nil {
		qry["status"] = *options.Status
	}
	return qry
}

func (r *listingMongoRepo) FindAll(ctx bCtx.Ctx, opts ...listing.FindAllOptionsFunc) ([]*listing.Listing, error) {
	options, err := listing.GetFindAllOptions(opts...)
	if err != nil {
		ctx.WithField("err", err).Error("listing.GetFindAllOptions failed")
		return nil, err
	}

	offset := 0
	limit := 0
	if options.Offset != nil {
		offset = int(*options.Offset)
	}
	if options.Limit != nil {
		limit = int(*options.Limit)
	}
	sort := "listingId"
	if options.SortBy != nil {
		sort = *options.SortBy
	}

	res := []*listing.Listing{}
	if err := r.q.Search(ctx, domain.TableListings, offset, limit, sort, r.makeQuery(options), &res); err != nil {
		ctx.WithField("err", err).Error("q.Search failed")
		return nil, err
	}
	return res, nil
}

func (r *listingMongoRepo) FindOne(ctx bCtx.Ctx, id domain.ListingId) (*listing.Listing, error) {
	res := &listing.Listing{}
	if err := r.q.FindOne(ctx, domain.TableListings, bson.M{"listingId": id}, res); err == query.ErrNotFound {
		return nil, domain.ErrNotFound
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err":       err,
			"listingId": id,
		}).Error("q.FindOne failed")
		return nil, err
	}
	return res, nil
}

func (r *listingMongoRepo) Count(ctx bCtx.Ctx, opts ...listing.FindAllOptionsFunc) (int, error) {
	options, err := listing.GetFindAllOptions(opts...)
	if err != nil {
		ctx.WithField("err", err).Error("listing.GetFindAllOptions failed")
		return 0, err
	}

	count, err := r.q.Count(ctx, domain.TableListings, r.makeQuery(options))
	if err != nil {
		ctx.WithField("err", err).Error("q.Count failed")
		return 0, err
	}
	return count, nil
}

func (r *listingMongoRepo) Create(ctx bCtx.Ctx, l *listing.Listing) error {
	l.Seller = l.Seller.ToLower()
	if err := r.q.Insert(ctx, domain.TableListings, l); err != nil {
		ctx.WithFields(log.Fields{
			"err":     err,
			"listing": l,
		}).Error("q.Insert failed")
		return err
	}
	return nil
}

func (r *listingMongoRepo) Patch(ctx bCtx.Ctx, id domain.ListingId, value listing.PatchableListing) error {
	if err := r.q.Patch(ctx, domain.TableListings, bson.M{"listingId": id}, value); err == query.ErrNotFound {
		return domain.ErrNotFound
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err":       err,
			"listingId": id,
		}).Error("q.Patch failed")
		return err
	}
	return nil
}
