package repository

import (
	"go.mongodb.org/mongo-driver/bson"

	bCtx "github.com/metawood/goapi/base/ctx"
	"github.com/metawood/goapi/base/log"
	"github.com/metawood/goapi/domain"
	"github.com/metawood/goapi/domain/auction"
	"github.com/metawood/goapi/service/query"
)

type auctionMongoRepo struct {
	q query.Mongo
}

func NewAuctionRepo(q query.Mongo) auction.Repo {
	return &auctionMongoRepo{
		q: q,
	}
}

func (r *auctionMongoRepo) makeQuery(options auction.FindAllOptions) bson.M {
	qry := bson.M{}
	if options.Creator != nil {
		qry["creator"] = *options.Creator
	}
	if options.TokenId != nil {
		qry["tokenId"] = *options.TokenId
	}
	if options.Status != nil {
		qry["status"] = *options.Status
	}
	return qry
}

func (r *auctionMongoRepo) FindAll(ctx bCtx.Ctx, opts ...auction.FindAllOptionsFunc) ([]*auction.Auction, error) {
	options, err := auction.GetFindAllOptions(opts...)
	if err != nil {
		ctx.WithField("err", err).Error("auction.GetFindAllOptions failed")
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
	sort := "auctionId"
	if options.SortBy != nil {
		sort = *options.SortBy
	}

	res := []*auction.Auction{}
	if err := r.q.Search(ctx, domain.TableAuctions, offset, limit, sort, r.makeQuery(options), &res); err != nil {
		ctx.WithField("err", err).Error("q.Search failed")
		return nil, err
	}
	return res, nil
}

func (r *auctionMongoRepo) FindOne(ctx bCtx.Ctx, id domain.AuctionId) (*auction.Auction, error) {
	res := &auction.Auction{}
	if err := r.q.FindOne(ctx, domain.TableAuctions, bson.M{"auctionId": id}, res); err == query.ErrNotFound {
		return nil, domain.ErrNotFound
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err":       err,
			"auctionId": id,
		}).Error("q.FindOne failed")
		return nil, err
	}
	return res, nil
}

func (r *auctionMongoRepo) Count(ctx bCtx.Ctx, opts ...auction.FindAllOptionsFunc) (int, error) {
	options, err := auction.GetFindAllOptions(opts...)
	if err != nil {
		ctx.WithField("err", err).Error("auction.GetFindAllOptions failed")
		return 0, err
	}

	count, err := r.q.Count(ctx, domain.TableAuctions, r.makeQuery(options))
	if err != nil {
		ctx.WithField("err", err).Error("q.Count failed")
		return 0, err
	}
	return count, nil
}

func (r *auctionMongoRepo) Create(ctx bCtx.Ctx, a *auction.Auction) error {
	a.Creator = a.Creator.ToLower()
	if err := r.q.Insert(ctx, domain.TableAuctions, a); err != nil {
		ctx.WithFields(log.Fields{
			"err":     err,
			"auction": a,
		}).Error("q.Insert failed")
		return err
	}
	return nil
}

func (r *auctionMongoRepo) Patch(ctx bCtx.Ctx, id domain.AuctionId, value auction.PatchableAuction) error {
	if err := r.q.Patch(ctx, domain.TableAuctions, bson.M{"auctionId": id}, value); err == query.ErrNotFound {
		return domain.ErrNotFound
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err":       err,
			"auctionId": id,
		}).Error("q.Patch failed")
		return err
	}
	return nil
}
