package repository

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/metawood/goapi/base/ctx"
	"github.com/metawood/goapi/base/database/mongoclient"
	"github.com/metawood/goapi/domain"
	hcdomain "github.com/metawood/goapi/domain/healthcheck"
	"github.com/metawood/goapi/service/query"
)

type impl struct {
	mgoClient *mongoclient.Client
	q         query.Mongo
	assets    domain.AssetLedger
}

// New creates new healthCheckUsecase object representation of HealthCheckUsecase interface
func New(
	mgoClient *mongoclient.Client,
	q query.Mongo,
	assets domain.AssetLedger,
) hcdomain.HealthCheckRepo {
	return &impl{
		mgoClient: mgoClient,
		q:         q,
		assets:    assets,
	}
}

func (im *impl) PingDB(context ctx.Ctx) error {
	ctx, cancel := ctx.WithTimeout(context, 2*time.Second)
	defer cancel()
	if err := im.mgoClient.Ping(ctx, readpref.Primary()); err != nil {
		context.WithField("err", err).Error("ping mongo error")
		return err
	}

	// ping alone does not prove reads work, run a cheap count too
	if _, err := im.q.EstimateCount(ctx, domain.TableListings, bson.M{}); err != nil {
		context.WithField("err", err).Error("listings probe failed")
		return err
	}

	// a paused custody ledger means no trade can settle
	if paused, err := im.assets.Paused(ctx); err != nil {
		context.WithField("err", err).Error("custody ledger probe failed")
		return err
	} else if paused {
		return domain.ErrLedgerPaused
	}
	return nil
}
