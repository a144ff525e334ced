package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/viper"

	"github.com/go-playground/validator/v10"
	"github.com/metawood/goapi/base/ctx"
	"github.com/metawood/goapi/base/database/mongoclient"
	"github.com/metawood/goapi/base/log"
	bValidator "github.com/metawood/goapi/base/validator"
	"github.com/metawood/goapi/domain"
	mmiddleware "github.com/metawood/goapi/middleware"
	"github.com/metawood/goapi/service/cache"
	"github.com/metawood/goapi/service/cache/provider/primitive"
	"github.com/metawood/goapi/service/chain"
	"github.com/metawood/goapi/service/chain/contract"
	"github.com/metawood/goapi/service/ledger"
	"github.com/metawood/goapi/service/query"
	auction_delivery "github.com/metawood/goapi/stores/auction/delivery/http"
	auction_repository "github.com/metawood/goapi/stores/auction/repository"
	auction_usecase "github.com/metawood/goapi/stores/auction/usecase"
	auth_delivery "github.com/metawood/goapi/stores/auth/delivery/http"
	auth_middleware "github.com/metawood/goapi/stores/auth/delivery/http/middleware"
	auth_usecase "github.com/metawood/goapi/stores/auth/usecase"
	hc_delivery "github.com/metawood/goapi/stores/healthcheck/delivery/http"
	hc_repo "github.com/metawood/goapi/stores/healthcheck/repository"
	hc_usecase "github.com/metawood/goapi/stores/healthcheck/usecase"
	listing_delivery "github.com/metawood/goapi/stores/listing/delivery/http"
	listing_repository "github.com/metawood/goapi/stores/listing/repository"
	listing_usecase "github.com/metawood/goapi/stores/listing/usecase"
)

func init() {
	viper.SetConfigType("yaml")
	viper.SetConfigFile(`infra/configs/config.yaml`)
	err := viper.ReadInConfig()
	if err != nil {
		panic(err)
	}

	if viper.GetBool(`debug`) {
		log.Log().Info("Service RUN on DEBUG mode")
	}
}

func main() {
	// init echo
	e := echo.New()
	e.Use(middleware.Recover())
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{}))
	e.Use(middleware.RequestID())
	middL := mmiddleware.InitMiddleware()
	e.Use(middL.ResponseLogger())
	e.Use(middL.AddContext())
	e.Use(middleware.CORS())
	e.Validator = bValidator.NewCustomValidator(validator.New())

	context := ctx.Background()

	// init mongo client
	context.Info("init mongo")
	uri := viper.GetString("mongo.uri")
	authDBName := viper.GetString("mongo.authDBName")
	dbName := viper.GetString("mongo.dbName")
	enableSSL := viper.GetBool("mongo.enableSSL")
	checkIndex := viper.GetBool("mongo.checkIndex")
	mongoClient := mongoclient.MustConnectMongoClient(uri, authDBName, dbName, enableSSL, true, 2)
	q := query.New(mongoClient, checkIndex)

	mmiddleware.SetupCache()

	// init chain service
	networks := viper.Sub("networks")
	keys := networks.AllSettings()
	rpcs := make(map[int32]string)
	archiveRpcs := make(map[int32]string)
	for k := range keys {
		chainId := networks.GetInt32(fmt.Sprintf("%s.chainId", k))
		rpcUrl := networks.GetString(fmt.Sprintf("%s.rpcUrl", k))
		rpcs[chainId] = rpcUrl
		archiveRpcUrl := networks.GetString(fmt.Sprintf("%s.archiveRpcUrl", k))
		archiveRpcs[chainId] = archiveRpcUrl
	}
	chainService, err := chain.NewClient(context, &chain.ClientCfg{
		RpcUrls:        rpcs,
		ArchiveRpcUrls: archiveRpcs,
		OperatorKey:    viper.GetString("chain.operatorKey"),
	})
	if err != nil {
		context.WithField("err", err).Warn("chainService started with error")
	}

	// init custody and payment ledgers
	escrowAddress := domain.Address(viper.GetString("escrow.address")).ToLower()
	var assets domain.AssetLedger
	var payments domain.PaymentLedger
	if viper.GetString("ledger.mode") == "chain" {
		ledgerChainId := viper.GetInt32("ledger.chainId")
		existsCache := cache.New(cache.ServiceConfig{
			Ttl:   24 * time.Hour,
			Pfx:   "custody",
			Cache: primitive.NewPrimitive("custodyExists", 4),
		})
		assets = contract.NewErc1155Custody(chainService, ledgerChainId, viper.GetString("ledger.custodyContract"),
			contract.WithExistsCache(existsCache))
		payments = contract.NewErc20Payment(chainService, ledgerChainId, viper.GetString("ledger.paymentContract"))
	} else {
		context.Info("running with in-memory ledgers")
		assets = ledger.NewAssetLedger(escrowAddress)
		payments = ledger.NewPaymentLedger(escrowAddress, ledger.WithAutoApprove())
	}

	nonceCache := cache.New(cache.ServiceConfig{
		Ttl:   10 * time.Minute,
		Pfx:   "auth",
		Cache: primitive.NewPrimitive("nonce", 4),
	})

	// construct repository, usecase and delivery
	hcRepo := hc_repo.New(mongoClient, q, assets)
	listingRepo := listing_repository.NewListingRepo(q)
	auctionRepo := auction_repository.NewAuctionRepo(q)

	hc := hc_usecase.New(hcRepo)
	listing := listing_usecase.New(&listing_usecase.ListingUseCaseCfg{
		ListingRepo:   listingRepo,
		AssetLedger:   assets,
		PaymentLedger: payments,
		EscrowAddress: escrowAddress,
	})
	auction := auction_usecase.New(&auction_usecase.AuctionUseCaseCfg{
		AuctionRepo:   auctionRepo,
		AssetLedger:   assets,
		PaymentLedger: payments,
		EscrowAddress: escrowAddress,
	})
	auth := auth_usecase.New(&auth_usecase.AuthUseCaseCfg{
		JwtSecret:          viper.GetString("auth.jwtSecret"),
		SigningMsgTemplate: viper.GetString("auth.signatureMsg"),
		NonceCache:         nonceCache,
	})

	auth_middleware := auth_middleware.New(auth)

	hc_delivery.New(e, hc)
	auth_delivery.New(e, auth, viper.GetString("auth.signatureMsg"))
	listing_delivery.New(e, listing, auth_middleware)
	auction_delivery.New(e, auction, auth_middleware)

	e.GET("/check", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"address": c.Get("address").(domain.Address),
		})
	}, auth_middleware.Auth())

	go func() {
		if err := e.Start(viper.GetString("server.address")); err != nil && err != http.ErrServerClosed {
			log.Log().WithField("err", err).Error("shutting down the server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 10 seconds.
	// Use a buffered channel to avoid missing signals as recommended for signal.Notify
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	sig := <-quit
	log.Log().WithField("signal", sig).Info("received signal")
	ctx, cancel := ctx.WithTimeout(context, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Log().WithField("err", err).Error("shutting down the server")
	} else {
		log.Log().Info("shutdown server successfully")
	}
}
