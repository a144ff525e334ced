package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/metawood/goapi/base/ctx"
	"github.com/metawood/goapi/base/delivery"
	"github.com/metawood/goapi/domain"
	"github.com/metawood/goapi/domain/auction"
	authMiddleware "github.com/metawood/goapi/stores/auth/delivery/http/middleware"
)

type handler struct {
	auction auction.Usecase
}

func New(e *echo.Echo, au auction.Usecase, authMiddleware *authMiddleware.AuthMiddleware) {
	h := &handler{au}

	g := e.Group("/auctions")

	g.GET("", h.getAllAuctions)
	g.GET("/active", h.getAllActiveAuctions)
	g.GET("/:auctionId", h.getAuctionById)

	g.POST("", h.createAuction, authMiddleware.Auth())
	g.POST("/:auctionId/bids", h.makeBid, authMiddleware.Auth())
	g.POST("/:auctionId/settle", h.settleAuction, authMiddleware.Auth())
	g.POST("/:auctionId/terminate", h.terminateAuction, authMiddleware.Auth())
}

func (h *handler) createAuction(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	creator := c.Get("address").(domain.Address)

	type payload struct {
		TokenId      domain.TokenId `json:"tokenId"`
		ReservePrice domain.Amount  `json:"reservePrice"`
		Deadline     int64          `json:"deadline"`
	}

	p := payload{}
	if err := c.Bind(&p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}

	id, err := h.auction.CreateAuction(ctx, creator, p.TokenId, p.ReservePrice, time.Unix(p.Deadline, 0))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusCreated, id)
}

func (h *handler) makeBid(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	bidder := c.Get("address").(domain.Address)

	id, err := parseAuctionId(c)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}

	type payload struct {
		Amount domain.Amount `json:"amount"`
	}

	p := payload{}
	if err := c.Bind(&p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}

	if err := h.auction.MakeBid(ctx, bidder, id, p.Amount); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, "ok")
}

func (h *handler) settleAuction(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	id, err := parseAuctionId(c)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}

	if err := h.auction.SettleAuction(ctx, id); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, "ok")
}

func (h *handler) terminateAuction(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)

	id, err := parseAuctionId(c)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}

	if err := h.auction.TerminateAuction(ctx, caller, id); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, "ok")
}

func (h *handler) getAuctionById(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	id, err := parseAuctionId(c)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}

	res, err := h.auction.GetAuctionById(ctx, id)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

func (h *handler) getAllAuctions(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	res, err := h.auction.GetAllAuctions(ctx)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

func (h *handler) getAllActiveAuctions(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	res, err := h.auction.GetAllActiveAuctions(ctx)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

func parseAuctionId(c echo.Context) (domain.AuctionId, error) {
	id, err := strconv.ParseInt(c.Param("auctionId"), 10, 64)
	if err != nil {
		return 0, err
	}
	return domain.AuctionId(id), nil
}
