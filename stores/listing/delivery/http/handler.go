package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/metawood/goapi/base/ctx"
	"github.com/metawood/goapi/base/delivery"
	"github.com/metawood/goapi/domain"
	"github.com/metawood/goapi/domain/listing"
	"github.com/metawood/goapi/middleware"
	authMiddleware "github.com/metawood/goapi/stores/auth/delivery/http/middleware"
)

type handler struct {
	listing listing.Usecase
}

func New(e *echo.Echo, lu listing.Usecase, authMiddleware *authMiddleware.AuthMiddleware) {
	h := &handler{lu}

	g := e.Group("/listings")

	g.GET("", h.getLatestListings)
	g.GET("/open", h.getAllOpenListings)
	g.GET("/count", h.getListingCount)
	g.GET("/:listingId", h.getListing)
	g.GET("/token/:tokenId/latest", h.getLatestListingForToken)
	g.GET("/seller/:seller", h.getOpenListings, middleware.IsValidAddress("seller"))

	g.POST("", h.createListing, authMiddleware.Auth())
	g.PATCH("/:listingId/price", h.changeListingPrice, authMiddleware.Auth())
	g.POST("/:listingId/close", h.closeListing, authMiddleware.Auth())
	g.POST("/:listingId/purchase", h.purchaseNFT, authMiddleware.Auth())

	e.GET("/account/:account/tokens", h.getOwnedTokens, middleware.IsValidAddress("account"))
}

func (h *handler) createListing(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	seller := c.Get("address").(domain.Address)

	type payload struct {
		TokenId domain.TokenId `json:"tokenId"`
		Price   domain.Amount  `json:"price"`
	}

	p := payload{}
	if err := c.Bind(&p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}

	id, err := h.listing.CreateListing(ctx, seller, p.TokenId, p.Price)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusCreated, id)
}

func (h *handler) changeListingPrice(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)

	id, err := parseListingId(c)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}

	type payload struct {
		Price domain.Amount `json:"price"`
	}

	p := payload{}
	if err := c.Bind(&p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}

	if err := h.listing.ChangeListingPrice(ctx, caller, id, p.Price); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, "ok")
}

func (h *handler) closeListing(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)

	id, err := parseListingId(c)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}

	if err := h.listing.CloseListing(ctx, caller, id); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, "ok")
}

func (h *handler) purchaseNFT(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	buyer := c.Get("address").(domain.Address)

	id, err := parseListingId(c)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}

	type payload struct {
		Payment domain.Amount `json:"payment"`
	}

	p := payload{}
	if err := c.Bind(&p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}

	if err := h.listing.PurchaseNFT(ctx, buyer, id, p.Payment); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, "ok")
}

func (h *handler) getListing(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	id, err := parseListingId(c)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}

	res, err := h.listing.GetListing(ctx, id)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

func (h *handler) getListingCount(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	count, err := h.listing.GetListingCount(ctx)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, count)
}

func (h *handler) getLatestListingForToken(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	res, err := h.listing.GetLatestListingForToken(ctx, domain.TokenId(c.Param("tokenId")))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

func (h *handler) getLatestListings(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		Limit int32 `query:"limit"`
	}

	p := params{Limit: 32}
	if err := c.Bind(&p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}

	res, err := h.listing.GetLatestListings(ctx, p.Limit)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

func (h *handler) getOpenListings(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	res, err := h.listing.GetOpenListings(ctx, domain.Address(c.Param("seller")))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

func (h *handler) getAllOpenListings(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	res, err := h.listing.GetAllOpenListings(ctx)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

func (h *handler) getOwnedTokens(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	res, err := h.listing.GetOwnedTokens(ctx, domain.Address(c.Param("account")))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

func parseListingId(c echo.Context) (domain.ListingId, error) {
	id, err := strconv.ParseInt(c.Param("listingId"), 10, 64)
	if err != nil {
		return 0, err
	}
	return domain.ListingId(id), nil
}
