package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/metawood/goapi/base/ctx"
	"github.com/metawood/goapi/base/delivery"
	"github.com/metawood/goapi/domain"
	"github.com/metawood/goapi/middleware"
)

type authHandler struct {
	auth               domain.AuthUsecase
	signingMsgTemplate string
}

func New(e *echo.Echo, auth domain.AuthUsecase, template string) {
	handler := &authHandler{
		auth:               auth,
		signingMsgTemplate: template,
	}
	g := e.Group("/auth")
	g.GET("/nonce/:address", handler.getNonce, middleware.IsValidAddress("address"))
	g.POST("/sign", handler.sign)
	g.GET("/signingMsgTemplate", handler.getSigningMsgTemplate, middleware.CacheHttp(10*time.Minute))
}

func (h *authHandler) getNonce(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	nonce, err := h.auth.GetNonce(ctx, domain.Address(c.Param("address")))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusCreated, nonce)
}

func (h *authHandler) sign(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		Address   domain.Address `json:"address"`
		Signature string         `json:"signature"`
	}

	p := &params{}

	if err := c.Bind(p); err != nil {
		ctx.WithField("err", err).Error("bind failed")
		return c.JSON(http.StatusUnprocessableEntity, err)
	}

	if tkn, err := h.auth.SignToken(ctx, p.Address, p.Signature); err != nil {
		ctx.WithField("err", err).Error("auth.SignToken failed")
		return delivery.MakeJsonResp(c, http.StatusUnauthorized, err)
	} else {
		return delivery.MakeJsonResp(c, http.StatusCreated, tkn)
	}
}

// getSigningMsgTemplate returns the template clients substitute the nonce
// into before personal-signing.
func (h *authHandler) getSigningMsgTemplate(c echo.Context) error {
	res := struct {
		Msg string `json:"template"`
	}{
		Msg: h.signingMsgTemplate,
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}
