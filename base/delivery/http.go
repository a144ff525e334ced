package delivery

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/metawood/goapi/domain"
	"github.com/metawood/goapi/service/query"
)

type JsonResponseStatus string

const (
	JsonResponseStatusSuccess JsonResponseStatus = "success"
	JsonResponseStatusFail    JsonResponseStatus = "fail"
)

type JsonResponse struct {
	Data   interface{}        `json:"data"`
	Status JsonResponseStatus `json:"status"`
}

func MakeJsonResp(c echo.Context, status int, data interface{}) error {
	if err, ok := data.(error); ok {
		status = statusForErr(err, status)
		data = err.Error()
	}

	if status >= 400 {
		return c.JSON(status, JsonResponse{data, JsonResponseStatusFail})
	}

	if status >= 200 && status < 300 {
		return c.JSON(status, JsonResponse{data, JsonResponseStatusSuccess})
	}

	return c.JSON(status, data)
}

// statusForErr maps known engine errors onto http statuses; anything
// unrecognized keeps the status the handler chose.
func statusForErr(err error, fallback int) int {
	switch {
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, query.ErrNotFound),
		errors.Is(err, domain.ErrInvalidListing),
		errors.Is(err, domain.ErrAuctionNotFound),
		errors.Is(err, domain.ErrAssetNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNotOwner),
		errors.Is(err, domain.ErrNotCreator):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrInsufficientFunds),
		errors.Is(err, domain.ErrInsufficientBalance),
		errors.Is(err, domain.ErrInsufficientAllowance):
		return http.StatusPaymentRequired
	case errors.Is(err, domain.ErrBadParamInput),
		errors.Is(err, domain.ErrInvalidNumberFormat),
		errors.Is(err, domain.ErrInvalidAddress),
		errors.Is(err, domain.ErrInvalidPrice),
		errors.Is(err, domain.ErrInvalidDeadline),
		errors.Is(err, domain.ErrBidTooLow),
		errors.Is(err, domain.ErrSelfPurchase),
		errors.Is(err, domain.ErrTokenNotOwned),
		errors.Is(err, domain.ErrOperatorNotApproved),
		errors.Is(err, domain.ErrDuplicateOpenListing),
		errors.Is(err, domain.ErrAlreadyClosed),
		errors.Is(err, domain.ErrAlreadyFinalized),
		errors.Is(err, domain.ErrAuctionExpired),
		errors.Is(err, domain.ErrAuctionClosed),
		errors.Is(err, domain.ErrNotForSale),
		errors.Is(err, domain.ErrLedgerPaused):
		return http.StatusBadRequest
	}
	return fallback
}
