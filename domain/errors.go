package domain

import "errors"

var (
	// ErrInternalServerError will throw if any the Internal Server Error happen
	ErrInternalServerError = errors.New("Internal Server Error")
	// ErrNotFound will throw if the requested item is not exists
	ErrNotFound = errors.New("Your requested Item is not found")
	// ErrBadParamInput will throw if the given request-body or params is not valid
	ErrBadParamInput       = errors.New("Given Param is not valid")
	ErrInvalidNumberFormat = errors.New("invalid number format")

	// validation errors: state unchanged, safe to retry with corrected input
	ErrInvalidPrice    = errors.New("price must be at least 1 wei")
	ErrInvalidDeadline = errors.New("deadline must be in the future")
	ErrBidTooLow       = errors.New("bid must exceed highest bid")

	// authorization errors: caller lacks the right relationship to the entity
	ErrNotOwner            = errors.New("token not owned")
	ErrNotCreator          = errors.New("caller is not the auction creator")
	ErrTokenNotOwned       = errors.New("token no longer owned by caller")
	ErrOperatorNotApproved = errors.New("marketplace operator not approved")

	// state-conflict errors: re-query before retrying
	ErrDuplicateOpenListing = errors.New("listing already exists for this token")
	ErrAlreadyClosed        = errors.New("listing already closed")
	ErrAlreadyFinalized     = errors.New("auction already settled or terminated")
	ErrAuctionExpired       = errors.New("auction deadline passed")
	ErrAuctionClosed        = errors.New("auction is not open")
	ErrNotForSale           = errors.New("listing is not purchasable")
	ErrSelfPurchase         = errors.New("cannot purchase own listing")

	ErrAssetNotFound   = errors.New("tokenId is not minted")
	ErrInvalidListing  = errors.New("invalid listing id")
	ErrAuctionNotFound = errors.New("invalid auction id")

	// funds error, surfaced distinctly so clients can prompt for top-up
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ledger errors surfaced by the custody/payment collaborators
	ErrLedgerPaused          = errors.New("ledger transfers are paused")
	ErrInsufficientBalance   = errors.New("insufficient ledger balance")
	ErrInsufficientAllowance = errors.New("insufficient allowance")

	// request error
	ErrInvalidAddress   = errors.New("Invalid address")
	ErrInvalidSignature = errors.New("Invalid signature")
	ErrInvalidToken     = errors.New("Invalid token")
)
