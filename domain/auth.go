package domain

import (
	"github.com/golang-jwt/jwt"
	"github.com/metawood/goapi/base/ctx"
)

type JwtCustomClaims struct {
	Address string `json:"data"` // name data for backward compatibility
	jwt.StandardClaims
}

type AuthUsecase interface {
	// GetNonce issues a fresh sign-in nonce for address.
	GetNonce(c ctx.Ctx, address Address) (string, error)
	// SignToken verifies the personal-sign signature over the signing message
	// built from the nonce and mints an access token for address.
	SignToken(c ctx.Ctx, address Address, signature string) (string, error)
	ParseToken(c ctx.Ctx, token string) (address string, err error)
}
