package usecase

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"

	"github.com/metawood/goapi/base/ctx"
	"github.com/metawood/goapi/base/ethereum"
	"github.com/metawood/goapi/domain"
	"github.com/metawood/goapi/domain/keys"
	"github.com/metawood/goapi/service/cache"
)

type AuthUseCaseCfg struct {
	JwtSecret          string
	SigningMsgTemplate string
	NonceCache         cache.Service
}

type impl struct {
	jwtSecret          []byte
	signingMsgTemplate string
	nonceCache         cache.Service
}

func New(cfg *AuthUseCaseCfg) domain.AuthUsecase {
	return &impl{
		jwtSecret:          []byte(cfg.JwtSecret),
		signingMsgTemplate: cfg.SigningMsgTemplate,
		nonceCache:         cfg.NonceCache,
	}
}

func (im *impl) GetNonce(c ctx.Ctx, address domain.Address) (string, error) {
	nonce := uuid.NewString()
	key := keys.CacheKey(keys.PfxNonce, address.ToLowerStr())
	if err := im.nonceCache.Set(c, key, nonce); err != nil {
		c.WithField("err", err).Error("nonceCache.Set failed")
		return "", err
	}
	return nonce, nil
}

func (im *impl) SignToken(c ctx.Ctx, address domain.Address, signature string) (string, error) {
	key := keys.CacheKey(keys.PfxNonce, address.ToLowerStr())

	var nonce string
	if err := im.nonceCache.Get(c, key, &nonce); err == cache.ErrNotFound {
		return "", domain.ErrInvalidSignature
	} else if err != nil {
		c.WithField("err", err).Error("nonceCache.Get failed")
		return "", err
	}

	msg := fmt.Sprintf(im.signingMsgTemplate, nonce)
	if valid, err := ethereum.ValidateMsgSignature([]byte(msg), signature, address.ToLowerStr()); err != nil {
		c.WithField("err", err).Error("ethereum.ValidateMsgSignature failed")
		return "", domain.ErrInvalidSignature
	} else if !valid {
		return "", domain.ErrInvalidSignature
	}

	// single use
	if err := im.nonceCache.Del(c, key); err != nil {
		c.WithField("err", err).Error("nonceCache.Del failed")
	}

	claims := domain.JwtCustomClaims{
		Address: address.ToLowerStr(),
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(24 * time.Hour).Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	if ss, err := token.SignedString(im.jwtSecret); err != nil {
		c.WithField("err", err).Error("token.SignedString failed")
		return "", err
	} else {
		return ss, nil
	}
}

func (im *impl) ParseToken(c ctx.Ctx, str string) (string, error) {
	token, err := jwt.ParseWithClaims(str, &domain.JwtCustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return im.jwtSecret, nil
	})

	// jwt returns a nil token for strings that don't even parse
	if err != nil || token == nil {
		return "", domain.ErrInvalidToken
	}

	if claims, ok := token.Claims.(*domain.JwtCustomClaims); ok && token.Valid {
		return claims.Address, nil
	}

	return "", domain.ErrInvalidToken
}
