package usecase

import (
	"fmt"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/metawood/goapi/base/ctx"
	"github.com/metawood/goapi/base/ethereum"
	"github.com/metawood/goapi/domain"
	"github.com/metawood/goapi/service/cache"
	"github.com/metawood/goapi/service/cache/provider/primitive"
)

const signingMsgTemplate = "Welcome to Metawood!\n\nNonce: %s"

func newAuthUsecase() domain.AuthUsecase {
	return New(&AuthUseCaseCfg{
		JwtSecret:          "test-secret",
		SigningMsgTemplate: signingMsgTemplate,
		NonceCache: cache.New(cache.ServiceConfig{
			Ttl:   time.Minute,
			Pfx:   "auth",
			Cache: primitive.NewPrimitive("nonce", 4),
		}),
	})
}

func TestSignTokenRoundTrip(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()
	au := newAuthUsecase()

	privateKey, publicKey, err := ethereum.GenerateKey()
	req.NoError(err)
	address := domain.Address(crypto.PubkeyToAddress(*publicKey).Hex()).ToLower()

	nonce, err := au.GetNonce(c, address)
	req.NoError(err)
	req.NotEmpty(nonce)

	message := []byte(fmt.Sprintf(signingMsgTemplate, nonce))
	signature, err := crypto.Sign(accounts.TextHash(message), privateKey)
	req.NoError(err)

	token, err := au.SignToken(c, address, hexutil.Encode(signature))
	req.NoError(err)

	parsed, err := au.ParseToken(c, token)
	req.NoError(err)
	req.Equal(address.ToLowerStr(), parsed)

	// the nonce is single use
	_, err = au.SignToken(c, address, hexutil.Encode(signature))
	req.ErrorIs(err, domain.ErrInvalidSignature)
}

func TestSignTokenRejectsWrongSigner(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()
	au := newAuthUsecase()

	privateKey, _, err := ethereum.GenerateKey()
	req.NoError(err)
	_, otherPub, err := ethereum.GenerateKey()
	req.NoError(err)
	address := domain.Address(crypto.PubkeyToAddress(*otherPub).Hex()).ToLower()

	nonce, err := au.GetNonce(c, address)
	req.NoError(err)

	message := []byte(fmt.Sprintf(signingMsgTemplate, nonce))
	signature, err := crypto.Sign(accounts.TextHash(message), privateKey)
	req.NoError(err)

	_, err = au.SignToken(c, address, hexutil.Encode(signature))
	req.ErrorIs(err, domain.ErrInvalidSignature)
}

func TestParseTokenMalformed(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()
	au := newAuthUsecase()

	for _, str := range []string{"", "not-a-jwt", "a.b", "a.b.c"} {
		_, err := au.ParseToken(c, str)
		req.ErrorIs(err, domain.ErrInvalidToken, str)
	}
}

func TestParseTokenWrongSecret(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()

	other := New(&AuthUseCaseCfg{
		JwtSecret:          "other-secret",
		SigningMsgTemplate: signingMsgTemplate,
		NonceCache: cache.New(cache.ServiceConfig{
			Ttl:   time.Minute,
			Pfx:   "auth",
			Cache: primitive.NewPrimitive("nonceOther", 4),
		}),
	})

	privateKey, publicKey, err := ethereum.GenerateKey()
	req.NoError(err)
	address := domain.Address(crypto.PubkeyToAddress(*publicKey).Hex()).ToLower()

	nonce, err := other.GetNonce(c, address)
	req.NoError(err)
	message := []byte(fmt.Sprintf(signingMsgTemplate, nonce))
	signature, err := crypto.Sign(accounts.TextHash(message), privateKey)
	req.NoError(err)
	token, err := other.SignToken(c, address, hexutil.Encode(signature))
	req.NoError(err)

	_, err = newAuthUsecase().ParseToken(c, token)
	req.ErrorIs(err, domain.ErrInvalidToken)
}

func TestSignTokenWithoutNonce(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()
	au := newAuthUsecase()

	_, publicKey, err := ethereum.GenerateKey()
	req.NoError(err)
	address := domain.Address(crypto.PubkeyToAddress(*publicKey).Hex()).ToLower()

	_, err = au.SignToken(c, address, "0x00")
	req.ErrorIs(err, domain.ErrInvalidSignature)
}
