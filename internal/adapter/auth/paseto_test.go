package auth_test

import (
	"testing"
	"time"

	"aidanwoods.dev/go-paseto"
	"github.com/MikeRez0/ypstorefront/internal/adapter/auth"
	"github.com/MikeRez0/ypstorefront/internal/adapter/config"
	"github.com/MikeRez0/ypstorefront/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasetoToken_RoundTrip(t *testing.T) {
	ts, err := auth.New(&config.Auth{})
	require.NoError(t, err)

	token, err := ts.CreateToken("ops@shop")
	require.NoError(t, err)

	payload, err := ts.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, domain.Actor("ops@shop"), payload.Actor)

	_, err = ts.CreateToken("")
	assert.ErrorIs(t, err, domain.ErrTokenCreation)
}

func TestPasetoToken_SharedKey(t *testing.T) {
	key := paseto.NewV4SymmetricKey().ExportHex()

	issuer, err := auth.New(&config.Auth{TokenKey: key})
	require.NoError(t, err)
	verifier, err := auth.New(&config.Auth{TokenKey: key})
	require.NoError(t, err)
	stranger, err := auth.New(&config.Auth{})
	require.NoError(t, err)

	token, err := issuer.CreateToken("ops@shop")
	require.NoError(t, err)

	_, err = verifier.VerifyToken(token)
	assert.NoError(t, err)
	_, err = stranger.VerifyToken(token)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
	_, err = verifier.VerifyToken("v4.local.garbage")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestPasetoToken_Expired(t *testing.T) {
	ts, err := auth.New(&config.Auth{TokenTTL: time.Nanosecond})
	require.NoError(t, err)

	token, err := ts.CreateToken("ops@shop")
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	_, err = ts.VerifyToken(token)
	assert.ErrorIs(t, err, domain.ErrExpiredToken)
}

func TestNew_BadKey(t *testing.T) {
	_, err := auth.New(&config.Auth{TokenKey: "not-hex"})
	assert.Error(t, err)
}
