package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testParams = HashParams{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 8, KeyLength: 16}

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := hashWith("hunter2", testParams)
	require.NoError(t, err)
	assert.Contains(t, hash, "$argon2id$v=19$m=1024,t=1,p=1$")

	ok, err := VerifyPassword("hunter2", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("hunter3", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyPasswordRejectsMalformedHash(t *testing.T) {
	for _, bad := range []string{
		"",
		"plain",
		"$argon2i$v=19$m=1024,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=x,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=1024,t=1,p=1$!!$a2V5",
	} {
		_, err := VerifyPassword("pw", bad)
		assert.ErrorIs(t, err, ErrInvalidHash, bad)
	}

	_, err := VerifyPassword("pw", "$argon2id$v=16$m=1024,t=1,p=1$c2FsdA$a2V5")
	assert.ErrorIs(t, err, ErrIncompatibleVersion)
}

func TestTokenIssueAndVerify(t *testing.T) {
	ti, err := NewTokenIssuer(time.Hour)
	require.NoError(t, err)

	token, err := ti.Issue("admin")
	require.NoError(t, err)

	sub, err := ti.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", sub)
}

func TestTokenFromAnotherIssuerIsRejected(t *testing.T) {
	a, err := NewTokenIssuer(0)
	require.NoError(t, err)
	b, err := NewTokenIssuer(0)
	require.NoError(t, err)

	token, err := a.Issue("admin")
	require.NoError(t, err)
	_, err = b.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = a.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExpiredTokenIsRejected(t *testing.T) {
	ti, err := NewTokenIssuer(time.Hour)
	require.NoError(t, err)

	claims := jwt.RegisteredClaims{
		Subject:   "admin",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims).SignedString(ti.privateKey)
	require.NoError(t, err)

	_, err = ti.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
