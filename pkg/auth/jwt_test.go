package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSideTokenRoundTrip(t *testing.T) {
	s := NewSigner("secret", time.Hour)

	token, err := s.IssueSideToken("match-1", 1)
	require.NoError(t, err)

	claims, err := s.ValidateSideToken(token)
	require.NoError(t, err)
	assert.Equal(t, "match-1", claims.MatchID)
	assert.Equal(t, 1, claims.Side)
}

func TestSideTokenRejected(t *testing.T) {
	s := NewSigner("secret", time.Hour)
	token, err := s.IssueSideToken("match-1", 0)
	require.NoError(t, err)

	_, err = NewSigner("other", time.Hour).ValidateSideToken(token)
	assert.Error(t, err, "wrong secret")

	expired, err := NewSigner("secret", -time.Minute).IssueSideToken("match-1", 0)
	require.NoError(t, err)
	_, err = s.ValidateSideToken(expired)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &SideClaims{MatchID: "match-1"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = s.ValidateSideToken(unsigned)
	assert.Error(t, err)

	_, err = s.ValidateSideToken("garbage")
	assert.Error(t, err)
}
