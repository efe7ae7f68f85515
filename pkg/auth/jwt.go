package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SideClaims authorise input on one side of one match
type SideClaims struct {
	MatchID string `json:"match_id"`
	Side    int    `json:"side"`
	jwt.RegisteredClaims
}

// Signer issues and validates side tokens with an HMAC secret.
type Signer struct {
	secret []byte
	ttl    time.Duration
}

func NewSigner(secret string, ttl time.Duration) *Signer {
	return &Signer{secret: []byte(secret), ttl: ttl}
}

// IssueSideToken creates a JWT bound to (matchID, side)
func (s *Signer) IssueSideToken(matchID string, side int) (string, error) {
	now := time.Now()
	claims := &SideClaims{
		MatchID: matchID,
		Side:    side,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   matchID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateSideToken validates a side token and returns its claims
func (s *Signer) ValidateSideToken(tokenString string) (*SideClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SideClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.secret, nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*SideClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}
