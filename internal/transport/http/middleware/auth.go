package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/iamasit07/blockfall/backend/pkg/auth"
)

const (
	ContextMatchID = "match_id"
	ContextSide    = "side"
)

// TokenValidator checks a side token.
type TokenValidator interface {
	ValidateSideToken(token string) (*auth.SideClaims, error)
}

// SideAuthMiddleware requires a Bearer side token issued for the match in
// the :id path parameter, and stores the side in the gin context.
func SideAuthMiddleware(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		claims, err := tokens.ValidateSideToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		if id := c.Param("id"); id != "" && id != claims.MatchID {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Token is not valid for this match"})
			return
		}

		c.Set(ContextMatchID, claims.MatchID)
		c.Set(ContextSide, claims.Side)
		c.Next()
	}
}
