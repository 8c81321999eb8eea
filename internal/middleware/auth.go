package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/visawatch/internal/auth"
	"github.com/monocle-dev/visawatch/internal/types"
)

type AuthenticatedUser struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

// ResolveUser puts the calling user in the request context. A bearer token is
// honoured when signing is enabled; without one the request runs as the
// default user.
func ResolveUser(signer *auth.Signer, defaultUserID uint) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authHeader := ctx.GetHeader("Authorization")

		if authHeader == "" || !signer.Enabled() {
			ctx.Set(types.ContextUserKey, AuthenticatedUser{ID: defaultUserID})
			ctx.Next()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)

		if len(parts) != 2 || parts[0] != "Bearer" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}"})
			return
		}

		claims, err := signer.VerifyJWT(parts[1])

		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		ctx.Set(types.ContextUserKey, AuthenticatedUser{
			ID:       claims.UserID,
			Username: claims.Username,
		})
		ctx.Next()
	}
}
