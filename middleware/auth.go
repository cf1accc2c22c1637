package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/werta666/jifen-go/config"
	"github.com/werta666/jifen-go/services"
	"github.com/werta666/jifen-go/utils"
)

// ContextIdentityKey is the key used to store the verified identity in the
// Gin context.
const ContextIdentityKey = "identity"

// AuthRequired ensures the request carries a valid forum-issued JWT and
// stores the resulting identity in the context. Admin status is granted by
// the is_admin claim or by the configured admin username list.
func AuthRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authHeader := ctx.GetHeader("Authorization")
		if authHeader == "" {
			utils.Error(ctx, http.StatusUnauthorized, 40101, "authorization header missing")
			ctx.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			utils.Error(ctx, http.StatusUnauthorized, 40102, "invalid authorization header format")
			ctx.Abort()
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			utils.Error(ctx, http.StatusUnauthorized, 40103, "empty bearer token")
			ctx.Abort()
			return
		}

		claims, err := utils.ParseToken(tokenString)
		if err != nil {
			utils.Error(ctx, http.StatusUnauthorized, 40104, "invalid token")
			ctx.Abort()
			return
		}

		identity := services.Identity{
			ID:       claims.UserID,
			Username: claims.Username,
			IsAdmin:  claims.IsAdmin || isConfiguredAdmin(claims.Username),
		}
		ctx.Set(ContextIdentityKey, identity)
		ctx.Next()
	}
}

// AdminRequired must run after AuthRequired and rejects non-admin identities.
func AdminRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		identity, ok := GetIdentity(ctx)
		if !ok || !identity.IsAdmin {
			utils.Error(ctx, http.StatusForbidden, 40301, "admin privileges required")
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

// GetIdentity extracts the verified identity stored by AuthRequired.
func GetIdentity(ctx *gin.Context) (services.Identity, bool) {
	v, ok := ctx.Get(ContextIdentityKey)
	if !ok {
		return services.Identity{}, false
	}
	identity, ok := v.(services.Identity)
	return identity, ok
}

func isConfiguredAdmin(username string) bool {
	if username == "" {
		return false
	}
	for _, admin := range config.Get().AdminUsernames {
		if strings.EqualFold(admin, username) {
			return true
		}
	}
	return false
}
