package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cppla/forumapp/config"
	"github.com/cppla/forumapp/services"
	"github.com/cppla/forumapp/utils"
)

const (
	// ContextUserIDKey is the key used to store authenticated user ID in Gin context.
	ContextUserIDKey = "user_id"
	// ContextUsernameKey stores the username inside Gin context.
	ContextUsernameKey = "username"
	// ContextTokenKey keeps the raw bearer token so logout can revoke it.
	ContextTokenKey = "token"
	// ContextTokenExpiryKey stores the token's expiry time.
	ContextTokenExpiryKey = "token_expires_at"
)

// AuthRequired ensures the request is authenticated via JWT.
func AuthRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authHeader := ctx.GetHeader("Authorization")
		if authHeader == "" {
			utils.Error(ctx, http.StatusUnauthorized, 40101, "authorization header missing")
			ctx.Abort()
			return
		}
		if code, msg := authenticate(ctx, authHeader); code != 0 {
			utils.Error(ctx, http.StatusUnauthorized, code, msg)
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

// OptionalAuth identifies the caller when a valid token is present and
// otherwise lets the request through anonymously.
func OptionalAuth() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if h := ctx.GetHeader("Authorization"); h != "" {
			_, _ = authenticate(ctx, h)
		}
		ctx.Next()
	}
}

// AdminRequired must run after AuthRequired.
func AdminRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if !CurrentActor(ctx).Admin {
			utils.Error(ctx, http.StatusForbidden, 40301, "admin only")
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

func authenticate(ctx *gin.Context, authHeader string) (int, string) {
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return 40102, "invalid authorization header format"
	}

	tokenString := strings.TrimSpace(parts[1])
	if tokenString == "" {
		return 40103, "empty bearer token"
	}

	if utils.IsTokenBlacklisted(tokenString) {
		return 40104, "token revoked"
	}

	claims, err := utils.ParseToken(tokenString)
	if err != nil {
		return 40105, "invalid token"
	}

	ctx.Set(ContextUserIDKey, claims.UserID)
	ctx.Set(ContextUsernameKey, claims.Username())
	ctx.Set(ContextTokenKey, tokenString)
	if claims.ExpiresAt != nil {
		ctx.Set(ContextTokenExpiryKey, claims.ExpiresAt.Time)
	}
	return 0, ""
}

// CurrentActor returns the caller as a services.Actor. Anonymous callers get the zero value.
func CurrentActor(ctx *gin.Context) services.Actor {
	id := ctx.GetUint(ContextUserIDKey)
	if id == 0 {
		return services.Actor{}
	}
	name := ctx.GetString(ContextUsernameKey)
	return services.Actor{UserID: id, Username: name, Admin: config.Get().IsAdmin(name)}
}
