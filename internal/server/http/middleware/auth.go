package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/dispatch/internal/domain/model"
	pkgAuth "github.com/polkiloo/dispatch/internal/pkg/auth"
)

const (
	// ActorContextKey is a gin context key for the authenticated caller.
	ActorContextKey = "actor"
	authCookieName  = "dispatch_token"
)

// ActorResolver turns a bearer token into the caller behind it.
type ActorResolver interface {
	Actor(ctx context.Context, token string) (model.Actor, error)
}

// AuthRequired ensures user is authenticated before accessing handler.
func AuthRequired(resolver ActorResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ExtractToken(c)
		if token == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		actor, err := resolver.Actor(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, pkgAuth.ErrInvalidToken) {
				c.AbortWithStatus(http.StatusUnauthorized)
				return
			}
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		c.Set(ActorContextKey, actor)
		c.Next()
	}
}

// ExtractToken reads the bearer token from the Authorization header or the
// auth cookie.
func ExtractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}

	if cookie, err := c.Cookie(authCookieName); err == nil {
		return cookie
	}
	return ""
}

// SetAuthCookie writes auth token cookie to response.
func SetAuthCookie(c *gin.Context, token string) {
	c.SetCookie(authCookieName, token, 0, "/", "", false, true)
	c.Header("Authorization", "Bearer "+token)
}
