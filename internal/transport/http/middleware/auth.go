package middleware

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"gopher-classifieds/internal/app"
	"gopher-classifieds/internal/transport/http/response"
)

const (
	ContextUserIDKey   = "user_id"
	ContextUsernameKey = "username"
)

// TokenFromRequest reads a bearer token, falling back to the session cookie.
func TokenFromRequest(c *gin.Context, cookieName string) string {
	authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
	const prefix = "Bearer "
	if strings.HasPrefix(authHeader, prefix) {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, prefix))
	}
	if cookieName == "" {
		return ""
	}
	token, err := c.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return token
}

// OptionalAuth records the caller when a valid token is present and never aborts.
func OptionalAuth(authService *app.AuthService, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := TokenFromRequest(c, cookieName); token != "" {
			if claims, err := authService.Authenticate(c.Request.Context(), token); err == nil {
				c.Set(ContextUserIDKey, claims.UserID)
				c.Set(ContextUsernameKey, claims.Username)
			}
		}
		c.Next()
	}
}

// AuthRequired rejects anonymous callers with a pointer to the login page
// that returns them to where they were going.
func AuthRequired(authService *app.AuthService, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := TokenFromRequest(c, cookieName)
		if token == "" {
			unauthorized(c, "login required")
			return
		}

		claims, err := authService.Authenticate(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, app.ErrInvalidCredential) {
				unauthorized(c, "invalid or expired token")
				return
			}
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "verify session failed")
			c.Abort()
			return
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextUsernameKey, claims.Username)
		c.Next()
	}
}

// CurrentUserID returns 0 for anonymous requests.
func CurrentUserID(c *gin.Context) uint {
	v, ok := c.Get(ContextUserIDKey)
	if !ok {
		return 0
	}
	id, _ := v.(uint)
	return id
}

func LoginURL(next string) string {
	return "/login?next=" + url.QueryEscape(next)
}

func unauthorized(c *gin.Context, message string) {
	response.ErrorWithData(c, http.StatusUnauthorized, response.CodeUnauthorized, message, gin.H{
		"login_url": LoginURL(c.Request.URL.RequestURI()),
	})
	c.Abort()
}
