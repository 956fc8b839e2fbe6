package api

import (
	"errors"
	"net/http"
	"strings"

	"snapverse/internal/domain"
	"snapverse/internal/service"

	"github.com/gin-gonic/gin"
)

// SessionCookieName is the cookie the login handler sets and the
// session middleware reads.
const SessionCookieName = "auth_token"

// ContextUserKey is the gin context key the authenticated user is
// stored under.
const ContextUserKey = "authUser"

// SessionMiddleware creates a Gin middleware that gates protected
// routes. It extracts the session token from the auth cookie or the
// Authorization header, asks the auth service to resolve it, and either
// attaches the resulting user to the request context or rejects the
// request with 401 before any handler logic runs.
//
// Routes that must stay reachable without a session (the /api/auth
// endpoints, health, public image serving) are simply registered
// outside the route group carrying this middleware.
func SessionMiddleware(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			abortWithError(c, http.StatusUnauthorized, "Unauthorized")
			return
		}

		user, err := authService.Authenticate(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, service.ErrInvalidSession) {
				abortWithError(c, http.StatusUnauthorized, "Unauthorized")
			} else {
				// Authenticator backend failure, not a caller fault.
				abortWithError(c, http.StatusInternalServerError, "Something went wrong")
			}
			return
		}

		c.Set(ContextUserKey, user)
		c.Next()
	}
}

// extractToken pulls the session token from the auth cookie, falling
// back to an "Authorization: Bearer" header.
func extractToken(c *gin.Context) string {
	if cookie, err := c.Cookie(SessionCookieName); err == nil && cookie != "" {
		return cookie
	}
	authHeader := c.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return parts[1]
	}
	return ""
}

// Helper to return JSON error response and abort request
func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"error": message})
}

// getUserFromContext returns the authenticated user set by
// SessionMiddleware.
func getUserFromContext(c *gin.Context) (*domain.User, error) {
	raw, exists := c.Get(ContextUserKey)
	if !exists {
		return nil, errors.New("user not found in context")
	}
	user, ok := raw.(*domain.User)
	if !ok {
		return nil, errors.New("invalid user type in context")
	}
	return user, nil
}
