package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/microservices/http-api/service"
	"yamdb/internal/policy"
)

const actorKey = "actor"

// Authenticate resolves an optional bearer token into a *policy.Actor. A
// request without an Authorization header continues anonymously; a header
// that does not authenticate a live, active user is rejected with 401.
func Authenticate(authService service.AuthService, users repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		// Extract token (format: "Bearer <token>")
		scheme, tokenString, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			return
		}

		claims, err := authService.ValidateToken(tokenString)
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, service.ErrExpiredToken) {
				msg = "token has expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}

		// role and active flag come from the database, not the token
		user, err := users.FindByID(c.Request.Context(), claims.UserID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		if user == nil || !user.IsActive {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not found or inactive"})
			return
		}

		c.Set(actorKey, policy.ActorFromUser(user))
		c.Set("userID", user.ID)
		c.Set("role", user.Role)

		c.Next()
	}
}

// Actor returns the authenticated caller, or nil for anonymous requests.
func Actor(c *gin.Context) *policy.Actor {
	v, ok := c.Get(actorKey)
	if !ok {
		return nil
	}
	actor, _ := v.(*policy.Actor)
	return actor
}

// RequireAuthenticated rejects anonymous requests.
func RequireAuthenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		if Actor(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": policy.ErrUnauthenticated.Error()})
			return
		}
		c.Next()
	}
}
