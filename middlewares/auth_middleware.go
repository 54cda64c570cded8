package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/tastehub/models"
	"github.com/yeremiapane/tastehub/utils"
)

const (
	ContextUserID  = "user_id"
	ContextEmail   = "email"
	ContextRole    = "role"
	ContextStoreID = "store_id"
)

// Identity is what the auth middleware leaves on the gin context.
type Identity struct {
	UserID  string
	Email   string
	Role    models.UserRole
	StoreID string
}

func AuthMiddleware(issuer *utils.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("Authorization header missing"))
			c.Abort()
			return
		}

		// Validasi format token
		if !strings.HasPrefix(authHeader, "Bearer ") {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("format token tidak valid"))
			c.Abort()
			return
		}

		if !authenticate(c, issuer, strings.TrimPrefix(authHeader, "Bearer ")) {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("Invalid or expired token"))
			c.Abort()
			return
		}

		c.Next()
	}
}

func authenticate(c *gin.Context, issuer *utils.TokenIssuer, tokenString string) bool {
	claims, err := issuer.ParseToken(strings.TrimSpace(tokenString))
	if err != nil {
		return false
	}

	c.Set(ContextUserID, claims.Subject)
	c.Set(ContextEmail, claims.Email)
	c.Set(ContextRole, models.UserRole(claims.Role))
	c.Set(ContextStoreID, claims.StoreID)
	return true
}

// CurrentUser reads the identity set by AuthMiddleware or WebSocketAuthMiddleware.
func CurrentUser(c *gin.Context) (Identity, bool) {
	userID := c.GetString(ContextUserID)
	if userID == "" {
		return Identity{}, false
	}
	role, _ := c.Get(ContextRole)
	r, _ := role.(models.UserRole)
	return Identity{
		UserID:  userID,
		Email:   c.GetString(ContextEmail),
		Role:    r,
		StoreID: c.GetString(ContextStoreID),
	}, true
}

// OptionalAuth identifies the caller when a bearer token is sent and lets
// anonymous requests through. A bad token is still rejected.
func OptionalAuth(issuer *utils.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}
		if !strings.HasPrefix(authHeader, "Bearer ") || !authenticate(c, issuer, strings.TrimPrefix(authHeader, "Bearer ")) {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("Invalid or expired token"))
			c.Abort()
			return
		}
		c.Next()
	}
}
