package middlewares

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/tastehub/models"
	"github.com/yeremiapane/tastehub/utils"
)

// RequireRole harus dipasang setelah AuthMiddleware.
func RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, exists := CurrentUser(c)
		if !exists {
			utils.RespondError(c, http.StatusUnauthorized, fmt.Errorf("unauthorized"))
			c.Abort()
			return
		}

		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}

		utils.RespondError(c, http.StatusForbidden, fmt.Errorf("%s access required", roles[0]))
		c.Abort()
	}
}

// StaffOnly guards the kitchen dashboard and order management.
func StaffOnly() gin.HandlerFunc {
	return RequireRole(models.RoleAdmin, models.RoleStoreOwner)
}
