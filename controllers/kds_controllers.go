package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/tastehub/kds"
	"github.com/yeremiapane/tastehub/middlewares"
)

type KDSController struct {
	Hub *kds.Hub
}

func NewKDSController(hub *kds.Hub) *KDSController {
	return &KDSController{Hub: hub}
}

// KDSHandler -> endpoint WebSocket /ws/orders
func (kc *KDSController) KDSHandler(c *gin.Context) {
	// Ambil role dari token/auth
	user, exists := middlewares.CurrentUser(c)
	if !exists {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	// Validasi role
	if !user.Role.IsStaff() {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	kc.Hub.ServeWS(c.Writer, c.Request, user.UserID)
}
