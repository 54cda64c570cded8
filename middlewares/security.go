package middlewares

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// apiCSP: server ini hanya mengirim JSON, PDF struk dan PNG QR, tidak ada HTML.
const apiCSP = "default-src 'none'; frame-ancestors 'none'"

func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Content-Security-Policy", apiCSP)
		c.Header("Referrer-Policy", "no-referrer")

		// HSTS hanya berarti lewat HTTPS (langsung atau di belakang proxy)
		if c.Request.TLS != nil || strings.EqualFold(c.GetHeader("X-Forwarded-Proto"), "https") {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
