package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/location-heatmap/internal/auth"
	"github.com/jengzang/location-heatmap/pkg/response"
)

// Auth requires a valid bearer token signed with secret
func Auth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			response.Abort(c, http.StatusUnauthorized, "Missing bearer token")
			return
		}

		subject, err := auth.VerifyToken(secret, token)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		c.Set("subject", subject)
		c.Next()
	}
}
