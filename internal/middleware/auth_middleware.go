package middleware

import (
	"net/http"
	"strings"

	"mart_inventory/pkg/utils"

	"github.com/gin-gonic/gin"
)

// SyncAuthMiddleware guards the data endpoints with a bearer token signed by the
// shared secret. An empty secret leaves the routes open.
func SyncAuthMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(secret) == 0 {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Authorization header required"))
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid authorization header format. Use Bearer <token>"))
			return
		}

		claims, err := utils.ValidateSyncToken(secret, parts[1])
		if err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid or expired token: "+err.Error()))
			return
		}

		c.Set("storeName", claims.StoreName)
		c.Next()
	}
}
