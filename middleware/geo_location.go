package middleware

import (
	"regwizard/services/location"
	"regwizard/utils"

	"github.com/gin-gonic/gin"
)

// LocationHintMiddleware records what the transport knows about the caller's
// location so session entry points can run country detection.
func LocationHintMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(utils.LocationHintKey, location.Hint{
			ClientIP: getClientIP(c),
			Header:   c.Request.Header.Clone(),
		})
		c.Next()
	}
}
