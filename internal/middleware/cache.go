package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

// CacheControl marks responses publicly cacheable for maxAgeSeconds. Used
// on catalog reads, which only change when a snapshot is rebuilt, so a
// short TTL keeps browsers off the hot path without serving stale terms.
func CacheControl(maxAgeSeconds int) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", fmt.Sprintf("public, max-age=%d", maxAgeSeconds))
		c.Next()
	}
}
