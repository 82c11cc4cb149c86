// Package middleware provides the devserver's request guards.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireSiteIdentifier rejects requests that carry none of the three
// embed identifiers. This mirrors the production read endpoint's
// contract: the widget always identifies its site.
func RequireSiteIdentifier() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Query("widget_id") == "" && c.Query("site_token") == "" && c.Query("website_id") == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "widget_id, site_token, or website_id required"})
			c.Abort()
			return
		}
		c.Next()
	}
}
