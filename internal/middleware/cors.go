package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// CORS allows browser frontends on the configured origins to call the API.
// An empty origin list allows any origin, but credentials are only granted
// to explicitly configured origins. Preflight requests are answered
// directly with 204.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		if origin != "" {
			allowed[origin] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			grant := origin
			trusted := false
			if len(allowed) > 0 {
				if _, ok := allowed[strings.TrimRight(origin, "/")]; ok {
					trusted = true
				} else {
					grant = ""
				}
			}
			if grant != "" {
				c.Header("Access-Control-Allow-Origin", grant)
				c.Header("Vary", "Origin")
				if trusted {
					c.Header("Access-Control-Allow-Credentials", "true")
				}
				c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
