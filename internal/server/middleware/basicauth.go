// file: internal/server/middleware/basicauth.go
// version: 2.0.0
// guid: a1b2c3d4-e5f6-7a8b-9c0d-1e2f3a4b5c6d

package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

const basicAuthRealm = `Basic realm="voicematch admin"`

// BasicAuth returns a Gin middleware that enforces HTTP Basic Authentication
// on the routes it wraps. An empty username disables the check.
func BasicAuth(username, password string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if username == "" {
			c.Next()
			return
		}

		user, pass, ok := c.Request.BasicAuth()
		if !ok {
			c.Header("WWW-Authenticate", basicAuthRealm)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required", "code": "UNAUTHORIZED", "status": http.StatusUnauthorized})
			return
		}

		userMatch := subtle.ConstantTimeCompare([]byte(user), []byte(username)) == 1
		passMatch := subtle.ConstantTimeCompare([]byte(pass), []byte(password)) == 1
		if !userMatch || !passMatch {
			c.Header("WWW-Authenticate", basicAuthRealm)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials", "code": "UNAUTHORIZED", "status": http.StatusUnauthorized})
			return
		}

		c.Next()
	}
}
