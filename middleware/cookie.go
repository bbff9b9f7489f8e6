package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const browserCookieMaxAge = 30 * 24 * 60 * 60

// browserID returns the uuid held in cookie name, issuing a new one when the
// cookie is absent or malformed. existed reports whether the request carried it.
func browserID(c *gin.Context, name string) (id string, existed bool) {
	if raw, err := c.Cookie(name); err == nil {
		if parsed, err := uuid.Parse(raw); err == nil {
			return parsed.String(), true
		}
	}
	id = uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, id, browserCookieMaxAge, "/", "", false, true)
	return id, false
}
