package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/cppla/blogly/utils"
)

// Flashes attaches the flash store and this browser's flash id to the context.
func Flashes(fs *utils.FlashStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := browserID(c, utils.FlashCookieName)
		c.Set(utils.FlashStoreKey, fs)
		c.Set(utils.FlashIDKey, id)
		c.Next()
	}
}
