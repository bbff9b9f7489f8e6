package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Context keys set by the flash middleware.
const (
	FlashStoreKey = "flash_store"
	FlashIDKey    = "flash_id"
)

// Flash queues a notice for the next rendered page of this browser.
// Failures are logged and otherwise ignored; a lost notice never fails a request.
func Flash(c *gin.Context, category, message string) {
	fs, id := flashTarget(c)
	if fs == nil {
		return
	}
	if err := fs.Add(c.Request.Context(), id, Notice{Category: category, Message: message}); err != nil {
		Logger.Warn("flash add failed", zap.Error(err))
	}
}

// PopFlashes drains the notices queued for this browser.
func PopFlashes(c *gin.Context) []Notice {
	fs, id := flashTarget(c)
	if fs == nil {
		return nil
	}
	notices, err := fs.Pop(c.Request.Context(), id)
	if err != nil {
		Logger.Warn("flash pop failed", zap.Error(err))
		return nil
	}
	return notices
}

// Render writes an HTML template with the page notices and csrf token attached.
// Notices added during this request are shown on this page.
func Render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["Flashes"] = PopFlashes(c)
	data["CSRFToken"] = c.GetString(CSRFContextKey)
	data["CSRFField"] = CSRFFormField
	c.HTML(status, name, data)
}

// NotFound renders the 404 page naming the missing entity.
func NotFound(c *gin.Context, what string) {
	Render(c, http.StatusNotFound, "not_found.html", gin.H{
		"Title":   "Not Found",
		"Message": what + " not found",
	})
}

// ServerError logs err and renders the generic error page.
func ServerError(c *gin.Context, err error) {
	Logger.Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	Render(c, http.StatusInternalServerError, "error.html", gin.H{
		"Title":   "Something went wrong",
		"Message": "Something went wrong. Please try again.",
	})
}

// Forbidden renders the error page with a 403 status.
func Forbidden(c *gin.Context, message string) {
	Render(c, http.StatusForbidden, "error.html", gin.H{
		"Title":   "Forbidden",
		"Message": message,
	})
}

// RedirectWithFlash queues a notice then redirects with 302.
func RedirectWithFlash(c *gin.Context, location, category, message string) {
	Flash(c, category, message)
	c.Redirect(http.StatusFound, location)
}

func flashTarget(c *gin.Context) (*FlashStore, string) {
	v, ok := c.Get(FlashStoreKey)
	if !ok {
		return nil, ""
	}
	fs, ok := v.(*FlashStore)
	id := c.GetString(FlashIDKey)
	if !ok || fs == nil || id == "" {
		return nil, ""
	}
	return fs, id
}
