package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/blogly/utils"
)

const csrfTokenTTL = 2 * time.Hour

// CSRF issues a form token for every request and, when enforce is set,
// rejects state changing requests whose token is missing or not bound to this browser.
func CSRF(secret string, enforce bool) gin.HandlerFunc {
	key := []byte(secret)
	return func(ctx *gin.Context) {
		id, existed := browserID(ctx, utils.CSRFCookieName)

		if enforce && !isSafeMethod(ctx.Request.Method) {
			token := ctx.GetHeader(utils.CSRFHeader)
			if token == "" {
				token = ctx.PostForm(utils.CSRFFormField)
			}
			if !existed {
				token = ""
			}
			if err := utils.VerifyCSRFToken(key, token, id); err != nil {
				utils.Logger.Info("csrf check failed",
					zap.String("path", ctx.Request.URL.Path),
					zap.String("ip", ctx.ClientIP()),
					zap.Error(err),
				)
				utils.Forbidden(ctx, "The form has expired or is invalid. Please go back, reload and try again.")
				ctx.Abort()
				return
			}
		}

		token, err := utils.IssueCSRFToken(key, id, csrfTokenTTL)
		if err != nil {
			utils.Logger.Error("issue csrf token", zap.Error(err))
		}
		ctx.Set(utils.CSRFContextKey, token)
		ctx.Next()
	}
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}
