package controllers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/cppla/blogly/store"
	"github.com/cppla/blogly/utils"
)

// form is implemented by every bound form; trim runs before validation so
// whitespace-only input counts as blank.
type form interface {
	trim()
}

// bindForm maps the url-encoded body onto f, trims it and validates the binding tags.
func bindForm(ctx *gin.Context, f form) error {
	if err := ctx.Request.ParseForm(); err != nil {
		return err
	}
	if err := binding.MapFormWithTag(f, ctx.Request.PostForm, "form"); err != nil {
		return err
	}
	f.trim()
	return binding.Validator.ValidateStruct(f)
}

// parseID reads a positive numeric path parameter.
func parseID(ctx *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 0)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// loadFailed answers a failed read with 404 for missing rows and 500 otherwise.
func loadFailed(ctx *gin.Context, what string, err error) {
	if errors.Is(err, store.ErrNotFound) {
		utils.NotFound(ctx, what)
		return
	}
	utils.ServerError(ctx, err)
}
