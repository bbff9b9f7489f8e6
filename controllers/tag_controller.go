package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/blogly/models"
	"github.com/cppla/blogly/store"
	"github.com/cppla/blogly/utils"
)

// TagController serves the tag pages.
type TagController struct {
	store *store.Store
}

// NewTagController creates a new TagController instance.
func NewTagController(st *store.Store) *TagController {
	return &TagController{store: st}
}

type tagForm struct {
	Name string `form:"name" binding:"required,notblank,max=50"`
}

func (f *tagForm) trim() {
	f.Name = strings.TrimSpace(f.Name)
}

// ListTags shows every tag.
func (t *TagController) ListTags(ctx *gin.Context) {
	tags, err := t.store.ListTags(ctx.Request.Context())
	if err != nil {
		utils.ServerError(ctx, err)
		return
	}
	utils.Render(ctx, http.StatusOK, "tags_list.html", gin.H{
		"Title": "Tags",
		"Tags":  tags,
	})
}

// ShowTag shows a tag and the posts carrying it.
func (t *TagController) ShowTag(ctx *gin.Context) {
	tag, ok := t.loadTag(ctx)
	if !ok {
		return
	}
	posts, err := t.store.PostsForTag(ctx.Request.Context(), tag.ID)
	if err != nil {
		utils.ServerError(ctx, err)
		return
	}
	utils.Render(ctx, http.StatusOK, "tag_detail.html", gin.H{
		"Title": tag.Name,
		"Tag":   tag,
		"Posts": posts,
	})
}

// NewTagForm shows an empty tag form.
func (t *TagController) NewTagForm(ctx *gin.Context) {
	t.renderForm(ctx, http.StatusOK, nil, tagForm{}, nil)
}

// CreateTag stores a new tag; a taken name re-renders the form.
func (t *TagController) CreateTag(ctx *gin.Context) {
	var form tagForm
	if err := bindForm(ctx, &form); err != nil {
		t.renderForm(ctx, http.StatusBadRequest, nil, form, utils.ValidationMessages(err))
		return
	}

	tag := models.Tag{Name: form.Name}
	if err := t.store.CreateTag(ctx.Request.Context(), &tag); err != nil {
		if store.IsConstraintViolation(err) {
			t.renderForm(ctx, http.StatusBadRequest, nil, form, []string{duplicateTagMessage(form.Name)})
			return
		}
		utils.Logger.Error("create tag failed", zap.String("name", form.Name), zap.Error(err))
		utils.RedirectWithFlash(ctx, "/tags", utils.FlashDanger, "The tag could not be saved. Nothing was changed.")
		return
	}
	utils.RedirectWithFlash(ctx, "/tags", utils.FlashSuccess, fmt.Sprintf("Added tag %q.", tag.Name))
}

// EditTagForm shows the tag form with the current name.
func (t *TagController) EditTagForm(ctx *gin.Context) {
	tag, ok := t.loadTag(ctx)
	if !ok {
		return
	}
	t.renderForm(ctx, http.StatusOK, tag, tagForm{Name: tag.Name}, nil)
}

// UpdateTag renames a tag under the same rules as CreateTag.
func (t *TagController) UpdateTag(ctx *gin.Context) {
	tag, ok := t.loadTag(ctx)
	if !ok {
		return
	}
	var form tagForm
	if err := bindForm(ctx, &form); err != nil {
		t.renderForm(ctx, http.StatusBadRequest, tag, form, utils.ValidationMessages(err))
		return
	}

	updated := models.Tag{ID: tag.ID, Name: form.Name}
	if err := t.store.UpdateTag(ctx.Request.Context(), &updated); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.NotFound(ctx, "Tag")
			return
		}
		if store.IsConstraintViolation(err) {
			t.renderForm(ctx, http.StatusBadRequest, tag, form, []string{duplicateTagMessage(form.Name)})
			return
		}
		utils.Logger.Error("update tag failed", zap.Uint("tag_id", tag.ID), zap.Error(err))
		utils.RedirectWithFlash(ctx, "/tags", utils.FlashDanger, "The tag could not be updated. Nothing was changed.")
		return
	}
	utils.RedirectWithFlash(ctx, "/tags", utils.FlashSuccess, "Tag updated.")
}

// DeleteTag detaches a tag from every post and removes it.
// A missing tag is reported with a notice rather than a 404 page.
func (t *TagController) DeleteTag(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		utils.RedirectWithFlash(ctx, "/tags", utils.FlashWarning, "Tag not found")
		return
	}
	err := t.store.DeleteTag(ctx.Request.Context(), id)
	switch {
	case err == nil:
		utils.RedirectWithFlash(ctx, "/tags", utils.FlashSuccess, "Tag deleted.")
	case errors.Is(err, store.ErrNotFound):
		utils.RedirectWithFlash(ctx, "/tags", utils.FlashWarning, "Tag not found")
	default:
		utils.Logger.Error("delete tag failed, transaction rolled back", zap.Uint("tag_id", id), zap.Error(err))
		utils.RedirectWithFlash(ctx, "/tags", utils.FlashDanger, "The tag could not be deleted. Nothing was changed.")
	}
}

func (t *TagController) loadTag(ctx *gin.Context) (*models.Tag, bool) {
	id, ok := parseID(ctx, "id")
	if !ok {
		utils.NotFound(ctx, "Tag")
		return nil, false
	}
	tag, err := t.store.GetTag(ctx.Request.Context(), id)
	if err != nil {
		loadFailed(ctx, "Tag", err)
		return nil, false
	}
	return tag, true
}

func (t *TagController) renderForm(ctx *gin.Context, status int, tag *models.Tag, form tagForm, errs []string) {
	data := gin.H{
		"Title":  "Create a tag",
		"Action": "/tags/new",
		"Form":   form,
		"Errors": errs,
	}
	if tag != nil {
		data["Title"] = "Edit " + tag.Name
		data["Action"] = fmt.Sprintf("/tags/%d/edit", tag.ID)
		data["Tag"] = tag
	}
	utils.Render(ctx, status, "tag_form.html", data)
}

func duplicateTagMessage(name string) string {
	return fmt.Sprintf("A tag named %q already exists.", name)
}
