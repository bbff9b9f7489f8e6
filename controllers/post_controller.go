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

// PostController serves the home page and the post pages.
type PostController struct {
	store       *store.Store
	recentLimit int
}

// NewPostController creates a new PostController; recentLimit caps the home page list.
func NewPostController(st *store.Store, recentLimit int) *PostController {
	if recentLimit <= 0 {
		recentLimit = 5
	}
	return &PostController{store: st, recentLimit: recentLimit}
}

type postForm struct {
	Title   string   `form:"title" binding:"required,notblank,max=50"`
	Content string   `form:"content" binding:"required,notblank,max=500"`
	Tags    []string `form:"tags"`
}

func (f *postForm) trim() {
	f.Title = strings.TrimSpace(f.Title)
	f.Content = strings.TrimSpace(f.Content)
}

// Home lists the most recent posts with their authors.
func (p *PostController) Home(ctx *gin.Context) {
	posts, err := p.store.RecentPosts(ctx.Request.Context(), p.recentLimit)
	if err != nil {
		utils.ServerError(ctx, err)
		return
	}
	utils.Render(ctx, http.StatusOK, "home.html", gin.H{
		"Title": "Recent Posts",
		"Posts": posts,
	})
}

// NewPostForm shows an empty post form for a user.
func (p *PostController) NewPostForm(ctx *gin.Context) {
	user, ok := p.loadUser(ctx)
	if !ok {
		return
	}
	p.renderForm(ctx, http.StatusOK, user, nil, postForm{}, nil)
}

// CreatePost stores a post for a user and links the chosen tags in one transaction.
func (p *PostController) CreatePost(ctx *gin.Context) {
	user, ok := p.loadUser(ctx)
	if !ok {
		return
	}
	var form postForm
	if err := bindForm(ctx, &form); err != nil {
		p.renderForm(ctx, http.StatusBadRequest, user, nil, form, utils.ValidationMessages(err))
		return
	}

	location := fmt.Sprintf("/users/%d", user.ID)
	post := models.Post{Title: form.Title, Content: form.Content, UserID: user.ID}
	skipped, err := p.store.CreatePost(ctx.Request.Context(), &post, form.Tags)
	if err != nil {
		utils.Logger.Error("create post failed, transaction rolled back",
			zap.Uint("user_id", user.ID),
			zap.Strings("tags", form.Tags),
			zap.Error(err),
		)
		utils.RedirectWithFlash(ctx, location, utils.FlashDanger, "The post could not be saved. Nothing was changed.")
		return
	}
	p.noteSkipped(ctx, post.ID, skipped)
	utils.RedirectWithFlash(ctx, location, utils.FlashSuccess, fmt.Sprintf("Added post %q.", post.Title))
}

// ShowPost shows a post with its author and tags.
func (p *PostController) ShowPost(ctx *gin.Context) {
	post, ok := p.loadPost(ctx)
	if !ok {
		return
	}
	reqCtx := ctx.Request.Context()
	user, err := p.store.GetUser(reqCtx, post.UserID)
	if err != nil {
		utils.ServerError(ctx, err)
		return
	}
	tags, err := p.store.TagsForPost(reqCtx, post.ID)
	if err != nil {
		utils.ServerError(ctx, err)
		return
	}
	utils.Render(ctx, http.StatusOK, "post_detail.html", gin.H{
		"Title": post.Title,
		"Post":  post,
		"User":  user,
		"Tags":  tags,
	})
}

// EditPostForm shows the post form with current values and tag selection.
func (p *PostController) EditPostForm(ctx *gin.Context) {
	post, ok := p.loadPost(ctx)
	if !ok {
		return
	}
	current, err := p.store.TagsForPost(ctx.Request.Context(), post.ID)
	if err != nil {
		utils.ServerError(ctx, err)
		return
	}
	names := make([]string, 0, len(current))
	for _, t := range current {
		names = append(names, t.Name)
	}
	p.renderForm(ctx, http.StatusOK, nil, post, postForm{
		Title:   post.Title,
		Content: post.Content,
		Tags:    names,
	}, nil)
}

// UpdatePost overwrites title and content and replaces the tag set.
func (p *PostController) UpdatePost(ctx *gin.Context) {
	post, ok := p.loadPost(ctx)
	if !ok {
		return
	}
	var form postForm
	if err := bindForm(ctx, &form); err != nil {
		p.renderForm(ctx, http.StatusBadRequest, nil, post, form, utils.ValidationMessages(err))
		return
	}

	location := fmt.Sprintf("/posts/%d", post.ID)
	post.Title, post.Content = form.Title, form.Content
	skipped, err := p.store.UpdatePost(ctx.Request.Context(), post, form.Tags)
	if err != nil {
		utils.Logger.Error("update post failed, transaction rolled back", zap.Uint("post_id", post.ID), zap.Error(err))
		utils.RedirectWithFlash(ctx, location, utils.FlashDanger, "The post could not be updated. Nothing was changed.")
		return
	}
	p.noteSkipped(ctx, post.ID, skipped)
	utils.RedirectWithFlash(ctx, location, utils.FlashSuccess, "Post updated.")
}

// DeletePost removes a post and its tag links, then returns to the author's page.
func (p *PostController) DeletePost(ctx *gin.Context) {
	post, ok := p.loadPost(ctx)
	if !ok {
		return
	}
	location := fmt.Sprintf("/users/%d", post.UserID)
	if err := p.store.DeletePost(ctx.Request.Context(), post.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.NotFound(ctx, "Post")
			return
		}
		utils.Logger.Error("delete post failed", zap.Uint("post_id", post.ID), zap.Error(err))
		utils.RedirectWithFlash(ctx, location, utils.FlashDanger, "The post could not be deleted.")
		return
	}
	utils.RedirectWithFlash(ctx, location, utils.FlashSuccess, fmt.Sprintf("Deleted post %q.", post.Title))
}

// noteSkipped logs and reports tag names that matched no tag.
func (p *PostController) noteSkipped(ctx *gin.Context, postID uint, skipped []string) {
	if len(skipped) == 0 {
		return
	}
	utils.Logger.Info("unknown tags skipped", zap.Uint("post_id", postID), zap.Strings("tags", skipped))
	utils.Flash(ctx, utils.FlashInfo, "Unknown tags skipped: "+strings.Join(skipped, ", "))
}

func (p *PostController) loadUser(ctx *gin.Context) (*models.User, bool) {
	id, ok := parseID(ctx, "id")
	if !ok {
		utils.NotFound(ctx, "User")
		return nil, false
	}
	user, err := p.store.GetUser(ctx.Request.Context(), id)
	if err != nil {
		loadFailed(ctx, "User", err)
		return nil, false
	}
	return user, true
}

func (p *PostController) loadPost(ctx *gin.Context) (*models.Post, bool) {
	id, ok := parseID(ctx, "id")
	if !ok {
		utils.NotFound(ctx, "Post")
		return nil, false
	}
	post, err := p.store.GetPost(ctx.Request.Context(), id)
	if err != nil {
		loadFailed(ctx, "Post", err)
		return nil, false
	}
	return post, true
}

// renderForm shows the create form when post is nil and the edit form otherwise.
func (p *PostController) renderForm(ctx *gin.Context, status int, user *models.User, post *models.Post, form postForm, errs []string) {
	tags, err := p.store.ListTags(ctx.Request.Context())
	if err != nil {
		utils.ServerError(ctx, err)
		return
	}
	selected := make(map[string]bool, len(form.Tags))
	for _, name := range form.Tags {
		selected[strings.TrimSpace(name)] = true
	}

	data := gin.H{
		"Form":     form,
		"Tags":     tags,
		"Selected": selected,
		"Errors":   errs,
	}
	if post != nil {
		data["Title"] = "Edit post"
		data["Action"] = fmt.Sprintf("/posts/%d/edit", post.ID)
		data["Post"] = post
	} else {
		data["Title"] = "Add post"
		data["Action"] = fmt.Sprintf("/users/%d/posts/new", user.ID)
		data["User"] = user
	}
	utils.Render(ctx, status, "post_form.html", data)
}
