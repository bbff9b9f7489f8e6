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

// UserController serves the user pages.
type UserController struct {
	store *store.Store
}

// NewUserController creates a new UserController instance.
func NewUserController(st *store.Store) *UserController {
	return &UserController{store: st}
}

type userForm struct {
	FirstName string `form:"first_name" binding:"required,notblank,max=50"`
	LastName  string `form:"last_name" binding:"required,notblank,max=50"`
	ImageURL  string `form:"image_url" binding:"omitempty,max=500"`
}

func (f *userForm) trim() {
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.LastName = strings.TrimSpace(f.LastName)
	f.ImageURL = strings.TrimSpace(f.ImageURL)
}

// ListUsers shows every user.
func (u *UserController) ListUsers(ctx *gin.Context) {
	users, err := u.store.ListUsers(ctx.Request.Context())
	if err != nil {
		utils.ServerError(ctx, err)
		return
	}
	utils.Render(ctx, http.StatusOK, "users_list.html", gin.H{
		"Title": "Users",
		"Users": users,
	})
}

// NewUserForm shows an empty user form.
func (u *UserController) NewUserForm(ctx *gin.Context) {
	u.renderForm(ctx, http.StatusOK, nil, userForm{}, nil)
}

// CreateUser validates and stores a new user.
func (u *UserController) CreateUser(ctx *gin.Context) {
	var form userForm
	if err := bindForm(ctx, &form); err != nil {
		u.renderForm(ctx, http.StatusBadRequest, nil, form, utils.ValidationMessages(err))
		return
	}

	user := models.User{FirstName: form.FirstName, LastName: form.LastName, ImageURL: form.ImageURL}
	if err := u.store.CreateUser(ctx.Request.Context(), &user); err != nil {
		utils.Logger.Error("create user failed", zap.Error(err))
		utils.RedirectWithFlash(ctx, "/users", utils.FlashDanger, "The user could not be saved. Nothing was changed.")
		return
	}
	utils.RedirectWithFlash(ctx, "/users", utils.FlashSuccess, fmt.Sprintf("Added %s.", user.FullName()))
}

// ShowUser shows a user and their posts.
func (u *UserController) ShowUser(ctx *gin.Context) {
	user, ok := u.loadUser(ctx)
	if !ok {
		return
	}
	posts, err := u.store.PostsByUser(ctx.Request.Context(), user.ID)
	if err != nil {
		utils.ServerError(ctx, err)
		return
	}
	utils.Render(ctx, http.StatusOK, "user_detail.html", gin.H{
		"Title": user.FullName(),
		"User":  user,
		"Posts": posts,
	})
}

// EditUserForm shows the user form filled with current values.
func (u *UserController) EditUserForm(ctx *gin.Context) {
	user, ok := u.loadUser(ctx)
	if !ok {
		return
	}
	u.renderForm(ctx, http.StatusOK, user, userForm{
		FirstName: user.FirstName,
		LastName:  user.LastName,
		ImageURL:  user.ImageURL,
	}, nil)
}

// UpdateUser overwrites a user's names and image.
func (u *UserController) UpdateUser(ctx *gin.Context) {
	user, ok := u.loadUser(ctx)
	if !ok {
		return
	}
	var form userForm
	if err := bindForm(ctx, &form); err != nil {
		u.renderForm(ctx, http.StatusBadRequest, user, form, utils.ValidationMessages(err))
		return
	}

	user.FirstName, user.LastName, user.ImageURL = form.FirstName, form.LastName, form.ImageURL
	location := fmt.Sprintf("/users/%d", user.ID)
	if err := u.store.UpdateUser(ctx.Request.Context(), user); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.NotFound(ctx, "User")
			return
		}
		utils.Logger.Error("update user failed", zap.Uint("user_id", user.ID), zap.Error(err))
		utils.RedirectWithFlash(ctx, location, utils.FlashDanger, "The user could not be updated. Nothing was changed.")
		return
	}
	utils.RedirectWithFlash(ctx, location, utils.FlashSuccess, "User updated.")
}

// DeleteUser removes a user together with their posts.
func (u *UserController) DeleteUser(ctx *gin.Context) {
	user, ok := u.loadUser(ctx)
	if !ok {
		return
	}
	if err := u.store.DeleteUser(ctx.Request.Context(), user.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.NotFound(ctx, "User")
			return
		}
		utils.Logger.Error("delete user failed", zap.Uint("user_id", user.ID), zap.Error(err))
		utils.RedirectWithFlash(ctx, "/users", utils.FlashDanger, "The user could not be deleted.")
		return
	}
	utils.RedirectWithFlash(ctx, "/users", utils.FlashSuccess, fmt.Sprintf("Deleted %s.", user.FullName()))
}

func (u *UserController) loadUser(ctx *gin.Context) (*models.User, bool) {
	id, ok := parseID(ctx, "id")
	if !ok {
		utils.NotFound(ctx, "User")
		return nil, false
	}
	user, err := u.store.GetUser(ctx.Request.Context(), id)
	if err != nil {
		loadFailed(ctx, "User", err)
		return nil, false
	}
	return user, true
}

func (u *UserController) renderForm(ctx *gin.Context, status int, user *models.User, form userForm, errs []string) {
	data := gin.H{
		"Title":  "Create a user",
		"Action": "/users/new",
		"Form":   form,
		"Errors": errs,
	}
	if user != nil {
		data["Title"] = "Edit " + user.FullName()
		data["Action"] = fmt.Sprintf("/users/%d/edit", user.ID)
		data["User"] = user
	}
	utils.Render(ctx, status, "user_form.html", data)
}
