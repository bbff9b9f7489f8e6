package store

import (
	"context"

	"gorm.io/gorm/clause"

	"github.com/cppla/blogly/models"
)

// ListUsers returns every user ordered by last then first name.
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.conn(ctx).Order("last_name, first_name").Find(&users).Error
	return users, observe("list_users", classify(err))
}

// GetUser loads a user by id.
func (s *Store) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.conn(ctx).First(&user, id).Error; err != nil {
		return nil, observe("get_user", classify(err))
	}
	return &user, observe("get_user", nil)
}

// CreateUser inserts a user. A blank image URL is replaced by the placeholder.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	err := s.conn(ctx).Omit(clause.Associations).Create(user).Error
	return observe("create_user", classify(err))
}

// UpdateUser overwrites the user's names and image.
// It returns ErrNotFound when no user has the given id.
func (s *Store) UpdateUser(ctx context.Context, user *models.User) error {
	user.ApplyDefaults()
	res := s.conn(ctx).Model(&models.User{}).Where("id = ?", user.ID).UpdateColumns(map[string]interface{}{
		"first_name": user.FirstName,
		"last_name":  user.LastName,
		"image_url":  user.ImageURL,
	})
	err := res.Error
	if err == nil && res.RowsAffected == 0 {
		err = ErrNotFound
	}
	return observe("update_user", classify(err))
}

// DeleteUser removes a user together with their posts and those posts' tag links.
func (s *Store) DeleteUser(ctx context.Context, id uint) error {
	err := s.Transaction(ctx, func(tx *Store) error {
		db := tx.db
		posts := db.Model(&models.Post{}).Select("id").Where("user_id = ?", id)
		if err := db.Where("post_id IN (?)", posts).Delete(&models.PostTag{}).Error; err != nil {
			return err
		}
		if err := db.Where("user_id = ?", id).Delete(&models.Post{}).Error; err != nil {
			return err
		}
		res := db.Delete(&models.User{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	return observe("delete_user", classify(err))
}

// PostsByUser returns the user's posts, newest first.
func (s *Store) PostsByUser(ctx context.Context, userID uint) ([]models.Post, error) {
	var posts []models.Post
	err := s.conn(ctx).Where("user_id = ?", userID).Order("created_at DESC, id DESC").Find(&posts).Error
	return posts, observe("posts_by_user", classify(err))
}
