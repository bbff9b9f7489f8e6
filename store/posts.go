package store

import (
	"context"
	"strings"

	"gorm.io/gorm/clause"

	"github.com/cppla/blogly/models"
)

// RecentPosts returns the newest posts with their authors loaded.
func (s *Store) RecentPosts(ctx context.Context, limit int) ([]models.Post, error) {
	var posts []models.Post
	q := s.conn(ctx).Preload("User").Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&posts).Error
	return posts, observe("recent_posts", classify(err))
}

// GetPost loads a post by id.
func (s *Store) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := s.conn(ctx).First(&post, id).Error; err != nil {
		return nil, observe("get_post", classify(err))
	}
	return &post, observe("get_post", nil)
}

// CreatePost inserts the post and links it to every tag named in tagNames, all
// in one transaction. Names that match no tag are skipped and returned. On
// failure nothing is written and post.ID is reset.
func (s *Store) CreatePost(ctx context.Context, post *models.Post, tagNames []string) ([]string, error) {
	var skipped []string
	err := s.Transaction(ctx, func(tx *Store) error {
		post.Title = strings.TrimSpace(post.Title)
		if err := tx.db.Omit(clause.Associations).Create(post).Error; err != nil {
			return err
		}
		tags, missing, err := tx.FindTagsByNames(ctx, tagNames)
		if err != nil {
			return err
		}
		skipped = missing
		return tx.linkTags(post.ID, tags)
	})
	if err != nil {
		post.ID = 0
		return nil, observe("create_post", classify(err))
	}
	return skipped, observe("create_post", nil)
}

// UpdatePost overwrites title and content and replaces the post's tag set with
// exactly the tags named in tagNames.
func (s *Store) UpdatePost(ctx context.Context, post *models.Post, tagNames []string) ([]string, error) {
	var skipped []string
	err := s.Transaction(ctx, func(tx *Store) error {
		post.Title = strings.TrimSpace(post.Title)
		err := tx.db.Model(&models.Post{}).Where("id = ?", post.ID).UpdateColumns(map[string]interface{}{
			"title":   post.Title,
			"content": post.Content,
		}).Error
		if err != nil {
			return err
		}
		tags, missing, err := tx.FindTagsByNames(ctx, tagNames)
		if err != nil {
			return err
		}
		skipped = missing
		return tx.ReplacePostTags(ctx, post.ID, tags)
	})
	if err != nil {
		return nil, observe("update_post", classify(err))
	}
	return skipped, observe("update_post", nil)
}

// DeletePost removes the post and its tag links.
func (s *Store) DeletePost(ctx context.Context, id uint) error {
	err := s.Transaction(ctx, func(tx *Store) error {
		if err := tx.db.Where("post_id = ?", id).Delete(&models.PostTag{}).Error; err != nil {
			return err
		}
		res := tx.db.Delete(&models.Post{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	return observe("delete_post", classify(err))
}

// TagsForPost returns the tags attached to a post, by name.
func (s *Store) TagsForPost(ctx context.Context, postID uint) ([]models.Tag, error) {
	var tags []models.Tag
	err := s.conn(ctx).
		Joins("JOIN post_tags ON post_tags.tag_id = tags.id").
		Where("post_tags.post_id = ?", postID).
		Order("tags.name").
		Find(&tags).Error
	return tags, observe("tags_for_post", classify(err))
}

// ReplacePostTags detaches every tag from the post and attaches tags instead.
// Call it on a transactional Store to make the swap atomic.
func (s *Store) ReplacePostTags(ctx context.Context, postID uint, tags []models.Tag) error {
	err := s.conn(ctx).Where("post_id = ?", postID).Delete(&models.PostTag{}).Error
	if err == nil {
		err = s.linkTags(postID, tags)
	}
	return observe("replace_post_tags", classify(err))
}

func (s *Store) linkTags(postID uint, tags []models.Tag) error {
	if len(tags) == 0 {
		return nil
	}
	links := make([]models.PostTag, 0, len(tags))
	for _, tag := range tags {
		links = append(links, models.PostTag{PostID: postID, TagID: tag.ID})
	}
	return s.db.Omit(clause.Associations).Create(&links).Error
}
