package store

import (
	"context"
	"strings"

	"gorm.io/gorm/clause"

	"github.com/cppla/blogly/models"
)

// ListTags returns every tag ordered by name.
func (s *Store) ListTags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	err := s.conn(ctx).Order("name").Find(&tags).Error
	return tags, observe("list_tags", classify(err))
}

// GetTag loads a tag by id.
func (s *Store) GetTag(ctx context.Context, id uint) (*models.Tag, error) {
	var tag models.Tag
	if err := s.conn(ctx).First(&tag, id).Error; err != nil {
		return nil, observe("get_tag", classify(err))
	}
	return &tag, observe("get_tag", nil)
}

// CreateTag inserts a tag, failing with ErrDuplicate when the name is taken.
func (s *Store) CreateTag(ctx context.Context, tag *models.Tag) error {
	tag.Name = strings.TrimSpace(tag.Name)
	err := s.Transaction(ctx, func(tx *Store) error {
		if err := tx.ensureTagNameFree(tag.Name, 0); err != nil {
			return err
		}
		return tx.db.Omit(clause.Associations).Create(tag).Error
	})
	if err != nil {
		tag.ID = 0
	}
	return observe("create_tag", classify(err))
}

// UpdateTag renames a tag under the same uniqueness rule as CreateTag.
// It returns ErrNotFound when no tag has the given id.
func (s *Store) UpdateTag(ctx context.Context, tag *models.Tag) error {
	tag.Name = strings.TrimSpace(tag.Name)
	err := s.Transaction(ctx, func(tx *Store) error {
		if err := tx.ensureTagNameFree(tag.Name, tag.ID); err != nil {
			return err
		}
		res := tx.db.Model(&models.Tag{}).Where("id = ?", tag.ID).UpdateColumn("name", tag.Name)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	return observe("update_tag", classify(err))
}

// DeleteTag removes the tag and detaches it from every post.
func (s *Store) DeleteTag(ctx context.Context, id uint) error {
	err := s.Transaction(ctx, func(tx *Store) error {
		if err := tx.db.Where("tag_id = ?", id).Delete(&models.PostTag{}).Error; err != nil {
			return err
		}
		res := tx.db.Delete(&models.Tag{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	return observe("delete_tag", classify(err))
}

// PostsForTag returns posts carrying the tag, newest first.
func (s *Store) PostsForTag(ctx context.Context, tagID uint) ([]models.Post, error) {
	var posts []models.Post
	err := s.conn(ctx).
		Joins("JOIN post_tags ON post_tags.post_id = posts.id").
		Where("post_tags.tag_id = ?", tagID).
		Order("posts.created_at DESC, posts.id DESC").
		Find(&posts).Error
	return posts, observe("posts_for_tag", classify(err))
}

// FindTagsByNames looks up tags by exact name. Blank and repeated names are
// ignored; names with no matching tag are returned in missing, in input order.
func (s *Store) FindTagsByNames(ctx context.Context, names []string) ([]models.Tag, []string, error) {
	wanted := normalizeNames(names)
	if len(wanted) == 0 {
		return nil, nil, nil
	}

	var tags []models.Tag
	if err := s.conn(ctx).Where("name IN ?", wanted).Order("name").Find(&tags).Error; err != nil {
		return nil, nil, observe("find_tags_by_names", classify(err))
	}

	found := make(map[string]bool, len(tags))
	for _, t := range tags {
		found[t.Name] = true
	}
	var missing []string
	for _, name := range wanted {
		if !found[name] {
			missing = append(missing, name)
		}
	}
	return tags, missing, observe("find_tags_by_names", nil)
}

func (s *Store) ensureTagNameFree(name string, exceptID uint) error {
	var count int64
	q := s.db.Model(&models.Tag{}).Where("name = ?", name)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicate
	}
	return nil
}

func normalizeNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
