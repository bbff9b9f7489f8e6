package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/cppla/blogly/models"
)

var (
	seedUsers = []models.User{
		{FirstName: "John", LastName: "Doe"},
		{FirstName: "Jane", LastName: "Smith"},
		{FirstName: "Alice", LastName: "Johnson"},
		{FirstName: "Bob", LastName: "Brown"},
	}
	seedTags  = []string{"fun", "even more", "bloop", "zope"}
	seedPosts = []struct {
		author  int
		title   string
		content string
		tags    []string
	}{
		{0, "First Post!", "Oh, hai.", []string{"fun"}},
		{0, "Yet Another Post", "Nothing much to say today.", []string{"fun", "even more"}},
		{1, "Flask Is Behind Us", "Everything is Go now.", []string{"bloop", "zope"}},
		{2, "Tags Everywhere", "A post with every tag.", []string{"fun", "even more", "bloop", "zope"}},
	}
)

// Seed empties every table and loads a small sample data set.
func (s *Store) Seed(ctx context.Context) error {
	return s.Transaction(ctx, func(tx *Store) error {
		wipe := tx.db.Session(&gorm.Session{AllowGlobalUpdate: true})
		for _, m := range []interface{}{&models.PostTag{}, &models.Post{}, &models.Tag{}, &models.User{}} {
			if err := wipe.Delete(m).Error; err != nil {
				return fmt.Errorf("clear %T: %w", m, err)
			}
		}

		users := make([]models.User, len(seedUsers))
		copy(users, seedUsers)
		for i := range users {
			if err := tx.CreateUser(ctx, &users[i]); err != nil {
				return fmt.Errorf("seed user %s: %w", users[i].FullName(), err)
			}
		}
		for _, name := range seedTags {
			if err := tx.CreateTag(ctx, &models.Tag{Name: name}); err != nil {
				return fmt.Errorf("seed tag %q: %w", name, err)
			}
		}
		for _, p := range seedPosts {
			post := models.Post{Title: p.title, Content: p.content, UserID: users[p.author].ID}
			if _, err := tx.CreatePost(ctx, &post, p.tags); err != nil {
				return fmt.Errorf("seed post %q: %w", p.title, err)
			}
		}
		return nil
	})
}
