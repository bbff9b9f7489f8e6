package models

import "time"

// FriendlyDateLayout is the layout used when showing a post's creation time.
const FriendlyDateLayout = "Mon Jan 2 2006, 3:04 PM"

// Post is a blog entry written by a user.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:50;not null" json:"title"`
	Content   string    `gorm:"size:500;not null" json:"content"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	User      *User     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author,omitempty"`
}

// FriendlyDate formats CreatedAt for display.
func (p Post) FriendlyDate() string {
	return p.CreatedAt.Format(FriendlyDateLayout)
}
