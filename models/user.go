package models

import (
	"strings"

	"gorm.io/gorm"
)

// DefaultImageURL is stored for users who do not provide a profile image.
const DefaultImageURL = "https://www.freeiconspng.com/uploads/icon-user-blue-symbol-people-person-generic--public-domain--21.png"

// User represents a blog author.
type User struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	FirstName string `gorm:"size:50;not null" json:"first_name"`
	LastName  string `gorm:"size:50;not null" json:"last_name"`
	ImageURL  string `gorm:"size:500;not null" json:"image_url"`
}

// FullName joins first and last name.
func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// ApplyDefaults trims input and replaces a blank image with the placeholder.
func (u *User) ApplyDefaults() {
	u.FirstName = strings.TrimSpace(u.FirstName)
	u.LastName = strings.TrimSpace(u.LastName)
	u.ImageURL = strings.TrimSpace(u.ImageURL)
	if u.ImageURL == "" {
		u.ImageURL = DefaultImageURL
	}
}

// BeforeSave hook ensures defaults even when rows are written outside the store.
func (u *User) BeforeSave(tx *gorm.DB) error {
	u.ApplyDefaults()
	return nil
}
