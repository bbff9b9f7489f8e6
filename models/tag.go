package models

// Tag labels posts. Names are unique.
type Tag struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:50;not null;uniqueIndex" json:"name"`
}

// PostTag links a post to a tag.
type PostTag struct {
	PostID uint  `gorm:"primaryKey;autoIncrement:false" json:"post_id"`
	TagID  uint  `gorm:"primaryKey;autoIncrement:false;index" json:"tag_id"`
	Post   *Post `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Tag    *Tag  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

// TableName pins the join table name.
func (PostTag) TableName() string {
	return "post_tags"
}

// All lists every model in dependency order for migrations.
func All() []interface{} {
	return []interface{}{&User{}, &Tag{}, &Post{}, &PostTag{}}
}
