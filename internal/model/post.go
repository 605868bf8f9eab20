package model

import "time"

const DefaultCategory = "General"

// Post 帖子；删除时级联删除评论与反应
type Post struct {
	ID        string     `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Title     string     `gorm:"type:varchar(255);not null" json:"title"`
	Content   string     `gorm:"type:text;not null" json:"content"`
	Category  string     `gorm:"type:varchar(64);not null;default:General;index" json:"category"`
	AuthorID  string     `gorm:"type:varchar(36);not null;index:idx_post_author" json:"author_id"`
	Author    *User      `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	TopicID   *string    `gorm:"type:varchar(36);index:idx_post_topic" json:"topic_id,omitempty"`
	IsEdited  bool       `gorm:"not null;default:false" json:"is_edited"`
	Comments  []Comment  `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"comments,omitempty"`
	Reactions []Reaction `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"reactions,omitempty"`
	CreatedAt time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	CommentCount  int64 `gorm:"-" json:"comment_count"`
	ReactionCount int64 `gorm:"-" json:"reaction_count"`
}

func (Post) TableName() string { return "posts" }
