package model

import "time"

type Comment struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	AuthorID  string    `gorm:"type:varchar(36);not null;index" json:"author_id"`
	Author    *User     `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	PostID    string    `gorm:"type:varchar(36);not null;index:idx_comment_post_created" json:"post_id"`
	CreatedAt time.Time `gorm:"index:idx_comment_post_created" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Comment) TableName() string { return "comments" }
