package model

import "time"

// Category 版块分类
type Category struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name         string    `gorm:"type:varchar(100);not null" json:"name"`
	Slug         string    `gorm:"type:varchar(120);not null;uniqueIndex" json:"slug"`
	Description  string    `gorm:"type:text" json:"description"`
	DisplayOrder int       `gorm:"not null;default:0" json:"display_order"`
	Forums       []Forum   `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"forums"`
	CreatedAt    time.Time `json:"created_at"`
}

func (Category) TableName() string { return "categories" }

// Forum 版块，slug 在分类内唯一
type Forum struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CategoryID   string    `gorm:"type:varchar(36);not null;uniqueIndex:ux_forum_category_slug" json:"category_id"`
	Name         string    `gorm:"type:varchar(100);not null" json:"name"`
	Slug         string    `gorm:"type:varchar(120);not null;uniqueIndex:ux_forum_category_slug" json:"slug"`
	Description  string    `gorm:"type:text" json:"description"`
	DisplayOrder int       `gorm:"not null;default:0" json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`

	TopicCount int64 `gorm:"-" json:"topic_count"`
	PostCount  int64 `gorm:"-" json:"post_count"`
}

func (Forum) TableName() string { return "forums" }

// Topic 主题，首帖随主题一起创建
type Topic struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ForumID   string    `gorm:"type:varchar(36);not null;index" json:"forum_id"`
	Forum     *Forum    `gorm:"foreignKey:ForumID;constraint:OnDelete:CASCADE" json:"forum,omitempty"`
	AuthorID  string    `gorm:"type:varchar(36);not null;index" json:"author_id"`
	Author    *User     `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Title     string    `gorm:"type:varchar(255);not null" json:"title"`
	Slug      string    `gorm:"type:varchar(255);not null;index" json:"slug"`
	IsPinned  bool      `gorm:"not null;default:false" json:"is_pinned"`
	IsLocked  bool      `gorm:"not null;default:false" json:"is_locked"`
	ViewCount int64     `gorm:"not null;default:0" json:"view_count"`
	Posts     []Post    `gorm:"foreignKey:TopicID;constraint:OnDelete:CASCADE" json:"-"`
	// LastPostAt 最近一次回帖时间，用于版块内排序
	LastPostAt time.Time `gorm:"index" json:"last_post_at"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	PostCount int64 `gorm:"-" json:"post_count"`
}

func (Topic) TableName() string { return "topics" }

// AllModels 需要迁移的全部模型
func AllModels() []interface{} {
	return []interface{}{
		&User{}, &Category{}, &Forum{}, &Topic{}, &Post{}, &Comment{},
		&Reaction{}, &Follow{}, &Notification{},
	}
}
