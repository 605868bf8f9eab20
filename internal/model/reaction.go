package model

import "time"

// ReactionType 反应类型
type ReactionType string

const (
	ReactionLike    ReactionType = "LIKE"
	ReactionLove    ReactionType = "LOVE"
	ReactionSupport ReactionType = "SUPPORT"
)

func (t ReactionType) Valid() bool {
	switch t {
	case ReactionLike, ReactionLove, ReactionSupport:
		return true
	}
	return false
}

// Reaction 每个 (user, post) 至多一条
type Reaction struct {
	ID     string       `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Type   ReactionType `gorm:"type:varchar(16);not null;default:LIKE" json:"type"`
	UserID string       `gorm:"type:varchar(36);not null;uniqueIndex:ux_reaction_user_post" json:"user_id"`
	PostID string       `gorm:"type:varchar(36);not null;uniqueIndex:ux_reaction_user_post;index" json:"post_id"`
	// ux_reaction_user_post = (user_id, post_id)
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Reaction) TableName() string { return "reactions" }
