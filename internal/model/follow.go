package model

import "time"

// Follow 关注关系（Follower 关注 Following）
type Follow struct {
	ID          string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	FollowerID  string `gorm:"type:varchar(36);not null;index:idx_follow_follower;uniqueIndex:ux_follow_pair" json:"follower_id"`
	FollowingID string `gorm:"type:varchar(36);not null;index:idx_follow_following;uniqueIndex:ux_follow_pair" json:"following_id"`
	// 复合唯一键，避免重复关注
	// ux_follow_pair = (follower_id, following_id)
	Follower  *User     `gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE" json:"follower,omitempty"`
	Following *User     `gorm:"foreignKey:FollowingID;constraint:OnDelete:CASCADE" json:"following,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (Follow) TableName() string { return "follows" }
