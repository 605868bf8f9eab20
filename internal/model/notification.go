package model

import "time"

type NotificationType string

const (
	NotificationMentionPost    NotificationType = "MENTION_POST"
	NotificationMentionComment NotificationType = "MENTION_COMMENT"
)

// Notification 提及通知；不会被删除，引用的帖子/评论删除后置空
type Notification struct {
	ID          string           `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Type        NotificationType `gorm:"type:varchar(32);not null" json:"type"`
	RecipientID string           `gorm:"type:varchar(36);not null;index:idx_notification_recipient" json:"recipient_id"`
	Recipient   *User            `gorm:"foreignKey:RecipientID;constraint:OnDelete:CASCADE" json:"-"`
	SenderID    string           `gorm:"type:varchar(36);not null" json:"sender_id"`
	Sender      *User            `gorm:"foreignKey:SenderID;constraint:OnDelete:CASCADE" json:"sender,omitempty"`
	PostID      *string          `gorm:"type:varchar(36);index" json:"post_id,omitempty"`
	Post        *Post            `gorm:"foreignKey:PostID;constraint:OnDelete:SET NULL" json:"post,omitempty"`
	CommentID   *string          `gorm:"type:varchar(36);index" json:"comment_id,omitempty"`
	Comment     *Comment         `gorm:"foreignKey:CommentID;constraint:OnDelete:SET NULL" json:"comment,omitempty"`
	IsRead      bool             `gorm:"not null;default:false;index" json:"is_read"`
	CreatedAt   time.Time        `gorm:"index" json:"created_at"`
}

func (Notification) TableName() string { return "notifications" }
