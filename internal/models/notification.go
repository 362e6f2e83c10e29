package models

import (
	"time"
)

type NotificationType string

const (
	NotificationTypeReplyComment NotificationType = "reply_comment"
)

type Notification struct {
	ID        uint             `gorm:"primaryKey" json:"_id"`
	UserID    uint             `gorm:"not null;index" json:"userId"` // Receiver
	User      User             `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	ActorID   uint             `gorm:"not null" json:"actorId"`
	ListID    uint             `gorm:"not null" json:"listId"`
	CommentID uint             `gorm:"not null" json:"commentId"`
	Type      NotificationType `gorm:"type:varchar(20);not null" json:"type"`
	IsRead    bool             `gorm:"default:false;index" json:"isRead"`
	CreatedAt time.Time        `json:"createdAt"`
}
