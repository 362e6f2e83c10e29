package models

import (
	"time"
)

// DeletedCommentContent replaces the content of a soft-deleted comment.
const DeletedCommentContent = "This comment has been deleted"

type Comment struct {
	ID              uint          `gorm:"primaryKey"`
	ListID          uint          `gorm:"not null;index"`
	List            List          `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	UserID          uint          `gorm:"not null;index"`
	ParentCommentID *uint         `gorm:"index"` // nil for top-level comments
	Content         string        `gorm:"type:text;not null"`
	IsEdited        bool          `gorm:"default:false"`
	EditedAt        *time.Time
	IsDeleted       bool          `gorm:"default:false;index"`
	Likes           []CommentLike `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	LikesCount      int           `gorm:"default:0"` // always len(Likes), recomputed on like/unlike
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CommentLike is one member of a comment's liking-user set.
type CommentLike struct {
	ID        uint      `gorm:"primaryKey"`
	CommentID uint      `gorm:"not null;uniqueIndex:idx_comment_like_user"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_comment_like_user;index"`
	CreatedAt time.Time
}

// LikedBy reports whether userID is in the likes set. Anonymous viewers (0) never are.
func (c *Comment) LikedBy(userID uint) bool {
	if userID == 0 {
		return false
	}
	for _, l := range c.Likes {
		if l.UserID == userID {
			return true
		}
	}
	return false
}

// SoftDelete flags the comment and overwrites its content.
func (c *Comment) SoftDelete() {
	c.IsDeleted = true
	c.Content = DeletedCommentContent
}
