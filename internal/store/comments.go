// Package store holds the gorm-backed persistence used by the services.
package store

import (
	"context"
	"errors"

	"github.com/avkrapivin/top-me-up-sub000/internal/apperr"
	"github.com/avkrapivin/top-me-up-sub000/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CommentStore struct {
	db *gorm.DB
}

func NewCommentStore(db *gorm.DB) *CommentStore {
	return &CommentStore{db: db}
}

func (s *CommentStore) ListExists(ctx context.Context, listID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.List{}).Where("id = ?", listID).Count(&count).Error
	return count > 0, err
}

// RootComments returns up to limit top-level comments of a list, newest first,
// strictly older than beforeID when beforeID is non-zero. Soft-deleted roots are
// kept only while they still have replies.
func (s *CommentStore) RootComments(ctx context.Context, listID, beforeID uint, limit int) ([]models.Comment, error) {
	q := s.db.WithContext(ctx).Preload("Likes").
		Where("comments.list_id = ? AND comments.parent_comment_id IS NULL", listID).
		Where("comments.is_deleted = ? OR EXISTS (SELECT 1 FROM comments r WHERE r.parent_comment_id = comments.id)", false)
	if beforeID > 0 {
		q = q.Where("comments.id < ?", beforeID)
	}

	var comments []models.Comment
	err := q.Order("comments.id DESC").Limit(limit).Find(&comments).Error
	return comments, err
}

// Replies returns the direct children of every parent in parentIDs, oldest first.
func (s *CommentStore) Replies(ctx context.Context, parentIDs []uint) ([]models.Comment, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}
	var comments []models.Comment
	err := s.db.WithContext(ctx).Preload("Likes").
		Where("parent_comment_id IN ?", parentIDs).
		Order("id ASC").
		Find(&comments).Error
	return comments, err
}

// CountByList counts every comment of the list at any depth, deleted or not.
func (s *CommentStore) CountByList(ctx context.Context, listID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Comment{}).Where("list_id = ?", listID).Count(&count).Error
	return count, err
}

func (s *CommentStore) Create(ctx context.Context, c *models.Comment) error {
	return s.db.WithContext(ctx).Omit("List", "Likes").Create(c).Error
}

func (s *CommentStore) Get(ctx context.Context, id uint) (*models.Comment, error) {
	var c models.Comment
	err := s.db.WithContext(ctx).Preload("Likes").First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("comment")
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Update persists the mutable columns of a comment (content, edit and delete state).
func (s *CommentStore) Update(ctx context.Context, c *models.Comment) error {
	return s.db.WithContext(ctx).Model(c).
		Select("content", "is_edited", "edited_at", "is_deleted", "updated_at").
		Updates(c).Error
}

// AddLike puts userID into the comment's like set and returns the recomputed count.
// Adding an existing member is a no-op.
func (s *CommentStore) AddLike(ctx context.Context, commentID, userID uint) (int, error) {
	var count int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		like := models.CommentLike{CommentID: commentID, UserID: userID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&like).Error; err != nil {
			return err
		}
		var err error
		count, err = recountLikes(tx, commentID)
		return err
	})
	return count, err
}

// RemoveLike takes userID out of the like set and returns the recomputed count.
func (s *CommentStore) RemoveLike(ctx context.Context, commentID, userID uint) (int, error) {
	var count int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("comment_id = ? AND user_id = ?", commentID, userID).
			Delete(&models.CommentLike{}).Error; err != nil {
			return err
		}
		var err error
		count, err = recountLikes(tx, commentID)
		return err
	})
	return count, err
}

func recountLikes(tx *gorm.DB, commentID uint) (int, error) {
	var n int64
	if err := tx.Model(&models.CommentLike{}).Where("comment_id = ?", commentID).Count(&n).Error; err != nil {
		return 0, err
	}
	err := tx.Model(&models.Comment{}).Where("id = ?", commentID).UpdateColumn("likes_count", n).Error
	return int(n), err
}
