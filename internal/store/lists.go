package store

import (
	"context"
	"errors"

	"github.com/avkrapivin/top-me-up-sub000/internal/apperr"
	"github.com/avkrapivin/top-me-up-sub000/internal/models"

	"gorm.io/gorm"
)

type ListStore struct {
	db *gorm.DB
}

func NewListStore(db *gorm.DB) *ListStore {
	return &ListStore{db: db}
}

// ListFilter narrows a feed page. Zero values mean "any".
type ListFilter struct {
	Category models.Category
	UserID   uint
}

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Order("list_items.rank ASC")
}

func (s *ListStore) Create(ctx context.Context, list *models.List) error {
	return s.db.WithContext(ctx).Omit("User").Create(list).Error
}

func (s *ListStore) Get(ctx context.Context, id uint) (*models.List, error) {
	return s.first(ctx, "id = ?", id)
}

func (s *ListStore) BySlug(ctx context.Context, slug string) (*models.List, error) {
	return s.first(ctx, "slug = ?", slug)
}

func (s *ListStore) first(ctx context.Context, query string, arg any) (*models.List, error) {
	var list models.List
	err := s.db.WithContext(ctx).Preload("Items", preloadItems).Where(query, arg).First(&list).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("list")
	}
	if err != nil {
		return nil, err
	}
	return &list, nil
}

// Page returns one offset page of lists, newest first, and the total matching count.
func (s *ListStore) Page(ctx context.Context, filter ListFilter, offset, limit int) ([]models.List, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		if filter.Category != "" {
			db = db.Where("category = ?", filter.Category)
		}
		if filter.UserID != 0 {
			db = db.Where("user_id = ?", filter.UserID)
		}
		return db
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.List{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var lists []models.List
	err := s.db.WithContext(ctx).Scopes(scope).
		Preload("Items", preloadItems).
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&lists).Error
	return lists, total, err
}

// Update saves the list's own columns and replaces its items.
func (s *ListStore) Update(ctx context.Context, list *models.List) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(list).Select("title", "description", "category", "updated_at").
			Updates(list).Error; err != nil {
			return err
		}
		if err := tx.Where("list_id = ?", list.ID).Delete(&models.ListItem{}).Error; err != nil {
			return err
		}
		if len(list.Items) == 0 {
			return nil
		}
		for i := range list.Items {
			list.Items[i].ID = 0
			list.Items[i].ListID = list.ID
		}
		return tx.Create(&list.Items).Error
	})
}

// Delete removes the list together with its items, comments and comment likes.
func (s *ListStore) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		commentIDs := tx.Model(&models.Comment{}).Select("id").Where("list_id = ?", id)
		if err := tx.Where("comment_id IN (?)", commentIDs).Delete(&models.CommentLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("list_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("list_id = ?", id).Delete(&models.ListItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.List{}, id).Error
	})
}

// RecountComments recomputes the denormalized comment counter of a list from
// its visible comments.
func (s *ListStore) RecountComments(ctx context.Context, listID uint) error {
	var count int64
	db := s.db.WithContext(ctx)
	if err := db.Model(&models.Comment{}).
		Where("list_id = ? AND is_deleted = ?", listID, false).
		Count(&count).Error; err != nil {
		return err
	}
	return db.Model(&models.List{}).Where("id = ?", listID).UpdateColumn("comment_count", count).Error
}
