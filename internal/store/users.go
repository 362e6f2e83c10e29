package store

import (
	"context"
	"errors"

	"github.com/avkrapivin/top-me-up-sub000/internal/apperr"
	"github.com/avkrapivin/top-me-up-sub000/internal/models"

	"gorm.io/gorm"
)

type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

// UserStats are the counters shown on a public profile.
type UserStats struct {
	Lists         int64 `json:"lists"`
	Comments      int64 `json:"comments"`
	LikesReceived int64 `json:"likesReceived"`
}

// UsersByID looks up every user in ids in one query. Unknown IDs are skipped.
func (s *UserStore) UsersByID(ctx context.Context, ids []uint) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []models.User
	err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error
	return users, err
}

func (s *UserStore) Get(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("user")
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserStore) ByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("user")
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserStore) EmailTaken(ctx context.Context, email string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	return s.db.WithContext(ctx).Create(user).Error
}

func (s *UserStore) UpdateDisplayName(ctx context.Context, id uint, displayName string) error {
	return s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).
		Update("display_name", displayName).Error
}

func (s *UserStore) Stats(ctx context.Context, id uint) (UserStats, error) {
	var stats UserStats
	db := s.db.WithContext(ctx)
	if err := db.Model(&models.List{}).Where("user_id = ?", id).Count(&stats.Lists).Error; err != nil {
		return stats, err
	}
	if err := db.Model(&models.Comment{}).Where("user_id = ? AND is_deleted = ?", id, false).
		Count(&stats.Comments).Error; err != nil {
		return stats, err
	}
	err := db.Model(&models.Comment{}).Where("user_id = ?", id).
		Select("COALESCE(SUM(likes_count), 0)").Scan(&stats.LikesReceived).Error
	return stats, err
}
