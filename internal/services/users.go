package services

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/avkrapivin/top-me-up-sub000/internal/apperr"
	"github.com/avkrapivin/top-me-up-sub000/internal/models"
	"github.com/avkrapivin/top-me-up-sub000/internal/store"
	"github.com/avkrapivin/top-me-up-sub000/internal/utils"
)

const (
	minPasswordLength  = 6
	maxDisplayNameSize = 50
)

type UserStore interface {
	Get(ctx context.Context, id uint) (*models.User, error)
	ByEmail(ctx context.Context, email string) (*models.User, error)
	EmailTaken(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, user *models.User) error
	UpdateDisplayName(ctx context.Context, id uint, displayName string) error
	Stats(ctx context.Context, id uint) (store.UserStats, error)
}

type RegisterInput struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6"`
	DisplayName string `json:"displayName" binding:"required,notblank,max=50"`
}

// Profile is the public view of a user.
type Profile struct {
	ID          uint            `json:"_id"`
	DisplayName string          `json:"displayName"`
	CreatedAt   time.Time       `json:"createdAt"`
	Stats       store.UserStats `json:"stats"`
}

type UserService struct {
	users UserStore
}

func NewUserService(users UserStore) *UserService {
	return &UserService{users: users}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func cleanDisplayName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" || utf8.RuneCountInString(name) > maxDisplayNameSize {
		return "", apperr.InvalidArgument("display name must be 1-%d characters", maxDisplayNameSize)
	}
	return name, nil
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	email := normalizeEmail(in.Email)
	if email == "" {
		return nil, apperr.InvalidArgument("email is required")
	}
	if len(in.Password) < minPasswordLength {
		return nil, apperr.InvalidArgument("password must be at least %d characters", minPasswordLength)
	}
	name, err := cleanDisplayName(in.DisplayName)
	if err != nil {
		return nil, err
	}

	taken, err := s.users.EmailTaken(ctx, email)
	if err != nil {
		return nil, apperr.Wrap(err, "check email")
	}
	if taken {
		return nil, apperr.New(apperr.CodeConflict, "email is already registered")
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Wrap(err, "hash password")
	}
	user := &models.User{Email: email, Password: hash, DisplayName: name}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperr.Wrap(err, "create user")
	}
	return user, nil
}

// Authenticate checks credentials. Unknown emails and wrong passwords look the same.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.ByEmail(ctx, normalizeEmail(email))
	if apperr.CodeOf(err) == apperr.CodeNotFound {
		return nil, apperr.New(apperr.CodeUnauthenticated, "invalid email or password")
	}
	if err != nil {
		return nil, apperr.Wrap(err, "load user")
	}
	if !utils.CheckPassword(user.Password, password) {
		return nil, apperr.New(apperr.CodeUnauthenticated, "invalid email or password")
	}
	return user, nil
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.users.Get(ctx, id)
	return user, apperr.Wrap(err, "load user")
}

func (s *UserService) Profile(ctx context.Context, id uint) (*Profile, error) {
	user, err := s.users.Get(ctx, id)
	if err != nil {
		return nil, apperr.Wrap(err, "load user")
	}
	stats, err := s.users.Stats(ctx, id)
	if err != nil {
		return nil, apperr.Wrap(err, "load user stats")
	}
	return &Profile{
		ID:          user.ID,
		DisplayName: user.DisplayName,
		CreatedAt:   user.CreatedAt,
		Stats:       stats,
	}, nil
}

func (s *UserService) UpdateDisplayName(ctx context.Context, id uint, raw string) (*models.User, error) {
	name, err := cleanDisplayName(raw)
	if err != nil {
		return nil, err
	}
	if err := s.users.UpdateDisplayName(ctx, id, name); err != nil {
		return nil, apperr.Wrap(err, "update user")
	}
	return s.Get(ctx, id)
}
