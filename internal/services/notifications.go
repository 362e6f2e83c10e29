package services

import (
	"context"
	"sync"
	"time"

	"github.com/avkrapivin/top-me-up-sub000/internal/apperr"
	"github.com/avkrapivin/top-me-up-sub000/internal/models"

	"go.uber.org/zap"
)

const notificationPageSize = 50

type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	Latest(ctx context.Context, userID uint, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, userID, id uint) error
	MarkAllRead(ctx context.Context, userID uint) error
	UnreadCount(ctx context.Context, userID uint) (int64, error)
}

type NotificationService struct {
	store NotificationStore
	log   *zap.Logger
	wg    sync.WaitGroup
}

func NewNotificationService(store NotificationStore, log *zap.Logger) *NotificationService {
	return &NotificationService{store: store, log: log}
}

// NotifyReply tells the parent's author about a reply. It runs in the
// background and only logs on failure.
func (s *NotificationService) NotifyReply(parent, reply *models.Comment) {
	n := &models.Notification{
		UserID:    parent.UserID,
		ActorID:   reply.UserID,
		ListID:    reply.ListID,
		CommentID: reply.ID,
		Type:      models.NotificationTypeReplyComment,
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.store.Create(ctx, n); err != nil {
			s.log.Error("create reply notification failed",
				zap.Uint("user_id", n.UserID),
				zap.Uint("comment_id", n.CommentID),
				zap.Error(err))
		}
	}()
}

// Wait blocks until all pending notifications are written.
func (s *NotificationService) Wait() {
	s.wg.Wait()
}

type NotificationFeed struct {
	Notifications []models.Notification `json:"notifications"`
	Unread        int64                 `json:"unread"`
}

func (s *NotificationService) Latest(ctx context.Context, userID uint) (*NotificationFeed, error) {
	notifications, err := s.store.Latest(ctx, userID, notificationPageSize)
	if err != nil {
		return nil, apperr.Wrap(err, "load notifications")
	}
	unread, err := s.store.UnreadCount(ctx, userID)
	if err != nil {
		return nil, apperr.Wrap(err, "count notifications")
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}
	return &NotificationFeed{Notifications: notifications, Unread: unread}, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, id uint) error {
	return apperr.Wrap(s.store.MarkRead(ctx, userID, id), "mark notification read")
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) error {
	return apperr.Wrap(s.store.MarkAllRead(ctx, userID), "mark notifications read")
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	return s.store.UnreadCount(ctx, userID)
}
