package services

import (
	"context"
	"errors"
	"testing"

	"github.com/avkrapivin/top-me-up-sub000/internal/apperr"
	"github.com/avkrapivin/top-me-up-sub000/internal/db/dbtest"
	"github.com/avkrapivin/top-me-up-sub000/internal/models"
	"github.com/avkrapivin/top-me-up-sub000/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type failingNotificationStore struct {
	NotificationStore
}

func (failingNotificationStore) Create(context.Context, *models.Notification) error {
	return errors.New("insert failed")
}

func TestReplyNotificationFeed(t *testing.T) {
	svc := NewNotificationService(store.NewNotificationStore(dbtest.Open(t)), zap.NewNop())
	ctx := context.Background()

	parent := &models.Comment{ID: 1, ListID: 3, UserID: 10}
	svc.NotifyReply(parent, &models.Comment{ID: 2, ListID: 3, UserID: 11, ParentCommentID: ptr(1)})
	svc.NotifyReply(parent, &models.Comment{ID: 4, ListID: 3, UserID: 12, ParentCommentID: ptr(1)})
	svc.Wait()

	feed, err := svc.Latest(ctx, 10)
	require.NoError(t, err)
	require.Len(t, feed.Notifications, 2)
	assert.Equal(t, int64(2), feed.Unread)
	for _, n := range feed.Notifications {
		assert.Equal(t, models.NotificationTypeReplyComment, n.Type)
		assert.Equal(t, uint(3), n.ListID)
	}

	require.NoError(t, svc.MarkRead(ctx, 10, feed.Notifications[0].ID))
	unread, err := svc.UnreadCount(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)

	err = svc.MarkRead(ctx, 11, feed.Notifications[1].ID)
	assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))

	require.NoError(t, svc.MarkAllRead(ctx, 10))
	feed, err = svc.Latest(ctx, 10)
	require.NoError(t, err)
	assert.Zero(t, feed.Unread)

	empty, err := svc.Latest(ctx, 99)
	require.NoError(t, err)
	assert.NotNil(t, empty.Notifications)
	assert.Empty(t, empty.Notifications)
}

func TestReplyNotificationFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	svc := NewNotificationService(failingNotificationStore{}, zap.New(core))

	svc.NotifyReply(&models.Comment{ID: 1, UserID: 10}, &models.Comment{ID: 2, UserID: 11})
	svc.Wait()

	assert.Equal(t, 1, logs.FilterMessage("create reply notification failed").Len())
}
