package services

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/avkrapivin/top-me-up-sub000/internal/apperr"
	"github.com/avkrapivin/top-me-up-sub000/internal/models"

	"go.uber.org/zap"
)

const MaxCommentLength = 500

// CounterScheduler queues a best-effort recompute of a list's comment counter.
type CounterScheduler interface {
	ScheduleUpdate(listID uint)
}

// ReplyNotifier is told about every reply to someone else's comment.
type ReplyNotifier interface {
	NotifyReply(parent, reply *models.Comment)
}

type CommentService struct {
	comments CommentStore
	users    IdentityStore
	counters CounterScheduler
	notifier ReplyNotifier
	log      *zap.Logger
	now      func() time.Time
}

func NewCommentService(comments CommentStore, users IdentityStore, counters CounterScheduler, notifier ReplyNotifier, log *zap.Logger) *CommentService {
	return &CommentService{
		comments: comments,
		users:    users,
		counters: counters,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

type CreateCommentInput struct {
	ListID          uint
	UserID          uint
	Content         string
	ParentCommentID *uint
}

// LikeState is the result of a like or unlike.
type LikeState struct {
	LikesCount   int  `json:"likesCount"`
	UserHasLiked bool `json:"userHasLiked"`
}

func cleanContent(raw string) (string, error) {
	content := strings.TrimSpace(raw)
	n := utf8.RuneCountInString(content)
	if n == 0 || n > MaxCommentLength {
		return "", apperr.InvalidArgument("content must be 1-%d characters", MaxCommentLength)
	}
	return content, nil
}

func (s *CommentService) Create(ctx context.Context, in CreateCommentInput) (*CommentNode, error) {
	content, err := cleanContent(in.Content)
	if err != nil {
		return nil, err
	}

	exists, err := s.comments.ListExists(ctx, in.ListID)
	if err != nil {
		return nil, apperr.Wrap(err, "load list")
	}
	if !exists {
		return nil, apperr.NotFound("list")
	}

	var parent *models.Comment
	if in.ParentCommentID != nil {
		parent, err = s.comments.Get(ctx, *in.ParentCommentID)
		if apperr.CodeOf(err) == apperr.CodeNotFound {
			return nil, apperr.InvalidArgument("parent comment does not exist")
		}
		if err != nil {
			return nil, apperr.Wrap(err, "load parent comment")
		}
		if parent.ListID != in.ListID {
			return nil, apperr.InvalidArgument("parent comment belongs to another list")
		}
		if parent.IsDeleted {
			return nil, apperr.InvalidArgument("cannot reply to a deleted comment")
		}
	}

	comment := &models.Comment{
		ListID:          in.ListID,
		UserID:          in.UserID,
		Content:         content,
		ParentCommentID: in.ParentCommentID,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperr.Wrap(err, "create comment")
	}

	s.counters.ScheduleUpdate(in.ListID)
	if parent != nil && parent.UserID != in.UserID {
		s.notifier.NotifyReply(parent, comment)
	}

	return s.node(ctx, comment, in.UserID)
}

// Edit replaces the content of the caller's own comment.
func (s *CommentService) Edit(ctx context.Context, commentID, userID uint, raw string) (*CommentNode, error) {
	content, err := cleanContent(raw)
	if err != nil {
		return nil, err
	}
	comment, err := s.owned(ctx, commentID, userID)
	if err != nil {
		return nil, err
	}
	if comment.IsDeleted {
		return nil, apperr.InvalidArgument("cannot edit a deleted comment")
	}

	editedAt := s.now()
	comment.Content = content
	comment.IsEdited = true
	comment.EditedAt = &editedAt
	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, apperr.Wrap(err, "update comment")
	}
	return s.node(ctx, comment, userID)
}

// Delete soft-deletes the caller's own comment. Its replies stay in the thread.
func (s *CommentService) Delete(ctx context.Context, commentID, userID uint) error {
	comment, err := s.owned(ctx, commentID, userID)
	if err != nil {
		return err
	}
	if comment.IsDeleted {
		return nil
	}

	comment.SoftDelete()
	if err := s.comments.Update(ctx, comment); err != nil {
		return apperr.Wrap(err, "delete comment")
	}
	s.log.Debug("comment soft-deleted", zap.Uint("comment_id", comment.ID), zap.Uint("list_id", comment.ListID))
	s.counters.ScheduleUpdate(comment.ListID)
	return nil
}

func (s *CommentService) Like(ctx context.Context, commentID, userID uint) (*LikeState, error) {
	return s.toggleLike(ctx, commentID, userID, true)
}

func (s *CommentService) Unlike(ctx context.Context, commentID, userID uint) (*LikeState, error) {
	return s.toggleLike(ctx, commentID, userID, false)
}

func (s *CommentService) toggleLike(ctx context.Context, commentID, userID uint, like bool) (*LikeState, error) {
	comment, err := s.comments.Get(ctx, commentID)
	if err != nil {
		return nil, apperr.Wrap(err, "load comment")
	}
	if comment.IsDeleted {
		return nil, apperr.InvalidArgument("cannot like a deleted comment")
	}

	var count int
	if like {
		count, err = s.comments.AddLike(ctx, commentID, userID)
	} else {
		count, err = s.comments.RemoveLike(ctx, commentID, userID)
	}
	if err != nil {
		return nil, apperr.Wrap(err, "update likes")
	}
	return &LikeState{LikesCount: count, UserHasLiked: like}, nil
}

func (s *CommentService) owned(ctx context.Context, commentID, userID uint) (*models.Comment, error) {
	comment, err := s.comments.Get(ctx, commentID)
	if err != nil {
		return nil, apperr.Wrap(err, "load comment")
	}
	if comment.UserID != userID {
		return nil, apperr.Forbidden("only the author can change this comment")
	}
	return comment, nil
}

// node renders a single comment without its replies.
func (s *CommentService) node(ctx context.Context, c *models.Comment, viewerID uint) (*CommentNode, error) {
	identities, err := s.resolveIdentities(ctx, []models.Comment{*c})
	if err != nil {
		return nil, err
	}
	return newCommentNode(c, identities, viewerID), nil
}
