package services

import (
	"context"

	"github.com/avkrapivin/top-me-up-sub000/internal/apperr"
	"github.com/avkrapivin/top-me-up-sub000/internal/models"
	"github.com/avkrapivin/top-me-up-sub000/internal/utils"
)

const (
	DefaultCommentLimit = 20
	MaxCommentLimit     = 100
)

// CommentStore is the persistence the comment services need.
type CommentStore interface {
	ListExists(ctx context.Context, listID uint) (bool, error)
	RootComments(ctx context.Context, listID, beforeID uint, limit int) ([]models.Comment, error)
	Replies(ctx context.Context, parentIDs []uint) ([]models.Comment, error)
	CountByList(ctx context.Context, listID uint) (int64, error)
	Create(ctx context.Context, c *models.Comment) error
	Get(ctx context.Context, id uint) (*models.Comment, error)
	Update(ctx context.Context, c *models.Comment) error
	AddLike(ctx context.Context, commentID, userID uint) (int, error)
	RemoveLike(ctx context.Context, commentID, userID uint) (int, error)
}

// IdentityStore resolves author records in bulk.
type IdentityStore interface {
	UsersByID(ctx context.Context, ids []uint) ([]models.User, error)
}

type ThreadQuery struct {
	ListID   uint
	Limit    int    // 0 means DefaultCommentLimit
	Cursor   string // ID of the last root of the previous page, "" for the first page
	ViewerID uint   // 0 for anonymous viewers
}

type Pagination struct {
	Limit      int     `json:"limit"`
	Total      int64   `json:"total"`
	HasNext    bool    `json:"hasNext"`
	NextCursor *string `json:"nextCursor"`
}

type ThreadPage struct {
	Roots      []*CommentNode
	Pagination Pagination
}

// ParseCursor validates a page cursor. The empty cursor is 0.
func ParseCursor(cursor string) (uint, error) {
	if cursor == "" {
		return 0, nil
	}
	id, ok := utils.ParseID(cursor)
	if !ok {
		return 0, apperr.InvalidArgument("invalid cursor %q", cursor)
	}
	return id, nil
}

func normalizeLimit(limit int) (int, error) {
	if limit == 0 {
		return DefaultCommentLimit, nil
	}
	if limit < 1 || limit > MaxCommentLimit {
		return 0, apperr.InvalidArgument("limit must be between 1 and %d", MaxCommentLimit)
	}
	return limit, nil
}

// Thread returns one page of top-level comments of a list, newest first, each
// carrying its complete reply tree.
func (s *CommentService) Thread(ctx context.Context, q ThreadQuery) (*ThreadPage, error) {
	limit, err := normalizeLimit(q.Limit)
	if err != nil {
		return nil, err
	}
	before, err := ParseCursor(q.Cursor)
	if err != nil {
		return nil, err
	}

	exists, err := s.comments.ListExists(ctx, q.ListID)
	if err != nil {
		return nil, apperr.Wrap(err, "load list")
	}
	if !exists {
		return nil, apperr.NotFound("list")
	}

	roots, err := s.comments.RootComments(ctx, q.ListID, before, limit+1)
	if err != nil {
		return nil, apperr.Wrap(err, "load comments")
	}
	pagination := Pagination{Limit: limit}
	if len(roots) > limit {
		roots = roots[:limit]
		next := utils.FormatID(roots[len(roots)-1].ID)
		pagination.HasNext = true
		pagination.NextCursor = &next
	}

	replies, err := s.loadReplies(ctx, roots)
	if err != nil {
		return nil, err
	}

	identities, err := s.resolveIdentities(ctx, roots, replies)
	if err != nil {
		return nil, err
	}

	nodes := assembleTree(roots, replies, identities, q.ViewerID)

	total, err := s.comments.CountByList(ctx, q.ListID)
	if err != nil {
		return nil, apperr.Wrap(err, "count comments")
	}
	pagination.Total = total

	return &ThreadPage{Roots: nodes, Pagination: pagination}, nil
}

// loadReplies expands the roots level by level until a level has no children.
// The result holds every descendant once, level by level, oldest first per level.
func (s *CommentService) loadReplies(ctx context.Context, roots []models.Comment) ([]models.Comment, error) {
	seen := make(map[uint]bool, len(roots))
	frontier := make([]uint, 0, len(roots))
	for _, r := range roots {
		seen[r.ID] = true
		frontier = append(frontier, r.ID)
	}

	var all []models.Comment
	for len(frontier) > 0 {
		level, err := s.comments.Replies(ctx, frontier)
		if err != nil {
			return nil, apperr.Wrap(err, "load replies")
		}
		next := make([]uint, 0, len(level))
		for _, c := range level {
			if seen[c.ID] {
				continue
			}
			seen[c.ID] = true
			all = append(all, c)
			next = append(next, c.ID)
		}
		frontier = next
	}
	return all, nil
}

// resolveIdentities looks up every distinct author once. Authors without a user
// record are simply absent from the result.
func (s *CommentService) resolveIdentities(ctx context.Context, batches ...[]models.Comment) (map[uint]models.Identity, error) {
	seen := make(map[uint]bool)
	var ids []uint
	for _, batch := range batches {
		for _, c := range batch {
			if !seen[c.UserID] {
				seen[c.UserID] = true
				ids = append(ids, c.UserID)
			}
		}
	}

	identities := make(map[uint]models.Identity, len(ids))
	if len(ids) == 0 {
		return identities, nil
	}
	users, err := s.users.UsersByID(ctx, ids)
	if err != nil {
		return nil, apperr.Wrap(err, "resolve authors")
	}
	for i := range users {
		identities[users[i].ID] = users[i].Identity()
	}
	return identities, nil
}
