package services

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/avkrapivin/top-me-up-sub000/internal/apperr"
	"github.com/avkrapivin/top-me-up-sub000/internal/models"
)

// memStore is an in-memory CommentStore and IdentityStore.
type memStore struct {
	mu       sync.Mutex
	lists    map[uint]bool
	comments map[uint]*models.Comment
	users    map[uint]models.User
	nextID   uint

	failReplies bool
	userLookups int
}

func newMemStore() *memStore {
	return &memStore{
		lists:    map[uint]bool{},
		comments: map[uint]*models.Comment{},
		users:    map[uint]models.User{},
	}
}

func (m *memStore) addUser(id uint, name string) {
	m.users[id] = models.User{ID: id, DisplayName: name}
}

// add inserts a comment with the next ID.
func (m *memStore) add(listID, userID uint, parent *uint, content string, likedBy ...uint) *models.Comment {
	m.nextID++
	m.lists[listID] = true
	c := &models.Comment{
		ID:              m.nextID,
		ListID:          listID,
		UserID:          userID,
		ParentCommentID: parent,
		Content:         content,
		CreatedAt:       time.Unix(int64(m.nextID), 0),
		UpdatedAt:       time.Unix(int64(m.nextID), 0),
	}
	for _, u := range likedBy {
		c.Likes = append(c.Likes, models.CommentLike{CommentID: c.ID, UserID: u})
	}
	c.LikesCount = len(c.Likes)
	m.comments[c.ID] = c
	return c
}

func (m *memStore) sorted(desc bool, keep func(*models.Comment) bool) []models.Comment {
	var out []models.Comment
	for _, c := range m.comments {
		if keep(c) {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if desc {
			return out[i].ID > out[j].ID
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (m *memStore) hasReplies(id uint) bool {
	for _, c := range m.comments {
		if c.ParentCommentID != nil && *c.ParentCommentID == id {
			return true
		}
	}
	return false
}

func (m *memStore) ListExists(_ context.Context, listID uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lists[listID], nil
}

func (m *memStore) RootComments(_ context.Context, listID, beforeID uint, limit int) ([]models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.sorted(true, func(c *models.Comment) bool {
		return c.ListID == listID && c.ParentCommentID == nil &&
			(beforeID == 0 || c.ID < beforeID) &&
			(!c.IsDeleted || m.hasReplies(c.ID))
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) Replies(_ context.Context, parentIDs []uint) ([]models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failReplies {
		return nil, context.DeadlineExceeded
	}
	return m.sorted(false, func(c *models.Comment) bool {
		return c.ParentCommentID != nil && slices.Contains(parentIDs, *c.ParentCommentID)
	}), nil
}

func (m *memStore) CountByList(_ context.Context, listID uint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, c := range m.comments {
		if c.ListID == listID {
			n++
		}
	}
	return n, nil
}

func (m *memStore) Create(_ context.Context, c *models.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	c.ID = m.nextID
	c.CreatedAt = time.Unix(int64(c.ID), 0)
	c.UpdatedAt = c.CreatedAt
	stored := *c
	m.comments[c.ID] = &stored
	return nil
}

func (m *memStore) Get(_ context.Context, id uint) (*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.comments[id]
	if !ok {
		return nil, apperr.NotFound("comment")
	}
	cp := *c
	cp.Likes = slices.Clone(c.Likes)
	return &cp, nil
}

func (m *memStore) Update(_ context.Context, c *models.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.comments[c.ID]
	if !ok {
		return apperr.NotFound("comment")
	}
	stored.Content = c.Content
	stored.IsEdited = c.IsEdited
	stored.EditedAt = c.EditedAt
	stored.IsDeleted = c.IsDeleted
	return nil
}

func (m *memStore) AddLike(_ context.Context, commentID, userID uint) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.comments[commentID]
	if !c.LikedBy(userID) {
		c.Likes = append(c.Likes, models.CommentLike{CommentID: commentID, UserID: userID})
	}
	c.LikesCount = len(c.Likes)
	return c.LikesCount, nil
}

func (m *memStore) RemoveLike(_ context.Context, commentID, userID uint) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.comments[commentID]
	c.Likes = slices.DeleteFunc(c.Likes, func(l models.CommentLike) bool { return l.UserID == userID })
	c.LikesCount = len(c.Likes)
	return c.LikesCount, nil
}

func (m *memStore) UsersByID(_ context.Context, ids []uint) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.userLookups++
	var out []models.User
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

type recordingCounters struct {
	mu  sync.Mutex
	ids []uint
}

func (r *recordingCounters) ScheduleUpdate(listID uint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, listID)
}

type recordingNotifier struct {
	replies []*models.Comment
}

func (r *recordingNotifier) NotifyReply(_, reply *models.Comment) {
	r.replies = append(r.replies, reply)
}
