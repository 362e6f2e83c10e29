package services

import (
	"cmp"
	"slices"
	"time"

	"github.com/avkrapivin/top-me-up-sub000/internal/models"
)

// CommentNode is the API shape of a comment with its replies.
type CommentNode struct {
	ID              uint             `json:"_id"`
	ListID          uint             `json:"listId"`
	UserID          uint             `json:"userId"`
	Content         string           `json:"content"`
	IsEdited        bool             `json:"isEdited"`
	EditedAt        *time.Time       `json:"editedAt,omitempty"`
	ParentCommentID *uint            `json:"parentCommentId"`
	IsDeleted       bool             `json:"isDeleted"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
	User            *models.Identity `json:"user"`
	UserHasLiked    bool             `json:"userHasLiked"`
	LikesCount      int              `json:"likesCount"`
	Replies         []*CommentNode   `json:"replies"`
}

func newCommentNode(c *models.Comment, identities map[uint]models.Identity, viewerID uint) *CommentNode {
	node := &CommentNode{
		ID:              c.ID,
		ListID:          c.ListID,
		UserID:          c.UserID,
		Content:         c.Content,
		IsEdited:        c.IsEdited,
		EditedAt:        c.EditedAt,
		ParentCommentID: c.ParentCommentID,
		IsDeleted:       c.IsDeleted,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
		UserHasLiked:    c.LikedBy(viewerID),
		LikesCount:      len(c.Likes),
		Replies:         []*CommentNode{},
	}
	if c.IsDeleted {
		node.Content = models.DeletedCommentContent
	}
	if identity, ok := identities[c.UserID]; ok {
		node.User = &identity
	}
	return node
}

// assembleTree nests replies under their parents. Roots keep their given order;
// siblings are ordered oldest first.
func assembleTree(roots, replies []models.Comment, identities map[uint]models.Identity, viewerID uint) []*CommentNode {
	children := make(map[uint][]*models.Comment, len(replies))
	for i := range replies {
		r := &replies[i]
		if r.ParentCommentID == nil {
			continue
		}
		children[*r.ParentCommentID] = append(children[*r.ParentCommentID], r)
	}
	for _, group := range children {
		slices.SortFunc(group, func(a, b *models.Comment) int {
			return cmp.Compare(a.ID, b.ID)
		})
	}

	var build func(c *models.Comment) *CommentNode
	build = func(c *models.Comment) *CommentNode {
		node := newCommentNode(c, identities, viewerID)
		for _, child := range children[c.ID] {
			node.Replies = append(node.Replies, build(child))
		}
		return node
	}

	nodes := make([]*CommentNode, 0, len(roots))
	for i := range roots {
		nodes = append(nodes, build(&roots[i]))
	}
	return nodes
}
