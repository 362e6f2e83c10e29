package services

import (
	"context"
	"html/template"
	"strings"
	"unicode/utf8"

	"github.com/avkrapivin/top-me-up-sub000/internal/apperr"
	"github.com/avkrapivin/top-me-up-sub000/internal/models"
	"github.com/avkrapivin/top-me-up-sub000/internal/store"
	"github.com/avkrapivin/top-me-up-sub000/internal/utils"
)

const (
	ListPageSize        = 20
	maxListTitle        = 100
	maxListDescription  = 2000
	maxListItemTitle    = 200
	maxListItemSubtitle = 200
)

type ListStore interface {
	Create(ctx context.Context, list *models.List) error
	Get(ctx context.Context, id uint) (*models.List, error)
	BySlug(ctx context.Context, slug string) (*models.List, error)
	Page(ctx context.Context, filter store.ListFilter, offset, limit int) ([]models.List, int64, error)
	Update(ctx context.Context, list *models.List) error
	Delete(ctx context.Context, id uint) error
}

type ListItemInput struct {
	ExternalID string `json:"externalId"`
	Title      string `json:"title" binding:"required,notblank,max=200"`
	Subtitle   string `json:"subtitle" binding:"max=200"`
	Year       int    `json:"year" binding:"min=0,max=3000"`
	ImageURL   string `json:"imageUrl" binding:"omitempty,url"`
}

type ListInput struct {
	Title       string          `json:"title" binding:"required,notblank,max=100"`
	Description string          `json:"description" binding:"max=2000"`
	Category    models.Category `json:"category" binding:"required,category"`
	Items       []ListItemInput `json:"items" binding:"max=10,dive"`
}

// ListView is a list as the API returns it.
type ListView struct {
	models.List
	DescriptionHTML template.HTML    `json:"descriptionHtml"`
	Author          *models.Identity `json:"user"`
}

type ListPage struct {
	Lists    []ListView `json:"lists"`
	Page     int        `json:"page"`
	PageSize int        `json:"pageSize"`
	Total    int64      `json:"total"`
	HasNext  bool       `json:"hasNext"`
}

type ListService struct {
	lists ListStore
	users IdentityStore
}

func NewListService(lists ListStore, users IdentityStore) *ListService {
	return &ListService{lists: lists, users: users}
}

// buildList validates in and copies it onto list. Item ranks follow their order.
func buildList(list *models.List, in ListInput) error {
	title := strings.TrimSpace(in.Title)
	if title == "" || utf8.RuneCountInString(title) > maxListTitle {
		return apperr.InvalidArgument("title must be 1-%d characters", maxListTitle)
	}
	description := strings.TrimSpace(in.Description)
	if utf8.RuneCountInString(description) > maxListDescription {
		return apperr.InvalidArgument("description must be at most %d characters", maxListDescription)
	}
	if !in.Category.Valid() {
		return apperr.InvalidArgument("unknown category %q", in.Category)
	}
	if len(in.Items) > models.MaxListItems {
		return apperr.InvalidArgument("a list holds at most %d items", models.MaxListItems)
	}

	items := make([]models.ListItem, 0, len(in.Items))
	for i, item := range in.Items {
		itemTitle := strings.TrimSpace(item.Title)
		if itemTitle == "" || utf8.RuneCountInString(itemTitle) > maxListItemTitle {
			return apperr.InvalidArgument("item %d: title must be 1-%d characters", i+1, maxListItemTitle)
		}
		subtitle := strings.TrimSpace(item.Subtitle)
		if utf8.RuneCountInString(subtitle) > maxListItemSubtitle {
			return apperr.InvalidArgument("item %d: subtitle is too long", i+1)
		}
		items = append(items, models.ListItem{
			Rank:       i + 1,
			ExternalID: strings.TrimSpace(item.ExternalID),
			Title:      itemTitle,
			Subtitle:   subtitle,
			Year:       item.Year,
			ImageURL:   strings.TrimSpace(item.ImageURL),
		})
	}

	list.Title = title
	list.Description = description
	list.Category = in.Category
	list.Items = items
	return nil
}

func (s *ListService) Create(ctx context.Context, userID uint, in ListInput) (*ListView, error) {
	list := &models.List{UserID: userID}
	if err := buildList(list, in); err != nil {
		return nil, err
	}
	slug, err := utils.NewSlug()
	if err != nil {
		return nil, apperr.Wrap(err, "generate slug")
	}
	list.Slug = slug
	if err := s.lists.Create(ctx, list); err != nil {
		return nil, apperr.Wrap(err, "create list")
	}
	return s.view(ctx, list)
}

func (s *ListService) Get(ctx context.Context, id uint) (*ListView, error) {
	list, err := s.lists.Get(ctx, id)
	if err != nil {
		return nil, apperr.Wrap(err, "load list")
	}
	return s.view(ctx, list)
}

func (s *ListService) BySlug(ctx context.Context, slug string) (*ListView, error) {
	list, err := s.lists.BySlug(ctx, slug)
	if err != nil {
		return nil, apperr.Wrap(err, "load list")
	}
	return s.view(ctx, list)
}

// Page lists lists newest first. page is 1-based.
func (s *ListService) Page(ctx context.Context, filter store.ListFilter, page int) (*ListPage, error) {
	if page < 1 {
		page = 1
	}
	if filter.Category != "" && !filter.Category.Valid() {
		return nil, apperr.InvalidArgument("unknown category %q", filter.Category)
	}

	lists, total, err := s.lists.Page(ctx, filter, (page-1)*ListPageSize, ListPageSize)
	if err != nil {
		return nil, apperr.Wrap(err, "load lists")
	}
	views, err := s.views(ctx, lists)
	if err != nil {
		return nil, err
	}
	return &ListPage{
		Lists:    views,
		Page:     page,
		PageSize: ListPageSize,
		Total:    total,
		HasNext:  int64(page*ListPageSize) < total,
	}, nil
}

func (s *ListService) Update(ctx context.Context, id, userID uint, in ListInput) (*ListView, error) {
	list, err := s.owned(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if err := buildList(list, in); err != nil {
		return nil, err
	}
	if err := s.lists.Update(ctx, list); err != nil {
		return nil, apperr.Wrap(err, "update list")
	}
	return s.view(ctx, list)
}

// Delete removes the list with its items and its whole comment thread.
func (s *ListService) Delete(ctx context.Context, id, userID uint) error {
	if _, err := s.owned(ctx, id, userID); err != nil {
		return err
	}
	return apperr.Wrap(s.lists.Delete(ctx, id), "delete list")
}

func (s *ListService) owned(ctx context.Context, id, userID uint) (*models.List, error) {
	list, err := s.lists.Get(ctx, id)
	if err != nil {
		return nil, apperr.Wrap(err, "load list")
	}
	if list.UserID != userID {
		return nil, apperr.Forbidden("only the owner can change this list")
	}
	return list, nil
}

func (s *ListService) view(ctx context.Context, list *models.List) (*ListView, error) {
	views, err := s.views(ctx, []models.List{*list})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *ListService) views(ctx context.Context, lists []models.List) ([]ListView, error) {
	seen := make(map[uint]bool, len(lists))
	var ids []uint
	for _, l := range lists {
		if !seen[l.UserID] {
			seen[l.UserID] = true
			ids = append(ids, l.UserID)
		}
	}
	authors := make(map[uint]models.Identity, len(ids))
	if len(ids) > 0 {
		users, err := s.users.UsersByID(ctx, ids)
		if err != nil {
			return nil, apperr.Wrap(err, "resolve list authors")
		}
		for i := range users {
			authors[users[i].ID] = users[i].Identity()
		}
	}

	views := make([]ListView, 0, len(lists))
	for _, l := range lists {
		if l.Items == nil {
			l.Items = []models.ListItem{}
		}
		v := ListView{List: l, DescriptionHTML: utils.RenderMarkdown(l.Description)}
		if a, ok := authors[l.UserID]; ok {
			v.Author = &a
		}
		views = append(views, v)
	}
	return views, nil
}
