package models

import (
	"time"
)

type Category string

const (
	CategoryMovies Category = "movies"
	CategoryMusic  Category = "music"
	CategoryGames  Category = "games"
)

// MaxListItems is the size of a top list.
const MaxListItems = 10

func (c Category) Valid() bool {
	switch c {
	case CategoryMovies, CategoryMusic, CategoryGames:
		return true
	}
	return false
}

type List struct {
	ID           uint       `gorm:"primaryKey" json:"_id"`
	Slug         string     `gorm:"uniqueIndex;size:16;not null" json:"slug"`
	UserID       uint       `gorm:"not null;index" json:"userId"`
	User         User       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Title        string     `gorm:"size:100;not null" json:"title"`
	Description  string     `gorm:"type:text" json:"description"`
	Category     Category   `gorm:"type:varchar(10);not null;index" json:"category"`
	Items        []ListItem `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
	CommentCount int        `gorm:"default:0" json:"commentCount"` // maintained by CounterService
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

type ListItem struct {
	ID         uint   `gorm:"primaryKey" json:"_id"`
	ListID     uint   `gorm:"not null;index" json:"-"`
	Rank       int    `gorm:"not null" json:"rank"` // 1-based
	ExternalID string `gorm:"size:64" json:"externalId"`
	Title      string `gorm:"size:200;not null" json:"title"`
	Subtitle   string `gorm:"size:200" json:"subtitle"`
	Year       int    `json:"year,omitempty"`
	ImageURL   string `json:"imageUrl"`
}
