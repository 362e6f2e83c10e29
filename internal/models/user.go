package models

import (
	"time"
)

type User struct {
	ID          uint      `gorm:"primaryKey" json:"_id"`
	Email       string    `gorm:"uniqueIndex;not null" json:"email"`
	Password    string    `gorm:"not null" json:"-"` // bcrypt hash
	DisplayName string    `gorm:"size:50;not null" json:"displayName"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Identity is the public projection of a user attached to comments.
type Identity struct {
	ID          uint   `json:"_id"`
	DisplayName string `json:"displayName"`
}

func (u *User) Identity() Identity {
	return Identity{ID: u.ID, DisplayName: u.DisplayName}
}
