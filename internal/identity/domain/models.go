// Package domain contains the user identity model.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// User identifies a person or anonymous visitor. Anonymous users are
// created on first contact from a client-generated fingerprint and are
// never deleted.
type User struct {
	ID          snowflake.ID `gorm:"primaryKey"`
	OpenID      string       `gorm:"type:text;not null;uniqueIndex"`
	Name        string       `gorm:"type:text;not null"`
	Role        string       `gorm:"type:text;not null"`
	LoginMethod string       `gorm:"type:text;not null"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }

const (
	RoleUser = "user"

	LoginMethodAnonymous = "anonymous"

	AnonymousDisplayName = "Guest User"
)
