package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	FindByOpenID(ctx context.Context, db *gorm.DB, openID string) (*User, error)
	// EnsureByOpenID inserts the user if the open id is unseen and returns
	// the stored row either way. The insert is conflict-tolerant on the
	// open_id unique index so concurrent first contacts cannot create
	// duplicate users.
	EnsureByOpenID(ctx context.Context, db *gorm.DB, user *User) (*User, error)
}
