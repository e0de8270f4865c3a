package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

var (
	ErrSessionNotFound = errors.New("session_not_found")
	ErrAlreadyClaimed  = errors.New("session_already_claimed")
)

type Repository interface {
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Session, error)
	// Claim atomically moves the session into the processing state.
	// Returns ErrAlreadyClaimed when another run owns it or it is
	// already done.
	Claim(ctx context.Context, db *gorm.DB, id snowflake.ID, now time.Time) error
	UpdateNotes(ctx context.Context, db *gorm.DB, id snowflake.ID, notes string, now time.Time) error
	MarkDone(ctx context.Context, db *gorm.DB, id snowflake.ID, now time.Time) error
	MarkFailed(ctx context.Context, db *gorm.DB, id snowflake.ID, now time.Time) error
}
