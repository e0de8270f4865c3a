package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/purposeful/coach/internal/tier"
	"gorm.io/gorm"
)

type Repository interface {
	FindByUserID(ctx context.Context, db *gorm.DB, userID snowflake.ID) (*Subscription, error)
	// EnsureForUser inserts the subscription unless one already exists for
	// the user, then returns the stored row. Conflict-tolerant on the
	// user_id unique index.
	EnsureForUser(ctx context.Context, db *gorm.DB, sub *Subscription) (*Subscription, error)
	UpdateTier(ctx context.Context, db *gorm.DB, id snowflake.ID, target tier.Tier, now time.Time) error
	// Upgrade overwrites tier, status and billing identifiers for the
	// user's subscription. Matching zero rows is not an error.
	Upgrade(ctx context.Context, db *gorm.DB, req UpgradeTierRequest, now time.Time) error
}
