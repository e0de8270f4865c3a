package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

// MessageCounter answers "how many messages did this user send in
// [from, to)". The window is inclusive of from and exclusive of to.
type MessageCounter interface {
	CountUserMessages(ctx context.Context, userID snowflake.ID, from, to time.Time) (int64, error)
}
