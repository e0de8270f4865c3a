package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	chatdomain "github.com/purposeful/coach/internal/chat/domain"
	"gorm.io/gorm"
)

type counter struct {
	db *gorm.DB
}

func ProvideCounter(db *gorm.DB) chatdomain.MessageCounter {
	return &counter{db: db}
}

func (c *counter) CountUserMessages(ctx context.Context, userID snowflake.ID, from, to time.Time) (int64, error) {
	var count int64
	err := c.db.WithContext(ctx).Raw(
		`SELECT COUNT(*)
		 FROM ai_chat_messages m
		 JOIN ai_chat_conversations c ON m.conversation_id = c.id
		 WHERE c.user_id = ?
		   AND m.role = ?
		   AND m.created_at >= ?
		   AND m.created_at < ?`,
		userID,
		chatdomain.RoleUser,
		from,
		to,
	).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
