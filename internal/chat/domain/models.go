// Package domain maps the chat subsystem's tables. The chat feature is
// owned elsewhere; the entitlement engine only derives a per-day message
// count from it.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Conversation struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	UserID    snowflake.ID `gorm:"not null;index"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Conversation) TableName() string { return "ai_chat_conversations" }

type Message struct {
	ID             snowflake.ID `gorm:"primaryKey"`
	ConversationID snowflake.ID `gorm:"not null;index"`
	Role           string       `gorm:"type:text;not null"`
	Content        string       `gorm:"type:text"`
	CreatedAt      time.Time    `gorm:"not null;index;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Message) TableName() string { return "ai_chat_messages" }

const RoleUser = "user"
