// Package domain contains the coaching-session recording model. Session
// lifecycle (creation, scheduling, deletion) is owned by the sessions
// feature; the pipeline only claims a session for processing and writes
// the transcript back.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// ProcessingStatus guards against duplicate pipeline runs for one
// session.
type ProcessingStatus string

const (
	ProcessingPending    ProcessingStatus = "pending"
	ProcessingInProgress ProcessingStatus = "processing"
	ProcessingDone       ProcessingStatus = "done"
	ProcessingFailed     ProcessingStatus = "failed"
)

type Session struct {
	ID               snowflake.ID      `gorm:"primaryKey"`
	CoachID          snowflake.ID      `gorm:"not null;index"`
	Title            string            `gorm:"type:text"`
	VideoURL         *string           `gorm:"type:text"`
	VideoDuration    int               `gorm:"not null;default:0"`
	Notes            *string           `gorm:"type:text"`
	ProcessingStatus ProcessingStatus  `gorm:"type:text;not null;default:pending"`
	Metadata         datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt        time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt        time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Session) TableName() string { return "sessions" }
