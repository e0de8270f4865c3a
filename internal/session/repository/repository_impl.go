package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	sessiondomain "github.com/purposeful/coach/internal/session/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() sessiondomain.Repository {
	return &repo{}
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*sessiondomain.Session, error) {
	var session sessiondomain.Session
	err := db.WithContext(ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&session).Error
	if err != nil {
		return nil, err
	}
	if session.ID == 0 {
		return nil, nil
	}
	return &session, nil
}

func (r *repo) Claim(ctx context.Context, db *gorm.DB, id snowflake.ID, now time.Time) error {
	res := db.WithContext(ctx).Exec(
		`UPDATE sessions
		 SET processing_status = ?, updated_at = ?
		 WHERE id = ? AND processing_status NOT IN (?, ?)`,
		sessiondomain.ProcessingInProgress,
		now,
		id,
		sessiondomain.ProcessingInProgress,
		sessiondomain.ProcessingDone,
	)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return sessiondomain.ErrAlreadyClaimed
	}
	return nil
}

func (r *repo) UpdateNotes(ctx context.Context, db *gorm.DB, id snowflake.ID, notes string, now time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE sessions SET notes = ?, updated_at = ? WHERE id = ?`,
		notes,
		now,
		id,
	).Error
}

func (r *repo) MarkDone(ctx context.Context, db *gorm.DB, id snowflake.ID, now time.Time) error {
	return r.setStatus(ctx, db, id, sessiondomain.ProcessingDone, now)
}

func (r *repo) MarkFailed(ctx context.Context, db *gorm.DB, id snowflake.ID, now time.Time) error {
	return r.setStatus(ctx, db, id, sessiondomain.ProcessingFailed, now)
}

func (r *repo) setStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status sessiondomain.ProcessingStatus, now time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE sessions SET processing_status = ?, updated_at = ? WHERE id = ?`,
		status,
		now,
		id,
	).Error
}
