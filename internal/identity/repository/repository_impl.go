package repository

import (
	"context"

	identitydomain "github.com/purposeful/coach/internal/identity/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() identitydomain.Repository {
	return &repo{}
}

func (r *repo) FindByOpenID(ctx context.Context, db *gorm.DB, openID string) (*identitydomain.User, error) {
	var user identitydomain.User
	err := db.WithContext(ctx).
		Where("open_id = ?", openID).
		Limit(1).
		Find(&user).Error
	if err != nil {
		return nil, err
	}
	if user.ID == 0 {
		return nil, nil
	}
	return &user, nil
}

func (r *repo) EnsureByOpenID(ctx context.Context, db *gorm.DB, user *identitydomain.User) (*identitydomain.User, error) {
	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "open_id"}},
			DoNothing: true,
		}).
		Create(user).Error
	if err != nil {
		return nil, err
	}

	// Re-select so a lost conflict race still returns the winning row.
	return r.FindByOpenID(ctx, db, user.OpenID)
}
