package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	entitlementdomain "github.com/purposeful/coach/internal/entitlement/domain"
	"github.com/purposeful/coach/internal/tier"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() entitlementdomain.Repository {
	return &repo{}
}

func (r *repo) FindByUserID(ctx context.Context, db *gorm.DB, userID snowflake.ID) (*entitlementdomain.Subscription, error) {
	var sub entitlementdomain.Subscription
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Limit(1).
		Find(&sub).Error
	if err != nil {
		return nil, err
	}
	if sub.ID == 0 {
		return nil, nil
	}
	return &sub, nil
}

func (r *repo) EnsureForUser(ctx context.Context, db *gorm.DB, sub *entitlementdomain.Subscription) (*entitlementdomain.Subscription, error) {
	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).
		Create(sub).Error
	if err != nil {
		return nil, err
	}

	return r.FindByUserID(ctx, db, sub.UserID)
}

func (r *repo) UpdateTier(ctx context.Context, db *gorm.DB, id snowflake.ID, target tier.Tier, now time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE subscriptions SET tier = ?, updated_at = ? WHERE id = ?`,
		target,
		now,
		id,
	).Error
}

func (r *repo) Upgrade(ctx context.Context, db *gorm.DB, req entitlementdomain.UpgradeTierRequest, now time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE subscriptions
		 SET tier = ?, status = ?, billing_subscription_id = ?, billing_customer_id = ?, billing_price_id = ?, updated_at = ?
		 WHERE user_id = ?`,
		req.Tier,
		entitlementdomain.SubscriptionStatusActive,
		req.BillingSubscriptionID,
		req.BillingCustomerID,
		req.BillingPriceID,
		now,
		req.UserID,
	).Error
}
