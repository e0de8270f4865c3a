// Package domain contains the subscription model and the entitlement
// engine's contracts.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/purposeful/coach/internal/tier"
)

// SubscriptionStatus represents lifecycle states for a subscription.
type SubscriptionStatus string

const (
	SubscriptionStatusTrialing  SubscriptionStatus = "trialing"
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusNone      SubscriptionStatus = "none"
	SubscriptionStatusError     SubscriptionStatus = "error"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
)

// Subscription captures a user's entitlement agreement. At most one row
// exists per user, enforced by the unique index on user_id.
type Subscription struct {
	ID                    snowflake.ID       `gorm:"primaryKey"`
	UserID                snowflake.ID       `gorm:"not null;uniqueIndex"`
	ProductID             string             `gorm:"type:text;not null"`
	Tier                  tier.Tier          `gorm:"type:text;not null"`
	Status                SubscriptionStatus `gorm:"type:text;not null"`
	TrialStart            *time.Time         `gorm:""`
	TrialEnd              *time.Time         `gorm:""`
	BillingSubscriptionID *string            `gorm:"type:text"`
	BillingCustomerID     *string            `gorm:"type:text"`
	BillingPriceID        *string            `gorm:"type:text"`
	CreatedAt             time.Time          `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt             time.Time          `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Subscription) TableName() string { return "subscriptions" }

// TrialExpired reports whether the trial window has passed. A missing
// trialEnd never counts as expired.
func (s *Subscription) TrialExpired(now time.Time) bool {
	return s.TrialEnd != nil && now.After(*s.TrialEnd)
}

// EffectiveTier computes the tier the user should be treated as having
// right now, without touching storage: an expired trial on a not-active
// subscription evaluates as free. Callers decide whether to persist the
// downgrade.
func EffectiveTier(s *Subscription, now time.Time) tier.Tier {
	current := s.Tier
	if current == "" {
		current = tier.Trial
	}
	if s.TrialExpired(now) && s.Status != SubscriptionStatusActive {
		return tier.Free
	}
	return current
}

// DaysRemaining returns the whole days left in the trial window, rounded
// up, never negative. Zero when there is no trial end.
func (s *Subscription) DaysRemaining(now time.Time) int {
	if s.TrialEnd == nil {
		return 0
	}
	remaining := s.TrialEnd.Sub(now)
	if remaining <= 0 {
		return 0
	}
	days := int(remaining / (24 * time.Hour))
	if remaining%(24*time.Hour) != 0 {
		days++
	}
	return days
}
