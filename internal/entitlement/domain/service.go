package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/purposeful/coach/internal/tier"
)

// InitializeUserResponse is returned when an anonymous visitor is
// resolved (or created) together with their trial state.
type InitializeUserResponse struct {
	UserID         snowflake.ID `json:"userId"`
	Tier           tier.Tier    `json:"tier"`
	TrialEndsAt    *time.Time   `json:"trialEndsAt"`
	IsTrialExpired bool         `json:"isTrialExpired"`
	DaysRemaining  int          `json:"daysRemaining"`
}

// MessageLimitResult answers "may this user send one more AI message
// today". On denial, MessagesUsedToday and Limit let the caller render
// "X/Y used".
type MessageLimitResult struct {
	Allowed           bool   `json:"allowed"`
	Reason            string `json:"reason,omitempty"`
	MessagesUsedToday *int64 `json:"messagesUsedToday,omitempty"`
	Limit             *int   `json:"limit,omitempty"`
}

// TierStatus is the read-mostly view of a user's entitlement state.
type TierStatus struct {
	Tier           tier.Tier          `json:"tier"`
	Status         SubscriptionStatus `json:"status"`
	TrialEndsAt    *time.Time         `json:"trialEndsAt"`
	IsTrialExpired bool               `json:"isTrialExpired"`
	DaysRemaining  int                `json:"daysRemaining"`
	Limits         tier.Limits        `json:"limits"`
}

type UpgradeTierRequest struct {
	UserID                snowflake.ID
	Tier                  tier.Tier
	BillingSubscriptionID string
	BillingCustomerID     string
	BillingPriceID        string
}

// TierDefinitions is the static tier table exposed to clients.
type TierDefinitions struct {
	Tiers  []tier.Tier              `json:"tiers"`
	Limits map[tier.Tier]tier.Limits `json:"limits"`
}

//	Service is the entitlement engine.
//
// InitializeUser is a mutating operation even though most callers treat
// it as a read: it lazily persists the free-tier downgrade once an
// unpaid trial has expired. CanSendAIMessage deliberately does NOT
// perform that write-back; the asymmetry is inherited behavior kept as
// two separately tested code paths (see DESIGN.md).
type Service interface {
	InitializeUser(ctx context.Context, anonymousID string) (InitializeUserResponse, error)
	CanSendAIMessage(ctx context.Context, userID snowflake.ID) (MessageLimitResult, error)
	GetTierStatus(ctx context.Context, userID snowflake.ID) (TierStatus, error)
	UpgradeTier(ctx context.Context, req UpgradeTierRequest) error
	TierDefinitions() TierDefinitions
}

var (
	ErrInvalidAnonymousID   = errors.New("invalid_anonymous_id")
	ErrInvalidUser          = errors.New("invalid_user")
	ErrSubscriptionNotFound = errors.New("subscription_not_found")
)

// ReasonNoSubscription is the denial reason when no subscription row
// exists for the user.
const ReasonNoSubscription = "No subscription found"

// ReasonLimitUnverifiable is the fail-closed denial reason when the
// message count could not be established.
const ReasonLimitUnverifiable = "Unable to verify message limit"
