package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	chatdomain "github.com/purposeful/coach/internal/chat/domain"
	"github.com/purposeful/coach/internal/clock"
	entitlementdomain "github.com/purposeful/coach/internal/entitlement/domain"
	identitydomain "github.com/purposeful/coach/internal/identity/domain"
	"github.com/purposeful/coach/internal/tier"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock

	Tiers    tier.Table
	Users    identitydomain.Repository
	Subs     entitlementdomain.Repository
	Messages chatdomain.MessageCounter

	TrialDuration time.Duration `name:"trial_duration"`
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID *snowflake.Node
	clock clock.Clock

	tiers    tier.Table
	users    identitydomain.Repository
	subs     entitlementdomain.Repository
	messages chatdomain.MessageCounter

	trialDuration time.Duration
}

func NewService(p ServiceParam) entitlementdomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("entitlement.service"),

		genID: p.GenID,
		clock: p.Clock,

		tiers:    p.Tiers,
		users:    p.Users,
		subs:     p.Subs,
		messages: p.Messages,

		trialDuration: p.TrialDuration,
	}
}

// InitializeUser resolves or creates the anonymous user and their trial
// subscription. Repeated calls with the same identifier are idempotent.
//
// This is a mutating call: when the trial has expired on a subscription
// that never became active, the free-tier downgrade is written back
// before returning.
func (s *Service) InitializeUser(ctx context.Context, anonymousID string) (entitlementdomain.InitializeUserResponse, error) {
	anonymousID = strings.TrimSpace(anonymousID)
	if anonymousID == "" {
		return entitlementdomain.InitializeUserResponse{}, entitlementdomain.ErrInvalidAnonymousID
	}

	now := s.clock.Now()

	user, err := s.users.EnsureByOpenID(ctx, s.db, &identitydomain.User{
		ID:          s.genID.Generate(),
		OpenID:      anonymousID,
		Name:        identitydomain.AnonymousDisplayName,
		Role:        identitydomain.RoleUser,
		LoginMethod: identitydomain.LoginMethodAnonymous,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return entitlementdomain.InitializeUserResponse{}, err
	}
	if user == nil {
		return entitlementdomain.InitializeUserResponse{}, entitlementdomain.ErrInvalidUser
	}

	trialStart := now
	trialEnd := now.Add(s.trialDuration)
	sub, err := s.subs.EnsureForUser(ctx, s.db, &entitlementdomain.Subscription{
		ID:         s.genID.Generate(),
		UserID:     user.ID,
		ProductID:  "trial",
		Tier:       tier.Trial,
		Status:     entitlementdomain.SubscriptionStatusTrialing,
		TrialStart: &trialStart,
		TrialEnd:   &trialEnd,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		return entitlementdomain.InitializeUserResponse{}, err
	}
	if sub == nil {
		return entitlementdomain.InitializeUserResponse{}, entitlementdomain.ErrSubscriptionNotFound
	}

	expired := sub.TrialExpired(now)
	effective := entitlementdomain.EffectiveTier(sub, now)

	// Lazy downgrade write-back once an unpaid trial lapses.
	if expired && sub.Status != entitlementdomain.SubscriptionStatusActive && sub.Tier != tier.Free {
		if err := s.subs.UpdateTier(ctx, s.db, sub.ID, tier.Free, now); err != nil {
			return entitlementdomain.InitializeUserResponse{}, err
		}
		s.log.Info("trial expired, downgraded to free",
			zap.Int64("user_id", int64(user.ID)),
			zap.Int64("subscription_id", int64(sub.ID)),
		)
	}

	return entitlementdomain.InitializeUserResponse{
		UserID:         user.ID,
		Tier:           effective,
		TrialEndsAt:    sub.TrialEnd,
		IsTrialExpired: expired,
		DaysRemaining:  sub.DaysRemaining(now),
	}, nil
}

// CanSendAIMessage decides whether one more AI message is permitted
// today. Read-only: an expired trial is evaluated against the free
// quota without persisting the downgrade.
//
// Storage failures deny with a generic reason and surface the error so
// callers can log it; the result is never fail-open.
func (s *Service) CanSendAIMessage(ctx context.Context, userID snowflake.ID) (entitlementdomain.MessageLimitResult, error) {
	deny := func(reason string) entitlementdomain.MessageLimitResult {
		return entitlementdomain.MessageLimitResult{Allowed: false, Reason: reason}
	}

	sub, err := s.subs.FindByUserID(ctx, s.db, userID)
	if err != nil {
		return deny(entitlementdomain.ReasonLimitUnverifiable), err
	}
	if sub == nil {
		return deny(entitlementdomain.ReasonNoSubscription), nil
	}

	now := s.clock.Now()

	current := sub.Tier
	if current == "" {
		current = tier.Free
	}
	limits := s.tiers.Limits(current)

	// Expired trial falls through to the free quota. No write-back here;
	// InitializeUser owns the persisted downgrade.
	if current == tier.Trial && sub.TrialExpired(now) {
		return s.checkDailyLimit(ctx, userID, now, s.tiers.Limits(tier.Free).AIMessagesPerDay)
	}

	if limits.AIMessagesPerDay == tier.Unlimited {
		return entitlementdomain.MessageLimitResult{Allowed: true}, nil
	}

	return s.checkDailyLimit(ctx, userID, now, limits.AIMessagesPerDay)
}

func (s *Service) checkDailyLimit(ctx context.Context, userID snowflake.ID, now time.Time, limit int) (entitlementdomain.MessageLimitResult, error) {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	used, err := s.messages.CountUserMessages(ctx, userID, dayStart, dayEnd)
	if err != nil {
		return entitlementdomain.MessageLimitResult{
			Allowed: false,
			Reason:  entitlementdomain.ReasonLimitUnverifiable,
		}, err
	}

	if used >= int64(limit) {
		return entitlementdomain.MessageLimitResult{
			Allowed:           false,
			Reason:            denialReason(used, limit),
			MessagesUsedToday: &used,
			Limit:             &limit,
		}, nil
	}

	return entitlementdomain.MessageLimitResult{
		Allowed:           true,
		MessagesUsedToday: &used,
		Limit:             &limit,
	}, nil
}

// GetTierStatus reports the effective tier and limits for display. A
// missing subscription is not an error: it degrades to the free tier
// with zero days remaining.
func (s *Service) GetTierStatus(ctx context.Context, userID snowflake.ID) (entitlementdomain.TierStatus, error) {
	sub, err := s.subs.FindByUserID(ctx, s.db, userID)
	if err != nil {
		return s.freeTierStatus(), err
	}
	if sub == nil {
		return s.freeTierStatus(), nil
	}

	now := s.clock.Now()
	effective := entitlementdomain.EffectiveTier(sub, now)

	status := sub.Status
	if status == "" {
		status = entitlementdomain.SubscriptionStatusNone
	}

	return entitlementdomain.TierStatus{
		Tier:           effective,
		Status:         status,
		TrialEndsAt:    sub.TrialEnd,
		IsTrialExpired: sub.TrialExpired(now),
		DaysRemaining:  sub.DaysRemaining(now),
		Limits:         s.tiers.Limits(effective),
	}, nil
}

func (s *Service) freeTierStatus() entitlementdomain.TierStatus {
	return entitlementdomain.TierStatus{
		Tier:           tier.Free,
		Status:         entitlementdomain.SubscriptionStatusNone,
		TrialEndsAt:    nil,
		IsTrialExpired: true,
		DaysRemaining:  0,
		Limits:         s.tiers.Limits(tier.Free),
	}
}

// UpgradeTier unconditionally overwrites the subscription after a
// payment-provider event. An update matching zero rows is a silent
// no-op, mirroring the webhook contract.
func (s *Service) UpgradeTier(ctx context.Context, req entitlementdomain.UpgradeTierRequest) error {
	if req.UserID == 0 {
		return entitlementdomain.ErrInvalidUser
	}
	return s.subs.Upgrade(ctx, s.db, req, s.clock.Now())
}

func (s *Service) TierDefinitions() entitlementdomain.TierDefinitions {
	limits := make(map[tier.Tier]tier.Limits, len(s.tiers))
	for _, tr := range s.tiers.Tiers() {
		limits[tr] = s.tiers.Limits(tr)
	}
	return entitlementdomain.TierDefinitions{
		Tiers:  s.tiers.Tiers(),
		Limits: limits,
	}
}

func denialReason(used int64, limit int) string {
	return fmt.Sprintf("Daily limit reached. You've used %d/%d messages today. Upgrade to continue.", used, limit)
}
