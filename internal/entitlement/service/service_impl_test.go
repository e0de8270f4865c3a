package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	chatdomain "github.com/purposeful/coach/internal/chat/domain"
	chatrepository "github.com/purposeful/coach/internal/chat/repository"
	"github.com/purposeful/coach/internal/clock"
	entitlementdomain "github.com/purposeful/coach/internal/entitlement/domain"
	"github.com/purposeful/coach/internal/entitlement/repository"
	identitydomain "github.com/purposeful/coach/internal/identity/domain"
	identityrepository "github.com/purposeful/coach/internal/identity/repository"
	"github.com/purposeful/coach/internal/tier"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type countingStub struct {
	mu    sync.Mutex
	calls int
	count int64
	err   error
}

func (c *countingStub) CountUserMessages(ctx context.Context, userID snowflake.ID, from, to time.Time) (int64, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return c.count, c.err
}

func (c *countingStub) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

type failingSubsRepo struct {
	entitlementdomain.Repository
}

func (failingSubsRepo) FindByUserID(ctx context.Context, db *gorm.DB, userID snowflake.ID) (*entitlementdomain.Subscription, error) {
	return nil, errors.New("storage down")
}

func mustNode(t *testing.T) *snowflake.Node {
	t.Helper()
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	return node
}

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&identitydomain.User{},
		&entitlementdomain.Subscription{},
		&chatdomain.Conversation{},
		&chatdomain.Message{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func setupService(t *testing.T, db *gorm.DB, node *snowflake.Node, fake *clock.FakeClock, counter chatdomain.MessageCounter) *Service {
	t.Helper()
	if counter == nil {
		counter = chatrepository.ProvideCounter(db)
	}
	svc := NewService(ServiceParam{
		DB:            db,
		Log:           zap.NewNop(),
		GenID:         node,
		Clock:         fake,
		Tiers:         tier.DefaultTable(),
		Users:         identityrepository.Provide(),
		Subs:          repository.Provide(),
		Messages:      counter,
		TrialDuration: 7 * 24 * time.Hour,
	})
	return svc.(*Service)
}

func seedMessages(t *testing.T, db *gorm.DB, node *snowflake.Node, userID snowflake.ID, at time.Time, n int) {
	t.Helper()
	conv := chatdomain.Conversation{ID: node.Generate(), UserID: userID, CreatedAt: at}
	if err := db.Create(&conv).Error; err != nil {
		t.Fatalf("seed conversation: %v", err)
	}
	for i := 0; i < n; i++ {
		msg := chatdomain.Message{
			ID:             node.Generate(),
			ConversationID: conv.ID,
			Role:           chatdomain.RoleUser,
			Content:        "hello",
			CreatedAt:      at,
		}
		if err := db.Create(&msg).Error; err != nil {
			t.Fatalf("seed message: %v", err)
		}
	}
}

func TestInitializeUserIdempotent(t *testing.T) {
	node := mustNode(t)
	db := setupDB(t)
	fake := clock.NewFakeClock(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))
	svc := setupService(t, db, node, fake, nil)
	ctx := context.Background()

	first, err := svc.InitializeUser(ctx, "fp-abc123")
	require.NoError(t, err)
	second, err := svc.InitializeUser(ctx, "fp-abc123")
	require.NoError(t, err)

	require.Equal(t, first.UserID, second.UserID)

	var users, subs int64
	require.NoError(t, db.Model(&identitydomain.User{}).Count(&users).Error)
	require.NoError(t, db.Model(&entitlementdomain.Subscription{}).Count(&subs).Error)
	require.EqualValues(t, 1, users)
	require.EqualValues(t, 1, subs)
}

func TestInitializeUserRejectsEmptyID(t *testing.T) {
	node := mustNode(t)
	db := setupDB(t)
	fake := clock.NewFakeClock(time.Now())
	svc := setupService(t, db, node, fake, nil)

	_, err := svc.InitializeUser(context.Background(), "   ")
	require.ErrorIs(t, err, entitlementdomain.ErrInvalidAnonymousID)
}

func TestTrialWindow(t *testing.T) {
	node := mustNode(t)
	db := setupDB(t)
	start := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	fake := clock.NewFakeClock(start)
	svc := setupService(t, db, node, fake, nil)
	ctx := context.Background()

	created, err := svc.InitializeUser(ctx, "fp-trial")
	require.NoError(t, err)
	require.Equal(t, tier.Trial, created.Tier)
	require.False(t, created.IsTrialExpired)
	require.Equal(t, 7, created.DaysRemaining)
	require.NotNil(t, created.TrialEndsAt)

	// One millisecond past the trial end.
	fake.Set(created.TrialEndsAt.Add(time.Millisecond))

	resolved, err := svc.InitializeUser(ctx, "fp-trial")
	require.NoError(t, err)
	require.True(t, resolved.IsTrialExpired)
	require.Equal(t, tier.Free, resolved.Tier)
	require.Equal(t, 0, resolved.DaysRemaining)

	// Write-back happened: the stored row is now free.
	var sub entitlementdomain.Subscription
	require.NoError(t, db.Where("user_id = ?", created.UserID).First(&sub).Error)
	require.Equal(t, tier.Free, sub.Tier)

	status, err := svc.GetTierStatus(ctx, created.UserID)
	require.NoError(t, err)
	require.Equal(t, tier.Free, status.Tier)
}

func TestQuotaBoundary(t *testing.T) {
	node := mustNode(t)
	db := setupDB(t)
	now := time.Date(2025, 3, 10, 15, 30, 0, 0, time.UTC)
	fake := clock.NewFakeClock(now)
	svc := setupService(t, db, node, fake, nil)
	ctx := context.Background()

	userID := node.Generate()
	sub := entitlementdomain.Subscription{
		ID:     node.Generate(),
		UserID: userID,
		Tier:   tier.Free,
		Status: entitlementdomain.SubscriptionStatusNone,
	}
	require.NoError(t, db.Create(&sub).Error)

	// 4 used: the 5th message is allowed.
	seedMessages(t, db, node, userID, now, 4)
	result, err := svc.CanSendAIMessage(ctx, userID)
	require.NoError(t, err)
	require.True(t, result.Allowed)
	require.EqualValues(t, 4, *result.MessagesUsedToday)
	require.Equal(t, 5, *result.Limit)

	// 5 used: the 6th is denied with counts for the "X/Y used" prompt.
	seedMessages(t, db, node, userID, now, 1)
	result, err = svc.CanSendAIMessage(ctx, userID)
	require.NoError(t, err)
	require.False(t, result.Allowed)
	require.EqualValues(t, 5, *result.MessagesUsedToday)
	require.Equal(t, 5, *result.Limit)
	require.Contains(t, result.Reason, "5/5")

	// Calendar-day rollover resets the count.
	fake.Set(time.Date(2025, 3, 11, 0, 0, 0, 1, time.UTC))
	result, err = svc.CanSendAIMessage(ctx, userID)
	require.NoError(t, err)
	require.True(t, result.Allowed)
	require.EqualValues(t, 0, *result.MessagesUsedToday)
}

func TestUnlimitedTierSkipsCounting(t *testing.T) {
	node := mustNode(t)
	db := setupDB(t)
	fake := clock.NewFakeClock(time.Now())
	counter := &countingStub{}
	svc := setupService(t, db, node, fake, counter)
	ctx := context.Background()

	userID := node.Generate()
	sub := entitlementdomain.Subscription{
		ID:     node.Generate(),
		UserID: userID,
		Tier:   tier.Premium,
		Status: entitlementdomain.SubscriptionStatusActive,
	}
	require.NoError(t, db.Create(&sub).Error)

	result, err := svc.CanSendAIMessage(ctx, userID)
	require.NoError(t, err)
	require.True(t, result.Allowed)
	require.Equal(t, 0, counter.Calls())
}

func TestExpiredTrialFallsBackToFreeQuotaWithoutWriteBack(t *testing.T) {
	node := mustNode(t)
	db := setupDB(t)
	now := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)
	fake := clock.NewFakeClock(now)
	svc := setupService(t, db, node, fake, nil)
	ctx := context.Background()

	userID := node.Generate()
	trialEnd := now.Add(-time.Hour)
	sub := entitlementdomain.Subscription{
		ID:       node.Generate(),
		UserID:   userID,
		Tier:     tier.Trial,
		Status:   entitlementdomain.SubscriptionStatusTrialing,
		TrialEnd: &trialEnd,
	}
	require.NoError(t, db.Create(&sub).Error)

	seedMessages(t, db, node, userID, now, 5)

	result, err := svc.CanSendAIMessage(ctx, userID)
	require.NoError(t, err)
	require.False(t, result.Allowed)
	require.Equal(t, 5, *result.Limit)

	// The quota check must not persist the downgrade; only
	// InitializeUser does that.
	var stored entitlementdomain.Subscription
	require.NoError(t, db.Where("user_id = ?", userID).First(&stored).Error)
	require.Equal(t, tier.Trial, stored.Tier)
}

func TestCanSendNoSubscription(t *testing.T) {
	node := mustNode(t)
	db := setupDB(t)
	fake := clock.NewFakeClock(time.Now())
	svc := setupService(t, db, node, fake, nil)

	result, err := svc.CanSendAIMessage(context.Background(), node.Generate())
	require.NoError(t, err)
	require.False(t, result.Allowed)
	require.Equal(t, entitlementdomain.ReasonNoSubscription, result.Reason)
}

func TestCanSendFailsClosedOnStorageError(t *testing.T) {
	node := mustNode(t)
	db := setupDB(t)
	fake := clock.NewFakeClock(time.Now())
	svc := setupService(t, db, node, fake, nil)
	svc.subs = failingSubsRepo{}

	result, err := svc.CanSendAIMessage(context.Background(), node.Generate())
	require.Error(t, err)
	require.False(t, result.Allowed)
	require.Equal(t, entitlementdomain.ReasonLimitUnverifiable, result.Reason)
}

func TestGetTierStatusWithoutSubscription(t *testing.T) {
	node := mustNode(t)
	db := setupDB(t)
	fake := clock.NewFakeClock(time.Now())
	svc := setupService(t, db, node, fake, nil)

	status, err := svc.GetTierStatus(context.Background(), node.Generate())
	require.NoError(t, err)
	require.Equal(t, tier.Free, status.Tier)
	require.Equal(t, entitlementdomain.SubscriptionStatusNone, status.Status)
	require.Equal(t, 0, status.DaysRemaining)
	require.Equal(t, tier.DefaultTable().Limits(tier.Free), status.Limits)
}

func TestUpgradeTier(t *testing.T) {
	node := mustNode(t)
	db := setupDB(t)
	fake := clock.NewFakeClock(time.Now())
	svc := setupService(t, db, node, fake, nil)
	ctx := context.Background()

	created, err := svc.InitializeUser(ctx, "fp-upgrade")
	require.NoError(t, err)

	err = svc.UpgradeTier(ctx, entitlementdomain.UpgradeTierRequest{
		UserID:                created.UserID,
		Tier:                  tier.Premium,
		BillingSubscriptionID: "sub_123",
		BillingCustomerID:     "cus_123",
		BillingPriceID:        "price_123",
	})
	require.NoError(t, err)

	status, err := svc.GetTierStatus(ctx, created.UserID)
	require.NoError(t, err)
	require.Equal(t, tier.Premium, status.Tier)
	require.Equal(t, entitlementdomain.SubscriptionStatusActive, status.Status)

	// Upgrading a user with no subscription row silently matches
	// nothing.
	err = svc.UpgradeTier(ctx, entitlementdomain.UpgradeTierRequest{
		UserID: node.Generate(),
		Tier:   tier.Elite,
	})
	require.NoError(t, err)
}

func TestUpgradedTrialKeepsPaidTierAfterTrialEnd(t *testing.T) {
	node := mustNode(t)
	db := setupDB(t)
	start := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	fake := clock.NewFakeClock(start)
	svc := setupService(t, db, node, fake, nil)
	ctx := context.Background()

	created, err := svc.InitializeUser(ctx, "fp-paid")
	require.NoError(t, err)

	require.NoError(t, svc.UpgradeTier(ctx, entitlementdomain.UpgradeTierRequest{
		UserID: created.UserID,
		Tier:   tier.Basic,
	}))

	fake.Advance(30 * 24 * time.Hour)

	status, err := svc.GetTierStatus(ctx, created.UserID)
	require.NoError(t, err)
	require.Equal(t, tier.Basic, status.Tier)
	require.True(t, status.IsTrialExpired)
}

func TestTierDefinitions(t *testing.T) {
	node := mustNode(t)
	db := setupDB(t)
	fake := clock.NewFakeClock(time.Now())
	svc := setupService(t, db, node, fake, nil)

	defs := svc.TierDefinitions()
	require.Len(t, defs.Tiers, 5)
	require.Equal(t, 5, defs.Limits[tier.Free].AIMessagesPerDay)
	require.Equal(t, tier.Unlimited, defs.Limits[tier.Elite].AIMessagesPerDay)
}
