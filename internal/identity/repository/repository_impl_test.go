package repository

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	identitydomain "github.com/purposeful/coach/internal/identity/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) (*gorm.DB, *snowflake.Node) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&identitydomain.User{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return db, node
}

func anonymousUser(node *snowflake.Node, openID string) *identitydomain.User {
	now := time.Now().UTC()
	return &identitydomain.User{
		ID:          node.Generate(),
		OpenID:      openID,
		Name:        identitydomain.AnonymousDisplayName,
		Role:        identitydomain.RoleUser,
		LoginMethod: identitydomain.LoginMethodAnonymous,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestEnsureByOpenIDCreatesOnce(t *testing.T) {
	db, node := setupDB(t)
	repo := Provide()
	ctx := context.Background()

	first, err := repo.EnsureByOpenID(ctx, db, anonymousUser(node, "anon-abc"))
	require.NoError(t, err)
	require.NotNil(t, first)

	// same open id with a fresh snowflake must resolve to the stored row
	second, err := repo.EnsureByOpenID(ctx, db, anonymousUser(node, "anon-abc"))
	require.NoError(t, err)
	require.NotNil(t, second)
	require.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, db.Model(&identitydomain.User{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestFindByOpenIDMissing(t *testing.T) {
	db, _ := setupDB(t)
	repo := Provide()

	user, err := repo.FindByOpenID(context.Background(), db, "never-seen")
	require.NoError(t, err)
	require.Nil(t, user)
}
