package bootstrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog-panel/internal/apiserver/auth"
	"blog-panel/internal/shared/model"
	"blog-panel/internal/shared/storage/memstore"
)

func TestSeed(t *testing.T) {
	store := memstore.NewStore()
	ctx := context.Background()

	require.NoError(t, Seed(ctx, store))

	admin, err := store.GetUserByEmail(ctx, defaultAdminEmail)
	require.NoError(t, err)
	assert.Equal(t, model.UserRoleAdmin, admin.Role)
	assert.Equal(t, "Admin", admin.Name)
	assert.True(t, auth.CheckPassword(defaultAdminPassword, admin.PasswordHash))

	cats, err := store.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 3)
	names := make([]string, 0, len(cats))
	for _, c := range cats {
		names = append(names, c.Name)
		assert.NotEmpty(t, c.Slug)
		assert.NotEmpty(t, c.Description)
	}
	assert.ElementsMatch(t, []string{"Technology", "Programming", "Design"}, names)

	tagCount, err := store.CountTags(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(len(defaultTags)), tagCount)

	// Node.js 走既有 slug 约定，而非标准派生
	nodeTag, err := store.GetTagBySlug(ctx, "nodejs")
	require.NoError(t, err)
	assert.Equal(t, "Node.js", nodeTag.Name)
}

func TestSeedIdempotent(t *testing.T) {
	store := memstore.NewStore()
	ctx := context.Background()

	require.NoError(t, Seed(ctx, store))
	require.NoError(t, Seed(ctx, store))

	users, err := store.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), users)

	cats, err := store.CountCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(len(defaultCategories)), cats)
}

func TestSeedSkipsNonEmptyCollections(t *testing.T) {
	store := memstore.NewStore()
	ctx := context.Background()

	// 已有用户时不再播种管理员
	existing := &model.User{
		ID: "aaaaaaaaaaaaaaaaaaaaaaaa", Username: "someone",
		Email: "someone@example.com", Name: "S", Role: model.UserRoleAuthor,
	}
	require.NoError(t, store.CreateUser(ctx, existing))
	require.NoError(t, Seed(ctx, store))

	users, err := store.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), users)
}
