package service

import (
	"context"
	"testing"

	"inkpost/internal/models"
	"inkpost/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryService_AdminLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "")
	admin := testutil.CreateAccount(t, f.db, "admin", models.RoleAdmin, "Passw0rd")
	alice := testutil.CreateAccount(t, f.db, "alice", models.RoleUser, "Passw0rd")

	_, err := f.category.CreateCategory(ctx, alice, CategoryInput{Name: "Go"})
	assertAppError(t, err, models.CodeForbidden)

	created, err := f.category.CreateCategory(ctx, admin, CategoryInput{Name: "  Web Development ", Description: "HTTP things"})
	require.NoError(t, err)
	assert.Equal(t, "Web Development", created.Name)
	assert.Equal(t, "web-development", created.Slug)
	assert.True(t, created.Active)

	_, err = f.category.CreateCategory(ctx, admin, CategoryInput{Name: "Web Development"})
	assertAppError(t, err, models.CodeDuplicate)

	_, err = f.category.CreateCategory(ctx, admin, CategoryInput{Name: "!!!"})
	assertAppError(t, err, models.CodeValidation)

	renamed, err := f.category.UpdateCategory(ctx, admin, created.ID, CategoryInput{Name: "Web Dev"})
	require.NoError(t, err)
	assert.Equal(t, "web-dev", renamed.Slug)
	assert.Equal(t, "HTTP things", renamed.Description)

	post := testutil.CreatePost(t, f.db, alice, renamed, models.PostStatusPublished)
	assertAppError(t, f.category.DeleteCategory(ctx, admin, created.ID), models.CodeValidation)

	require.NoError(t, f.post.DeletePost(ctx, alice, post.ID))
	require.NoError(t, f.category.DeleteCategory(ctx, admin, created.ID))
	assertAppError(t, f.category.DeleteCategory(ctx, admin, created.ID), models.CodeNotFound)
}

func TestCategoryService_InactiveHiddenFromPublic(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "")
	admin := testutil.CreateAccount(t, f.db, "admin", models.RoleAdmin, "Passw0rd")
	testutil.CreateCategory(t, f.db, "Go")
	hidden, err := f.category.CreateCategory(ctx, admin, CategoryInput{Name: "Hidden", Active: ptr(false)})
	require.NoError(t, err)
	assert.False(t, hidden.Active)

	list, err := f.category.ListCategories(ctx, nil, true)
	require.NoError(t, err)
	assert.Len(t, list, 1, "anonymous callers only see active categories")

	list, err = f.category.ListCategories(ctx, admin, true)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = f.category.GetCategory(ctx, nil, "hidden")
	assertAppError(t, err, models.CodeNotFound)

	got, err := f.category.GetCategory(ctx, admin, "hidden")
	require.NoError(t, err)
	assert.Equal(t, hidden.ID, got.ID)
}
