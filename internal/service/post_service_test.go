package service

import (
	"context"
	"errors"
	"testing"

	"inkpost/internal/models"
	"inkpost/internal/repository"
	"inkpost/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPostInput(categoryID uint, status models.PostStatus) CreatePostInput {
	return CreatePostInput{
		Title:      "Hello world",
		Content:    "Some content worth reading.",
		CategoryID: categoryID,
		Status:     status,
	}
}

func TestCreatePost_DefaultsAndAuthor(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "")
	alice := testutil.CreateAccount(t, f.db, "alice", models.RoleUser, "Passw0rd")
	cat := testutil.CreateCategory(t, f.db, "Go")

	post, err := f.post.CreatePost(ctx, alice, newPostInput(cat.ID, ""))
	require.NoError(t, err)
	assert.Equal(t, models.PostStatusPublished, post.Status)
	assert.Equal(t, alice.ID, post.AuthorID)
	require.NotNil(t, post.Author)
	assert.Equal(t, "alice", post.Author.Username)
	assert.Equal(t, int64(1), f.categoryCount(t, cat.ID))
}

func TestCreatePost_CategoryChecks(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "")
	alice := testutil.CreateAccount(t, f.db, "alice", models.RoleUser, "Passw0rd")
	inactive := testutil.CreateCategory(t, f.db, "Archive")
	require.NoError(t, f.db.Model(inactive).Update("active", false).Error)

	_, err := f.post.CreatePost(ctx, alice, newPostInput(999, models.PostStatusPublished))
	appErr := assertAppError(t, err, models.CodeValidation)
	assert.Equal(t, "category_id", appErr.Field)

	_, err = f.post.CreatePost(ctx, alice, newPostInput(inactive.ID, models.PostStatusPublished))
	assertAppError(t, err, models.CodeValidation)

	_, err = f.post.CreatePost(ctx, alice, newPostInput(inactive.ID, "pending"))
	assertAppError(t, err, models.CodeValidation)

	_, err = f.post.CreatePost(ctx, nil, newPostInput(inactive.ID, models.PostStatusPublished))
	assertAppError(t, err, models.CodeUnauthenticated)
}

func TestCategoryPostCount_TracksPublishedPosts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "")
	alice := testutil.CreateAccount(t, f.db, "alice", models.RoleUser, "Passw0rd")
	cat := testutil.CreateCategory(t, f.db, "Go")

	first, err := f.post.CreatePost(ctx, alice, newPostInput(cat.ID, models.PostStatusPublished))
	require.NoError(t, err)
	_, err = f.post.CreatePost(ctx, alice, newPostInput(cat.ID, models.PostStatusDraft))
	require.NoError(t, err)
	_, err = f.post.CreatePost(ctx, alice, newPostInput(cat.ID, models.PostStatusPublished))
	require.NoError(t, err)
	assert.Equal(t, int64(2), f.categoryCount(t, cat.ID))

	require.NoError(t, f.post.DeletePost(ctx, alice, first.ID))
	assert.Equal(t, int64(1), f.categoryCount(t, cat.ID))
}

func TestGetPost_CountsEveryView(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "")
	alice := testutil.CreateAccount(t, f.db, "alice", models.RoleUser, "Passw0rd")
	cat := testutil.CreateCategory(t, f.db, "Go")
	post := testutil.CreatePost(t, f.db, alice, cat, models.PostStatusPublished)

	const views = 5
	var got *models.Post
	for i := 0; i < views; i++ {
		var err error
		got, err = f.post.GetPost(ctx, post.ID)
		require.NoError(t, err)
	}
	assert.Equal(t, int64(views), got.ViewCount)

	_, err := f.post.GetPost(ctx, 9999)
	assertAppError(t, err, models.CodeNotFound)
}

// viewlessPostRepo wraps a real post repository whose view counter is unavailable.
type viewlessPostRepo struct {
	repository.PostRepository
}

func (viewlessPostRepo) IncrementViews(context.Context, uint) error {
	return errors.New("view counter unavailable")
}

func TestGetPost_ViewCountFailureDoesNotFailRead(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "")
	alice := testutil.CreateAccount(t, f.db, "alice", models.RoleUser, "Passw0rd")
	cat := testutil.CreateCategory(t, f.db, "Go")
	post := testutil.CreatePost(t, f.db, alice, cat, models.PostStatusPublished)

	svc := NewPostService(viewlessPostRepo{PostRepository: f.posts}, f.categories)
	got, err := svc.GetPost(ctx, post.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, post.ID, got.ID)
	assert.Equal(t, int64(0), got.ViewCount)
}

func TestUpdatePost_Authorization(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "")
	alice := testutil.CreateAccount(t, f.db, "alice", models.RoleUser, "Passw0rd")
	bob := testutil.CreateAccount(t, f.db, "bob", models.RoleUser, "Passw0rd")
	admin := testutil.CreateAccount(t, f.db, "admin", models.RoleAdmin, "Passw0rd")
	cat := testutil.CreateCategory(t, f.db, "Go")
	post := testutil.CreatePost(t, f.db, alice, cat, models.PostStatusPublished)

	_, err := f.post.UpdatePost(ctx, bob, post.ID, UpdatePostInput{Title: ptr("Hijacked")})
	assertAppError(t, err, models.CodeForbidden)

	updated, err := f.post.UpdatePost(ctx, alice, post.ID, UpdatePostInput{Title: ptr("Edited by author")})
	require.NoError(t, err)
	assert.Equal(t, "Edited by author", updated.Title)
	assert.Equal(t, post.Content, updated.Content)

	updated, err = f.post.UpdatePost(ctx, admin, post.ID, UpdatePostInput{Content: ptr("Moderated content here.")})
	require.NoError(t, err)
	assert.Equal(t, "Moderated content here.", updated.Content)
	assert.Equal(t, alice.ID, updated.AuthorID, "author never changes on update")

	_, err = f.post.UpdatePost(ctx, alice, 9999, UpdatePostInput{Title: ptr("Nope")})
	assertAppError(t, err, models.CodeNotFound)
}

func TestUpdatePost_RecountsCategories(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "")
	alice := testutil.CreateAccount(t, f.db, "alice", models.RoleUser, "Passw0rd")
	goCat := testutil.CreateCategory(t, f.db, "Go")
	rustCat := testutil.CreateCategory(t, f.db, "Rust")

	post, err := f.post.CreatePost(ctx, alice, newPostInput(goCat.ID, models.PostStatusPublished))
	require.NoError(t, err)
	assert.Equal(t, int64(1), f.categoryCount(t, goCat.ID))

	_, err = f.post.UpdatePost(ctx, alice, post.ID, UpdatePostInput{CategoryID: ptr(rustCat.ID)})
	require.NoError(t, err)
	assert.Equal(t, int64(0), f.categoryCount(t, goCat.ID))
	assert.Equal(t, int64(1), f.categoryCount(t, rustCat.ID))

	_, err = f.post.UpdatePost(ctx, alice, post.ID, UpdatePostInput{Status: ptr(models.PostStatusArchived)})
	require.NoError(t, err)
	assert.Equal(t, int64(0), f.categoryCount(t, rustCat.ID))
}

func TestDeletePost_Authorization(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "")
	alice := testutil.CreateAccount(t, f.db, "alice", models.RoleUser, "Passw0rd")
	bob := testutil.CreateAccount(t, f.db, "bob", models.RoleUser, "Passw0rd")
	admin := testutil.CreateAccount(t, f.db, "admin", models.RoleAdmin, "Passw0rd")
	cat := testutil.CreateCategory(t, f.db, "Go")
	post := testutil.CreatePost(t, f.db, alice, cat, models.PostStatusPublished)

	assertAppError(t, f.post.DeletePost(ctx, bob, post.ID), models.CodeForbidden)
	assertAppError(t, f.post.DeletePost(ctx, nil, post.ID), models.CodeUnauthenticated)

	require.NoError(t, f.post.DeletePost(ctx, admin, post.ID))
	assertAppError(t, f.post.DeletePost(ctx, admin, post.ID), models.CodeNotFound)
}

func TestListPosts_StatusVisibility(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "")
	alice := testutil.CreateAccount(t, f.db, "alice", models.RoleUser, "Passw0rd")
	bob := testutil.CreateAccount(t, f.db, "bob", models.RoleUser, "Passw0rd")
	admin := testutil.CreateAccount(t, f.db, "admin", models.RoleAdmin, "Passw0rd")
	cat := testutil.CreateCategory(t, f.db, "Go Lang")
	testutil.CreatePost(t, f.db, alice, cat, models.PostStatusPublished)
	testutil.CreatePost(t, f.db, alice, cat, models.PostStatusDraft)

	posts, err := f.post.ListPosts(ctx, nil, ListPostsInput{})
	require.NoError(t, err)
	assert.Len(t, posts, 1)

	posts, err = f.post.ListPosts(ctx, nil, ListPostsInput{CategorySlug: "go-lang"})
	require.NoError(t, err)
	assert.Len(t, posts, 1)

	_, err = f.post.ListPosts(ctx, nil, ListPostsInput{CategorySlug: "missing"})
	assertAppError(t, err, models.CodeNotFound)

	draft := models.PostStatusDraft
	_, err = f.post.ListPosts(ctx, nil, ListPostsInput{Status: &draft})
	assertAppError(t, err, models.CodeUnauthenticated)

	_, err = f.post.ListPosts(ctx, bob, ListPostsInput{Status: &draft, AuthorID: ptr(alice.ID)})
	assertAppError(t, err, models.CodeForbidden)

	posts, err = f.post.ListPosts(ctx, alice, ListPostsInput{Status: &draft, AuthorID: ptr(alice.ID)})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, models.PostStatusDraft, posts[0].Status)

	posts, err = f.post.ListPosts(ctx, admin, ListPostsInput{Status: &draft})
	require.NoError(t, err)
	assert.Len(t, posts, 1)
}

// failingRecountRepo wraps a real category repository and fails every recount.
type failingRecountRepo struct {
	repository.CategoryRepository
}

func (failingRecountRepo) RecountPosts(context.Context, uint) error {
	return errors.New("recount unavailable")
}

func TestCreatePost_RecountFailureDoesNotFailWrite(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "")
	alice := testutil.CreateAccount(t, f.db, "alice", models.RoleUser, "Passw0rd")
	cat := testutil.CreateCategory(t, f.db, "Go")

	svc := NewPostService(f.posts, failingRecountRepo{CategoryRepository: f.categories})
	post, err := svc.CreatePost(ctx, alice, newPostInput(cat.ID, models.PostStatusPublished))
	require.NoError(t, err)
	assert.NotZero(t, post.ID)
	assert.Equal(t, int64(0), f.categoryCount(t, cat.ID), "count stays stale until the next recount")

	require.NoError(t, f.category.RecountAll(ctx))
	assert.Equal(t, int64(1), f.categoryCount(t, cat.ID))
}
