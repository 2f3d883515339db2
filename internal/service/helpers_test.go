package service

import (
	"errors"
	"testing"
	"time"

	"inkpost/internal/auth"
	"inkpost/internal/featureflags"
	"inkpost/internal/models"
	"inkpost/internal/repository"
	"inkpost/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type fixture struct {
	db          *gorm.DB
	mr          *miniredis.Miniredis
	tokens      *auth.TokenService
	revocations *auth.RevocationStore
	accounts    repository.AccountRepository
	posts       repository.PostRepository
	comments    repository.CommentRepository
	categories  repository.CategoryRepository

	auth       *AuthService
	admin      *AccountAdminService
	post       *PostService
	engagement *EngagementService
	category   *CategoryService
}

func newFixture(t *testing.T, flags string) *fixture {
	t.Helper()

	db := testutil.NewDB(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	tokens, err := auth.NewTokenService(auth.TokenConfig{
		Secret:   "service-test-secret",
		TTL:      time.Hour,
		Issuer:   "inkpost-api",
		Audience: "inkpost-client",
	})
	require.NoError(t, err)

	f := &fixture{
		db:          db,
		mr:          mr,
		tokens:      tokens,
		revocations: auth.NewRevocationStore(rdb),
		accounts:    repository.NewAccountRepository(db),
		posts:       repository.NewPostRepository(db),
		comments:    repository.NewCommentRepository(db),
		categories:  repository.NewCategoryRepository(db),
	}
	f.auth = NewAuthService(f.accounts, auth.NewHasher(bcrypt.MinCost), tokens, f.revocations, featureflags.NewManager(flags))
	f.admin = NewAccountAdminService(f.accounts)
	f.post = NewPostService(f.posts, f.categories)
	f.engagement = NewEngagementService(f.posts, f.comments)
	f.category = NewCategoryService(f.categories)
	return f
}

func (f *fixture) categoryCount(t *testing.T, id uint) int64 {
	t.Helper()
	var category models.Category
	require.NoError(t, f.db.First(&category, id).Error)
	return category.PostCount
}

// assertAppError asserts that err is an AppError with the given code.
func assertAppError(t *testing.T, err error, code string) *models.AppError {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code, appErr.Message)
	return appErr
}

func ptr[T any](v T) *T {
	return &v
}
