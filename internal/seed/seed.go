// Package seed populates a database with demo data for development and
// manual testing. It writes through the repositories so seeded rows obey the
// same constraints as rows created over the API.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"inkpost/internal/auth"
	"inkpost/internal/database"
	"inkpost/internal/models"
	"inkpost/internal/observability"
	"inkpost/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// DefaultPassword is assigned to every seeded account.
const DefaultPassword = "Password123"

var defaultCategories = []string{
	"Technology", "Programming", "Travel", "Food", "Books", "Science", "Music", "Photography",
}

// Options controls how much data a Seeder writes.
type Options struct {
	Accounts   int
	Posts      int
	MaxLikes   int
	MaxComment int
	Clean      bool
	// RandomSeed makes runs reproducible when non-zero.
	RandomSeed int64
	// BcryptCost defaults to bcrypt's minimum; seeded passwords are not secrets.
	BcryptCost int
}

// Summary reports what a run created.
type Summary struct {
	Categories int
	Accounts   int
	Posts      int
	Likes      int
	Comments   int
}

// Seeder writes demo data through the repositories.
type Seeder struct {
	db         *gorm.DB
	faker      *gofakeit.Faker
	hasher     *auth.Hasher
	accounts   repository.AccountRepository
	categories repository.CategoryRepository
	posts      repository.PostRepository
	comments   repository.CommentRepository
	opts       Options
}

// NewSeeder creates a Seeder bound to db.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	if opts.BcryptCost == 0 {
		opts.BcryptCost = 4
	}
	return &Seeder{
		db:         db,
		faker:      gofakeit.New(opts.RandomSeed),
		hasher:     auth.NewHasher(opts.BcryptCost),
		accounts:   repository.NewAccountRepository(db),
		categories: repository.NewCategoryRepository(db),
		posts:      repository.NewPostRepository(db),
		comments:   repository.NewCommentRepository(db),
		opts:       opts,
	}
}

// Run seeds categories, accounts, posts and engagement, then reconciles category counts.
func (s *Seeder) Run(ctx context.Context) (*Summary, error) {
	if s.opts.Clean {
		if err := s.ClearAll(); err != nil {
			return nil, fmt.Errorf("clear: %w", err)
		}
	}

	sum := &Summary{}

	categories, err := s.seedCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("categories: %w", err)
	}
	sum.Categories = len(categories)

	accounts, err := s.seedAccounts(ctx, s.opts.Accounts)
	if err != nil {
		return nil, fmt.Errorf("accounts: %w", err)
	}
	sum.Accounts = len(accounts)
	if len(accounts) == 0 || len(categories) == 0 {
		return sum, nil
	}

	for i := 0; i < s.opts.Posts; i++ {
		post, err := s.seedPost(ctx, accounts, categories)
		if err != nil {
			return nil, fmt.Errorf("post %d: %w", i, err)
		}
		sum.Posts++

		likes, comments, err := s.seedEngagement(ctx, post, accounts)
		if err != nil {
			return nil, fmt.Errorf("engagement for post %d: %w", post.ID, err)
		}
		sum.Likes += likes
		sum.Comments += comments
	}

	if err := s.categories.RecountAll(ctx); err != nil {
		return nil, fmt.Errorf("recount categories: %w", err)
	}

	observability.Logger.InfoContext(ctx, "seed complete",
		slog.Int("categories", sum.Categories),
		slog.Int("accounts", sum.Accounts),
		slog.Int("posts", sum.Posts),
		slog.Int("likes", sum.Likes),
		slog.Int("comments", sum.Comments),
	)
	return sum, nil
}

// ClearAll deletes every row the seeder can create, children first.
func (s *Seeder) ClearAll() error {
	all := database.Models()
	for i := len(all) - 1; i >= 0; i-- {
		if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(all[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) seedCategories(ctx context.Context) ([]*models.Category, error) {
	out := make([]*models.Category, 0, len(defaultCategories))
	for _, name := range defaultCategories {
		existing, err := s.categories.GetBySlug(ctx, models.Slugify(name))
		if err == nil {
			out = append(out, existing)
			continue
		}
		if !models.HasCode(err, models.CodeNotFound) {
			return nil, err
		}

		category := &models.Category{
			Name:        name,
			Description: s.faker.Sentence(8),
			Active:      true,
		}
		if err := models.SlugifyCategory(category); err != nil {
			return nil, err
		}
		if len(category.Description) > 200 {
			category.Description = category.Description[:200]
		}
		if err := s.categories.Create(ctx, category); err != nil {
			return nil, err
		}
		out = append(out, category)
	}
	return out, nil
}

func (s *Seeder) seedAccounts(ctx context.Context, n int) ([]*models.Account, error) {
	hash, err := s.hasher.Hash(DefaultPassword)
	if err != nil {
		return nil, err
	}

	out := make([]*models.Account, 0, n)
	for i := 0; i < n; i++ {
		first, last := s.faker.FirstName(), s.faker.LastName()
		username := usernameFor(first, last, i)

		taken, err := s.accounts.UsernameTaken(ctx, username)
		if err != nil {
			return nil, err
		}
		if taken {
			continue
		}

		account := &models.Account{
			Username:     username,
			Email:        username + "@example.com",
			PasswordHash: hash,
			Role:         models.RoleUser,
			Active:       true,
			Profile: models.Profile{
				FirstName: first,
				LastName:  last,
				Bio:       s.faker.HipsterSentence(10),
			},
		}
		if err := models.NormalizeAccount(account); err != nil {
			return nil, err
		}
		if err := s.accounts.Create(ctx, account); err != nil {
			return nil, err
		}
		out = append(out, account)
	}
	return out, nil
}

func (s *Seeder) seedPost(ctx context.Context, accounts []*models.Account, categories []*models.Category) (*models.Post, error) {
	status := models.PostStatusPublished
	switch s.faker.Number(1, 10) {
	case 1:
		status = models.PostStatusDraft
	case 2:
		status = models.PostStatusArchived
	}

	title := strings.TrimSuffix(s.faker.Sentence(s.faker.Number(3, 8)), ".")
	if len(title) > 100 {
		title = title[:100]
	}

	post := &models.Post{
		Title:      title,
		Content:    s.faker.Paragraph(s.faker.Number(1, 4), 4, 12, "\n\n"),
		AuthorID:   accounts[s.faker.Number(0, len(accounts)-1)].ID,
		CategoryID: categories[s.faker.Number(0, len(categories)-1)].ID,
		Status:     status,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *Seeder) seedEngagement(ctx context.Context, post *models.Post, accounts []*models.Account) (int, int, error) {
	var likes, comments int

	for i := 0; i < s.faker.Number(0, s.opts.MaxLikes); i++ {
		liker := accounts[s.faker.Number(0, len(accounts)-1)]
		added, err := s.posts.AddLike(ctx, post.ID, liker.ID)
		if err != nil {
			return 0, 0, err
		}
		if added {
			likes++
		}
	}

	for i := 0; i < s.faker.Number(0, s.opts.MaxComment); i++ {
		commenter := accounts[s.faker.Number(0, len(accounts)-1)]
		comment := &models.Comment{
			PostID:    post.ID,
			AccountID: commenter.ID,
			Content:   s.faker.Sentence(s.faker.Number(4, 20)),
		}
		if err := s.comments.Create(ctx, comment); err != nil {
			return 0, 0, err
		}
		comments++
	}

	return likes, comments, nil
}

// usernameFor builds a username that satisfies the account rules from a faked name.
func usernameFor(first, last string, n int) string {
	var b strings.Builder
	for _, r := range strings.ToLower(first + "_" + last) {
		if r == '_' || (r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r))) {
			b.WriteRune(r)
		}
	}
	base := b.String()
	if len(base) > 24 {
		base = base[:24]
	}
	return fmt.Sprintf("%s_%d", base, n)
}
