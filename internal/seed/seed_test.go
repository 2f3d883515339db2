package seed

import (
	"context"
	"regexp"
	"testing"

	"inkpost/internal/models"
	"inkpost/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeederRun(t *testing.T) {
	db := testutil.NewDB(t)
	s := NewSeeder(db, Options{
		Accounts:   5,
		Posts:      12,
		MaxLikes:   3,
		MaxComment: 2,
		RandomSeed: 42,
	})

	sum, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, len(defaultCategories), sum.Categories)
	assert.Equal(t, 5, sum.Accounts)
	assert.Equal(t, 12, sum.Posts)

	var likes, comments int64
	require.NoError(t, db.Model(&models.Like{}).Count(&likes).Error)
	require.NoError(t, db.Model(&models.Comment{}).Count(&comments).Error)
	assert.EqualValues(t, sum.Likes, likes)
	assert.EqualValues(t, sum.Comments, comments)

	// Materialized counts match the published posts in each category.
	var categories []models.Category
	require.NoError(t, db.Find(&categories).Error)
	for _, c := range categories {
		var published int64
		require.NoError(t, db.Model(&models.Post{}).
			Where("category_id = ? AND status = ?", c.ID, models.PostStatusPublished).
			Count(&published).Error)
		assert.Equal(t, published, c.PostCount, c.Name)
	}
}

func TestSeederRunIsRepeatableWithClean(t *testing.T) {
	db := testutil.NewDB(t)
	opts := Options{Accounts: 3, Posts: 4, Clean: true, RandomSeed: 7}

	_, err := NewSeeder(db, opts).Run(context.Background())
	require.NoError(t, err)
	_, err = NewSeeder(db, opts).Run(context.Background())
	require.NoError(t, err)

	var accounts, posts int64
	require.NoError(t, db.Model(&models.Account{}).Count(&accounts).Error)
	require.NoError(t, db.Model(&models.Post{}).Count(&posts).Error)
	assert.EqualValues(t, 3, accounts)
	assert.EqualValues(t, 4, posts)
}

func TestUsernameFor(t *testing.T) {
	valid := regexp.MustCompile(`^[a-z0-9_]{3,30}$`)

	assert.Equal(t, "ada_lovelace_0", usernameFor("Ada", "Lovelace", 0))
	assert.Equal(t, "zo_obrien_12", usernameFor("Zoë", "O'Brien", 12))
	assert.Regexp(t, valid, usernameFor("Maximilianus", "Wolfeschlegelsteinhausen", 99999))
}
