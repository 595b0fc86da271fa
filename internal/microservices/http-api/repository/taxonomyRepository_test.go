package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"reviewhub/internal/microservices/http-api/models"
)

func TestTaxonomyRepository_CreateListSearch(t *testing.T) {
	db := newTestDB(t)
	repo := NewGenreRepository(db)
	ctx := context.Background()

	for _, g := range [][2]string{{"Rock", "rock"}, {"Drama", "drama"}, {"Romance", "romance"}} {
		seedGenre(t, db, g[0], g[1])
	}

	items, total, err := repo.List(ctx, "", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, []string{"Drama", "Rock", "Romance"}, []string{items[0].Name, items[1].Name, items[2].Name})

	items, total, err = repo.List(ctx, "ro", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, "rock", items[0].Slug)

	// categories live in their own table
	cats, total, err := NewCategoryRepository(db).List(ctx, "", 1, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, cats)
}

func TestTaxonomyRepository_UniqueNameAndSlug(t *testing.T) {
	db := newTestDB(t)
	repo := NewCategoryRepository(db)
	ctx := context.Background()

	first := seedCategory(t, db, "Movie", "movie")
	assert.NotZero(t, first.ID)

	err := repo.Create(ctx, &models.NameSlug{Name: "Movie", Slug: "film"})
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey), "%v", err)

	nameTaken, slugTaken, err := repo.NameOrSlugTaken(ctx, "Book", "movie")
	require.NoError(t, err)
	assert.False(t, nameTaken)
	assert.True(t, slugTaken)
}

func TestTaxonomyRepository_FindBySlugs(t *testing.T) {
	db := newTestDB(t)
	repo := NewGenreRepository(db)
	seedGenre(t, db, "Rock", "rock")
	seedGenre(t, db, "Jazz", "jazz")

	found, err := repo.FindBySlugs(context.Background(), []string{"rock", "jazz", "missing"})
	require.NoError(t, err)
	assert.Len(t, found, 2)

	found, err = repo.FindBySlugs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestCategoryDelete_KeepsTitles(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	cat := seedCategory(t, db, "Book", "book")
	title := seedTitle(t, db, "Dune", 1965, &cat.ID)

	require.NoError(t, NewCategoryRepository(db).DeleteBySlug(ctx, "book"))

	got, err := NewTitleRepository(db).GetByID(ctx, title.ID)
	require.NoError(t, err)
	assert.Nil(t, got.CategoryID)
	assert.Nil(t, got.Category)

	assert.ErrorIs(t, NewCategoryRepository(db).DeleteBySlug(ctx, "book"), gorm.ErrRecordNotFound)
}

func TestGenreDelete_RemovesOnlyLinks(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	rock := seedGenre(t, db, "Rock", "rock")
	jazz := seedGenre(t, db, "Jazz", "jazz")
	title := seedTitle(t, db, "Album", 2000, nil, rock.ID, jazz.ID)

	require.NoError(t, NewGenreRepository(db).DeleteBySlug(ctx, "rock"))

	got, err := NewTitleRepository(db).GetByID(ctx, title.ID)
	require.NoError(t, err)
	require.Len(t, got.Genres, 1)
	assert.Equal(t, "jazz", got.Genres[0].Slug)
}
