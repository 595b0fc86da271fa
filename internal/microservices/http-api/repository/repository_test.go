package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"reviewhub/database"
	"reviewhub/internal/microservices/http-api/models"
)

// newTestDB opens a private in-memory SQLite database with foreign keys on
// and the production schema migrated.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username, Email: username + "@example.com", Role: models.RoleUser, CodeState: models.CodeNone}
	require.NoError(t, NewUserRepository(db).Create(context.Background(), u))
	return u
}

func seedCategory(t *testing.T, db *gorm.DB, name, slug string) *models.NameSlug {
	t.Helper()
	c := &models.NameSlug{Name: name, Slug: slug}
	require.NoError(t, NewCategoryRepository(db).Create(context.Background(), c))
	return c
}

func seedGenre(t *testing.T, db *gorm.DB, name, slug string) *models.NameSlug {
	t.Helper()
	g := &models.NameSlug{Name: name, Slug: slug}
	require.NoError(t, NewGenreRepository(db).Create(context.Background(), g))
	return g
}

func seedTitle(t *testing.T, db *gorm.DB, name string, year int, categoryID *int64, genreIDs ...int64) *models.Title {
	t.Helper()
	title := &models.Title{Name: name, Year: year, CategoryID: categoryID}
	require.NoError(t, NewTitleRepository(db).Create(context.Background(), title, genreIDs))
	return title
}

func seedReview(t *testing.T, db *gorm.DB, titleID, authorID int64, score int) *models.Review {
	t.Helper()
	r := &models.Review{TitleID: titleID, AuthorID: authorID, Text: "text", Score: score}
	require.NoError(t, NewReviewRepository(db).Create(context.Background(), r))
	return r
}
