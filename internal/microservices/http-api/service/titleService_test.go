package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"reviewhub/internal/apperr"
	"reviewhub/internal/microservices/http-api/dto"
	"reviewhub/internal/microservices/http-api/models"
	"reviewhub/internal/microservices/http-api/policy"
)

type titleFixture struct {
	titles     *MockTitleRepository
	categories *MockTaxonomyRepository
	genres     *MockTaxonomyRepository
	svc        *titleService
}

func newTitleFixture() titleFixture {
	f := titleFixture{
		titles:     new(MockTitleRepository),
		categories: new(MockTaxonomyRepository),
		genres:     new(MockTaxonomyRepository),
	}
	f.svc = NewTitleService(f.titles, f.categories, f.genres).(*titleService)
	f.svc.now = func() time.Time { return time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC) }
	return f
}

func TestCreateTitle_YearBoundary(t *testing.T) {
	f := newTitleFixture()
	f.genres.On("FindBySlugs", mock.Anything, mock.Anything).Return([]models.NameSlug{}, nil)
	f.titles.On("Create", mock.Anything, mock.Anything, []int64{}).
		Run(func(args mock.Arguments) { args.Get(1).(*models.Title).ID = 1 }).
		Return(nil)
	f.titles.On("GetByID", mock.Anything, int64(1)).Return(&models.Title{ID: 1, Name: "Now", Year: 2026}, nil)

	_, err := f.svc.Create(context.Background(), root, dto.CreateTitleRequest{Name: "Future", Year: intPtr(2027)})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.NotEmpty(t, apperr.From(err).Details["year"])

	title, err := f.svc.Create(context.Background(), root, dto.CreateTitleRequest{Name: "Now", Year: intPtr(2026)})
	require.NoError(t, err)
	assert.Equal(t, 2026, title.Year)
	f.titles.AssertNumberOfCalls(t, "Create", 1)
}

func TestCreateTitle_ResolvesSlugs(t *testing.T) {
	f := newTitleFixture()
	f.categories.On("FindBySlugs", mock.Anything, []string{"book"}).
		Return([]models.NameSlug{{ID: 3, Name: "Book", Slug: "book"}}, nil)
	f.genres.On("FindBySlugs", mock.Anything, []string{"drama", "sci-fi", "drama"}).
		Return([]models.NameSlug{{ID: 7, Slug: "drama"}, {ID: 8, Slug: "sci-fi"}}, nil)
	f.titles.On("Create", mock.Anything, mock.MatchedBy(func(t *models.Title) bool {
		return t.CategoryID != nil && *t.CategoryID == 3
	}), []int64{7, 8}).
		Run(func(args mock.Arguments) { args.Get(1).(*models.Title).ID = 5 }).
		Return(nil)
	f.titles.On("GetByID", mock.Anything, int64(5)).Return(&models.Title{ID: 5}, nil)

	_, err := f.svc.Create(context.Background(), root, dto.CreateTitleRequest{
		Name:     "Dune",
		Year:     intPtr(1965),
		Category: strPtr("book"),
		Genre:    []string{"drama", "sci-fi", "drama"},
	})
	require.NoError(t, err)
	f.titles.AssertExpectations(t)
}

func TestCreateTitle_UnknownSlugs(t *testing.T) {
	f := newTitleFixture()
	f.categories.On("FindBySlugs", mock.Anything, []string{"nope"}).Return([]models.NameSlug{}, nil)

	_, err := f.svc.Create(context.Background(), root, dto.CreateTitleRequest{Name: "x", Year: intPtr(2000), Category: strPtr("nope")})
	assert.Equal(t, []string{"Object with slug=nope does not exist."}, apperr.From(err).Details["category"])

	f.genres.On("FindBySlugs", mock.Anything, []string{"rock", "ghost"}).Return([]models.NameSlug{{ID: 1, Slug: "rock"}}, nil)
	_, err = f.svc.Create(context.Background(), root, dto.CreateTitleRequest{Name: "x", Year: intPtr(2000), Genre: []string{"rock", "ghost"}})
	assert.Equal(t, []string{"Object with slug=ghost does not exist."}, apperr.From(err).Details["genre"])
	f.titles.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateTitle_NeedsAdmin(t *testing.T) {
	f := newTitleFixture()
	_, err := f.svc.Create(context.Background(), policy.Anonymous(), dto.CreateTitleRequest{Name: "x", Year: intPtr(2000)})
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
	_, err = f.svc.Create(context.Background(), mod, dto.CreateTitleRequest{Name: "x", Year: intPtr(2000)})
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestUpdateTitle_GenresOptional(t *testing.T) {
	f := newTitleFixture()
	existing := &models.Title{ID: 5, Name: "Dune", Year: 1965}
	f.titles.On("GetByID", mock.Anything, int64(5)).Return(existing, nil)
	f.titles.On("Update", mock.Anything, mock.Anything, []int64(nil)).Return(nil).Once()

	_, err := f.svc.Update(context.Background(), root, 5, dto.UpdateTitleRequest{Name: strPtr("Dune (1965)")})
	require.NoError(t, err)
	assert.Equal(t, "Dune (1965)", existing.Name)

	f.titles.On("Update", mock.Anything, mock.Anything, []int64{}).Return(nil).Once()
	_, err = f.svc.Update(context.Background(), root, 5, dto.UpdateTitleRequest{Genre: sliceOf()})
	require.NoError(t, err)

	_, err = f.svc.Update(context.Background(), root, 5, dto.UpdateTitleRequest{Year: intPtr(2030)})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	f.titles.AssertExpectations(t)
}

func TestDeleteTitle(t *testing.T) {
	f := newTitleFixture()
	f.titles.On("Delete", mock.Anything, int64(5)).Return(nil)
	f.titles.On("Delete", mock.Anything, int64(6)).Return(gorm.ErrRecordNotFound)

	assert.NoError(t, f.svc.Delete(context.Background(), root, 5))
	assert.ErrorIs(t, f.svc.Delete(context.Background(), root, 6), apperr.ErrNotFound)
	assert.ErrorIs(t, f.svc.Delete(context.Background(), alice, 5), apperr.ErrForbidden)
}
