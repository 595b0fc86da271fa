package handler_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"reviewhub/internal/apperr"
	"reviewhub/internal/microservices/http-api/dto"
	"reviewhub/internal/microservices/http-api/handler"
	"reviewhub/internal/microservices/http-api/models"
	"reviewhub/internal/microservices/http-api/policy"
)

func TestTitles_ListParsesFilters(t *testing.T) {
	titles := new(MockTitleService)
	titles.On("List", mock.Anything, mock.MatchedBy(func(f dto.TitleFilter) bool {
		return f.Category == "film" && f.Genre == "drama" && f.Name == "dune" &&
			f.Year != nil && *f.Year == 1965 &&
			assert.ObjectsAreEqual([]string{"-year", "name"}, f.Ordering) &&
			f.Page == 1 && f.PageSize == 10
	})).Return([]models.Title{{ID: 1, Name: "Dune", Year: 1965, Rating: 7.5}}, int64(1), nil)

	w := doJSON(newRouter(handler.Services{Titles: titles}), http.MethodGet,
		"/api/v1/titles?category=film&genre=drama&name=dune&year=1965&ordering=-year,%20name", nil, "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"rating":7.5`)
	assert.Contains(t, w.Body.String(), `"genre":[]`)
	titles.AssertExpectations(t)
}

func TestTitles_ListEmptyIsArray(t *testing.T) {
	titles := new(MockTitleService)
	titles.On("List", mock.Anything, mock.Anything).Return([]models.Title(nil), int64(0), nil)

	w := doJSON(newRouter(handler.Services{Titles: titles}), http.MethodGet, "/api/v1/titles", nil, "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"data":[]`)
}

func TestTitles_ListBadYear(t *testing.T) {
	titles := new(MockTitleService)

	w := doJSON(newRouter(handler.Services{Titles: titles}), http.MethodGet, "/api/v1/titles?year=soon", nil, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"Enter a whole number."}, decodeError(t, w).Details["year"])
	titles.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestTitles_Get(t *testing.T) {
	film := &models.Category{NameSlug: models.NameSlug{ID: 1, Name: "Film", Slug: "film"}}
	titles := new(MockTitleService)
	titles.On("Get", mock.Anything, int64(7)).Return(&models.Title{
		ID: 7, Name: "Stalker", Year: 1979, Rating: 9, Category: film,
		Genres: []models.Genre{{NameSlug: models.NameSlug{ID: 2, Name: "Drama", Slug: "drama"}}},
	}, nil)
	titles.On("Get", mock.Anything, int64(8)).Return(nil, apperr.NotFound("Title not found."))

	router := newRouter(handler.Services{Titles: titles})

	w := doJSON(router, http.MethodGet, "/api/v1/titles/7", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":7,"name":"Stalker","year":1979,"rating":9,"description":null,
		"genre":[{"name":"Drama","slug":"drama"}],"category":{"name":"Film","slug":"film"}}`, w.Body.String())

	w = doJSON(router, http.MethodGet, "/api/v1/titles/8", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(router, http.MethodGet, "/api/v1/titles/abc", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTitles_CreateRequiresYear(t *testing.T) {
	root := &models.User{ID: 1, Username: "root", Role: models.RoleAdmin}
	auth := new(MockAuthService)
	auth.On("Authenticate", mock.Anything, "tok").Return(root, nil)
	titles := new(MockTitleService)

	w := doJSON(newRouter(handler.Services{Auth: auth, Titles: titles}), http.MethodPost, "/api/v1/titles",
		map[string]any{"name": "Dune", "genre": []string{"not a slug"}}, "tok")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, []string{"This field is required."}, body.Details["year"])
	assert.NotEmpty(t, body.Details["genre[0]"])
	titles.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestTitles_CreateAnonymousRejected(t *testing.T) {
	titles := new(MockTitleService)
	router := newRouter(handler.Services{Titles: titles})

	w := doJSON(router, http.MethodPost, "/api/v1/titles", map[string]any{"name": "Dune", "year": 1965}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// permission is decided before the body is validated
	w = doJSON(router, http.MethodPost, "/api/v1/titles", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "authentication credentials were not provided", decodeError(t, w).Error)

	w = doJSON(router, http.MethodPatch, "/api/v1/titles/abc", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	titles.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestTitles_CreateForbiddenForUsers(t *testing.T) {
	bob := &models.User{ID: 2, Username: "bob", Role: models.RoleUser}
	auth := new(MockAuthService)
	auth.On("Authenticate", mock.Anything, "tok").Return(bob, nil)
	titles := new(MockTitleService)
	router := newRouter(handler.Services{Auth: auth, Titles: titles})

	w := doJSON(router, http.MethodPost, "/api/v1/titles", nil, "tok")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(router, http.MethodDelete, "/api/v1/titles/3", nil, "tok")
	assert.Equal(t, http.StatusForbidden, w.Code)
	titles.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	titles.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}

func TestCategories_CreateForbiddenBeforeBinding(t *testing.T) {
	bob := &models.User{ID: 2, Username: "bob", Role: models.RoleUser}
	auth := new(MockAuthService)
	auth.On("Authenticate", mock.Anything, "tok").Return(bob, nil)
	router := newRouter(handler.Services{Auth: auth})

	w := doJSON(router, http.MethodPost, "/api/v1/categories", nil, "tok")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(router, http.MethodPost, "/api/v1/genres", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(router, http.MethodDelete, "/api/v1/genres/drama", nil, "tok")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestTitles_UpdateAndDelete(t *testing.T) {
	root := &models.User{ID: 1, Username: "root", Role: models.RoleAdmin}
	auth := new(MockAuthService)
	auth.On("Authenticate", mock.Anything, "tok").Return(root, nil)
	titles := new(MockTitleService)
	titles.On("Update", mock.Anything, policy.ActorFromUser(root), int64(3), mock.MatchedBy(func(req dto.UpdateTitleRequest) bool {
		return req.Genre != nil && len(*req.Genre) == 0 && req.Name == nil
	})).Return(&models.Title{ID: 3, Name: "Dune", Year: 1965}, nil)
	titles.On("Delete", mock.Anything, policy.ActorFromUser(root), int64(3)).Return(nil)
	titles.On("Delete", mock.Anything, policy.ActorFromUser(root), int64(4)).Return(errors.New("connection refused"))

	router := newRouter(handler.Services{Auth: auth, Titles: titles})

	w := doJSON(router, http.MethodPatch, "/api/v1/titles/3", map[string]any{"genre": []string{}}, "tok")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodDelete, "/api/v1/titles/3", nil, "tok")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(router, http.MethodDelete, "/api/v1/titles/4", nil, "tok")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	titles.AssertExpectations(t)
}

func TestTitles_InvalidToken(t *testing.T) {
	auth := new(MockAuthService)
	auth.On("Authenticate", mock.Anything, "expired").Return(nil, apperr.Unauthenticated("Given token not valid for any token type"))
	titles := new(MockTitleService)

	router := newRouter(handler.Services{Auth: auth, Titles: titles})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/titles", nil)
	req.Header.Set("Authorization", "Bearer expired")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	titles.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}
