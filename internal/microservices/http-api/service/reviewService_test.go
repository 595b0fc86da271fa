package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"reviewhub/internal/apperr"
	"reviewhub/internal/microservices/http-api/dto"
	"reviewhub/internal/microservices/http-api/models"
	"reviewhub/internal/microservices/http-api/policy"
	"reviewhub/internal/validators"
)

var (
	alice = policy.Actor{ID: 1, Role: models.RoleUser, Authenticated: true}
	bob   = policy.Actor{ID: 2, Role: models.RoleUser, Authenticated: true}
	mod   = policy.Actor{ID: 3, Role: models.RoleModerator, Authenticated: true}
	root  = policy.Actor{ID: 4, Role: models.RoleAdmin, Authenticated: true}
)

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func sliceOf(v ...string) *[]string { return &v }

func TestCreateReview_Success(t *testing.T) {
	reviews := new(MockReviewRepository)
	titles := new(MockTitleRepository)
	svc := NewReviewService(reviews, titles)

	titles.On("Exists", mock.Anything, int64(10)).Return(true, nil)
	reviews.On("ExistsForAuthor", mock.Anything, int64(10), alice.ID).Return(false, nil)
	reviews.On("Create", mock.Anything, mock.MatchedBy(func(r *models.Review) bool {
		return r.TitleID == 10 && r.AuthorID == alice.ID && r.Score == 8 && r.Text == "great"
	})).Return(nil)

	review, err := svc.Create(context.Background(), alice, 10, dto.CreateReviewRequest{Text: "great", Score: intPtr(8)})
	require.NoError(t, err)
	assert.Equal(t, 8, review.Score)
	reviews.AssertExpectations(t)
}

func TestCreateReview_DuplicateProactive(t *testing.T) {
	reviews := new(MockReviewRepository)
	titles := new(MockTitleRepository)
	svc := NewReviewService(reviews, titles)

	titles.On("Exists", mock.Anything, int64(10)).Return(true, nil)
	reviews.On("ExistsForAuthor", mock.Anything, int64(10), alice.ID).Return(true, nil)

	_, err := svc.Create(context.Background(), alice, 10, dto.CreateReviewRequest{Text: "again", Score: intPtr(5)})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Equal(t, []string{MsgDuplicateReview}, apperr.From(err).Details["non_field_errors"])
	reviews.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateReview_DuplicateFromStore(t *testing.T) {
	reviews := new(MockReviewRepository)
	titles := new(MockTitleRepository)
	svc := NewReviewService(reviews, titles)

	// the pre-check passed, but a concurrent request won at the unique index
	titles.On("Exists", mock.Anything, int64(10)).Return(true, nil)
	reviews.On("ExistsForAuthor", mock.Anything, int64(10), alice.ID).Return(false, nil)
	reviews.On("Create", mock.Anything, mock.Anything).Return(gorm.ErrDuplicatedKey)

	_, err := svc.Create(context.Background(), alice, 10, dto.CreateReviewRequest{Text: "race", Score: intPtr(5)})
	assert.Equal(t, []string{MsgDuplicateReview}, apperr.From(err).Details["non_field_errors"])
}

func TestCreateReview_ScoreOutOfRange(t *testing.T) {
	reviews := new(MockReviewRepository)
	titles := new(MockTitleRepository)
	svc := NewReviewService(reviews, titles)
	titles.On("Exists", mock.Anything, int64(10)).Return(true, nil)

	for _, score := range []int{0, 11, -3} {
		_, err := svc.Create(context.Background(), alice, 10, dto.CreateReviewRequest{Text: "x", Score: intPtr(score)})
		assert.Equal(t, []string{validators.ScoreError}, apperr.From(err).Details["score"], "score %d", score)
	}
	reviews.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateReview_AnonymousAndMissingTitle(t *testing.T) {
	reviews := new(MockReviewRepository)
	titles := new(MockTitleRepository)
	svc := NewReviewService(reviews, titles)

	_, err := svc.Create(context.Background(), policy.Anonymous(), 10, dto.CreateReviewRequest{Text: "x", Score: intPtr(5)})
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	titles.On("Exists", mock.Anything, int64(99)).Return(false, nil)
	_, err = svc.Create(context.Background(), alice, 99, dto.CreateReviewRequest{Text: "x", Score: intPtr(5)})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDeleteReview_Permissions(t *testing.T) {
	owned := &models.Review{ID: 20, TitleID: 10, AuthorID: alice.ID, Score: 5}

	cases := []struct {
		name  string
		actor policy.Actor
		want  error
	}{
		{"anonymous", policy.Anonymous(), apperr.ErrUnauthenticated},
		{"stranger", bob, apperr.ErrForbidden},
		{"author", alice, nil},
		{"moderator", mod, nil},
		{"admin", root, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reviews := new(MockReviewRepository)
			svc := NewReviewService(reviews, new(MockTitleRepository))
			reviews.On("GetByID", mock.Anything, int64(10), int64(20)).Return(owned, nil)
			reviews.On("Delete", mock.Anything, int64(10), int64(20)).Return(nil)

			err := svc.Delete(context.Background(), tc.actor, 10, 20)
			if tc.want == nil {
				assert.NoError(t, err)
				reviews.AssertCalled(t, "Delete", mock.Anything, int64(10), int64(20))
				return
			}
			assert.ErrorIs(t, err, tc.want)
			reviews.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestUpdateReview(t *testing.T) {
	reviews := new(MockReviewRepository)
	svc := NewReviewService(reviews, new(MockTitleRepository))
	reviews.On("GetByID", mock.Anything, int64(10), int64(20)).
		Return(&models.Review{ID: 20, TitleID: 10, AuthorID: alice.ID, Text: "old", Score: 5}, nil)
	reviews.On("Update", mock.Anything, mock.Anything).Return(nil)

	review, err := svc.Update(context.Background(), alice, 10, 20, dto.UpdateReviewRequest{Score: intPtr(9)})
	require.NoError(t, err)
	assert.Equal(t, 9, review.Score)
	assert.Equal(t, "old", review.Text)

	_, err = svc.Update(context.Background(), alice, 10, 20, dto.UpdateReviewRequest{Score: intPtr(42)})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestGetReview_WrongTitle(t *testing.T) {
	reviews := new(MockReviewRepository)
	svc := NewReviewService(reviews, new(MockTitleRepository))
	reviews.On("GetByID", mock.Anything, int64(11), int64(20)).Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.Get(context.Background(), 11, 20)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
