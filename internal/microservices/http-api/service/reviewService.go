package service

import (
	"context"

	"reviewhub/internal/apperr"
	"reviewhub/internal/microservices/http-api/dto"
	"reviewhub/internal/microservices/http-api/models"
	"reviewhub/internal/microservices/http-api/policy"
	"reviewhub/internal/microservices/http-api/repository"
	"reviewhub/internal/validators"
)

type ReviewService interface {
	List(ctx context.Context, titleID int64, page, pageSize int) ([]models.Review, int64, error)
	Get(ctx context.Context, titleID, reviewID int64) (*models.Review, error)
	Create(ctx context.Context, actor policy.Actor, titleID int64, req dto.CreateReviewRequest) (*models.Review, error)
	Update(ctx context.Context, actor policy.Actor, titleID, reviewID int64, req dto.UpdateReviewRequest) (*models.Review, error)
	Delete(ctx context.Context, actor policy.Actor, titleID, reviewID int64) error
}

type reviewService struct {
	reviews repository.ReviewRepository
	titles  repository.TitleRepository
}

func NewReviewService(reviews repository.ReviewRepository, titles repository.TitleRepository) ReviewService {
	return &reviewService{reviews: reviews, titles: titles}
}

func (s *reviewService) requireTitle(ctx context.Context, titleID int64) error {
	ok, err := s.titles.Exists(ctx, titleID)
	if err != nil {
		return apperr.Internal(err)
	}
	if !ok {
		return apperr.NotFound("Title not found.")
	}
	return nil
}

func (s *reviewService) List(ctx context.Context, titleID int64, page, pageSize int) ([]models.Review, int64, error) {
	if err := s.requireTitle(ctx, titleID); err != nil {
		return nil, 0, err
	}
	list, total, err := s.reviews.ListByTitle(ctx, titleID, page, pageSize)
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}
	return list, total, nil
}

func (s *reviewService) Get(ctx context.Context, titleID, reviewID int64) (*models.Review, error) {
	review, err := s.reviews.GetByID(ctx, titleID, reviewID)
	if err != nil {
		return nil, notFoundOr(err, "Review not found.")
	}
	return review, nil
}

func (s *reviewService) Create(ctx context.Context, actor policy.Actor, titleID int64, req dto.CreateReviewRequest) (*models.Review, error) {
	if err := policy.CanPerform(actor, policy.ActionCreate, policy.On(policy.ResourceReview)).Err(); err != nil {
		return nil, err
	}
	if err := s.requireTitle(ctx, titleID); err != nil {
		return nil, err
	}
	if req.Score == nil {
		return nil, apperr.ValidationField("score", "This field is required.")
	}
	if err := validators.ValidateScore(*req.Score); err != nil {
		return nil, err
	}

	// fast path; the unique index is what actually decides under concurrency
	exists, err := s.reviews.ExistsForAuthor(ctx, titleID, actor.ID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if exists {
		return nil, duplicateReview()
	}

	review := &models.Review{
		TitleID:  titleID,
		AuthorID: actor.ID,
		Text:     req.Text,
		Score:    *req.Score,
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		if isDuplicate(err) {
			return nil, duplicateReview()
		}
		return nil, apperr.Internal(err)
	}
	return review, nil
}

func (s *reviewService) Update(ctx context.Context, actor policy.Actor, titleID, reviewID int64, req dto.UpdateReviewRequest) (*models.Review, error) {
	review, err := s.authorize(ctx, actor, policy.ActionUpdate, titleID, reviewID)
	if err != nil {
		return nil, err
	}
	req.ApplyTo(review)
	if err := validators.ValidateScore(review.Score); err != nil {
		return nil, err
	}
	if err := s.reviews.Update(ctx, review); err != nil {
		return nil, apperr.Internal(err)
	}
	return review, nil
}

func (s *reviewService) Delete(ctx context.Context, actor policy.Actor, titleID, reviewID int64) error {
	if _, err := s.authorize(ctx, actor, policy.ActionDelete, titleID, reviewID); err != nil {
		return err
	}
	if err := s.reviews.Delete(ctx, titleID, reviewID); err != nil {
		return notFoundOr(err, "Review not found.")
	}
	return nil
}

// authorize rejects anonymous callers before the lookup, then applies the
// ownership rule to the loaded review.
func (s *reviewService) authorize(ctx context.Context, actor policy.Actor, action policy.Action, titleID, reviewID int64) (*models.Review, error) {
	if !actor.Authenticated {
		return nil, apperr.ErrUnauthenticated
	}
	review, err := s.Get(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}
	if err := policy.CanPerform(actor, action, policy.OnAuthored(policy.ResourceReview, review.AuthorID)).Err(); err != nil {
		return nil, err
	}
	return review, nil
}

func duplicateReview() error {
	return apperr.ValidationField("non_field_errors", MsgDuplicateReview)
}
