package service

import (
	"context"

	"reviewhub/internal/apperr"
	"reviewhub/internal/microservices/http-api/dto"
	"reviewhub/internal/microservices/http-api/models"
	"reviewhub/internal/microservices/http-api/policy"
	"reviewhub/internal/microservices/http-api/repository"
)

type CommentService interface {
	List(ctx context.Context, titleID, reviewID int64, page, pageSize int) ([]models.Comment, int64, error)
	Get(ctx context.Context, titleID, reviewID, commentID int64) (*models.Comment, error)
	Create(ctx context.Context, actor policy.Actor, titleID, reviewID int64, req dto.CommentRequest) (*models.Comment, error)
	Update(ctx context.Context, actor policy.Actor, titleID, reviewID, commentID int64, req dto.CommentRequest) (*models.Comment, error)
	Delete(ctx context.Context, actor policy.Actor, titleID, reviewID, commentID int64) error
}

type commentService struct {
	comments repository.CommentRepository
	reviews  repository.ReviewRepository
}

func NewCommentService(comments repository.CommentRepository, reviews repository.ReviewRepository) CommentService {
	return &commentService{comments: comments, reviews: reviews}
}

// resolveReview finds the parent review; one under a different title is not found.
func (s *commentService) resolveReview(ctx context.Context, titleID, reviewID int64) (*models.Review, error) {
	review, err := s.reviews.GetByID(ctx, titleID, reviewID)
	if err != nil {
		return nil, notFoundOr(err, "Review not found.")
	}
	return review, nil
}

func (s *commentService) List(ctx context.Context, titleID, reviewID int64, page, pageSize int) ([]models.Comment, int64, error) {
	review, err := s.resolveReview(ctx, titleID, reviewID)
	if err != nil {
		return nil, 0, err
	}
	list, total, err := s.comments.ListByReview(ctx, review.ID, page, pageSize)
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}
	return list, total, nil
}

func (s *commentService) Get(ctx context.Context, titleID, reviewID, commentID int64) (*models.Comment, error) {
	review, err := s.resolveReview(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}
	comment, err := s.comments.GetByID(ctx, review.ID, commentID)
	if err != nil {
		return nil, notFoundOr(err, "Comment not found.")
	}
	return comment, nil
}

func (s *commentService) Create(ctx context.Context, actor policy.Actor, titleID, reviewID int64, req dto.CommentRequest) (*models.Comment, error) {
	if err := policy.CanPerform(actor, policy.ActionCreate, policy.On(policy.ResourceComment)).Err(); err != nil {
		return nil, err
	}
	review, err := s.resolveReview(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		ReviewID: review.ID,
		AuthorID: actor.ID,
		Text:     req.Text,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperr.Internal(err)
	}
	return comment, nil
}

func (s *commentService) Update(ctx context.Context, actor policy.Actor, titleID, reviewID, commentID int64, req dto.CommentRequest) (*models.Comment, error) {
	comment, err := s.authorize(ctx, actor, policy.ActionUpdate, titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}
	comment.Text = req.Text
	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, apperr.Internal(err)
	}
	return comment, nil
}

func (s *commentService) Delete(ctx context.Context, actor policy.Actor, titleID, reviewID, commentID int64) error {
	comment, err := s.authorize(ctx, actor, policy.ActionDelete, titleID, reviewID, commentID)
	if err != nil {
		return err
	}
	if err := s.comments.Delete(ctx, comment.ReviewID, comment.ID); err != nil {
		return notFoundOr(err, "Comment not found.")
	}
	return nil
}

func (s *commentService) authorize(ctx context.Context, actor policy.Actor, action policy.Action, titleID, reviewID, commentID int64) (*models.Comment, error) {
	if !actor.Authenticated {
		return nil, apperr.ErrUnauthenticated
	}
	comment, err := s.Get(ctx, titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}
	if err := policy.CanPerform(actor, action, policy.OnAuthored(policy.ResourceComment, comment.AuthorID)).Err(); err != nil {
		return nil, err
	}
	return comment, nil
}
