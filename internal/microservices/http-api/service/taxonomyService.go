package service

import (
	"context"
	"fmt"

	"reviewhub/internal/apperr"
	"reviewhub/internal/microservices/http-api/dto"
	"reviewhub/internal/microservices/http-api/models"
	"reviewhub/internal/microservices/http-api/policy"
	"reviewhub/internal/microservices/http-api/repository"
)

// TaxonomyService manages categories or genres: list, create and delete by slug.
type TaxonomyService interface {
	List(ctx context.Context, search string, page, pageSize int) ([]models.NameSlug, int64, error)
	Create(ctx context.Context, actor policy.Actor, req dto.NameSlugRequest) (*models.NameSlug, error)
	Delete(ctx context.Context, actor policy.Actor, slug string) error
}

type taxonomyService struct {
	repo  repository.TaxonomyRepository
	kind  policy.Resource
	label string
}

func NewCategoryService(repo repository.TaxonomyRepository) TaxonomyService {
	return &taxonomyService{repo: repo, kind: policy.ResourceCategory, label: "category"}
}

func NewGenreService(repo repository.TaxonomyRepository) TaxonomyService {
	return &taxonomyService{repo: repo, kind: policy.ResourceGenre, label: "genre"}
}

func (s *taxonomyService) List(ctx context.Context, search string, page, pageSize int) ([]models.NameSlug, int64, error) {
	items, total, err := s.repo.List(ctx, search, page, pageSize)
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}
	return items, total, nil
}

func (s *taxonomyService) Create(ctx context.Context, actor policy.Actor, req dto.NameSlugRequest) (*models.NameSlug, error) {
	if err := policy.CanPerform(actor, policy.ActionCreate, policy.On(s.kind)).Err(); err != nil {
		return nil, err
	}

	nameTaken, slugTaken, err := s.repo.NameOrSlugTaken(ctx, req.Name, req.Slug)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if err := s.takenError(nameTaken, slugTaken); err != nil {
		return nil, err
	}

	item := req.ToModel()
	if err := s.repo.Create(ctx, &item); err != nil {
		if isDuplicate(err) {
			// lost a race with a concurrent create
			return nil, s.takenError(true, true)
		}
		return nil, apperr.Internal(err)
	}
	return &item, nil
}

func (s *taxonomyService) Delete(ctx context.Context, actor policy.Actor, slug string) error {
	if err := policy.CanPerform(actor, policy.ActionDelete, policy.On(s.kind)).Err(); err != nil {
		return err
	}
	if err := s.repo.DeleteBySlug(ctx, slug); err != nil {
		return notFoundOr(err, fmt.Sprintf("No %s matches the given query.", s.label))
	}
	return nil
}

func (s *taxonomyService) takenError(nameTaken, slugTaken bool) error {
	details := map[string][]string{}
	if nameTaken {
		details["name"] = []string{fmt.Sprintf("%s with this name already exists.", s.label)}
	}
	if slugTaken {
		details["slug"] = []string{fmt.Sprintf("%s with this slug already exists.", s.label)}
	}
	if len(details) == 0 {
		return nil
	}
	return apperr.ValidationDetails(details)
}
