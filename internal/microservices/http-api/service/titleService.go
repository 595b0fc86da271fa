package service

import (
	"context"
	"fmt"
	"time"

	"reviewhub/internal/apperr"
	"reviewhub/internal/microservices/http-api/dto"
	"reviewhub/internal/microservices/http-api/models"
	"reviewhub/internal/microservices/http-api/policy"
	"reviewhub/internal/microservices/http-api/repository"
	"reviewhub/internal/validators"
)

type TitleService interface {
	List(ctx context.Context, filter dto.TitleFilter) ([]models.Title, int64, error)
	Get(ctx context.Context, id int64) (*models.Title, error)
	Create(ctx context.Context, actor policy.Actor, req dto.CreateTitleRequest) (*models.Title, error)
	Update(ctx context.Context, actor policy.Actor, id int64, req dto.UpdateTitleRequest) (*models.Title, error)
	Delete(ctx context.Context, actor policy.Actor, id int64) error
}

type titleService struct {
	titles     repository.TitleRepository
	categories repository.TaxonomyRepository
	genres     repository.TaxonomyRepository
	now        func() time.Time
}

func NewTitleService(titles repository.TitleRepository, categories, genres repository.TaxonomyRepository) TitleService {
	return &titleService{titles: titles, categories: categories, genres: genres, now: time.Now}
}

func (s *titleService) List(ctx context.Context, filter dto.TitleFilter) ([]models.Title, int64, error) {
	list, total, err := s.titles.List(ctx, filter)
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}
	return list, total, nil
}

func (s *titleService) Get(ctx context.Context, id int64) (*models.Title, error) {
	t, err := s.titles.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Title not found.")
	}
	return t, nil
}

func (s *titleService) Create(ctx context.Context, actor policy.Actor, req dto.CreateTitleRequest) (*models.Title, error) {
	if err := policy.CanPerform(actor, policy.ActionCreate, policy.On(policy.ResourceTitle)).Err(); err != nil {
		return nil, err
	}

	title := req.ToModel()
	if err := validators.ValidateYear(title.Year, s.now()); err != nil {
		return nil, err
	}
	categoryID, err := s.resolveCategory(ctx, req.Category)
	if err != nil {
		return nil, err
	}
	genreIDs, err := s.resolveGenres(ctx, req.Genre)
	if err != nil {
		return nil, err
	}
	title.CategoryID = categoryID

	if err := s.titles.Create(ctx, &title, genreIDs); err != nil {
		return nil, apperr.Internal(err)
	}
	return s.Get(ctx, title.ID)
}

func (s *titleService) Update(ctx context.Context, actor policy.Actor, id int64, req dto.UpdateTitleRequest) (*models.Title, error) {
	if err := policy.CanPerform(actor, policy.ActionUpdate, policy.On(policy.ResourceTitle)).Err(); err != nil {
		return nil, err
	}

	title, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	req.ApplyTo(title)
	if req.Year != nil {
		if err := validators.ValidateYear(title.Year, s.now()); err != nil {
			return nil, err
		}
	}
	if req.Category != nil {
		if title.CategoryID, err = s.resolveCategory(ctx, req.Category); err != nil {
			return nil, err
		}
	}
	var genreIDs []int64
	if req.Genre != nil {
		if genreIDs, err = s.resolveGenres(ctx, *req.Genre); err != nil {
			return nil, err
		}
	}

	if err := s.titles.Update(ctx, title, genreIDs); err != nil {
		return nil, notFoundOr(err, "Title not found.")
	}
	return s.Get(ctx, id)
}

func (s *titleService) Delete(ctx context.Context, actor policy.Actor, id int64) error {
	if err := policy.CanPerform(actor, policy.ActionDelete, policy.On(policy.ResourceTitle)).Err(); err != nil {
		return err
	}
	if err := s.titles.Delete(ctx, id); err != nil {
		return notFoundOr(err, "Title not found.")
	}
	return nil
}

// resolveCategory turns a slug into an ID; nil or empty means no category.
func (s *titleService) resolveCategory(ctx context.Context, slug *string) (*int64, error) {
	if slug == nil || *slug == "" {
		return nil, nil
	}
	found, err := s.categories.FindBySlugs(ctx, []string{*slug})
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if len(found) == 0 {
		return nil, apperr.ValidationField("category", fmt.Sprintf("Object with slug=%s does not exist.", *slug))
	}
	return &found[0].ID, nil
}

// resolveGenres returns a non-nil slice so an explicit empty list clears links.
func (s *titleService) resolveGenres(ctx context.Context, slugs []string) ([]int64, error) {
	ids := make([]int64, 0, len(slugs))
	if len(slugs) == 0 {
		return ids, nil
	}
	found, err := s.genres.FindBySlugs(ctx, slugs)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	bySlug := make(map[string]int64, len(found))
	for _, g := range found {
		bySlug[g.Slug] = g.ID
	}

	seen := make(map[int64]bool, len(slugs))
	var missing []string
	for _, slug := range slugs {
		id, ok := bySlug[slug]
		if !ok {
			missing = append(missing, fmt.Sprintf("Object with slug=%s does not exist.", slug))
			continue
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	if len(missing) > 0 {
		return nil, apperr.ValidationDetails(map[string][]string{"genre": missing})
	}
	return ids, nil
}
