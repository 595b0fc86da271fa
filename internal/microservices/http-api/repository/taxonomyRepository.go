package repository

import (
	"context"
	"fmt"

	"reviewhub/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

// TaxonomyRepository stores name/slug pairs (categories or genres).
type TaxonomyRepository interface {
	List(ctx context.Context, search string, page, pageSize int) ([]models.NameSlug, int64, error)
	Create(ctx context.Context, item *models.NameSlug) error
	DeleteBySlug(ctx context.Context, slug string) error
	FindBySlugs(ctx context.Context, slugs []string) ([]models.NameSlug, error)
	NameOrSlugTaken(ctx context.Context, name, slug string) (nameTaken, slugTaken bool, err error)
}

// taxonomyModel is satisfied by *models.Category and *models.Genre.
type taxonomyModel[T any] interface {
	*T
	Base() *models.NameSlug
}

type taxonomyRepository[T any, PT taxonomyModel[T]] struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) TaxonomyRepository {
	return &taxonomyRepository[models.Category, *models.Category]{db: db}
}

func NewGenreRepository(db *gorm.DB) TaxonomyRepository {
	return &taxonomyRepository[models.Genre, *models.Genre]{db: db}
}

func (r *taxonomyRepository[T, PT]) List(ctx context.Context, search string, page, pageSize int) ([]models.NameSlug, int64, error) {
	var rows []T
	var total int64

	scope := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(new(T))
		if search != "" {
			q = q.Where(`LOWER(name) LIKE ? ESCAPE '\'`, prefixPattern(search))
		}
		return q
	}

	if err := scope().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count: %w", err)
	}
	err := scope().
		Order("name ASC").
		Limit(pageSize).
		Offset(offset(page, pageSize)).
		Find(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list: %w", err)
	}

	out := make([]models.NameSlug, 0, len(rows))
	for i := range rows {
		out = append(out, *PT(&rows[i]).Base())
	}
	return out, total, nil
}

func (r *taxonomyRepository[T, PT]) Create(ctx context.Context, item *models.NameSlug) error {
	row := new(T)
	*PT(row).Base() = *item
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("create: %w", err)
	}
	*item = *PT(row).Base()
	return nil
}

// DeleteBySlug loads the row first so its BeforeDelete hook sees the ID.
func (r *taxonomyRepository[T, PT]) DeleteBySlug(ctx context.Context, slug string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := new(T)
		if err := tx.Where("slug = ?", slug).First(row).Error; err != nil {
			return err
		}
		if err := tx.Delete(row).Error; err != nil {
			return fmt.Errorf("delete: %w", err)
		}
		return nil
	})
}

func (r *taxonomyRepository[T, PT]) FindBySlugs(ctx context.Context, slugs []string) ([]models.NameSlug, error) {
	if len(slugs) == 0 {
		return nil, nil
	}
	var rows []T
	if err := r.db.WithContext(ctx).Where("slug IN ?", slugs).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("find by slugs: %w", err)
	}
	out := make([]models.NameSlug, 0, len(rows))
	for i := range rows {
		out = append(out, *PT(&rows[i]).Base())
	}
	return out, nil
}

func (r *taxonomyRepository[T, PT]) NameOrSlugTaken(ctx context.Context, name, slug string) (bool, bool, error) {
	var rows []T
	if err := r.db.WithContext(ctx).Where("name = ? OR slug = ?", name, slug).Find(&rows).Error; err != nil {
		return false, false, fmt.Errorf("lookup: %w", err)
	}
	var nameTaken, slugTaken bool
	for i := range rows {
		b := PT(&rows[i]).Base()
		nameTaken = nameTaken || b.Name == name
		slugTaken = slugTaken || b.Slug == slug
	}
	return nameTaken, slugTaken, nil
}
