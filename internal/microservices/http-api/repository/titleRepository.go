package repository

import (
	"context"
	"fmt"

	"reviewhub/internal/microservices/http-api/dto"
	"reviewhub/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

// ratingColumn averages review scores in the database on every read.
const ratingColumn = "(SELECT CAST(COALESCE(AVG(reviews.score), 0) AS FLOAT) FROM reviews WHERE reviews.title_id = titles.id) AS rating"

var titleOrderings = map[string]string{
	"rating":  "rating ASC",
	"-rating": "rating DESC",
	"name":    "titles.name ASC",
	"-name":   "titles.name DESC",
	"year":    "titles.year ASC",
	"-year":   "titles.year DESC",
}

// DefaultTitleOrdering puts the best rated titles first.
var DefaultTitleOrdering = []string{"-rating", "name"}

type TitleRepository interface {
	List(ctx context.Context, filter dto.TitleFilter) ([]models.Title, int64, error)
	GetByID(ctx context.Context, id int64) (*models.Title, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Create(ctx context.Context, t *models.Title, genreIDs []int64) error
	// Update saves scalar fields; genreIDs == nil leaves the genre links alone.
	Update(ctx context.Context, t *models.Title, genreIDs []int64) error
	Delete(ctx context.Context, id int64) error
}

type titleRepository struct {
	db *gorm.DB
}

func NewTitleRepository(db *gorm.DB) TitleRepository {
	return &titleRepository{db: db}
}

func (r *titleRepository) filtered(ctx context.Context, f dto.TitleFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Title{})
	if f.Category != "" {
		q = q.Where("titles.category_id IN (?)",
			r.db.Model(&models.Category{}).Select("id").Where("slug = ?", f.Category))
	}
	if f.Genre != "" {
		q = q.Where("titles.id IN (?)",
			r.db.Model(&models.GenreTitle{}).
				Select("genre_titles.title_id").
				Joins("JOIN genres ON genres.id = genre_titles.genre_id").
				Where("genres.slug = ?", f.Genre))
	}
	if f.Name != "" {
		q = q.Where(`LOWER(titles.name) LIKE ? ESCAPE '\'`, containsPattern(f.Name))
	}
	if f.Year != nil {
		q = q.Where("titles.year = ?", *f.Year)
	}
	return q
}

func (r *titleRepository) List(ctx context.Context, f dto.TitleFilter) ([]models.Title, int64, error) {
	var list []models.Title
	var total int64

	if err := r.filtered(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count titles: %w", err)
	}

	q := r.filtered(ctx, f).
		Select("titles.*, " + ratingColumn).
		Preload("Category").
		Preload("Genres", func(db *gorm.DB) *gorm.DB { return db.Order("genres.name ASC") })

	ordering := f.Ordering
	if len(ordering) == 0 {
		ordering = DefaultTitleOrdering
	}
	for _, key := range ordering {
		if clause, ok := titleOrderings[key]; ok {
			q = q.Order(clause)
		}
	}

	if err := q.Order("titles.id ASC").
		Limit(f.PageSize).
		Offset(offset(f.Page, f.PageSize)).
		Find(&list).Error; err != nil {
		return nil, 0, fmt.Errorf("list titles: %w", err)
	}
	return list, total, nil
}

func (r *titleRepository) GetByID(ctx context.Context, id int64) (*models.Title, error) {
	var t models.Title
	err := r.db.WithContext(ctx).
		Model(&models.Title{}).
		Select("titles.*, "+ratingColumn).
		Preload("Category").
		Preload("Genres", func(db *gorm.DB) *gorm.DB { return db.Order("genres.name ASC") }).
		Where("titles.id = ?", id).
		Take(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *titleRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Title{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *titleRepository) Create(ctx context.Context, t *models.Title, genreIDs []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Category", "Genres").Create(t).Error; err != nil {
			return fmt.Errorf("create title: %w", err)
		}
		return replaceGenres(tx, t.ID, genreIDs)
	})
}

func (r *titleRepository) Update(ctx context.Context, t *models.Title, genreIDs []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Title{ID: t.ID}).
			Select("name", "year", "description", "category_id").
			Updates(map[string]any{
				"name":        t.Name,
				"year":        t.Year,
				"description": t.Description,
				"category_id": t.CategoryID,
			})
		if result.Error != nil {
			return fmt.Errorf("update title: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if genreIDs == nil {
			return nil
		}
		return replaceGenres(tx, t.ID, genreIDs)
	})
}

func (r *titleRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t := models.Title{ID: id}
		result := tx.Delete(&t)
		if result.Error != nil {
			return fmt.Errorf("delete title: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func replaceGenres(tx *gorm.DB, titleID int64, genreIDs []int64) error {
	if err := tx.Where("title_id = ?", titleID).Delete(&models.GenreTitle{}).Error; err != nil {
		return fmt.Errorf("clear genres: %w", err)
	}
	if len(genreIDs) == 0 {
		return nil
	}
	links := make([]models.GenreTitle, 0, len(genreIDs))
	for _, id := range genreIDs {
		links = append(links, models.GenreTitle{TitleID: titleID, GenreID: id})
	}
	if err := tx.Create(&links).Error; err != nil {
		return fmt.Errorf("link genres: %w", err)
	}
	return nil
}
