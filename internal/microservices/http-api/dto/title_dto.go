package dto

import "reviewhub/internal/microservices/http-api/models"

// CreateTitleRequest is the write view of a title: category and genres by slug.
type CreateTitleRequest struct {
	Name        string   `json:"name" binding:"required,max=256"`
	Year        *int     `json:"year" binding:"required"`
	Description *string  `json:"description,omitempty"`
	Genre       []string `json:"genre" binding:"omitempty,dive,slug"`
	Category    *string  `json:"category,omitempty" binding:"omitempty,slug"`
}

// UpdateTitleRequest is a partial update. An explicit empty genre list
// clears the genres; an omitted one keeps them.
type UpdateTitleRequest struct {
	Name        *string   `json:"name,omitempty" binding:"omitempty,max=256"`
	Year        *int      `json:"year,omitempty"`
	Description *string   `json:"description,omitempty"`
	Genre       *[]string `json:"genre,omitempty" binding:"omitempty,dive,slug"`
	Category    *string   `json:"category,omitempty" binding:"omitempty,slug"`
}

// TitleResponse is the read view: nested taxonomy objects and the computed rating.
type TitleResponse struct {
	ID          int64              `json:"id"`
	Name        string             `json:"name"`
	Year        int                `json:"year"`
	Rating      float64            `json:"rating"`
	Description *string            `json:"description"`
	Genre       []NameSlugResponse `json:"genre"`
	Category    *NameSlugResponse  `json:"category"`
}

// TitleFilter carries the list query: slug filters, a name substring,
// exact year, ordering keys and the page window.
type TitleFilter struct {
	Category string
	Genre    string
	Name     string
	Year     *int
	Ordering []string
	Page     int
	PageSize int
}

// ToModel maps scalar fields; category and genre slugs are resolved by the service.
func (d CreateTitleRequest) ToModel() models.Title {
	t := models.Title{
		Name:        d.Name,
		Description: d.Description,
	}
	if d.Year != nil {
		t.Year = *d.Year
	}
	return t
}

func (d UpdateTitleRequest) ApplyTo(t *models.Title) {
	if d.Name != nil {
		t.Name = *d.Name
	}
	if d.Year != nil {
		t.Year = *d.Year
	}
	if d.Description != nil {
		t.Description = d.Description
	}
}

func FromModelToTitleResponse(t *models.Title) TitleResponse {
	resp := TitleResponse{
		ID:          t.ID,
		Name:        t.Name,
		Year:        t.Year,
		Rating:      t.Rating,
		Description: t.Description,
		Genre:       make([]NameSlugResponse, 0, len(t.Genres)),
	}
	for i := range t.Genres {
		resp.Genre = append(resp.Genre, FromModelToNameSlugResponse(&t.Genres[i].NameSlug))
	}
	if t.Category != nil {
		c := FromModelToNameSlugResponse(&t.Category.NameSlug)
		resp.Category = &c
	}
	return resp
}
