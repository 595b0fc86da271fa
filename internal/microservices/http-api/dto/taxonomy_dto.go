package dto

import "reviewhub/internal/microservices/http-api/models"

// NameSlugRequest creates a category or a genre
type NameSlugRequest struct {
	Name string `json:"name" binding:"required,max=256"`
	Slug string `json:"slug" binding:"required,max=50,slug"`
}

type NameSlugResponse struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func (d NameSlugRequest) ToModel() models.NameSlug {
	return models.NameSlug{Name: d.Name, Slug: d.Slug}
}

func FromModelToNameSlugResponse(n *models.NameSlug) NameSlugResponse {
	return NameSlugResponse{Name: n.Name, Slug: n.Slug}
}
