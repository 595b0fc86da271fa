package dto

import (
	"time"

	"reviewhub/internal/microservices/http-api/models"
)

// CreateReviewRequest; the score range is checked by the service so the
// message matches the domain error.
type CreateReviewRequest struct {
	Text  string `json:"text" binding:"required"`
	Score *int   `json:"score" binding:"required"`
}

type UpdateReviewRequest struct {
	Text  *string `json:"text,omitempty" binding:"omitempty,min=1"`
	Score *int    `json:"score,omitempty"`
}

type ReviewResponse struct {
	ID      int64     `json:"id"`
	Text    string    `json:"text"`
	Author  string    `json:"author"`
	Score   int       `json:"score"`
	PubDate time.Time `json:"pub_date"`
}

func (d UpdateReviewRequest) ApplyTo(r *models.Review) {
	if d.Text != nil {
		r.Text = *d.Text
	}
	if d.Score != nil {
		r.Score = *d.Score
	}
}

func FromModelToReviewResponse(r *models.Review) ReviewResponse {
	return ReviewResponse{
		ID:      r.ID,
		Text:    r.Text,
		Author:  r.Author.Username,
		Score:   r.Score,
		PubDate: r.PubDate,
	}
}
