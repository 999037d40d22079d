package dto

import (
	"time"

	"yamdb/internal/microservices/http-api/models"
)

// CreateReviewDTO for creating a review
type CreateReviewDTO struct {
	Text  string `json:"text" binding:"required,max=400"`
	Score *int   `json:"score" binding:"required,min=0,max=10"`
}

// UpdateReviewDTO for PATCH; nil fields are kept
type UpdateReviewDTO struct {
	Text  *string `json:"text" binding:"omitempty,min=1,max=400"`
	Score *int    `json:"score" binding:"omitempty,min=0,max=10"`
}

type ReviewResponse struct {
	ID      int64     `json:"id"`
	Text    string    `json:"text"`
	Author  string    `json:"author"`
	Score   int       `json:"score"`
	PubDate time.Time `json:"pub_date"`
}

func ReviewFromModel(r *models.Review) ReviewResponse {
	return ReviewResponse{
		ID:      r.ID,
		Text:    r.Text,
		Author:  r.Author.Username,
		Score:   r.Score,
		PubDate: r.PubDate,
	}
}
