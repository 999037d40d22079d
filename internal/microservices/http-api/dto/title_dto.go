package dto

import "yamdb/internal/microservices/http-api/models"

// CreateTitleRequest for POST /titles/. Category and genres are given by slug.
type CreateTitleRequest struct {
	Name        string   `json:"name" binding:"required,max=300"`
	Year        *int     `json:"year"`
	Description *string  `json:"description" binding:"omitempty,max=400"`
	Category    *string  `json:"category"`
	Genre       []string `json:"genre"`
}

// UpdateTitleRequest for PATCH /titles/:id/. A present "genre" replaces the
// whole set.
type UpdateTitleRequest struct {
	Name        *string   `json:"name" binding:"omitempty,max=300"`
	Year        *int      `json:"year"`
	Description *string   `json:"description" binding:"omitempty,max=400"`
	Category    *string   `json:"category"`
	Genre       *[]string `json:"genre"`
}

// TitleResponse is the read shape, with nested taxa and the computed rating.
type TitleResponse struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Year        *int            `json:"year"`
	Description *string         `json:"description"`
	Genre       []TaxonResponse `json:"genre"`
	Category    *TaxonResponse  `json:"category"`
	Rating      *int            `json:"rating"`
}

// TitleWriteResponse is returned from create and update. Taxa are echoed as
// slugs and rating is always 0.
type TitleWriteResponse struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Year        *int     `json:"year"`
	Description *string  `json:"description"`
	Genre       []string `json:"genre"`
	Category    *string  `json:"category"`
	Rating      int      `json:"rating"`
}

func TitleFromModel(t *models.Title) TitleResponse {
	resp := TitleResponse{
		ID:          t.ID,
		Name:        t.Name,
		Year:        t.Year,
		Description: t.Description,
		Genre:       make([]TaxonResponse, 0, len(t.Genres)),
		Rating:      t.Rating,
	}
	for _, g := range t.Genres {
		resp.Genre = append(resp.Genre, TaxonResponse{Name: g.Name, Slug: g.Slug})
	}
	if t.Category != nil {
		resp.Category = &TaxonResponse{Name: t.Category.Name, Slug: t.Category.Slug}
	}
	return resp
}

func TitleWriteFromModel(t *models.Title) TitleWriteResponse {
	resp := TitleWriteResponse{
		ID:          t.ID,
		Name:        t.Name,
		Year:        t.Year,
		Description: t.Description,
		Genre:       make([]string, 0, len(t.Genres)),
	}
	for _, g := range t.Genres {
		resp.Genre = append(resp.Genre, g.Slug)
	}
	if t.Category != nil {
		slug := t.Category.Slug
		resp.Category = &slug
	}
	return resp
}
