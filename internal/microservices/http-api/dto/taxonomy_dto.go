package dto

import "yamdb/internal/microservices/http-api/models"

// CreateTaxonRequest for POST /categories/ and /genres/
type CreateTaxonRequest struct {
	Name string `json:"name" binding:"required,max=256"`
	Slug string `json:"slug" binding:"required,max=50,slug"`
}

// TaxonResponse is how categories and genres appear everywhere
type TaxonResponse struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func TaxonFromModel(t models.Taxon) TaxonResponse {
	return TaxonResponse{Name: t.Name, Slug: t.Slug}
}

func TaxaFromModels(list []models.Taxon) []TaxonResponse {
	out := make([]TaxonResponse, 0, len(list))
	for _, t := range list {
		out = append(out, TaxonFromModel(t))
	}
	return out
}
