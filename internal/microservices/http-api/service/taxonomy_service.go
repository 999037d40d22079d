package service

import (
	"context"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/policy"
)

// TaxonomyService manages categories or genres, depending on construction.
type TaxonomyService interface {
	List(ctx context.Context, search string, limit, offset int) ([]dto.TaxonResponse, int64, error)
	Create(ctx context.Context, actor *policy.Actor, req dto.CreateTaxonRequest) (*dto.TaxonResponse, error)
	Delete(ctx context.Context, actor *policy.Actor, slug string) error
}

type taxonomyService struct {
	repo repository.TaxonomyRepository
	kind policy.Kind
}

func NewCategoryService(repo repository.TaxonomyRepository) TaxonomyService {
	return &taxonomyService{repo: repo, kind: policy.Category}
}

func NewGenreService(repo repository.TaxonomyRepository) TaxonomyService {
	return &taxonomyService{repo: repo, kind: policy.Genre}
}

func (s *taxonomyService) List(ctx context.Context, search string, limit, offset int) ([]dto.TaxonResponse, int64, error) {
	list, total, err := s.repo.List(ctx, search, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return dto.TaxaFromModels(list), total, nil
}

func (s *taxonomyService) Create(ctx context.Context, actor *policy.Actor, req dto.CreateTaxonRequest) (*dto.TaxonResponse, error) {
	if err := policy.Authorize(actor, policy.Create, policy.On(s.kind)); err != nil {
		return nil, err
	}
	t := &models.Taxon{Name: req.Name, Slug: req.Slug}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, fromRepo(err, "slug", nil)
	}
	resp := dto.TaxonFromModel(*t)
	return &resp, nil
}

func (s *taxonomyService) Delete(ctx context.Context, actor *policy.Actor, slug string) error {
	if err := policy.Authorize(actor, policy.Delete, policy.On(s.kind)); err != nil {
		return err
	}
	return fromRepo(s.repo.DeleteBySlug(ctx, slug), "", nil)
}
