package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/policy"
)

type TitleService interface {
	List(ctx context.Context, f repository.TitleFilter, limit, offset int) ([]dto.TitleResponse, int64, error)
	Get(ctx context.Context, id int64) (*dto.TitleResponse, error)
	Create(ctx context.Context, actor *policy.Actor, req dto.CreateTitleRequest) (*dto.TitleWriteResponse, error)
	Update(ctx context.Context, actor *policy.Actor, id int64, req dto.UpdateTitleRequest) (*dto.TitleWriteResponse, error)
	Delete(ctx context.Context, actor *policy.Actor, id int64) error
}

type titleService struct {
	titleRepo    repository.TitleRepository
	categoryRepo repository.TaxonomyRepository
	genreRepo    repository.TaxonomyRepository
	now          func() time.Time
}

func NewTitleService(titleRepo repository.TitleRepository, categoryRepo, genreRepo repository.TaxonomyRepository) TitleService {
	return &titleService{
		titleRepo:    titleRepo,
		categoryRepo: categoryRepo,
		genreRepo:    genreRepo,
		now:          time.Now,
	}
}

func (s *titleService) List(ctx context.Context, f repository.TitleFilter, limit, offset int) ([]dto.TitleResponse, int64, error) {
	list, total, err := s.titleRepo.List(ctx, f, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	out := make([]dto.TitleResponse, 0, len(list))
	for i := range list {
		out = append(out, dto.TitleFromModel(&list[i]))
	}
	return out, total, nil
}

func (s *titleService) Get(ctx context.Context, id int64) (*dto.TitleResponse, error) {
	t, err := s.titleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fromRepo(err, "", nil)
	}
	resp := dto.TitleFromModel(t)
	return &resp, nil
}

// checkYear bounds year to [0, current year], read from the clock each call.
func (s *titleService) checkYear(year *int, verr *ValidationError) {
	if year == nil {
		return
	}
	if current := s.now().Year(); *year < 0 || *year > current {
		verr.Add("year", fmt.Sprintf("year must be between 0 and %d", current))
	}
}

func (s *titleService) resolveCategory(ctx context.Context, slug *string, verr *ValidationError) (*models.Category, error) {
	if slug == nil || *slug == "" {
		return nil, nil
	}
	c, err := s.categoryRepo.GetBySlug(ctx, *slug)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			verr.Add("category", fmt.Sprintf("category %q does not exist", *slug))
			return nil, nil
		}
		return nil, err
	}
	return &models.Category{ID: c.ID, Name: c.Name, Slug: c.Slug}, nil
}

func (s *titleService) resolveGenres(ctx context.Context, slugs []string, verr *ValidationError) ([]models.Genre, error) {
	if len(slugs) == 0 {
		return []models.Genre{}, nil
	}
	found, err := s.genreRepo.GetBySlugs(ctx, slugs)
	if err != nil {
		return nil, err
	}
	bySlug := make(map[string]models.Taxon, len(found))
	for _, g := range found {
		bySlug[g.Slug] = g
	}

	genres := make([]models.Genre, 0, len(slugs))
	seen := make(map[string]bool, len(slugs))
	for _, slug := range slugs {
		if seen[slug] {
			continue
		}
		seen[slug] = true
		g, ok := bySlug[slug]
		if !ok {
			verr.Add("genre", fmt.Sprintf("genre %q does not exist", slug))
			continue
		}
		genres = append(genres, models.Genre{ID: g.ID, Name: g.Name, Slug: g.Slug})
	}
	return genres, nil
}

func setCategory(t *models.Title, c *models.Category) {
	t.Category = c
	if c == nil {
		t.CategoryID = nil
		return
	}
	t.CategoryID = &c.ID
}

func (s *titleService) Create(ctx context.Context, actor *policy.Actor, req dto.CreateTitleRequest) (*dto.TitleWriteResponse, error) {
	if err := policy.Authorize(actor, policy.Create, policy.On(policy.Title)); err != nil {
		return nil, err
	}

	verr := &ValidationError{}
	s.checkYear(req.Year, verr)
	category, err := s.resolveCategory(ctx, req.Category, verr)
	if err != nil {
		return nil, err
	}
	genres, err := s.resolveGenres(ctx, req.Genre, verr)
	if err != nil {
		return nil, err
	}
	if len(verr.Fields) > 0 {
		return nil, verr
	}

	t := &models.Title{
		Name:        req.Name,
		Year:        req.Year,
		Description: req.Description,
		Genres:      genres,
	}
	if t.Description == nil {
		d := models.DefaultDescription
		t.Description = &d
	}
	setCategory(t, category)

	if err := s.titleRepo.Create(ctx, t); err != nil {
		return nil, fromRepo(err, "name", nil)
	}
	resp := dto.TitleWriteFromModel(t)
	return &resp, nil
}

func (s *titleService) Update(ctx context.Context, actor *policy.Actor, id int64, req dto.UpdateTitleRequest) (*dto.TitleWriteResponse, error) {
	if err := policy.Authorize(actor, policy.Update, policy.On(policy.Title)); err != nil {
		return nil, err
	}
	t, err := s.titleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fromRepo(err, "", nil)
	}

	verr := &ValidationError{}
	s.checkYear(req.Year, verr)
	var category *models.Category
	if req.Category != nil {
		if category, err = s.resolveCategory(ctx, req.Category, verr); err != nil {
			return nil, err
		}
	}
	var genres []models.Genre
	if req.Genre != nil {
		if genres, err = s.resolveGenres(ctx, *req.Genre, verr); err != nil {
			return nil, err
		}
	}
	if len(verr.Fields) > 0 {
		return nil, verr
	}

	if req.Name != nil {
		t.Name = *req.Name
	}
	if req.Year != nil {
		t.Year = req.Year
	}
	if req.Description != nil {
		t.Description = req.Description
	}
	if req.Category != nil {
		// an empty slug clears the category
		setCategory(t, category)
	}
	if req.Genre != nil {
		t.Genres = genres
	}

	if err := s.titleRepo.Update(ctx, t, req.Genre != nil); err != nil {
		return nil, fromRepo(err, "name", nil)
	}
	resp := dto.TitleWriteFromModel(t)
	return &resp, nil
}

func (s *titleService) Delete(ctx context.Context, actor *policy.Actor, id int64) error {
	if err := policy.Authorize(actor, policy.Delete, policy.On(policy.Title)); err != nil {
		return err
	}
	return fromRepo(s.titleRepo.Delete(ctx, id), "", nil)
}
