package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"
)

type titleFixture struct {
	svc        *titleService
	titles     *MockTitleRepository
	categories *MockTaxonomyRepository
	genres     *MockTaxonomyRepository
}

func newTitleFixture() *titleFixture {
	f := &titleFixture{
		titles:     new(MockTitleRepository),
		categories: new(MockTaxonomyRepository),
		genres:     new(MockTaxonomyRepository),
	}
	f.svc = NewTitleService(f.titles, f.categories, f.genres).(*titleService)
	f.svc.now = func() time.Time { return time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC) }
	return f
}

func intPtr(i int) *int { return &i }

func TestTitleService_Create(t *testing.T) {
	f := newTitleFixture()
	f.categories.On("GetBySlug", mock.Anything, "film").Return(&models.Taxon{ID: 1, Name: "Film", Slug: "film"}, nil)
	f.genres.On("GetBySlugs", mock.Anything, []string{"drama", "drama", "noir"}).
		Return([]models.Taxon{{ID: 2, Name: "Drama", Slug: "drama"}, {ID: 3, Name: "Noir", Slug: "noir"}}, nil)
	f.titles.On("Create", mock.Anything, mock.MatchedBy(func(t *models.Title) bool {
		return *t.CategoryID == 1 && len(t.Genres) == 2 && *t.Description == models.DefaultDescription
	})).Run(func(args mock.Arguments) { args.Get(1).(*models.Title).ID = 7 }).Return(nil)

	resp, err := f.svc.Create(context.Background(), adminActor, dto.CreateTitleRequest{
		Name:     "The Third Man",
		Year:     intPtr(1949),
		Category: strPtr("film"),
		Genre:    []string{"drama", "drama", "noir"},
	})

	require.NoError(t, err)
	assert.Equal(t, int64(7), resp.ID)
	assert.Equal(t, "film", *resp.Category)
	assert.Equal(t, []string{"drama", "noir"}, resp.Genre)
	assert.Equal(t, 0, resp.Rating)
	f.titles.AssertExpectations(t)
}

func TestTitleService_CreateValidation(t *testing.T) {
	f := newTitleFixture()
	f.categories.On("GetBySlug", mock.Anything, "nope").Return(nil, repository.ErrNotFound)
	f.genres.On("GetBySlugs", mock.Anything, []string{"ghost"}).Return([]models.Taxon{}, nil)

	_, err := f.svc.Create(context.Background(), adminActor, dto.CreateTitleRequest{
		Name:     "Future",
		Year:     intPtr(2027),
		Category: strPtr("nope"),
		Genre:    []string{"ghost"},
	})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "year")
	assert.Contains(t, verr.Fields, "category")
	assert.Contains(t, verr.Fields, "genre")
	f.titles.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestTitleService_YearBounds(t *testing.T) {
	f := newTitleFixture()
	f.titles.On("Create", mock.Anything, mock.Anything).Return(nil)

	for _, year := range []int{0, 2026} {
		_, err := f.svc.Create(context.Background(), adminActor, dto.CreateTitleRequest{Name: "x", Year: intPtr(year)})
		assert.NoError(t, err, year)
	}
	for _, year := range []int{-1, 2027} {
		_, err := f.svc.Create(context.Background(), adminActor, dto.CreateTitleRequest{Name: "x", Year: intPtr(year)})
		assert.True(t, IsValidation(err), year)
	}
}

func TestTitleService_CreateNeedsAdmin(t *testing.T) {
	f := newTitleFixture()

	_, err := f.svc.Create(context.Background(), modActor, dto.CreateTitleRequest{Name: "x"})

	assert.ErrorIs(t, err, ErrForbidden)
}

func TestTitleService_UpdateKeepsUntouchedFields(t *testing.T) {
	f := newTitleFixture()
	existing := &models.Title{
		ID:       7,
		Name:     "Old",
		Year:     intPtr(1949),
		Category: &models.Category{ID: 1, Name: "Film", Slug: "film"},
		Genres:   []models.Genre{{ID: 2, Name: "Drama", Slug: "drama"}},
		Rating:   intPtr(9),
	}
	f.titles.On("GetByID", mock.Anything, int64(7)).Return(existing, nil)
	f.titles.On("Update", mock.Anything, existing, false).Return(nil)

	resp, err := f.svc.Update(context.Background(), adminActor, 7, dto.UpdateTitleRequest{Name: strPtr("New")})

	require.NoError(t, err)
	assert.Equal(t, "New", resp.Name)
	assert.Equal(t, 1949, *resp.Year)
	assert.Equal(t, "film", *resp.Category)
	assert.Equal(t, []string{"drama"}, resp.Genre)
	assert.Equal(t, 0, resp.Rating)
	f.titles.AssertExpectations(t)
}

func TestTitleService_UpdateReplacesGenresAndClearsCategory(t *testing.T) {
	f := newTitleFixture()
	catID := int64(1)
	existing := &models.Title{
		ID:         7,
		Name:       "Old",
		CategoryID: &catID,
		Category:   &models.Category{ID: 1, Slug: "film"},
		Genres:     []models.Genre{{ID: 2, Slug: "drama"}},
	}
	f.titles.On("GetByID", mock.Anything, int64(7)).Return(existing, nil)
	f.titles.On("Update", mock.Anything, mock.MatchedBy(func(t *models.Title) bool {
		return t.CategoryID == nil && len(t.Genres) == 0
	}), true).Return(nil)

	empty := []string{}
	resp, err := f.svc.Update(context.Background(), adminActor, 7, dto.UpdateTitleRequest{
		Category: strPtr(""),
		Genre:    &empty,
	})

	require.NoError(t, err)
	assert.Nil(t, resp.Category)
	assert.Empty(t, resp.Genre)
	f.titles.AssertExpectations(t)
}

func TestTitleService_GetMissing(t *testing.T) {
	f := newTitleFixture()
	f.titles.On("GetByID", mock.Anything, int64(404)).Return(nil, repository.ErrNotFound)

	_, err := f.svc.Get(context.Background(), 404)

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTitleService_ReadShowsRating(t *testing.T) {
	f := newTitleFixture()
	f.titles.On("List", mock.Anything, repository.TitleFilter{Name: "man"}, 10, 0).
		Return([]models.Title{{ID: 1, Name: "Third Man", Rating: intPtr(8)}, {ID: 2, Name: "Manhattan"}}, int64(2), nil)

	list, total, err := f.svc.List(context.Background(), repository.TitleFilter{Name: "man"}, 10, 0)

	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, 8, *list[0].Rating)
	assert.Nil(t, list[1].Rating)
}
