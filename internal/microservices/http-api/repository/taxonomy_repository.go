package repository

import (
	"context"
	"fmt"

	"yamdb/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

// TaxonomyRepository stores categories or genres. Both share one shape and
// differ only in table, so one implementation serves each.
type TaxonomyRepository interface {
	List(ctx context.Context, search string, limit, offset int) ([]models.Taxon, int64, error)
	GetBySlug(ctx context.Context, slug string) (*models.Taxon, error)
	// GetBySlugs returns the taxa found; missing slugs are simply absent.
	GetBySlugs(ctx context.Context, slugs []string) ([]models.Taxon, error)
	Create(ctx context.Context, t *models.Taxon) error
	DeleteBySlug(ctx context.Context, slug string) error
}

type taxonomyRepository struct {
	db    *gorm.DB
	table string
	// joinColumn is set when titles reference the taxon through title_genres.
	joinColumn string
}

func NewCategoryRepository(db *gorm.DB) TaxonomyRepository {
	return &taxonomyRepository{db: db, table: models.Category{}.TableName()}
}

func NewGenreRepository(db *gorm.DB) TaxonomyRepository {
	return &taxonomyRepository{db: db, table: models.Genre{}.TableName(), joinColumn: "genre_id"}
}

func (r *taxonomyRepository) scoped(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Table(r.table)
}

func (r *taxonomyRepository) List(ctx context.Context, search string, limit, offset int) ([]models.Taxon, int64, error) {
	var list []models.Taxon
	var total int64

	q := r.scoped(ctx)
	if search != "" {
		q = q.Where("name"+likeOp, containsPattern(search))
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", r.table, err)
	}
	if err := q.Order("name asc").Limit(limit).Offset(offset).Find(&list).Error; err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", r.table, err)
	}
	return list, total, nil
}

func (r *taxonomyRepository) GetBySlug(ctx context.Context, slug string) (*models.Taxon, error) {
	var t models.Taxon
	if err := r.scoped(ctx).Where("slug = ?", slug).First(&t).Error; err != nil {
		return nil, translateError(err)
	}
	return &t, nil
}

func (r *taxonomyRepository) GetBySlugs(ctx context.Context, slugs []string) ([]models.Taxon, error) {
	var list []models.Taxon
	if len(slugs) == 0 {
		return list, nil
	}
	if err := r.scoped(ctx).Where("slug IN ?", slugs).Find(&list).Error; err != nil {
		return nil, fmt.Errorf("get %s by slug: %w", r.table, err)
	}
	return list, nil
}

func (r *taxonomyRepository) Create(ctx context.Context, t *models.Taxon) error {
	return translateError(r.scoped(ctx).Create(t).Error)
}

// DeleteBySlug removes the taxon. Titles in a deleted category keep existing
// with no category; a deleted genre is dropped from every title.
func (r *taxonomyRepository) DeleteBySlug(ctx context.Context, slug string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var t models.Taxon
		if err := tx.Table(r.table).Where("slug = ?", slug).First(&t).Error; err != nil {
			return translateError(err)
		}

		if r.joinColumn != "" {
			if err := tx.Exec("DELETE FROM title_genres WHERE "+r.joinColumn+" = ?", t.ID).Error; err != nil {
				return fmt.Errorf("detach %s: %w", r.table, err)
			}
		} else {
			if err := tx.Model(&models.Title{}).Where("category_id = ?", t.ID).Update("category_id", nil).Error; err != nil {
				return fmt.Errorf("detach %s: %w", r.table, err)
			}
		}

		if err := tx.Table(r.table).Where("id = ?", t.ID).Delete(&models.Taxon{}).Error; err != nil {
			return fmt.Errorf("delete %s: %w", r.table, err)
		}
		return nil
	})
}
