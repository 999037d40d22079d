package repository

import (
	"context"
	"fmt"

	"yamdb/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

// TitleFilter narrows a title listing. Empty strings and a nil Year do not filter.
type TitleFilter struct {
	Name     string
	Category string // category slug, partial match
	Genre    string // genre slug, partial match
	Year     *int
}

type TitleRepository interface {
	List(ctx context.Context, f TitleFilter, limit, offset int) ([]models.Title, int64, error)
	// GetByID loads the title with its category, genres and current rating.
	GetByID(ctx context.Context, id int64) (*models.Title, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Create(ctx context.Context, t *models.Title) error
	// Update saves scalar fields and the category. Genres are replaced only
	// when replaceGenres is set.
	Update(ctx context.Context, t *models.Title, replaceGenres bool) error
	Delete(ctx context.Context, id int64) error
}

type titleRepository struct {
	db *gorm.DB
}

func NewTitleRepository(db *gorm.DB) TitleRepository {
	return &titleRepository{db: db}
}

// ratingColumn selects the rounded mean review score. It is NULL for a title
// without reviews.
func (r *titleRepository) ratingColumn() string {
	intType := "INTEGER"
	if r.db.Dialector.Name() == "mysql" {
		intType = "SIGNED"
	}
	return "(SELECT CAST(ROUND(AVG(rv.score)) AS " + intType + ") FROM reviews rv WHERE rv.title_id = titles.id) AS rating"
}

func (r *titleRepository) withRating(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.Title{}).
		Select("titles.*, " + r.ratingColumn()).
		Preload("Category").
		Preload("Genres", func(db *gorm.DB) *gorm.DB { return db.Order("genres.name asc") })
}

func applyTitleFilter(q *gorm.DB, f TitleFilter) *gorm.DB {
	if f.Name != "" {
		q = q.Where("titles.name"+likeOp, containsPattern(f.Name))
	}
	if f.Year != nil {
		q = q.Where("titles.year = ?", *f.Year)
	}
	if f.Category != "" {
		q = q.Where("titles.category_id IN (?)",
			q.Session(&gorm.Session{NewDB: true}).
				Table("categories").Select("id").Where("slug"+likeOp, containsPattern(f.Category)))
	}
	if f.Genre != "" {
		q = q.Where("titles.id IN (?)",
			q.Session(&gorm.Session{NewDB: true}).
				Table("title_genres").Select("title_genres.title_id").
				Joins("JOIN genres ON genres.id = title_genres.genre_id").
				Where("genres.slug"+likeOp, containsPattern(f.Genre)))
	}
	return q
}

func (r *titleRepository) List(ctx context.Context, f TitleFilter, limit, offset int) ([]models.Title, int64, error) {
	var list []models.Title
	var total int64

	if err := applyTitleFilter(r.db.WithContext(ctx).Model(&models.Title{}), f).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count titles: %w", err)
	}

	if err := applyTitleFilter(r.withRating(ctx), f).
		Order("titles.id asc").
		Limit(limit).
		Offset(offset).
		Find(&list).Error; err != nil {
		return nil, 0, fmt.Errorf("list titles: %w", err)
	}
	return list, total, nil
}

func (r *titleRepository) GetByID(ctx context.Context, id int64) (*models.Title, error) {
	var t models.Title
	if err := r.withRating(ctx).Where("titles.id = ?", id).First(&t).Error; err != nil {
		return nil, translateError(err)
	}
	return &t, nil
}

func (r *titleRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Title{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *titleRepository) Create(ctx context.Context, t *models.Title) error {
	// Category and genres already exist; only the references are written.
	if err := r.db.WithContext(ctx).Omit("Category", "Genres.*").Create(t).Error; err != nil {
		return fmt.Errorf("create title: %w", translateError(err))
	}
	return nil
}

func (r *titleRepository) Update(ctx context.Context, t *models.Title, replaceGenres bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Category", "Genres").Save(t).Error; err != nil {
			return fmt.Errorf("update title: %w", translateError(err))
		}
		if !replaceGenres {
			return nil
		}
		if err := tx.Exec("DELETE FROM title_genres WHERE title_id = ?", t.ID).Error; err != nil {
			return fmt.Errorf("clear genres: %w", err)
		}
		if len(t.Genres) == 0 {
			return nil
		}
		rows := make([]map[string]any, 0, len(t.Genres))
		for _, g := range t.Genres {
			rows = append(rows, map[string]any{"title_id": t.ID, "genre_id": g.ID})
		}
		if err := tx.Table("title_genres").Create(&rows).Error; err != nil {
			return fmt.Errorf("link genres: %w", err)
		}
		return nil
	})
}

// Delete removes the title together with its reviews and their comments.
func (r *titleRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reviews := tx.Session(&gorm.Session{NewDB: true}).
			Model(&models.Review{}).Select("id").Where("title_id = ?", id)
		if err := tx.Where("review_id IN (?)", reviews).Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("delete comments: %w", err)
		}
		if err := tx.Where("title_id = ?", id).Delete(&models.Review{}).Error; err != nil {
			return fmt.Errorf("delete reviews: %w", err)
		}
		if err := tx.Exec("DELETE FROM title_genres WHERE title_id = ?", id).Error; err != nil {
			return fmt.Errorf("clear genres: %w", err)
		}

		result := tx.Where("id = ?", id).Delete(&models.Title{})
		if result.Error != nil {
			return fmt.Errorf("delete title: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
