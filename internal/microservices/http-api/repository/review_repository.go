package repository

import (
	"context"
	"fmt"

	"yamdb/internal/microservices/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReviewRepository interface {
	ListByTitle(ctx context.Context, titleID int64, limit, offset int) ([]models.Review, int64, error)
	// GetByID finds a review only if it belongs to titleID.
	GetByID(ctx context.Context, titleID, reviewID int64) (*models.Review, error)
	ExistsForAuthor(ctx context.Context, titleID int64, authorID string) (bool, error)
	Create(ctx context.Context, review *models.Review) error
	Update(ctx context.Context, review *models.Review) error
	Delete(ctx context.Context, reviewID int64) error
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) ListByTitle(ctx context.Context, titleID int64, limit, offset int) ([]models.Review, int64, error) {
	var reviews []models.Review
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Review{}).Where("title_id = ?", titleID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count reviews: %w", err)
	}

	err := r.db.WithContext(ctx).
		Where("title_id = ?", titleID).
		Preload("Author").
		Order("pub_date asc, id asc").
		Limit(limit).
		Offset(offset).
		Find(&reviews).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, total, nil
}

func (r *reviewRepository) GetByID(ctx context.Context, titleID, reviewID int64) (*models.Review, error) {
	var review models.Review
	err := r.db.WithContext(ctx).
		Where("id = ? AND title_id = ?", reviewID, titleID).
		Preload("Author").
		First(&review).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &review, nil
}

func (r *reviewRepository) ExistsForAuthor(ctx context.Context, titleID int64, authorID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Where("title_id = ? AND author_id = ?", titleID, authorID).
		Count(&n).Error
	return n > 0, err
}

// Create inserts the review. A second review by the same author for the same
// title fails on idx_reviews_author_title with ErrDuplicate.
func (r *reviewRepository) Create(ctx context.Context, review *models.Review) error {
	return translateError(r.db.WithContext(ctx).Omit(clause.Associations).Create(review).Error)
}

func (r *reviewRepository) Update(ctx context.Context, review *models.Review) error {
	return translateError(r.db.WithContext(ctx).
		Model(review).
		Omit(clause.Associations).
		Updates(map[string]any{"text": review.Text, "score": review.Score}).Error)
}

// Delete removes the review and its comments.
func (r *reviewRepository) Delete(ctx context.Context, reviewID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("review_id = ?", reviewID).Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("delete comments: %w", err)
		}
		result := tx.Where("id = ?", reviewID).Delete(&models.Review{})
		if result.Error != nil {
			return fmt.Errorf("delete review: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
