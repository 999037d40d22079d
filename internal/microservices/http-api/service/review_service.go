package service

import (
	"context"
	"errors"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/policy"
)

// DuplicateReviewMessage is reported when an author reviews a title twice.
const DuplicateReviewMessage = "an author may leave only one review per title"

type ReviewService interface {
	List(ctx context.Context, titleID int64, limit, offset int) ([]dto.ReviewResponse, int64, error)
	Get(ctx context.Context, titleID, reviewID int64) (*dto.ReviewResponse, error)
	Create(ctx context.Context, actor *policy.Actor, titleID int64, req dto.CreateReviewDTO) (*dto.ReviewResponse, error)
	Update(ctx context.Context, actor *policy.Actor, titleID, reviewID int64, req dto.UpdateReviewDTO) (*dto.ReviewResponse, error)
	Delete(ctx context.Context, actor *policy.Actor, titleID, reviewID int64) error
}

type reviewService struct {
	reviewRepo repository.ReviewRepository
	titleRepo  repository.TitleRepository
}

func NewReviewService(reviewRepo repository.ReviewRepository, titleRepo repository.TitleRepository) ReviewService {
	return &reviewService{reviewRepo: reviewRepo, titleRepo: titleRepo}
}

func (s *reviewService) requireTitle(ctx context.Context, titleID int64) error {
	ok, err := s.titleRepo.Exists(ctx, titleID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func checkScore(score int) error {
	if score < models.MinScore || score > models.MaxScore {
		return NewValidationError("score", "score must be between 0 and 10")
	}
	return nil
}

func (s *reviewService) List(ctx context.Context, titleID int64, limit, offset int) ([]dto.ReviewResponse, int64, error) {
	if err := s.requireTitle(ctx, titleID); err != nil {
		return nil, 0, err
	}
	reviews, total, err := s.reviewRepo.ListByTitle(ctx, titleID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	out := make([]dto.ReviewResponse, 0, len(reviews))
	for i := range reviews {
		out = append(out, dto.ReviewFromModel(&reviews[i]))
	}
	return out, total, nil
}

func (s *reviewService) Get(ctx context.Context, titleID, reviewID int64) (*dto.ReviewResponse, error) {
	review, err := s.reviewRepo.GetByID(ctx, titleID, reviewID)
	if err != nil {
		return nil, fromRepo(err, "", nil)
	}
	resp := dto.ReviewFromModel(review)
	return &resp, nil
}

func (s *reviewService) Create(ctx context.Context, actor *policy.Actor, titleID int64, req dto.CreateReviewDTO) (*dto.ReviewResponse, error) {
	if err := policy.Authorize(actor, policy.Create, policy.On(policy.Review)); err != nil {
		return nil, err
	}
	if req.Score == nil {
		return nil, NewValidationError("score", "this field is required")
	}
	if err := checkScore(*req.Score); err != nil {
		return nil, err
	}
	if err := s.requireTitle(ctx, titleID); err != nil {
		return nil, err
	}

	// the unique index is authoritative; this only gives the common case a clean answer
	exists, err := s.reviewRepo.ExistsForAuthor(ctx, titleID, actor.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, NewValidationError(NonFieldErrors, DuplicateReviewMessage)
	}

	review := &models.Review{
		Text:     req.Text,
		Score:    *req.Score,
		AuthorID: actor.ID,
		TitleID:  titleID,
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, NewValidationError(NonFieldErrors, DuplicateReviewMessage)
		}
		return nil, fromRepo(err, "score", nil)
	}

	// Reload with author data
	review, err = s.reviewRepo.GetByID(ctx, titleID, review.ID)
	if err != nil {
		return nil, fromRepo(err, "", nil)
	}
	resp := dto.ReviewFromModel(review)
	return &resp, nil
}

func (s *reviewService) Update(ctx context.Context, actor *policy.Actor, titleID, reviewID int64, req dto.UpdateReviewDTO) (*dto.ReviewResponse, error) {
	review, err := s.reviewRepo.GetByID(ctx, titleID, reviewID)
	if err != nil {
		return nil, fromRepo(err, "", nil)
	}
	if err := policy.Authorize(actor, policy.Update, policy.Owned(policy.Review, review.AuthorID)); err != nil {
		return nil, err
	}

	if req.Text != nil {
		review.Text = *req.Text
	}
	if req.Score != nil {
		if err := checkScore(*req.Score); err != nil {
			return nil, err
		}
		review.Score = *req.Score
	}
	if err := s.reviewRepo.Update(ctx, review); err != nil {
		return nil, fromRepo(err, "score", nil)
	}
	resp := dto.ReviewFromModel(review)
	return &resp, nil
}

func (s *reviewService) Delete(ctx context.Context, actor *policy.Actor, titleID, reviewID int64) error {
	review, err := s.reviewRepo.GetByID(ctx, titleID, reviewID)
	if err != nil {
		return fromRepo(err, "", nil)
	}
	if err := policy.Authorize(actor, policy.Delete, policy.Owned(policy.Review, review.AuthorID)); err != nil {
		return err
	}
	return fromRepo(s.reviewRepo.Delete(ctx, review.ID), "", nil)
}
