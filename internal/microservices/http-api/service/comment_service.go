package service

import (
	"context"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/policy"
)

// CommentService works on comments under /titles/:title_id/reviews/:review_id/.
// Every call checks that the review belongs to the title.
type CommentService interface {
	List(ctx context.Context, titleID, reviewID int64, limit, offset int) ([]dto.CommentResponse, int64, error)
	Get(ctx context.Context, titleID, reviewID, commentID int64) (*dto.CommentResponse, error)
	Create(ctx context.Context, actor *policy.Actor, titleID, reviewID int64, text string) (*dto.CommentResponse, error)
	Update(ctx context.Context, actor *policy.Actor, titleID, reviewID, commentID int64, text string) (*dto.CommentResponse, error)
	Delete(ctx context.Context, actor *policy.Actor, titleID, reviewID, commentID int64) error
}

type commentService struct {
	commentRepo repository.CommentRepository
	reviewRepo  repository.ReviewRepository
}

func NewCommentService(commentRepo repository.CommentRepository, reviewRepo repository.ReviewRepository) CommentService {
	return &commentService{commentRepo: commentRepo, reviewRepo: reviewRepo}
}

func (s *commentService) requireReview(ctx context.Context, titleID, reviewID int64) error {
	if _, err := s.reviewRepo.GetByID(ctx, titleID, reviewID); err != nil {
		return fromRepo(err, "", nil)
	}
	return nil
}

func (s *commentService) find(ctx context.Context, titleID, reviewID, commentID int64) (*models.Comment, error) {
	if err := s.requireReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	comment, err := s.commentRepo.GetByID(ctx, reviewID, commentID)
	if err != nil {
		return nil, fromRepo(err, "", nil)
	}
	return comment, nil
}

func (s *commentService) List(ctx context.Context, titleID, reviewID int64, limit, offset int) ([]dto.CommentResponse, int64, error) {
	if err := s.requireReview(ctx, titleID, reviewID); err != nil {
		return nil, 0, err
	}
	comments, total, err := s.commentRepo.ListByReview(ctx, reviewID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	out := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		out = append(out, dto.FromModelToCommentResponse(&comments[i]))
	}
	return out, total, nil
}

func (s *commentService) Get(ctx context.Context, titleID, reviewID, commentID int64) (*dto.CommentResponse, error) {
	comment, err := s.find(ctx, titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}
	resp := dto.FromModelToCommentResponse(comment)
	return &resp, nil
}

func (s *commentService) Create(ctx context.Context, actor *policy.Actor, titleID, reviewID int64, text string) (*dto.CommentResponse, error) {
	if err := policy.Authorize(actor, policy.Create, policy.On(policy.Comment)); err != nil {
		return nil, err
	}
	if err := s.requireReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}

	comment := &models.Comment{Text: text, AuthorID: actor.ID, ReviewID: reviewID}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, fromRepo(err, "text", nil)
	}

	// Reload with author data
	comment, err := s.commentRepo.GetByID(ctx, reviewID, comment.ID)
	if err != nil {
		return nil, fromRepo(err, "", nil)
	}
	resp := dto.FromModelToCommentResponse(comment)
	return &resp, nil
}

func (s *commentService) Update(ctx context.Context, actor *policy.Actor, titleID, reviewID, commentID int64, text string) (*dto.CommentResponse, error) {
	comment, err := s.find(ctx, titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, policy.Update, policy.Owned(policy.Comment, comment.AuthorID)); err != nil {
		return nil, err
	}

	comment.Text = text
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, fromRepo(err, "text", nil)
	}
	resp := dto.FromModelToCommentResponse(comment)
	return &resp, nil
}

func (s *commentService) Delete(ctx context.Context, actor *policy.Actor, titleID, reviewID, commentID int64) error {
	comment, err := s.find(ctx, titleID, reviewID, commentID)
	if err != nil {
		return err
	}
	if err := policy.Authorize(actor, policy.Delete, policy.Owned(policy.Comment, comment.AuthorID)); err != nil {
		return err
	}
	return fromRepo(s.commentRepo.Delete(ctx, comment.ID), "", nil)
}
