package handler

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/microservices/http-api/service"
	"yamdb/internal/policy"
)

// MockAuthService mocks the AuthService interface
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Signup(ctx context.Context, email, username string) (*models.User, error) {
	args := m.Called(email, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthService) ExchangeCode(ctx context.Context, username, code string) (string, string, error) {
	args := m.Called(username, code)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *MockAuthService) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	args := m.Called(refreshToken)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) RevokeToken(ctx context.Context, refreshToken string) error {
	args := m.Called(refreshToken)
	return args.Error(0)
}

func (m *MockAuthService) ValidateToken(tokenString string) (*service.Claims, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Claims), args.Error(1)
}

func (m *MockAuthService) AccessTokenTTL() time.Duration {
	return 100 * time.Minute
}

// MockUserRepository only answers the lookup done by the auth middleware.
type MockUserRepository struct {
	mock.Mock
	repository.UserRepository
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) List(ctx context.Context, actor *policy.Actor, search string, limit, offset int) ([]dto.UserResponse, int64, error) {
	args := m.Called(actor, search, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]dto.UserResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserService) Create(ctx context.Context, actor *policy.Actor, req dto.CreateUserRequest) (*dto.UserResponse, error) {
	args := m.Called(actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.UserResponse), args.Error(1)
}

func (m *MockUserService) Get(ctx context.Context, actor *policy.Actor, username string) (*dto.UserResponse, error) {
	args := m.Called(actor, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.UserResponse), args.Error(1)
}

func (m *MockUserService) Update(ctx context.Context, actor *policy.Actor, username string, req dto.UpdateUserRequest) (*dto.UserResponse, error) {
	args := m.Called(actor, username, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.UserResponse), args.Error(1)
}

func (m *MockUserService) Delete(ctx context.Context, actor *policy.Actor, username string) error {
	args := m.Called(actor, username)
	return args.Error(0)
}

func (m *MockUserService) GetMe(ctx context.Context, actor *policy.Actor) (*dto.UserResponse, error) {
	args := m.Called(actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.UserResponse), args.Error(1)
}

func (m *MockUserService) UpdateMe(ctx context.Context, actor *policy.Actor, req dto.UpdateUserRequest) (*dto.UserResponse, error) {
	args := m.Called(actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.UserResponse), args.Error(1)
}

type MockTaxonomyService struct {
	mock.Mock
}

func (m *MockTaxonomyService) List(ctx context.Context, search string, limit, offset int) ([]dto.TaxonResponse, int64, error) {
	args := m.Called(search, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]dto.TaxonResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockTaxonomyService) Create(ctx context.Context, actor *policy.Actor, req dto.CreateTaxonRequest) (*dto.TaxonResponse, error) {
	args := m.Called(actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.TaxonResponse), args.Error(1)
}

func (m *MockTaxonomyService) Delete(ctx context.Context, actor *policy.Actor, slug string) error {
	args := m.Called(actor, slug)
	return args.Error(0)
}

type MockTitleService struct {
	mock.Mock
}

func (m *MockTitleService) List(ctx context.Context, f repository.TitleFilter, limit, offset int) ([]dto.TitleResponse, int64, error) {
	args := m.Called(f, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]dto.TitleResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockTitleService) Get(ctx context.Context, id int64) (*dto.TitleResponse, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.TitleResponse), args.Error(1)
}

func (m *MockTitleService) Create(ctx context.Context, actor *policy.Actor, req dto.CreateTitleRequest) (*dto.TitleWriteResponse, error) {
	args := m.Called(actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.TitleWriteResponse), args.Error(1)
}

func (m *MockTitleService) Update(ctx context.Context, actor *policy.Actor, id int64, req dto.UpdateTitleRequest) (*dto.TitleWriteResponse, error) {
	args := m.Called(actor, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.TitleWriteResponse), args.Error(1)
}

func (m *MockTitleService) Delete(ctx context.Context, actor *policy.Actor, id int64) error {
	args := m.Called(actor, id)
	return args.Error(0)
}

type MockReviewService struct {
	mock.Mock
}

func (m *MockReviewService) List(ctx context.Context, titleID int64, limit, offset int) ([]dto.ReviewResponse, int64, error) {
	args := m.Called(titleID, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]dto.ReviewResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockReviewService) Get(ctx context.Context, titleID, reviewID int64) (*dto.ReviewResponse, error) {
	args := m.Called(titleID, reviewID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ReviewResponse), args.Error(1)
}

func (m *MockReviewService) Create(ctx context.Context, actor *policy.Actor, titleID int64, req dto.CreateReviewDTO) (*dto.ReviewResponse, error) {
	args := m.Called(actor, titleID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ReviewResponse), args.Error(1)
}

func (m *MockReviewService) Update(ctx context.Context, actor *policy.Actor, titleID, reviewID int64, req dto.UpdateReviewDTO) (*dto.ReviewResponse, error) {
	args := m.Called(actor, titleID, reviewID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ReviewResponse), args.Error(1)
}

func (m *MockReviewService) Delete(ctx context.Context, actor *policy.Actor, titleID, reviewID int64) error {
	args := m.Called(actor, titleID, reviewID)
	return args.Error(0)
}

type MockCommentService struct {
	mock.Mock
}

func (m *MockCommentService) List(ctx context.Context, titleID, reviewID int64, limit, offset int) ([]dto.CommentResponse, int64, error) {
	args := m.Called(titleID, reviewID, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]dto.CommentResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockCommentService) Get(ctx context.Context, titleID, reviewID, commentID int64) (*dto.CommentResponse, error) {
	args := m.Called(titleID, reviewID, commentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.CommentResponse), args.Error(1)
}

func (m *MockCommentService) Create(ctx context.Context, actor *policy.Actor, titleID, reviewID int64, text string) (*dto.CommentResponse, error) {
	args := m.Called(actor, titleID, reviewID, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.CommentResponse), args.Error(1)
}

func (m *MockCommentService) Update(ctx context.Context, actor *policy.Actor, titleID, reviewID, commentID int64, text string) (*dto.CommentResponse, error) {
	args := m.Called(actor, titleID, reviewID, commentID, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.CommentResponse), args.Error(1)
}

func (m *MockCommentService) Delete(ctx context.Context, actor *policy.Actor, titleID, reviewID, commentID int64) error {
	args := m.Called(actor, titleID, reviewID, commentID)
	return args.Error(0)
}
