package service

import (
	"context"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/policy"
)

var userMessages = map[string]string{
	"username": "a user with that username already exists",
	"email":    "a user with that email already exists",
}

// UserService covers admin user management and the caller's own profile.
type UserService interface {
	List(ctx context.Context, actor *policy.Actor, search string, limit, offset int) ([]dto.UserResponse, int64, error)
	Create(ctx context.Context, actor *policy.Actor, req dto.CreateUserRequest) (*dto.UserResponse, error)
	Get(ctx context.Context, actor *policy.Actor, username string) (*dto.UserResponse, error)
	Update(ctx context.Context, actor *policy.Actor, username string, req dto.UpdateUserRequest) (*dto.UserResponse, error)
	Delete(ctx context.Context, actor *policy.Actor, username string) error

	GetMe(ctx context.Context, actor *policy.Actor) (*dto.UserResponse, error)
	// UpdateMe applies a partial update to the caller. Any submitted role is
	// discarded and the stored one kept.
	UpdateMe(ctx context.Context, actor *policy.Actor, req dto.UpdateUserRequest) (*dto.UserResponse, error)
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func checkUsername(username string) error {
	if username == models.ReservedUsername {
		return NewValidationError("username", `username "me" is reserved`)
	}
	return nil
}

func (s *userService) List(ctx context.Context, actor *policy.Actor, search string, limit, offset int) ([]dto.UserResponse, int64, error) {
	if err := policy.Authorize(actor, policy.Read, policy.On(policy.Users)); err != nil {
		return nil, 0, err
	}
	users, total, err := s.userRepo.List(ctx, search, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	out := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, dto.UserFromModel(&users[i]))
	}
	return out, total, nil
}

func (s *userService) Create(ctx context.Context, actor *policy.Actor, req dto.CreateUserRequest) (*dto.UserResponse, error) {
	if err := policy.Authorize(actor, policy.Create, policy.On(policy.Users)); err != nil {
		return nil, err
	}
	if err := checkUsername(req.Username); err != nil {
		return nil, err
	}

	user := req.ToModel()
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fromRepo(err, "username", userMessages)
	}
	resp := dto.UserFromModel(user)
	return &resp, nil
}

func (s *userService) find(ctx context.Context, username string) (*models.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, fromRepo(err, "", nil)
	}
	return user, nil
}

func (s *userService) Get(ctx context.Context, actor *policy.Actor, username string) (*dto.UserResponse, error) {
	if err := policy.Authorize(actor, policy.Read, policy.On(policy.Users)); err != nil {
		return nil, err
	}
	user, err := s.find(ctx, username)
	if err != nil {
		return nil, err
	}
	resp := dto.UserFromModel(user)
	return &resp, nil
}

func (s *userService) Update(ctx context.Context, actor *policy.Actor, username string, req dto.UpdateUserRequest) (*dto.UserResponse, error) {
	if err := policy.Authorize(actor, policy.Update, policy.On(policy.Users)); err != nil {
		return nil, err
	}
	user, err := s.find(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, user, req)
}

func (s *userService) Delete(ctx context.Context, actor *policy.Actor, username string) error {
	if err := policy.Authorize(actor, policy.Delete, policy.On(policy.Users)); err != nil {
		return err
	}
	user, err := s.find(ctx, username)
	if err != nil {
		return err
	}
	return fromRepo(s.userRepo.Delete(ctx, user.ID), "", nil)
}

func (s *userService) me(ctx context.Context, actor *policy.Actor, action policy.Action) (*models.User, error) {
	if err := policy.Authorize(actor, action, policy.On(policy.Profile)); err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, fromRepo(err, "", nil)
	}
	return user, nil
}

func (s *userService) GetMe(ctx context.Context, actor *policy.Actor) (*dto.UserResponse, error) {
	user, err := s.me(ctx, actor, policy.Read)
	if err != nil {
		return nil, err
	}
	resp := dto.UserFromModel(user)
	return &resp, nil
}

func (s *userService) UpdateMe(ctx context.Context, actor *policy.Actor, req dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := s.me(ctx, actor, policy.Update)
	if err != nil {
		return nil, err
	}
	req.Role = nil
	return s.save(ctx, user, req)
}

func (s *userService) save(ctx context.Context, user *models.User, req dto.UpdateUserRequest) (*dto.UserResponse, error) {
	if req.Username != nil {
		if err := checkUsername(*req.Username); err != nil {
			return nil, err
		}
	}
	req.ApplyTo(user)
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fromRepo(err, "username", userMessages)
	}
	resp := dto.UserFromModel(user)
	return &resp, nil
}
