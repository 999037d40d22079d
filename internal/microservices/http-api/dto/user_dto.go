package dto

import "yamdb/internal/microservices/http-api/models"

// UserResponse is the public shape of a user record
type UserResponse struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Bio       string `json:"bio"`
	Role      string `json:"role"`
}

// CreateUserRequest: admin creates a user directly, no confirmation involved
type CreateUserRequest struct {
	Username  string `json:"username" binding:"required,max=150,username"`
	Email     string `json:"email" binding:"required,email,max=254"`
	FirstName string `json:"first_name" binding:"max=150"`
	LastName  string `json:"last_name" binding:"max=150"`
	Bio       string `json:"bio"`
	Role      string `json:"role" binding:"omitempty,oneof=user moderator admin"`
}

// UpdateUserRequest is a partial update; nil fields are left alone.
// Role is ignored on the self-profile route.
type UpdateUserRequest struct {
	Username  *string `json:"username" binding:"omitempty,max=150,username"`
	Email     *string `json:"email" binding:"omitempty,email,max=254"`
	FirstName *string `json:"first_name" binding:"omitempty,max=150"`
	LastName  *string `json:"last_name" binding:"omitempty,max=150"`
	Bio       *string `json:"bio"`
	Role      *string `json:"role" binding:"omitempty,oneof=user moderator admin"`
}

// UpdateMeRequest is the self-profile patch. It has no role field, so a
// submitted role is dropped while decoding instead of being validated.
type UpdateMeRequest struct {
	Username  *string `json:"username" binding:"omitempty,max=150,username"`
	Email     *string `json:"email" binding:"omitempty,email,max=254"`
	FirstName *string `json:"first_name" binding:"omitempty,max=150"`
	LastName  *string `json:"last_name" binding:"omitempty,max=150"`
	Bio       *string `json:"bio"`
}

func (r UpdateMeRequest) AsUserUpdate() UpdateUserRequest {
	return UpdateUserRequest{
		Username:  r.Username,
		Email:     r.Email,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Bio:       r.Bio,
	}
}

func UserFromModel(u *models.User) UserResponse {
	return UserResponse{
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Bio:       u.Bio,
		Role:      u.Role,
	}
}

func (r CreateUserRequest) ToModel() *models.User {
	return &models.User{
		Username:  r.Username,
		Email:     r.Email,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Bio:       r.Bio,
		Role:      r.Role,
	}
}

// ApplyTo copies set fields onto u. The caller decides whether Role counts.
func (r UpdateUserRequest) ApplyTo(u *models.User) {
	if r.Username != nil {
		u.Username = *r.Username
	}
	if r.Email != nil {
		u.Email = *r.Email
	}
	if r.FirstName != nil {
		u.FirstName = *r.FirstName
	}
	if r.LastName != nil {
		u.LastName = *r.LastName
	}
	if r.Bio != nil {
		u.Bio = *r.Bio
	}
	if r.Role != nil {
		u.Role = *r.Role
	}
}
