package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Roles a user may hold. Superuser is a separate flag on top of any role.
const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// ReservedUsername is taken by the self-profile route /users/me/.
const ReservedUsername = "me"

type User struct {
	ID          string     `gorm:"primaryKey;type:varchar(36)" json:"-"`
	Username    string     `gorm:"uniqueIndex:idx_users_username;size:150;not null;check:chk_users_username_not_me,username <> 'me'" json:"username"`
	Email       string     `gorm:"uniqueIndex:idx_users_email;size:254;not null" json:"email"`
	FirstName   string     `gorm:"size:150;not null;default:''" json:"first_name"`
	LastName    string     `gorm:"size:150;not null;default:''" json:"last_name"`
	Bio         string     `gorm:"type:text;not null;default:''" json:"bio"`
	Role        string     `gorm:"size:20;not null;default:'user'" json:"role"`
	IsSuperuser bool       `gorm:"not null;default:false" json:"-"`
	IsActive    bool       `gorm:"not null;default:true" json:"-"`
	LastLogin   *time.Time `json:"-"`
	DateJoined  time.Time  `gorm:"autoCreateTime" json:"-"`
}

// BeforeCreate hook to set UUID before creating a User
func (user *User) BeforeCreate(tx *gorm.DB) (err error) {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Role == "" {
		user.Role = RoleUser
	}
	return
}

func (User) TableName() string {
	return "users"
}

// IsValidRole reports whether role is one of the three known roles.
func IsValidRole(role string) bool {
	switch role {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}
