package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Username     string    `json:"username" gorm:"uniqueIndex;size:30"`
	Email        string    `json:"email,omitempty" gorm:"uniqueIndex"`
	Password     string    `json:"-"` // bcrypt hash
	FirebaseUID  *string   `json:"-" gorm:"uniqueIndex"`
	Bio          *string   `json:"bio,omitempty" gorm:"size:160"`
	HomeLocation *string   `json:"home_location,omitempty" gorm:"size:80"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"-"`
}

// BeforeCreate assigns a uuid when the caller did not.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// UserCompact is the author record denormalised into feed items.
type UserCompact struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

func (u *User) ToCompact() UserCompact {
	return UserCompact{ID: u.ID, Username: u.Username}
}

type CreateUserRequest struct {
	Username string `json:"username" validate:"required,username"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest carries the only fields a user may edit. Aggregates
// such as catch counts are never accepted here.
type UpdateProfileRequest struct {
	Username     *string `json:"username,omitempty" validate:"omitempty,username"`
	Bio          *string `json:"bio,omitempty" validate:"omitempty,max=160"`
	HomeLocation *string `json:"home_location,omitempty" validate:"omitempty,max=80"`
}

// AuthResponse is returned by every sign in flow.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
