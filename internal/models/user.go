package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is the identity record kept in PostgreSQL.
type User struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	Name         string     `json:"name" gorm:"size:100"`
	Email        string     `json:"email" gorm:"uniqueIndex;size:255"`
	Phone        *string    `json:"phone,omitempty" gorm:"uniqueIndex;size:20"`
	Avatar       string     `json:"avatar,omitempty"`
	Bio          string     `json:"bio,omitempty" gorm:"size:500"`
	Password     string     `json:"-"`
	Role         string     `json:"role" gorm:"size:20;default:'user'"`
	SessionEpoch int        `json:"-" gorm:"not null;default:0"`
	FirebaseUID  *string    `json:"firebase_uid,omitempty" gorm:"uniqueIndex"`
	ResetOTPHash string     `json:"-"`
	ResetOTPExp  *time.Time `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// UserCompact is the public projection embedded in lists and notifications.
type UserCompact struct {
	ID     uint   `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

func (u *User) ToCompact() UserCompact {
	return UserCompact{ID: u.ID, Name: u.Name, Avatar: u.Avatar}
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"omitempty,phone"`
	Password string `json:"password" validate:"required,strongpassword"`
}

// LoginRequest accepts either an email address or a phone number as identifier.
type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

type FirebaseLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,strongpassword,nefield=CurrentPassword"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	OTP         string `json:"otp" validate:"required,len=6,numeric"`
	NewPassword string `json:"new_password" validate:"required,strongpassword"`
}

type UpdateUserRequest struct {
	Name   string `json:"name,omitempty" validate:"omitempty,min=2,max=50"`
	Avatar string `json:"avatar,omitempty" validate:"omitempty,url"`
	Bio    string `json:"bio,omitempty" validate:"omitempty,max=500"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims.
// SessionEpoch must match the stored user epoch for the token to be accepted.
type JwtCustomClaims struct {
	UserID       uint   `json:"user_id"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	SessionEpoch int    `json:"session_epoch"`
	jwt.RegisteredClaims
}
