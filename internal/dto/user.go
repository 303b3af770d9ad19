package dto

import (
	"time"

	"github.com/GlebRadaev/learnhub/internal/domain"
)

type UserResponseDTO struct {
	ID           int       `json:"id" example:"7"`
	Email        string    `json:"email" example:"sita@example.com"`
	FullName     string    `json:"full_name" example:"Sita Sharma"`
	Role         string    `json:"role" example:"user"`
	Status       string    `json:"status" example:"active"`
	ReferralCode string    `json:"referral_code" example:"1234567897"`
	CreatedAt    time.Time `json:"created_at"`
}

func NewUserResponse(u domain.User) UserResponseDTO {
	return UserResponseDTO{
		ID:           u.ID,
		Email:        u.Email,
		FullName:     u.FullName,
		Role:         string(u.Role),
		Status:       string(u.Status),
		ReferralCode: u.ReferralCode,
		CreatedAt:    u.CreatedAt,
	}
}

type CreateUserRequestDTO struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	FullName string `json:"full_name" validate:"required,max=100"`
	Role     string `json:"role" validate:"omitempty,oneof=user admin" example:"user"`
}

// UpdateUserRequestDTO is a partial update; absent fields are kept.
type UpdateUserRequestDTO struct {
	Email    *string `json:"email" validate:"omitempty,email,max=255"`
	FullName *string `json:"full_name" validate:"omitempty,min=1,max=100"`
	Role     *string `json:"role" validate:"omitempty,oneof=user admin"`
	Status   *string `json:"status" validate:"omitempty,oneof=active suspended"`
}

type UserStatusRequestDTO struct {
	Status string `json:"status" validate:"required,oneof=active suspended" example:"suspended"`
}

type UserRoleRequestDTO struct {
	Role string `json:"role" validate:"required,oneof=user admin" example:"admin"`
}
