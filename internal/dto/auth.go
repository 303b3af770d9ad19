package dto

type RegisterRequestDTO struct {
	Email    string `json:"email" validate:"required,email,max=255" example:"sita@example.com"`
	Password string `json:"password" validate:"required,min=8,max=72" example:"secret123"`
	FullName string `json:"full_name" validate:"required,max=100" example:"Sita Sharma"`
}

type LoginRequestDTO struct {
	Email    string `json:"email" validate:"required,email" example:"sita@example.com"`
	Password string `json:"password" validate:"required" example:"secret123"`
}

type AuthResponseDTO struct {
	Token string          `json:"token"`
	User  UserResponseDTO `json:"user"`
}
