package dto

import (
	"time"

	"github.com/GlebRadaev/learnhub/internal/domain"
)

type ContactRequestDTO struct {
	Name    string `json:"name" validate:"required,max=100" example:"Hari Karki"`
	Email   string `json:"email" validate:"required,email,max=255" example:"hari@example.com"`
	Subject string `json:"subject" validate:"required,max=200" example:"Payment question"`
	Message string `json:"message" validate:"required,max=5000"`
}

type ContactResponseDTO struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	Status    string    `json:"status" example:"unread"`
	Priority  string    `json:"priority" example:"normal"`
	Reply     string    `json:"reply,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewContactResponse(c domain.ContactMessage) ContactResponseDTO {
	return ContactResponseDTO{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Subject:   c.Subject,
		Message:   c.Message,
		Status:    string(c.Status),
		Priority:  string(c.Priority),
		Reply:     c.Reply,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

type UpdateContactRequestDTO struct {
	Status   *string `json:"status" example:"archived"`
	Priority *string `json:"priority" example:"high"`
	Reply    *string `json:"reply" validate:"omitempty,max=5000"`
}
