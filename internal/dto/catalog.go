package dto

import (
	"time"

	"github.com/GlebRadaev/learnhub/internal/domain"
	"github.com/shopspring/decimal"
)

type PackageResponseDTO struct {
	ID          int             `json:"id" example:"1"`
	Title       string          `json:"title" example:"Digital Marketing Basics"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" swaggertype:"string" example:"2500"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
}

func NewPackageResponse(p domain.Package) PackageResponseDTO {
	return PackageResponseDTO{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price.Decimal(),
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
	}
}

type PaymentMethodResponseDTO struct {
	Code         string `json:"code" example:"esewa"`
	Name         string `json:"name" example:"eSewa"`
	Instructions string `json:"instructions"`
}

func NewPaymentMethodResponse(m domain.PaymentMethod) PaymentMethodResponseDTO {
	return PaymentMethodResponseDTO{
		Code:         m.Code,
		Name:         m.Name,
		Instructions: m.Instructions,
	}
}

type CreatePackageRequestDTO struct {
	Title       string          `json:"title" validate:"required,max=200"`
	Description string          `json:"description" validate:"max=5000"`
	Price       decimal.Decimal `json:"price" swaggertype:"string" example:"2500"`
	IsActive    *bool           `json:"is_active"`
}

type UpdatePackageRequestDTO struct {
	Title       *string          `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string          `json:"description" validate:"omitempty,max=5000"`
	Price       *decimal.Decimal `json:"price" swaggertype:"string" example:"3000"`
	IsActive    *bool            `json:"is_active"`
}
