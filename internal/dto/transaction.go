package dto

import (
	"time"

	"github.com/GlebRadaev/learnhub/internal/domain"
	"github.com/shopspring/decimal"
)

type CreateTransactionRequestDTO struct {
	PackageID     int    `json:"package_id" validate:"required,gt=0" example:"1"`
	PaymentMethod string `json:"payment_method" validate:"required,max=50" example:"esewa"`
	ReferralCode  string `json:"referral_code" example:"1234567897"`
}

type TransactionResponseDTO struct {
	ID              int             `json:"id" example:"12"`
	PackageID       int             `json:"package_id" example:"1"`
	PackageTitle    string          `json:"package_title,omitempty"`
	Amount          decimal.Decimal `json:"amount" swaggertype:"string" example:"2500"`
	PaymentMethod   string          `json:"payment_method" example:"esewa"`
	Proof           string          `json:"proof,omitempty" example:"proofs/0b7c.png"`
	Status          string          `json:"status" example:"pending_verification"`
	RejectionReason string          `json:"rejection_reason,omitempty"`
	ReferralCode    string          `json:"referral_code,omitempty"`
	UserEmail       string          `json:"user_email,omitempty"`
	UserName        string          `json:"user_name,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func NewTransactionResponse(t domain.Transaction) TransactionResponseDTO {
	return TransactionResponseDTO{
		ID:              t.ID,
		PackageID:       t.PackageID,
		PackageTitle:    t.PackageTitle,
		Amount:          t.Amount.Decimal(),
		PaymentMethod:   t.PaymentMethod,
		Proof:           t.Proof,
		Status:          string(t.Status),
		RejectionReason: t.RejectionReason,
		ReferralCode:    t.ReferralCode,
		UserEmail:       t.UserEmail,
		UserName:        t.UserName,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}

type ApproveTransactionRequestDTO struct {
	TransactionID int `json:"transaction_id" validate:"required,gt=0" example:"12"`
}

type RejectTransactionRequestDTO struct {
	TransactionID int    `json:"transaction_id" validate:"required,gt=0" example:"12"`
	Reason        string `json:"reason" example:"Amount on the receipt does not match"`
}

type ReferralValidationResponseDTO struct {
	Valid        bool   `json:"valid"`
	ReferrerName string `json:"referrer_name,omitempty" example:"Ram Thapa"`
}
