package dto

import (
	"time"

	"github.com/GlebRadaev/learnhub/internal/domain"
	"github.com/shopspring/decimal"
)

// WithdrawalRequestDTO carries the payout destination. For esewa and khalti
// account_number is the wallet id and bank_name is ignored.
type WithdrawalRequestDTO struct {
	Amount        decimal.Decimal `json:"amount" swaggertype:"string" example:"500"`
	Method        string          `json:"method" validate:"required" example:"bank_transfer"`
	AccountName   string          `json:"account_name" validate:"max=100" example:"Sita Sharma"`
	AccountNumber string          `json:"account_number" validate:"max=50" example:"0012345678901"`
	BankName      string          `json:"bank_name" validate:"max=100" example:"Nabil Bank"`
}

type WithdrawalResponseDTO struct {
	ID              int             `json:"id" example:"4"`
	Amount          decimal.Decimal `json:"amount" swaggertype:"string" example:"500"`
	Method          string          `json:"method" example:"bank_transfer"`
	Status          string          `json:"status" example:"pending"`
	AccountName     string          `json:"account_name"`
	AccountNumber   string          `json:"account_number"`
	BankName        string          `json:"bank_name,omitempty"`
	TransactionID   string          `json:"transaction_id,omitempty" example:"TXN123"`
	RejectionReason string          `json:"rejection_reason,omitempty"`
	UserEmail       string          `json:"user_email,omitempty"`
	UserName        string          `json:"user_name,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func NewWithdrawalResponse(w domain.Withdrawal) WithdrawalResponseDTO {
	return WithdrawalResponseDTO{
		ID:              w.ID,
		Amount:          w.Amount.Decimal(),
		Method:          string(w.Method),
		Status:          string(w.Status),
		AccountName:     w.AccountName,
		AccountNumber:   w.AccountNumber,
		BankName:        w.BankName,
		TransactionID:   w.TransactionID,
		RejectionReason: w.RejectionReason,
		UserEmail:       w.UserEmail,
		UserName:        w.UserName,
		CreatedAt:       w.CreatedAt,
		UpdatedAt:       w.UpdatedAt,
	}
}

// ProcessWithdrawalRequestDTO: transaction_id is required to approve and
// reason to reject.
type ProcessWithdrawalRequestDTO struct {
	WithdrawalID  int    `json:"withdrawal_id" validate:"required,gt=0" example:"4"`
	Action        string `json:"action" validate:"required,oneof=process approve reject" example:"approve"`
	TransactionID string `json:"transaction_id" example:"TXN123"`
	Reason        string `json:"reason"`
}
