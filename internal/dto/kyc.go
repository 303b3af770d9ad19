package dto

import (
	"time"

	"github.com/GlebRadaev/learnhub/internal/domain"
)

const DateLayout = "2006-01-02"

// KYCFormDTO holds the text fields of the multipart KYC submission.
type KYCFormDTO struct {
	DocumentType   string `validate:"required"`
	DocumentNumber string `validate:"required,max=50"`
	FullName       string `validate:"required,max=100"`
	DateOfBirth    string `validate:"required,datetime=2006-01-02"`
	Address        string `validate:"required,max=255"`
	Phone          string `validate:"required,max=20"`
}

type KYCResponseDTO struct {
	ID              int       `json:"id" example:"3"`
	UserID          int       `json:"user_id" example:"7"`
	UserEmail       string    `json:"user_email,omitempty"`
	DocumentType    string    `json:"document_type" example:"citizenship"`
	DocumentNumber  string    `json:"document_number" example:"27-01-75-01234"`
	FullName        string    `json:"full_name" example:"Sita Sharma"`
	DateOfBirth     string    `json:"date_of_birth" example:"1998-04-12"`
	Address         string    `json:"address"`
	Phone           string    `json:"phone"`
	DocumentFront   string    `json:"document_front" example:"kyc/2f1d.jpg"`
	DocumentBack    string    `json:"document_back,omitempty"`
	Selfie          string    `json:"selfie" example:"kyc/9a0e.jpg"`
	Status          string    `json:"status" example:"pending"`
	RejectionReason string    `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func NewKYCResponse(k domain.KYCSubmission) KYCResponseDTO {
	return KYCResponseDTO{
		ID:              k.ID,
		UserID:          k.UserID,
		UserEmail:       k.UserEmail,
		DocumentType:    string(k.DocumentType),
		DocumentNumber:  k.DocumentNumber,
		FullName:        k.FullName,
		DateOfBirth:     k.DateOfBirth.Format(DateLayout),
		Address:         k.Address,
		Phone:           k.Phone,
		DocumentFront:   k.DocumentFront,
		DocumentBack:    k.DocumentBack,
		Selfie:          k.Selfie,
		Status:          string(k.Status),
		RejectionReason: k.RejectionReason,
		CreatedAt:       k.CreatedAt,
		UpdatedAt:       k.UpdatedAt,
	}
}

type KYCReviewRequestDTO struct {
	Status string `json:"status" validate:"required" example:"rejected"`
	Reason string `json:"reason" example:"Selfie does not match the document"`
}
