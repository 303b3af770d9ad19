package domain

import (
	"errors"
	"strings"
	"time"
)

var ErrInvalidKYCStatus = errors.New("kyc review status must be approved or rejected")

type KYCStatus string

const (
	KYCPending  KYCStatus = "pending"
	KYCApproved KYCStatus = "approved"
	KYCRejected KYCStatus = "rejected"
)

func (s KYCStatus) Valid() bool {
	return s == KYCPending || s == KYCApproved || s == KYCRejected
}

type DocumentType string

const (
	DocCitizenship    DocumentType = "citizenship"
	DocPassport       DocumentType = "passport"
	DocDrivingLicense DocumentType = "driving_license"
	DocNationalID     DocumentType = "national_id"
)

func (d DocumentType) Valid() bool {
	switch d {
	case DocCitizenship, DocPassport, DocDrivingLicense, DocNationalID:
		return true
	}
	return false
}

type KYCSubmission struct {
	ID              int          `db:"id"`
	UserID          int          `db:"user_id"`
	DocumentType    DocumentType `db:"document_type"`
	DocumentNumber  string       `db:"document_number"`
	FullName        string       `db:"full_name"`
	DateOfBirth     time.Time    `db:"date_of_birth"`
	Address         string       `db:"address"`
	Phone           string       `db:"phone"`
	DocumentFront   string       `db:"document_front"`
	DocumentBack    string       `db:"document_back"`
	Selfie          string       `db:"selfie"`
	Status          KYCStatus    `db:"status"`
	RejectionReason string       `db:"rejection_reason"`
	CreatedAt       time.Time    `db:"created_at"`
	UpdatedAt       time.Time    `db:"updated_at"`

	UserEmail string `db:"user_email"`
}

// CanSubmit reports whether a new submission may replace k.
func (k *KYCSubmission) CanSubmit() bool {
	return k == nil || k.Status == KYCRejected
}

func (k *KYCSubmission) Review(status KYCStatus, reason string, now time.Time) error {
	reason = strings.TrimSpace(reason)
	switch status {
	case KYCApproved:
		k.RejectionReason = ""
	case KYCRejected:
		if reason == "" {
			return ErrReasonRequired
		}
		k.RejectionReason = reason
	default:
		return ErrInvalidKYCStatus
	}
	k.Status = status
	k.UpdatedAt = now
	return nil
}
