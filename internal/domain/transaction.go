package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrTransactionFinalized = errors.New("transaction is already finalized")
	ErrProofRequired        = errors.New("payment proof has not been uploaded")
)

type TransactionStatus string

const (
	TransactionPending             TransactionStatus = "pending"
	TransactionPendingVerification TransactionStatus = "pending_verification"
	TransactionCompleted           TransactionStatus = "completed"
	TransactionRejected            TransactionStatus = "rejected"
)

func (s TransactionStatus) Valid() bool {
	switch s {
	case TransactionPending, TransactionPendingVerification, TransactionCompleted, TransactionRejected:
		return true
	}
	return false
}

type Transaction struct {
	ID              int               `db:"id"`
	UserID          int               `db:"user_id"`
	PackageID       int               `db:"package_id"`
	Amount          Money             `db:"amount"`
	PaymentMethod   string            `db:"payment_method"`
	Proof           string            `db:"proof"`
	Status          TransactionStatus `db:"status"`
	RejectionReason string            `db:"rejection_reason"`
	ReferralCode    string            `db:"referral_code"`
	CreatedAt       time.Time         `db:"created_at"`
	UpdatedAt       time.Time         `db:"updated_at"`

	// joined for listings
	PackageTitle string `db:"package_title"`
	UserEmail    string `db:"user_email"`
	UserName     string `db:"user_name"`
}

// AttachProof records the uploaded proof and queues the transaction for
// verification. A rejected transaction is resubmitted this way.
func (t *Transaction) AttachProof(ref string, now time.Time) error {
	if t.Status == TransactionCompleted {
		return ErrTransactionFinalized
	}
	t.Proof = ref
	t.Status = TransactionPendingVerification
	t.RejectionReason = ""
	t.UpdatedAt = now
	return nil
}

func (t *Transaction) Approve(now time.Time) error {
	switch t.Status {
	case TransactionPendingVerification:
	case TransactionPending:
		return ErrProofRequired
	default:
		return ErrTransactionFinalized
	}
	t.Status = TransactionCompleted
	t.UpdatedAt = now
	return nil
}

func (t *Transaction) Reject(reason string, now time.Time) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return ErrReasonRequired
	}
	if t.Status == TransactionCompleted || t.Status == TransactionRejected {
		return ErrTransactionFinalized
	}
	t.Status = TransactionRejected
	t.RejectionReason = reason
	t.UpdatedAt = now
	return nil
}
