package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrWithdrawalFinalized   = errors.New("withdrawal is already finalized")
	ErrWithdrawalNotPending  = errors.New("withdrawal is not pending")
	ErrReasonRequired        = errors.New("rejection reason is required")
	ErrTransactionIDRequired = errors.New("transaction id is required")
	ErrInvalidPayoutMethod   = errors.New("invalid payout method")
	ErrPayoutDetails         = errors.New("incomplete payout details")
)

type WithdrawalStatus string

const (
	WithdrawalPending    WithdrawalStatus = "pending"
	WithdrawalProcessing WithdrawalStatus = "processing"
	WithdrawalCompleted  WithdrawalStatus = "completed"
	WithdrawalRejected   WithdrawalStatus = "rejected"
)

func (s WithdrawalStatus) Valid() bool {
	switch s {
	case WithdrawalPending, WithdrawalProcessing, WithdrawalCompleted, WithdrawalRejected:
		return true
	}
	return false
}

func (s WithdrawalStatus) Final() bool {
	return s == WithdrawalCompleted || s == WithdrawalRejected
}

type PayoutMethod string

const (
	PayoutBankTransfer PayoutMethod = "bank_transfer"
	PayoutEsewa        PayoutMethod = "esewa"
	PayoutKhalti       PayoutMethod = "khalti"
)

func (m PayoutMethod) Valid() bool {
	return m == PayoutBankTransfer || m == PayoutEsewa || m == PayoutKhalti
}

// PayoutDetails holds the method-specific destination. For wallets
// AccountNumber is the wallet id and BankName stays empty.
type PayoutDetails struct {
	AccountName   string `db:"account_name"`
	AccountNumber string `db:"account_number"`
	BankName      string `db:"bank_name"`
}

func (d PayoutDetails) Validate(m PayoutMethod) error {
	if !m.Valid() {
		return ErrInvalidPayoutMethod
	}
	if strings.TrimSpace(d.AccountName) == "" || strings.TrimSpace(d.AccountNumber) == "" {
		return ErrPayoutDetails
	}
	if m == PayoutBankTransfer && strings.TrimSpace(d.BankName) == "" {
		return ErrPayoutDetails
	}
	return nil
}

type Withdrawal struct {
	ID     int              `db:"id"`
	UserID int              `db:"user_id"`
	Amount Money            `db:"amount"`
	Method PayoutMethod     `db:"method"`
	Status WithdrawalStatus `db:"status"`
	PayoutDetails
	TransactionID   string    `db:"transaction_id"`
	RejectionReason string    `db:"rejection_reason"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`

	// joined for admin listings
	UserEmail string `db:"user_email"`
	UserName  string `db:"user_name"`
}

func (w *Withdrawal) MarkProcessing(now time.Time) error {
	if w.Status.Final() {
		return ErrWithdrawalFinalized
	}
	if w.Status != WithdrawalPending {
		return ErrWithdrawalNotPending
	}
	w.Status = WithdrawalProcessing
	w.UpdatedAt = now
	return nil
}

func (w *Withdrawal) Approve(transactionID string, now time.Time) error {
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return ErrTransactionIDRequired
	}
	if w.Status.Final() {
		return ErrWithdrawalFinalized
	}
	w.Status = WithdrawalCompleted
	w.TransactionID = transactionID
	w.UpdatedAt = now
	return nil
}

func (w *Withdrawal) Reject(reason string, now time.Time) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return ErrReasonRequired
	}
	if w.Status.Final() {
		return ErrWithdrawalFinalized
	}
	w.Status = WithdrawalRejected
	w.RejectionReason = reason
	w.UpdatedAt = now
	return nil
}
