package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWithdrawalTransitions(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name     string
		status   WithdrawalStatus
		action   func(w *Withdrawal) error
		expected WithdrawalStatus
		err      error
	}{
		{
			name:     "Process pending",
			status:   WithdrawalPending,
			action:   func(w *Withdrawal) error { return w.MarkProcessing(now) },
			expected: WithdrawalProcessing,
		},
		{
			name:     "Process twice",
			status:   WithdrawalProcessing,
			action:   func(w *Withdrawal) error { return w.MarkProcessing(now) },
			expected: WithdrawalProcessing,
			err:      ErrWithdrawalNotPending,
		},
		{
			name:     "Approve processing",
			status:   WithdrawalProcessing,
			action:   func(w *Withdrawal) error { return w.Approve(" TXN123 ", now) },
			expected: WithdrawalCompleted,
		},
		{
			name:     "Approve without transaction id",
			status:   WithdrawalPending,
			action:   func(w *Withdrawal) error { return w.Approve("  ", now) },
			expected: WithdrawalPending,
			err:      ErrTransactionIDRequired,
		},
		{
			name:     "Approve completed",
			status:   WithdrawalCompleted,
			action:   func(w *Withdrawal) error { return w.Approve("TXN9", now) },
			expected: WithdrawalCompleted,
			err:      ErrWithdrawalFinalized,
		},
		{
			name:     "Reject with empty reason",
			status:   WithdrawalPending,
			action:   func(w *Withdrawal) error { return w.Reject("", now) },
			expected: WithdrawalPending,
			err:      ErrReasonRequired,
		},
		{
			name:     "Reject pending",
			status:   WithdrawalPending,
			action:   func(w *Withdrawal) error { return w.Reject("invalid account", now) },
			expected: WithdrawalRejected,
		},
		{
			name:     "Reject rejected",
			status:   WithdrawalRejected,
			action:   func(w *Withdrawal) error { return w.Reject("again", now) },
			expected: WithdrawalRejected,
			err:      ErrWithdrawalFinalized,
		},
		{
			name:     "Process completed",
			status:   WithdrawalCompleted,
			action:   func(w *Withdrawal) error { return w.MarkProcessing(now) },
			expected: WithdrawalCompleted,
			err:      ErrWithdrawalFinalized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &Withdrawal{ID: 1, Status: tt.status}
			err := tt.action(w)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.expected, w.Status)
		})
	}

	w := &Withdrawal{Status: WithdrawalPending}
	assert.NoError(t, w.Approve(" TXN123 ", now))
	assert.Equal(t, "TXN123", w.TransactionID)
}

func TestPayoutDetailsValidate(t *testing.T) {
	full := PayoutDetails{AccountName: "Ram", AccountNumber: "0123", BankName: "NIC Asia"}

	assert.NoError(t, full.Validate(PayoutBankTransfer))
	assert.NoError(t, PayoutDetails{AccountName: "Ram", AccountNumber: "9800000000"}.Validate(PayoutEsewa))
	assert.ErrorIs(t, PayoutDetails{AccountName: "Ram", AccountNumber: "0123"}.Validate(PayoutBankTransfer), ErrPayoutDetails)
	assert.ErrorIs(t, PayoutDetails{AccountNumber: "9800000000"}.Validate(PayoutKhalti), ErrPayoutDetails)
	assert.ErrorIs(t, full.Validate(PayoutMethod("paypal")), ErrInvalidPayoutMethod)
}

func TestTransactionTransitions(t *testing.T) {
	now := time.Now()

	tx := &Transaction{Status: TransactionPending}
	assert.ErrorIs(t, tx.Approve(now), ErrProofRequired)
	assert.ErrorIs(t, tx.Reject(" ", now), ErrReasonRequired)

	assert.NoError(t, tx.AttachProof("proofs/a.png", now))
	assert.Equal(t, TransactionPendingVerification, tx.Status)

	assert.NoError(t, tx.Reject("blurry image", now))
	assert.Equal(t, TransactionRejected, tx.Status)
	assert.Equal(t, "blurry image", tx.RejectionReason)
	assert.ErrorIs(t, tx.Reject("again", now), ErrTransactionFinalized)
	assert.ErrorIs(t, tx.Approve(now), ErrTransactionFinalized)

	assert.NoError(t, tx.AttachProof("proofs/b.png", now))
	assert.Equal(t, TransactionPendingVerification, tx.Status)
	assert.Empty(t, tx.RejectionReason)

	assert.NoError(t, tx.Approve(now))
	assert.Equal(t, TransactionCompleted, tx.Status)
	assert.ErrorIs(t, tx.AttachProof("proofs/c.png", now), ErrTransactionFinalized)
	assert.Equal(t, "proofs/b.png", tx.Proof)
}

func TestKYCReview(t *testing.T) {
	now := time.Now()
	var none *KYCSubmission
	assert.True(t, none.CanSubmit())

	k := &KYCSubmission{Status: KYCPending}
	assert.False(t, k.CanSubmit())
	assert.ErrorIs(t, k.Review(KYCRejected, "", now), ErrReasonRequired)
	assert.ErrorIs(t, k.Review(KYCPending, "", now), ErrInvalidKYCStatus)
	assert.Equal(t, KYCPending, k.Status)

	assert.NoError(t, k.Review(KYCRejected, "document expired", now))
	assert.True(t, k.CanSubmit())
	assert.Equal(t, "document expired", k.RejectionReason)

	assert.NoError(t, k.Review(KYCApproved, "ignored", now))
	assert.Empty(t, k.RejectionReason)
	assert.False(t, k.CanSubmit())
}

func TestContactMessage(t *testing.T) {
	c := &ContactMessage{Status: ContactUnread}
	assert.True(t, c.MarkRead())
	assert.False(t, c.MarkRead())

	c.SetReply("")
	assert.Equal(t, ContactRead, c.Status)
	c.SetReply("Thanks, fixed.")
	assert.Equal(t, ContactReplied, c.Status)
}
