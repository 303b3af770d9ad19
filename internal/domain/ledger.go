package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds in bucket")
	ErrInvalidMovement   = errors.New("invalid ledger movement")
	ErrDuplicateMovement = errors.New("ledger movement already recorded")
)

// Bucket is one of the four mutually exclusive classifications of a
// user's earned funds. The empty bucket stands for money entering the
// ledger from outside (referral earnings).
type Bucket string

const (
	BucketExternal   Bucket = ""
	BucketPending    Bucket = "pending"
	BucketProcessing Bucket = "processing"
	BucketAvailable  Bucket = "available"
	BucketWithdrawn  Bucket = "withdrawn"
)

func (b Bucket) Valid() bool {
	switch b {
	case BucketPending, BucketProcessing, BucketAvailable, BucketWithdrawn:
		return true
	}
	return false
}

type EntryKind string

const (
	KindReferralCommission EntryKind = "referral_commission"
	KindCommissionRelease  EntryKind = "commission_release"
	KindWithdrawalReserve  EntryKind = "withdrawal_reserve"
	KindWithdrawalPayout   EntryKind = "withdrawal_payout"
	KindWithdrawalCancel   EntryKind = "withdrawal_cancel"
	KindAdjustment         EntryKind = "adjustment"
)

type RefType string

const (
	RefTransaction RefType = "transaction"
	RefWithdrawal  RefType = "withdrawal"
	RefAdjustment  RefType = "adjustment"
)

type LedgerEntry struct {
	ID        int64     `db:"id"`
	UserID    int       `db:"user_id"`
	Bucket    Bucket    `db:"bucket"`
	Amount    Money     `db:"amount"`
	Kind      EntryKind `db:"kind"`
	RefType   RefType   `db:"ref_type"`
	RefID     int       `db:"ref_id"`
	Note      string    `db:"note"`
	CreatedAt time.Time `db:"created_at"`
}

// Movement moves Amount from one bucket to another. (RefType, RefID, Kind)
// identifies it; the ledger records each identity at most once.
type Movement struct {
	UserID  int
	From    Bucket
	To      Bucket
	Amount  Money
	Kind    EntryKind
	RefType RefType
	RefID   int
	Note    string
}

func (m Movement) Validate() error {
	if m.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidMovement)
	}
	if m.From == m.To {
		return fmt.Errorf("%w: source and target bucket are the same", ErrInvalidMovement)
	}
	if m.From != BucketExternal && !m.From.Valid() {
		return fmt.Errorf("%w: unknown bucket %q", ErrInvalidMovement, m.From)
	}
	if m.To != BucketExternal && !m.To.Valid() {
		return fmt.Errorf("%w: unknown bucket %q", ErrInvalidMovement, m.To)
	}
	if m.UserID == 0 || m.Kind == "" || m.RefType == "" || m.RefID == 0 {
		return fmt.Errorf("%w: missing owner or reference", ErrInvalidMovement)
	}
	return nil
}

// Entries expands the movement into the signed ledger rows it appends.
func (m Movement) Entries(at time.Time) []LedgerEntry {
	entries := make([]LedgerEntry, 0, 2)
	if m.From != BucketExternal {
		entries = append(entries, m.entry(m.From, -m.Amount, at))
	}
	if m.To != BucketExternal {
		entries = append(entries, m.entry(m.To, m.Amount, at))
	}
	return entries
}

func (m Movement) entry(bucket Bucket, amount Money, at time.Time) LedgerEntry {
	return LedgerEntry{
		UserID:    m.UserID,
		Bucket:    bucket,
		Amount:    amount,
		Kind:      m.Kind,
		RefType:   m.RefType,
		RefID:     m.RefID,
		Note:      m.Note,
		CreatedAt: at,
	}
}

func CommissionCredit(userID int, amount Money, transactionID int) Movement {
	return Movement{
		UserID:  userID,
		From:    BucketExternal,
		To:      BucketPending,
		Amount:  amount,
		Kind:    KindReferralCommission,
		RefType: RefTransaction,
		RefID:   transactionID,
	}
}

func CommissionRelease(userID int, amount Money, transactionID int) Movement {
	return Movement{
		UserID:  userID,
		From:    BucketPending,
		To:      BucketAvailable,
		Amount:  amount,
		Kind:    KindCommissionRelease,
		RefType: RefTransaction,
		RefID:   transactionID,
	}
}

// Adjustment credits available funds; ref comes from the adjustment sequence.
func Adjustment(userID int, amount Money, ref int, note string) Movement {
	return Movement{
		UserID:  userID,
		From:    BucketExternal,
		To:      BucketAvailable,
		Amount:  amount,
		Kind:    KindAdjustment,
		RefType: RefAdjustment,
		RefID:   ref,
		Note:    note,
	}
}

func WithdrawalReserve(w *Withdrawal) Movement {
	return withdrawalMovement(w, BucketAvailable, BucketProcessing, KindWithdrawalReserve)
}

func WithdrawalPayout(w *Withdrawal) Movement {
	m := withdrawalMovement(w, BucketProcessing, BucketWithdrawn, KindWithdrawalPayout)
	m.Note = w.TransactionID
	return m
}

func WithdrawalCancel(w *Withdrawal) Movement {
	m := withdrawalMovement(w, BucketProcessing, BucketAvailable, KindWithdrawalCancel)
	m.Note = w.RejectionReason
	return m
}

func withdrawalMovement(w *Withdrawal, from, to Bucket, kind EntryKind) Movement {
	return Movement{
		UserID:  w.UserID,
		From:    from,
		To:      to,
		Amount:  w.Amount,
		Kind:    kind,
		RefType: RefWithdrawal,
		RefID:   w.ID,
	}
}

// Balance is the projection of a user's ledger into bucket totals.
type Balance struct {
	ID         int       `db:"id"`
	UserID     int       `db:"user_id"`
	Pending    Money     `db:"pending"`
	Processing Money     `db:"processing"`
	Available  Money     `db:"available"`
	Withdrawn  Money     `db:"withdrawn"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (b Balance) Total() Money {
	return b.Pending + b.Processing + b.Available + b.Withdrawn
}

func (b Balance) Get(bucket Bucket) Money {
	switch bucket {
	case BucketPending:
		return b.Pending
	case BucketProcessing:
		return b.Processing
	case BucketAvailable:
		return b.Available
	case BucketWithdrawn:
		return b.Withdrawn
	}
	return 0
}

func (b *Balance) add(bucket Bucket, delta Money) {
	switch bucket {
	case BucketPending:
		b.Pending += delta
	case BucketProcessing:
		b.Processing += delta
	case BucketAvailable:
		b.Available += delta
	case BucketWithdrawn:
		b.Withdrawn += delta
	}
}

// Apply returns the balance after m, refusing to take any bucket below zero.
func (b Balance) Apply(m Movement) (Balance, error) {
	if err := m.Validate(); err != nil {
		return b, err
	}
	if m.From != BucketExternal && b.Get(m.From) < m.Amount {
		return b, fmt.Errorf("%w: %s has %s, need %s", ErrInsufficientFunds, m.From, b.Get(m.From), m.Amount)
	}
	next := b
	next.add(m.From, -m.Amount)
	next.add(m.To, m.Amount)
	return next, nil
}

// Reduce folds ledger entries into bucket totals.
func Reduce(userID int, entries []LedgerEntry) Balance {
	b := Balance{UserID: userID}
	for _, e := range entries {
		b.add(e.Bucket, e.Amount)
	}
	return b
}

func (b Balance) SameTotals(other Balance) bool {
	return b.Pending == other.Pending &&
		b.Processing == other.Processing &&
		b.Available == other.Available &&
		b.Withdrawn == other.Withdrawn
}

type BalanceOverview struct {
	Pending                 Money
	Processing              Money
	Available               Money
	Withdrawn               Money
	Users                   int
	PendingWithdrawals      int
	PendingWithdrawalAmount Money
}
