// Package balanceservice owns the affiliate ledger: every balance change is
// a movement appended to the log, and the per-user balance row is kept as
// its projection.
package balanceservice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/GlebRadaev/learnhub/internal/domain"
	"github.com/GlebRadaev/learnhub/internal/pg"
	"go.uber.org/zap"
)

//go:generate mockgen -source=balanceservice.go -destination=mock_balanceservice.go -package=balanceservice
type Repo interface {
	GetBalance(ctx context.Context, userID int) (*domain.Balance, error)
	LockBalance(ctx context.Context, userID int) (*domain.Balance, error)
	SaveBalance(ctx context.Context, b *domain.Balance) error
	AppendEntries(ctx context.Context, entries []domain.LedgerEntry) error
	MovementExists(ctx context.Context, refType domain.RefType, refID int, kind domain.EntryKind) (bool, error)
	FindEntries(ctx context.Context, refType domain.RefType, refID int, kind domain.EntryKind) ([]domain.LedgerEntry, error)
	ListEntries(ctx context.Context, userID int) ([]domain.LedgerEntry, error)
	UserIDs(ctx context.Context) ([]int, error)
	NextAdjustmentRef(ctx context.Context) (int, error)
	Overview(ctx context.Context) (*domain.BalanceOverview, error)
}

var (
	ErrCommissionNotFound = errors.New("no commission was credited for this transaction")
	ErrAlreadyReleased    = errors.New("commission has already been released")
	ErrNoteRequired       = errors.New("adjustment note is required")
	ErrUserNotFound       = errors.New("user not found")
	ErrCorruptLedger      = errors.New("ledger reduces to a negative bucket")
)

type Service struct {
	repo      Repo
	txManager pg.TXManager
	now       func() time.Time
}

func New(repo Repo, txManager pg.TXManager) *Service {
	return &Service{
		repo:      repo,
		txManager: txManager,
		now:       time.Now,
	}
}

// Move records m and updates the projection in one transaction. A movement
// whose identity is already in the log fails with domain.ErrDuplicateMovement
// and changes nothing.
func (s *Service) Move(ctx context.Context, m domain.Movement) error {
	if err := m.Validate(); err != nil {
		return err
	}
	return s.txManager.Begin(ctx, func(ctx context.Context) error {
		exists, err := s.repo.MovementExists(ctx, m.RefType, m.RefID, m.Kind)
		if err != nil {
			return err
		}
		if exists {
			return domain.ErrDuplicateMovement
		}

		balance, err := s.repo.LockBalance(ctx, m.UserID)
		if err != nil {
			return err
		}
		next, err := balance.Apply(m)
		if err != nil {
			return err
		}

		if err := s.repo.AppendEntries(ctx, m.Entries(s.now())); err != nil {
			return err
		}
		next.UserID = m.UserID
		if err := s.repo.SaveBalance(ctx, &next); err != nil {
			return err
		}

		zap.L().Info("ledger movement recorded",
			zap.Int("user_id", m.UserID),
			zap.String("kind", string(m.Kind)),
			zap.Int("ref_id", m.RefID),
			zap.String("amount", m.Amount.String()),
		)
		return nil
	})
}

func (s *Service) GetBalance(ctx context.Context, userID int) (*domain.Balance, error) {
	balance, err := s.repo.GetBalance(ctx, userID)
	if err != nil {
		zap.L().Error("failed to get balance", zap.Error(err))
		return nil, err
	}
	if balance == nil {
		return &domain.Balance{UserID: userID}, nil
	}
	return balance, nil
}

func (s *Service) Ledger(ctx context.Context, userID int) ([]domain.LedgerEntry, error) {
	entries, err := s.repo.ListEntries(ctx, userID)
	if err != nil {
		zap.L().Error("failed to fetch ledger", zap.Error(err))
		return nil, err
	}
	return entries, nil
}

// ReleaseCommission makes the referral commission earned on a transaction
// withdrawable.
func (s *Service) ReleaseCommission(ctx context.Context, transactionID int) (*domain.Movement, error) {
	entries, err := s.repo.FindEntries(ctx, domain.RefTransaction, transactionID, domain.KindReferralCommission)
	if err != nil {
		zap.L().Error("failed to find commission", zap.Error(err))
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrCommissionNotFound
	}

	credit := entries[0]
	m := domain.CommissionRelease(credit.UserID, credit.Amount, transactionID)
	if err := s.Move(ctx, m); err != nil {
		if errors.Is(err, domain.ErrDuplicateMovement) {
			return nil, ErrAlreadyReleased
		}
		zap.L().Error("failed to release commission", zap.Int("transaction_id", transactionID), zap.Error(err))
		return nil, err
	}
	return &m, nil
}

// Adjust credits amount to the user's available bucket.
func (s *Service) Adjust(ctx context.Context, userID int, amount domain.Money, note string) (*domain.Balance, error) {
	note = strings.TrimSpace(note)
	if note == "" {
		return nil, ErrNoteRequired
	}
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	ref, err := s.repo.NextAdjustmentRef(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.Move(ctx, domain.Adjustment(userID, amount, ref, note)); err != nil {
		if pg.IsForeignKeyViolation(err) {
			return nil, ErrUserNotFound
		}
		zap.L().Error("failed to adjust balance", zap.Int("user_id", userID), zap.Error(err))
		return nil, err
	}
	return s.GetBalance(ctx, userID)
}

func (s *Service) Overview(ctx context.Context) (*domain.BalanceOverview, error) {
	overview, err := s.repo.Overview(ctx)
	if err != nil {
		zap.L().Error("failed to build balance overview", zap.Error(err))
		return nil, err
	}
	return overview, nil
}

func (s *Service) UserIDs(ctx context.Context) ([]int, error) {
	return s.repo.UserIDs(ctx)
}

// Rebuild replaces the user's projection with the reduction of their
// ledger entries. It reports whether the stored projection was wrong.
func (s *Service) Rebuild(ctx context.Context, userID int) (bool, error) {
	var corrected bool
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		balance, err := s.repo.LockBalance(ctx, userID)
		if err != nil {
			return err
		}
		entries, err := s.repo.ListEntries(ctx, userID)
		if err != nil {
			return err
		}

		reduced := domain.Reduce(userID, entries)
		if reduced.Pending < 0 || reduced.Processing < 0 || reduced.Available < 0 || reduced.Withdrawn < 0 {
			return fmt.Errorf("%w: user %d", ErrCorruptLedger, userID)
		}
		if balance.SameTotals(reduced) {
			return nil
		}

		zap.L().Warn("balance projection drifted from ledger",
			zap.Int("user_id", userID),
			zap.String("stored_total", balance.Total().String()),
			zap.String("ledger_total", reduced.Total().String()),
		)
		corrected = true
		return s.repo.SaveBalance(ctx, &reduced)
	})
	if err != nil {
		return false, err
	}
	return corrected, nil
}
