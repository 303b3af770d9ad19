// Package paymentservice runs checkout: a user orders a package, uploads a
// proof of the manual payment and an admin verifies it.
package paymentservice

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/GlebRadaev/learnhub/internal/domain"
	"github.com/GlebRadaev/learnhub/internal/pg"
	"github.com/GlebRadaev/learnhub/pkg/paging"
	"github.com/GlebRadaev/learnhub/pkg/storage"
	"github.com/GlebRadaev/learnhub/pkg/validate"
	"go.uber.org/zap"
)

const proofFolder = "proofs"

//go:generate mockgen -source=paymentservice.go -destination=mock_paymentservice.go -package=paymentservice
type Repo interface {
	Create(ctx context.Context, t *domain.Transaction) (*domain.Transaction, error)
	FindByID(ctx context.Context, id int) (*domain.Transaction, error)
	GetForUpdate(ctx context.Context, id int) (*domain.Transaction, error)
	Update(ctx context.Context, t *domain.Transaction) error
	FindByUserID(ctx context.Context, userID int) ([]domain.Transaction, error)
	List(ctx context.Context, q paging.Query) ([]domain.Transaction, int, error)
}

type CatalogRepo interface {
	FindPackage(ctx context.Context, id int) (*domain.Package, error)
	FindPaymentMethod(ctx context.Context, code string) (*domain.PaymentMethod, error)
	Enroll(ctx context.Context, e *domain.Enrollment) error
}

type UserRepo interface {
	FindByReferralCode(ctx context.Context, code string) (*domain.User, error)
}

type Ledger interface {
	Move(ctx context.Context, m domain.Movement) error
}

var (
	ErrPackageNotFound       = errors.New("package not found")
	ErrPaymentMethodNotFound = errors.New("payment method is not available")
	ErrInvalidReferral       = errors.New("invalid referral code")
	ErrSelfReferral          = errors.New("you cannot use your own referral code")
	ErrTransactionNotFound   = errors.New("transaction not found")
	ErrProofAlreadyVerified  = errors.New("payment has already been verified")
)

type Service struct {
	repo          Repo
	catalog       CatalogRepo
	users         UserRepo
	ledger        Ledger
	storage       storage.Storage
	txManager     pg.TXManager
	commissionPct int64
	now           func() time.Time
}

func New(repo Repo, catalog CatalogRepo, users UserRepo, ledger Ledger, store storage.Storage, txManager pg.TXManager, commissionPct int64) *Service {
	return &Service{
		repo:          repo,
		catalog:       catalog,
		users:         users,
		ledger:        ledger,
		storage:       store,
		txManager:     txManager,
		commissionPct: commissionPct,
		now:           time.Now,
	}
}

// Create opens a pending transaction for the package at its current price.
func (s *Service) Create(ctx context.Context, userID, packageID int, method, referralCode string) (*domain.Transaction, error) {
	pkg, err := s.catalog.FindPackage(ctx, packageID)
	if err != nil {
		return nil, err
	}
	if pkg == nil || !pkg.IsActive {
		return nil, ErrPackageNotFound
	}

	pm, err := s.catalog.FindPaymentMethod(ctx, method)
	if err != nil {
		return nil, err
	}
	if pm == nil || !pm.IsActive {
		return nil, ErrPaymentMethodNotFound
	}

	referralCode = strings.TrimSpace(referralCode)
	if referralCode != "" {
		referrer, err := s.ValidateReferral(ctx, referralCode)
		if err != nil {
			return nil, err
		}
		if referrer.ID == userID {
			return nil, ErrSelfReferral
		}
	}

	transaction, err := s.repo.Create(ctx, &domain.Transaction{
		UserID:        userID,
		PackageID:     pkg.ID,
		Amount:        pkg.Price,
		PaymentMethod: pm.Code,
		Status:        domain.TransactionPending,
		ReferralCode:  referralCode,
	})
	if err != nil {
		zap.L().Error("can't create transaction", zap.Error(err))
		return nil, err
	}
	transaction.PackageTitle = pkg.Title
	zap.L().Info("transaction created", zap.Int("id", transaction.ID), zap.Int("user_id", userID))
	return transaction, nil
}

// AttachProof stores the proof image and queues the transaction for
// verification. The previous proof file is removed once the new one is
// recorded.
func (s *Service) AttachProof(ctx context.Context, userID, transactionID int, file storage.File) (*domain.Transaction, error) {
	current, err := s.repo.FindByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if current == nil || current.UserID != userID {
		return nil, ErrTransactionNotFound
	}
	if current.Status == domain.TransactionCompleted {
		return nil, ErrProofAlreadyVerified
	}

	key, err := s.storage.Save(ctx, proofFolder, file.Data, file.Ext)
	if err != nil {
		zap.L().Error("can't store payment proof", zap.Error(err))
		return nil, err
	}

	var (
		result   *domain.Transaction
		oldProof string
	)
	err = s.txManager.Begin(ctx, func(ctx context.Context) error {
		t, err := s.repo.GetForUpdate(ctx, transactionID)
		if err != nil {
			return err
		}
		if t == nil {
			return ErrTransactionNotFound
		}
		oldProof = t.Proof
		if err := t.AttachProof(key, s.now()); err != nil {
			if errors.Is(err, domain.ErrTransactionFinalized) {
				return ErrProofAlreadyVerified
			}
			return err
		}
		if err := s.repo.Update(ctx, t); err != nil {
			return err
		}
		result = t
		return nil
	})
	if err != nil {
		s.remove(ctx, key)
		return nil, err
	}
	if oldProof != "" {
		s.remove(ctx, oldProof)
	}
	return result, nil
}

func (s *Service) remove(ctx context.Context, key string) {
	if err := s.storage.Remove(ctx, key); err != nil {
		zap.L().Warn("can't remove upload", zap.String("key", key), zap.Error(err))
	}
}

// Approve completes a verified payment: the buyer is enrolled and the
// referrer, if any, earns a commission into their pending bucket.
func (s *Service) Approve(ctx context.Context, transactionID int) (*domain.Transaction, error) {
	var result *domain.Transaction
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		t, err := s.repo.GetForUpdate(ctx, transactionID)
		if err != nil {
			return err
		}
		if t == nil {
			return ErrTransactionNotFound
		}
		if err := t.Approve(s.now()); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, t); err != nil {
			return err
		}
		if err := s.catalog.Enroll(ctx, &domain.Enrollment{
			UserID:        t.UserID,
			PackageID:     t.PackageID,
			TransactionID: t.ID,
		}); err != nil {
			return err
		}
		if err := s.creditReferrer(ctx, t); err != nil {
			return err
		}
		result = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	zap.L().Info("transaction approved", zap.Int("id", transactionID))
	return result, nil
}

func (s *Service) creditReferrer(ctx context.Context, t *domain.Transaction) error {
	if t.ReferralCode == "" {
		return nil
	}
	referrer, err := s.users.FindByReferralCode(ctx, t.ReferralCode)
	if err != nil {
		return err
	}
	if referrer == nil || referrer.ID == t.UserID {
		zap.L().Warn("referral code no longer resolves", zap.Int("transaction_id", t.ID))
		return nil
	}
	commission := t.Amount.Percent(s.commissionPct)
	if commission <= 0 {
		return nil
	}
	err = s.ledger.Move(ctx, domain.CommissionCredit(referrer.ID, commission, t.ID))
	if errors.Is(err, domain.ErrDuplicateMovement) {
		return nil
	}
	return err
}

func (s *Service) Reject(ctx context.Context, transactionID int, reason string) (*domain.Transaction, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, domain.ErrReasonRequired
	}
	var result *domain.Transaction
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		t, err := s.repo.GetForUpdate(ctx, transactionID)
		if err != nil {
			return err
		}
		if t == nil {
			return ErrTransactionNotFound
		}
		if err := t.Reject(reason, s.now()); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, t); err != nil {
			return err
		}
		result = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	zap.L().Info("transaction rejected", zap.Int("id", transactionID))
	return result, nil
}

// ValidateReferral resolves a referral code to its owner.
func (s *Service) ValidateReferral(ctx context.Context, code string) (*domain.User, error) {
	code = strings.TrimSpace(code)
	if !validate.IsReferralCode(code) {
		return nil, ErrInvalidReferral
	}
	referrer, err := s.users.FindByReferralCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if referrer == nil || referrer.Status != domain.UserActive {
		return nil, ErrInvalidReferral
	}
	return referrer, nil
}

func (s *Service) ListOwn(ctx context.Context, userID int) ([]domain.Transaction, error) {
	return s.repo.FindByUserID(ctx, userID)
}

func (s *Service) List(ctx context.Context, q paging.Query) (paging.Page[domain.Transaction], error) {
	q = q.Normalize()
	items, total, err := s.repo.List(ctx, q)
	if err != nil {
		return paging.Page[domain.Transaction]{}, err
	}
	return paging.NewPage(items, total, q), nil
}
