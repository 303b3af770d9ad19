package withdrawalservice

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/GlebRadaev/learnhub/internal/domain"
	"github.com/GlebRadaev/learnhub/internal/pg"
	"github.com/GlebRadaev/learnhub/pkg/paging"
	"go.uber.org/zap"
)

//go:generate mockgen -source=withdrawalservice.go -destination=mock_withdrawalservice.go -package=withdrawalservice
type Repo interface {
	CreateWithdrawal(ctx context.Context, withdrawal *domain.Withdrawal) (*domain.Withdrawal, error)
	GetForUpdate(ctx context.Context, id int) (*domain.Withdrawal, error)
	UpdateWithdrawal(ctx context.Context, w *domain.Withdrawal) error
	GetWithdrawalsByUserID(ctx context.Context, userID int) ([]domain.Withdrawal, error)
	List(ctx context.Context, q paging.Query) ([]domain.Withdrawal, int, error)
}

type KYCRepo interface {
	FindByUserID(ctx context.Context, userID int) (*domain.KYCSubmission, error)
}

type Ledger interface {
	GetBalance(ctx context.Context, userID int) (*domain.Balance, error)
	Move(ctx context.Context, m domain.Movement) error
}

var (
	ErrKYCNotSubmitted    = errors.New("Please complete KYC verification before requesting a withdrawal")
	ErrKYCPending         = errors.New("Your KYC verification is still under review")
	ErrKYCRejected        = errors.New("Your KYC verification was rejected, please resubmit your documents")
	ErrBelowMinimum       = errors.New("withdrawal amount is below the minimum")
	ErrExceedsBalance     = errors.New("Withdrawal amount cannot exceed available balance")
	ErrWithdrawalNotFound = errors.New("withdrawal not found")
	ErrInvalidAction      = errors.New("action must be process, approve or reject")
)

// MinimumError carries the configured minimum so the message can name it.
type MinimumError struct {
	Min domain.Money
}

func (e *MinimumError) Error() string {
	return "Minimum withdrawal amount is Rs. " + e.Min.Decimal().String()
}

func (e *MinimumError) Is(target error) bool {
	return target == ErrBelowMinimum
}

type Action string

const (
	ActionProcess Action = "process"
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

type Request struct {
	UserID  int
	Amount  domain.Money
	Method  domain.PayoutMethod
	Details domain.PayoutDetails
}

type Service struct {
	repo          Repo
	kycRepo       KYCRepo
	ledger        Ledger
	txManager     pg.TXManager
	minWithdrawal domain.Money
	now           func() time.Time
}

func New(repo Repo, kycRepo KYCRepo, ledger Ledger, txManager pg.TXManager, minWithdrawal domain.Money) *Service {
	return &Service{
		repo:          repo,
		kycRepo:       kycRepo,
		ledger:        ledger,
		txManager:     txManager,
		minWithdrawal: minWithdrawal,
		now:           time.Now,
	}
}

func (s *Service) checkKYC(ctx context.Context, userID int) error {
	kyc, err := s.kycRepo.FindByUserID(ctx, userID)
	if err != nil {
		zap.L().Error("failed to get kyc status", zap.Error(err))
		return err
	}
	if kyc == nil {
		return ErrKYCNotSubmitted
	}
	switch kyc.Status {
	case domain.KYCApproved:
		return nil
	case domain.KYCRejected:
		return ErrKYCRejected
	default:
		return ErrKYCPending
	}
}

// Request creates a pending withdrawal and reserves its amount out of the
// available bucket in the same transaction.
func (s *Service) Request(ctx context.Context, req Request) (*domain.Withdrawal, error) {
	if err := s.checkKYC(ctx, req.UserID); err != nil {
		return nil, err
	}
	if req.Amount < s.minWithdrawal {
		return nil, &MinimumError{Min: s.minWithdrawal}
	}
	if err := req.Details.Validate(req.Method); err != nil {
		return nil, err
	}

	balance, err := s.ledger.GetBalance(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if req.Amount > balance.Available {
		return nil, ErrExceedsBalance
	}

	withdrawal := &domain.Withdrawal{
		UserID: req.UserID,
		Amount: req.Amount,
		Method: req.Method,
		Status: domain.WithdrawalPending,
		PayoutDetails: domain.PayoutDetails{
			AccountName:   strings.TrimSpace(req.Details.AccountName),
			AccountNumber: strings.TrimSpace(req.Details.AccountNumber),
			BankName:      strings.TrimSpace(req.Details.BankName),
		},
	}
	err = s.txManager.Begin(ctx, func(ctx context.Context) error {
		created, err := s.repo.CreateWithdrawal(ctx, withdrawal)
		if err != nil {
			return err
		}
		withdrawal = created
		return s.ledger.Move(ctx, domain.WithdrawalReserve(created))
	})
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientFunds) {
			return nil, ErrExceedsBalance
		}
		zap.L().Error("failed to create withdrawal", zap.Int("user_id", req.UserID), zap.Error(err))
		return nil, err
	}

	zap.L().Info("withdrawal requested", zap.Int("id", withdrawal.ID), zap.Int("user_id", req.UserID))
	return withdrawal, nil
}

// Process applies an admin decision. value is the external transaction id
// for approve and the reason for reject; process ignores it.
func (s *Service) Process(ctx context.Context, id int, action Action, value string) (*domain.Withdrawal, error) {
	switch action {
	case ActionProcess:
	case ActionApprove:
		if strings.TrimSpace(value) == "" {
			return nil, domain.ErrTransactionIDRequired
		}
	case ActionReject:
		if strings.TrimSpace(value) == "" {
			return nil, domain.ErrReasonRequired
		}
	default:
		return nil, ErrInvalidAction
	}

	var result *domain.Withdrawal
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		w, err := s.repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if w == nil {
			return ErrWithdrawalNotFound
		}

		now := s.now()
		var movement *domain.Movement
		switch action {
		case ActionProcess:
			err = w.MarkProcessing(now)
		case ActionApprove:
			if err = w.Approve(value, now); err == nil {
				m := domain.WithdrawalPayout(w)
				movement = &m
			}
		case ActionReject:
			if err = w.Reject(value, now); err == nil {
				m := domain.WithdrawalCancel(w)
				movement = &m
			}
		}
		if err != nil {
			return err
		}

		if err := s.repo.UpdateWithdrawal(ctx, w); err != nil {
			return err
		}
		if movement != nil {
			if err := s.ledger.Move(ctx, *movement); err != nil {
				if errors.Is(err, domain.ErrDuplicateMovement) {
					return domain.ErrWithdrawalFinalized
				}
				return err
			}
		}
		result = w
		return nil
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("withdrawal processed", zap.Int("id", id), zap.String("status", string(result.Status)))
	return result, nil
}

func (s *Service) ListOwn(ctx context.Context, userID int) ([]domain.Withdrawal, error) {
	withdrawals, err := s.repo.GetWithdrawalsByUserID(ctx, userID)
	if err != nil {
		zap.L().Error("failed to fetch withdrawals", zap.Error(err))
		return nil, err
	}
	return withdrawals, nil
}

func (s *Service) List(ctx context.Context, q paging.Query) (paging.Page[domain.Withdrawal], error) {
	q = q.Normalize()
	items, total, err := s.repo.List(ctx, q)
	if err != nil {
		return paging.Page[domain.Withdrawal]{}, err
	}
	return paging.NewPage(items, total, q), nil
}
