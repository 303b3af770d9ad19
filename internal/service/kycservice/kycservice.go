package kycservice

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/GlebRadaev/learnhub/internal/domain"
	"github.com/GlebRadaev/learnhub/pkg/paging"
	"github.com/GlebRadaev/learnhub/pkg/storage"
	"go.uber.org/zap"
)

const kycFolder = "kyc"

//go:generate mockgen -source=kycservice.go -destination=mock_kycservice.go -package=kycservice
type Repo interface {
	FindByUserID(ctx context.Context, userID int) (*domain.KYCSubmission, error)
	FindByID(ctx context.Context, id int) (*domain.KYCSubmission, error)
	Save(ctx context.Context, k *domain.KYCSubmission) (*domain.KYCSubmission, error)
	UpdateReview(ctx context.Context, k *domain.KYCSubmission) (bool, error)
	List(ctx context.Context, q paging.Query) ([]domain.KYCSubmission, int, error)
}

var (
	ErrInvalidDocumentType = errors.New("invalid document type")
	ErrDocumentsRequired   = errors.New("document front and selfie are required")
	ErrAlreadySubmitted    = errors.New("KYC verification is already under review")
	ErrAlreadyApproved     = errors.New("KYC verification is already approved")
	ErrKYCNotFound         = errors.New("kyc submission not found")
	ErrNotPending          = errors.New("kyc submission has already been reviewed")
)

type Submission struct {
	DocumentType   domain.DocumentType
	DocumentNumber string
	FullName       string
	DateOfBirth    time.Time
	Address        string
	Phone          string
	Front          *storage.File
	Back           *storage.File
	Selfie         *storage.File
}

type Service struct {
	repo    Repo
	storage storage.Storage
	now     func() time.Time
}

func New(repo Repo, store storage.Storage) *Service {
	return &Service{
		repo:    repo,
		storage: store,
		now:     time.Now,
	}
}

// Submit stores the documents and records a pending submission. A rejected
// submission is replaced; a pending or approved one blocks a new one.
func (s *Service) Submit(ctx context.Context, userID int, sub Submission) (*domain.KYCSubmission, error) {
	if !sub.DocumentType.Valid() {
		return nil, ErrInvalidDocumentType
	}
	if sub.Front == nil || sub.Selfie == nil {
		return nil, ErrDocumentsRequired
	}

	existing, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !existing.CanSubmit() {
		if existing.Status == domain.KYCApproved {
			return nil, ErrAlreadyApproved
		}
		return nil, ErrAlreadySubmitted
	}

	var saved []string
	store := func(f *storage.File) (string, error) {
		if f == nil {
			return "", nil
		}
		key, err := s.storage.Save(ctx, kycFolder, f.Data, f.Ext)
		if err != nil {
			return "", err
		}
		saved = append(saved, key)
		return key, nil
	}

	k := &domain.KYCSubmission{
		UserID:         userID,
		DocumentType:   sub.DocumentType,
		DocumentNumber: strings.TrimSpace(sub.DocumentNumber),
		FullName:       strings.TrimSpace(sub.FullName),
		DateOfBirth:    sub.DateOfBirth,
		Address:        strings.TrimSpace(sub.Address),
		Phone:          strings.TrimSpace(sub.Phone),
		Status:         domain.KYCPending,
	}
	if k.DocumentFront, err = store(sub.Front); err == nil {
		if k.DocumentBack, err = store(sub.Back); err == nil {
			k.Selfie, err = store(sub.Selfie)
		}
	}
	if err == nil {
		k, err = s.repo.Save(ctx, k)
		if err == nil && k == nil {
			err = ErrAlreadySubmitted
		}
	}
	if err != nil {
		zap.L().Error("can't save kyc submission", zap.Int("user_id", userID), zap.Error(err))
		s.remove(ctx, saved...)
		return nil, err
	}

	if existing != nil {
		s.remove(ctx, existing.DocumentFront, existing.DocumentBack, existing.Selfie)
	}
	zap.L().Info("kyc submitted", zap.Int("user_id", userID))
	return k, nil
}

func (s *Service) remove(ctx context.Context, keys ...string) {
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := s.storage.Remove(ctx, key); err != nil {
			zap.L().Warn("can't remove upload", zap.String("key", key), zap.Error(err))
		}
	}
}

// Get returns nil when the user never submitted.
func (s *Service) Get(ctx context.Context, userID int) (*domain.KYCSubmission, error) {
	return s.repo.FindByUserID(ctx, userID)
}

func (s *Service) Review(ctx context.Context, id int, status domain.KYCStatus, reason string) (*domain.KYCSubmission, error) {
	k, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if k == nil {
		return nil, ErrKYCNotFound
	}
	if k.Status != domain.KYCPending {
		return nil, ErrNotPending
	}
	if err := k.Review(status, reason, s.now()); err != nil {
		return nil, err
	}
	ok, err := s.repo.UpdateReview(ctx, k)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotPending
	}
	zap.L().Info("kyc reviewed", zap.Int("id", id), zap.String("status", string(status)))
	return k, nil
}

func (s *Service) List(ctx context.Context, q paging.Query) (paging.Page[domain.KYCSubmission], error) {
	q = q.Normalize()
	items, total, err := s.repo.List(ctx, q)
	if err != nil {
		return paging.Page[domain.KYCSubmission]{}, err
	}
	return paging.NewPage(items, total, q), nil
}
