package catalogservice

import (
	"context"
	"errors"
	"strings"

	"github.com/GlebRadaev/learnhub/internal/domain"
	"github.com/GlebRadaev/learnhub/internal/pg"
	"github.com/GlebRadaev/learnhub/pkg/paging"
	"go.uber.org/zap"
)

//go:generate mockgen -source=catalogservice.go -destination=mock_catalogservice.go -package=catalogservice
type Repo interface {
	FindPackage(ctx context.Context, id int) (*domain.Package, error)
	ListPackages(ctx context.Context, q paging.Query) ([]domain.Package, int, error)
	ActivePackages(ctx context.Context) ([]domain.Package, error)
	UserPackages(ctx context.Context, userID int) ([]domain.Package, error)
	CreatePackage(ctx context.Context, p *domain.Package) (*domain.Package, error)
	UpdatePackage(ctx context.Context, p *domain.Package) error
	DeletePackage(ctx context.Context, id int) (bool, error)
	PaymentMethods(ctx context.Context) ([]domain.PaymentMethod, error)
}

var (
	ErrPackageNotFound = errors.New("package not found")
	ErrPackageInUse    = errors.New("package has purchases and cannot be deleted, deactivate it instead")
	ErrInvalidPackage  = errors.New("package needs a title and a positive price")
)

type PackagePatch struct {
	Title       *string
	Description *string
	Price       *domain.Money
	IsActive    *bool
}

type Service struct {
	repo Repo
}

func New(repo Repo) *Service {
	return &Service{repo: repo}
}

func (s *Service) ActivePackages(ctx context.Context) ([]domain.Package, error) {
	return s.repo.ActivePackages(ctx)
}

// GetActivePackage hides inactive packages from the storefront.
func (s *Service) GetActivePackage(ctx context.Context, id int) (*domain.Package, error) {
	p, err := s.repo.FindPackage(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil || !p.IsActive {
		return nil, ErrPackageNotFound
	}
	return p, nil
}

func (s *Service) UserPackages(ctx context.Context, userID int) ([]domain.Package, error) {
	return s.repo.UserPackages(ctx, userID)
}

func (s *Service) PaymentMethods(ctx context.Context) ([]domain.PaymentMethod, error) {
	return s.repo.PaymentMethods(ctx)
}

func (s *Service) ListPackages(ctx context.Context, q paging.Query) (paging.Page[domain.Package], error) {
	q = q.Normalize()
	items, total, err := s.repo.ListPackages(ctx, q)
	if err != nil {
		return paging.Page[domain.Package]{}, err
	}
	return paging.NewPage(items, total, q), nil
}

func validPackage(p *domain.Package) bool {
	return p.Title != "" && p.Price > 0
}

func (s *Service) CreatePackage(ctx context.Context, p domain.Package) (*domain.Package, error) {
	p.Title = strings.TrimSpace(p.Title)
	p.Description = strings.TrimSpace(p.Description)
	if !validPackage(&p) {
		return nil, ErrInvalidPackage
	}
	created, err := s.repo.CreatePackage(ctx, &p)
	if err != nil {
		return nil, err
	}
	zap.L().Info("package created", zap.Int("id", created.ID))
	return created, nil
}

func (s *Service) UpdatePackage(ctx context.Context, id int, patch PackagePatch) (*domain.Package, error) {
	p, err := s.repo.FindPackage(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrPackageNotFound
	}

	if patch.Title != nil {
		p.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		p.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.IsActive != nil {
		p.IsActive = *patch.IsActive
	}
	if !validPackage(p) {
		return nil, ErrInvalidPackage
	}

	if err := s.repo.UpdatePackage(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) DeletePackage(ctx context.Context, id int) error {
	deleted, err := s.repo.DeletePackage(ctx, id)
	if err != nil {
		if pg.IsForeignKeyViolation(err) {
			return ErrPackageInUse
		}
		return err
	}
	if !deleted {
		return ErrPackageNotFound
	}
	zap.L().Info("package deleted", zap.Int("id", id))
	return nil
}
