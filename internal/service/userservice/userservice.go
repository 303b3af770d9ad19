package userservice

import (
	"context"
	"errors"
	"strings"

	"github.com/GlebRadaev/learnhub/internal/domain"
	"github.com/GlebRadaev/learnhub/internal/pg"
	"github.com/GlebRadaev/learnhub/internal/service/authservice"
	"github.com/GlebRadaev/learnhub/pkg/auth"
	"github.com/GlebRadaev/learnhub/pkg/paging"
	"go.uber.org/zap"
)

//go:generate mockgen -source=userservice.go -destination=mock_userservice.go -package=userservice
type Repo interface {
	FindByID(ctx context.Context, id int) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id int) (bool, error)
	List(ctx context.Context, q paging.Query) ([]domain.User, int, error)
}

type Creator interface {
	CreateUser(ctx context.Context, nu authservice.NewUser) (*domain.User, error)
}

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrSelfAction    = errors.New("you cannot demote, suspend or delete your own account")
	ErrInvalidRole   = errors.New("invalid role")
	ErrInvalidStatus = errors.New("invalid status")
	ErrEmailTaken    = errors.New("email already registered")
)

// Patch holds the fields an admin may change; nil leaves a field as is.
type Patch struct {
	Email    *string
	FullName *string
	Role     *domain.Role
	Status   *domain.UserStatus
}

type Service struct {
	repo    Repo
	creator Creator
}

func New(repo Repo, creator Creator) *Service {
	return &Service{
		repo:    repo,
		creator: creator,
	}
}

func (s *Service) Get(ctx context.Context, id int) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// Account reports the user's current role and whether they may sign in.
func (s *Service) Account(ctx context.Context, id int) (*auth.Account, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil || user == nil {
		return nil, err
	}
	return &auth.Account{Role: string(user.Role), Active: user.Status == domain.UserActive}, nil
}

func (s *Service) List(ctx context.Context, q paging.Query) (paging.Page[domain.User], error) {
	q = q.Normalize()
	items, total, err := s.repo.List(ctx, q)
	if err != nil {
		return paging.Page[domain.User]{}, err
	}
	return paging.NewPage(items, total, q), nil
}

func (s *Service) Create(ctx context.Context, nu authservice.NewUser) (*domain.User, error) {
	user, err := s.creator.CreateUser(ctx, nu)
	if err != nil {
		switch {
		case errors.Is(err, authservice.ErrEmailTaken):
			return nil, ErrEmailTaken
		case errors.Is(err, authservice.ErrInvalidRole):
			return nil, ErrInvalidRole
		}
		return nil, err
	}
	return user, nil
}

// Update applies p to user id on behalf of actorID. An admin keeps their
// own role and status.
func (s *Service) Update(ctx context.Context, actorID, id int, p Patch) (*domain.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if p.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*p.Email))
	}
	if p.FullName != nil {
		user.FullName = strings.TrimSpace(*p.FullName)
	}
	if p.Role != nil {
		if !p.Role.Valid() {
			return nil, ErrInvalidRole
		}
		if id == actorID && *p.Role != user.Role {
			return nil, ErrSelfAction
		}
		user.Role = *p.Role
	}
	if p.Status != nil {
		if !p.Status.Valid() {
			return nil, ErrInvalidStatus
		}
		if id == actorID && *p.Status != user.Status {
			return nil, ErrSelfAction
		}
		user.Status = *p.Status
	}

	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, pg.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	zap.L().Info("user updated", zap.Int("id", id), zap.Int("by", actorID))
	return user, nil
}

func (s *Service) SetStatus(ctx context.Context, actorID, id int, status domain.UserStatus) (*domain.User, error) {
	return s.Update(ctx, actorID, id, Patch{Status: &status})
}

func (s *Service) SetRole(ctx context.Context, actorID, id int, role domain.Role) (*domain.User, error) {
	return s.Update(ctx, actorID, id, Patch{Role: &role})
}

func (s *Service) Delete(ctx context.Context, actorID, id int) error {
	if id == actorID {
		return ErrSelfAction
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrUserNotFound
	}
	zap.L().Info("user deleted", zap.Int("id", id), zap.Int("by", actorID))
	return nil
}
