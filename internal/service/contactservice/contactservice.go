package contactservice

import (
	"context"
	"errors"
	"strings"

	"github.com/GlebRadaev/learnhub/internal/domain"
	"github.com/GlebRadaev/learnhub/pkg/paging"
	"go.uber.org/zap"
)

//go:generate mockgen -source=contactservice.go -destination=mock_contactservice.go -package=contactservice
type Repo interface {
	Create(ctx context.Context, c *domain.ContactMessage) (*domain.ContactMessage, error)
	FindByID(ctx context.Context, id int) (*domain.ContactMessage, error)
	Update(ctx context.Context, c *domain.ContactMessage) error
	Delete(ctx context.Context, id int) (bool, error)
	List(ctx context.Context, q paging.Query) ([]domain.ContactMessage, int, error)
}

var (
	ErrMessageNotFound = errors.New("contact message not found")
	ErrInvalidStatus   = errors.New("invalid contact status")
	ErrInvalidPriority = errors.New("invalid contact priority")
)

type Patch struct {
	Status   *domain.ContactStatus
	Priority *domain.ContactPriority
	Reply    *string
}

type Service struct {
	repo Repo
}

func New(repo Repo) *Service {
	return &Service{repo: repo}
}

func (s *Service) Submit(ctx context.Context, name, email, subject, message string) (*domain.ContactMessage, error) {
	c, err := s.repo.Create(ctx, &domain.ContactMessage{
		Name:     strings.TrimSpace(name),
		Email:    strings.TrimSpace(email),
		Subject:  strings.TrimSpace(subject),
		Message:  strings.TrimSpace(message),
		Status:   domain.ContactUnread,
		Priority: domain.PriorityNormal,
	})
	if err != nil {
		return nil, err
	}
	zap.L().Info("contact message received", zap.Int("id", c.ID))
	return c, nil
}

func (s *Service) List(ctx context.Context, q paging.Query) (paging.Page[domain.ContactMessage], error) {
	q = q.Normalize()
	items, total, err := s.repo.List(ctx, q)
	if err != nil {
		return paging.Page[domain.ContactMessage]{}, err
	}
	return paging.NewPage(items, total, q), nil
}

// Get returns the message, marking an unread one as read.
func (s *Service) Get(ctx context.Context, id int) (*domain.ContactMessage, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrMessageNotFound
	}
	if c.MarkRead() {
		if err := s.repo.Update(ctx, c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Update applies the patch. The reply is applied last so a non-empty reply
// always leaves the message replied.
func (s *Service) Update(ctx context.Context, id int, p Patch) (*domain.ContactMessage, error) {
	if p.Status != nil && !p.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return nil, ErrInvalidPriority
	}

	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrMessageNotFound
	}

	if p.Status != nil {
		c.Status = *p.Status
	}
	if p.Priority != nil {
		c.Priority = *p.Priority
	}
	if p.Reply != nil {
		c.SetReply(strings.TrimSpace(*p.Reply))
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) Delete(ctx context.Context, id int) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrMessageNotFound
	}
	return nil
}
