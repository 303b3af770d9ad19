package contactrepo

import (
	"context"
	"errors"

	"github.com/GlebRadaev/learnhub/internal/domain"
	"github.com/GlebRadaev/learnhub/internal/pg"
	"github.com/GlebRadaev/learnhub/pkg/paging"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const contactColumns = `id, name, email, subject, message, status, priority, reply, created_at, updated_at`

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func scanContact(row pgx.Row) (*domain.ContactMessage, error) {
	var c domain.ContactMessage
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Subject, &c.Message, &c.Status, &c.Priority, &c.Reply, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repository) Create(ctx context.Context, c *domain.ContactMessage) (*domain.ContactMessage, error) {
	query := `
		INSERT INTO contact_messages (name, email, subject, message, status, priority)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, c.Name, c.Email, c.Subject, c.Message, c.Status, c.Priority).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		zap.L().Error("can't save contact message", zap.Error(err))
		return nil, err
	}
	return c, nil
}

func (r *Repository) FindByID(ctx context.Context, id int) (*domain.ContactMessage, error) {
	c, err := scanContact(r.db.QueryRow(ctx, "SELECT "+contactColumns+" FROM contact_messages WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find contact message", zap.Error(err))
		return nil, err
	}
	return c, nil
}

func (r *Repository) Update(ctx context.Context, c *domain.ContactMessage) error {
	query := `
		UPDATE contact_messages
		SET status = $1, priority = $2, reply = $3, updated_at = NOW()
		WHERE id = $4
	`
	if _, err := r.db.Exec(ctx, query, c.Status, c.Priority, c.Reply, c.ID); err != nil {
		zap.L().Error("can't update contact message", zap.Error(err))
		return err
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id int) (bool, error) {
	tag, err := r.db.Exec(ctx, "DELETE FROM contact_messages WHERE id = $1", id)
	if err != nil {
		zap.L().Error("can't delete contact message", zap.Error(err))
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// List filters by search (name, email, subject), status and priority.
func (r *Repository) List(ctx context.Context, q paging.Query) ([]domain.ContactMessage, int, error) {
	f := &paging.Filter{}
	f.Search(q.Search, "name", "email", "subject").
		Equal("status", q.Filter("status")).
		Equal("priority", q.Filter("priority"))

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM contact_messages"+f.Where(), f.Args()...).Scan(&total); err != nil {
		zap.L().Error("can't count contact messages", zap.Error(err))
		return nil, 0, err
	}

	limit, args := f.Limit(q)
	rows, err := r.db.Query(ctx, "SELECT "+contactColumns+" FROM contact_messages"+f.Where()+" ORDER BY created_at DESC, id DESC"+limit, args...)
	if err != nil {
		zap.L().Error("can't list contact messages", zap.Error(err))
		return nil, 0, err
	}
	defer rows.Close()

	var items []domain.ContactMessage
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			zap.L().Error("can't scan contact message", zap.Error(err))
			return nil, 0, err
		}
		items = append(items, *c)
	}
	return items, total, rows.Err()
}
