// Package catalogrepo stores course packages, the payment methods accepted
// for them and the enrollments that unlock them.
package catalogrepo

import (
	"context"
	"errors"

	"github.com/GlebRadaev/learnhub/internal/domain"
	"github.com/GlebRadaev/learnhub/internal/pg"
	"github.com/GlebRadaev/learnhub/pkg/paging"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const packageColumns = `id, title, description, price, is_active, created_at, updated_at`

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func scanPackage(row pgx.Row) (*domain.Package, error) {
	var p domain.Package
	if err := row.Scan(&p.ID, &p.Title, &p.Description, &p.Price, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repository) FindPackage(ctx context.Context, id int) (*domain.Package, error) {
	p, err := scanPackage(r.db.QueryRow(ctx, "SELECT "+packageColumns+" FROM packages WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find package", zap.Error(err))
		return nil, err
	}
	return p, nil
}

// ListPackages filters by search (title, description) and the "active" filter ("true"/"false").
func (r *Repository) ListPackages(ctx context.Context, q paging.Query) ([]domain.Package, int, error) {
	f := &paging.Filter{}
	f.Search(q.Search, "title", "description")
	switch q.Filter("active") {
	case "true":
		f.Equal("is_active", true)
	case "false":
		f.Equal("is_active", false)
	}

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM packages"+f.Where(), f.Args()...).Scan(&total); err != nil {
		zap.L().Error("can't count packages", zap.Error(err))
		return nil, 0, err
	}
	limit, args := f.Limit(q)
	items, err := r.queryPackages(ctx, "SELECT "+packageColumns+" FROM packages"+f.Where()+" ORDER BY created_at DESC, id DESC"+limit, args...)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *Repository) ActivePackages(ctx context.Context) ([]domain.Package, error) {
	return r.queryPackages(ctx, "SELECT "+packageColumns+" FROM packages WHERE is_active = TRUE ORDER BY price, id")
}

func (r *Repository) UserPackages(ctx context.Context, userID int) ([]domain.Package, error) {
	query := `
		SELECT p.id, p.title, p.description, p.price, p.is_active, p.created_at, p.updated_at
		FROM enrollments e JOIN packages p ON p.id = e.package_id
		WHERE e.user_id = $1
		ORDER BY e.created_at DESC
	`
	return r.queryPackages(ctx, query, userID)
}

func (r *Repository) queryPackages(ctx context.Context, query string, args ...any) ([]domain.Package, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		zap.L().Error("can't get packages", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var packages []domain.Package
	for rows.Next() {
		p, err := scanPackage(rows)
		if err != nil {
			zap.L().Error("can't scan package", zap.Error(err))
			return nil, err
		}
		packages = append(packages, *p)
	}
	return packages, rows.Err()
}

func (r *Repository) CreatePackage(ctx context.Context, p *domain.Package) (*domain.Package, error) {
	query := `
		INSERT INTO packages (title, description, price, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`
	if err := r.db.QueryRow(ctx, query, p.Title, p.Description, p.Price, p.IsActive).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		zap.L().Error("can't save package", zap.Error(err))
		return nil, err
	}
	return p, nil
}

func (r *Repository) UpdatePackage(ctx context.Context, p *domain.Package) error {
	query := `
		UPDATE packages
		SET title = $1, description = $2, price = $3, is_active = $4, updated_at = NOW()
		WHERE id = $5
	`
	if _, err := r.db.Exec(ctx, query, p.Title, p.Description, p.Price, p.IsActive, p.ID); err != nil {
		zap.L().Error("can't update package", zap.Error(err))
		return err
	}
	return nil
}

// DeletePackage returns false when nothing was deleted. Packages that were
// already purchased are referenced by transactions and cannot be removed.
func (r *Repository) DeletePackage(ctx context.Context, id int) (bool, error) {
	tag, err := r.db.Exec(ctx, "DELETE FROM packages WHERE id = $1", id)
	if err != nil {
		zap.L().Error("can't delete package", zap.Error(err))
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *Repository) PaymentMethods(ctx context.Context) ([]domain.PaymentMethod, error) {
	rows, err := r.db.Query(ctx, "SELECT code, name, instructions, is_active FROM payment_methods WHERE is_active = TRUE ORDER BY name")
	if err != nil {
		zap.L().Error("can't get payment methods", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var methods []domain.PaymentMethod
	for rows.Next() {
		var m domain.PaymentMethod
		if err := rows.Scan(&m.Code, &m.Name, &m.Instructions, &m.IsActive); err != nil {
			zap.L().Error("can't scan payment method", zap.Error(err))
			return nil, err
		}
		methods = append(methods, m)
	}
	return methods, rows.Err()
}

func (r *Repository) FindPaymentMethod(ctx context.Context, code string) (*domain.PaymentMethod, error) {
	var m domain.PaymentMethod
	err := r.db.QueryRow(ctx, "SELECT code, name, instructions, is_active FROM payment_methods WHERE code = $1", code).
		Scan(&m.Code, &m.Name, &m.Instructions, &m.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find payment method", zap.Error(err))
		return nil, err
	}
	return &m, nil
}

// Enroll is idempotent per user and package.
func (r *Repository) Enroll(ctx context.Context, e *domain.Enrollment) error {
	query := `
		INSERT INTO enrollments (user_id, package_id, transaction_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, package_id) DO NOTHING
	`
	if _, err := r.db.Exec(ctx, query, e.UserID, e.PackageID, e.TransactionID); err != nil {
		zap.L().Error("can't save enrollment", zap.Error(err))
		return err
	}
	return nil
}
