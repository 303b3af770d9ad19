package transactionrepo

import (
	"context"
	"errors"

	"github.com/GlebRadaev/learnhub/internal/domain"
	"github.com/GlebRadaev/learnhub/internal/pg"
	"github.com/GlebRadaev/learnhub/pkg/paging"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const transactionColumns = `t.id, t.user_id, t.package_id, t.amount, t.payment_method, t.proof, t.status,
	t.rejection_reason, t.referral_code, t.created_at, t.updated_at, p.title, u.email, u.full_name`

const fromTransactions = ` FROM transactions t JOIN packages p ON p.id = t.package_id JOIN users u ON u.id = t.user_id`

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var t domain.Transaction
	err := row.Scan(&t.ID, &t.UserID, &t.PackageID, &t.Amount, &t.PaymentMethod, &t.Proof, &t.Status,
		&t.RejectionReason, &t.ReferralCode, &t.CreatedAt, &t.UpdatedAt, &t.PackageTitle, &t.UserEmail, &t.UserName)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *Repository) Create(ctx context.Context, t *domain.Transaction) (*domain.Transaction, error) {
	query := `
		INSERT INTO transactions (user_id, package_id, amount, payment_method, status, referral_code)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, t.UserID, t.PackageID, t.Amount, t.PaymentMethod, t.Status, t.ReferralCode).
		Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		zap.L().Error("can't save transaction", zap.Error(err))
		return nil, err
	}
	return t, nil
}

func (r *Repository) FindByID(ctx context.Context, id int) (*domain.Transaction, error) {
	return r.findOne(ctx, "SELECT "+transactionColumns+fromTransactions+" WHERE t.id = $1", id)
}

// GetForUpdate locks the transaction row until the surrounding transaction ends.
func (r *Repository) GetForUpdate(ctx context.Context, id int) (*domain.Transaction, error) {
	return r.findOne(ctx, "SELECT "+transactionColumns+fromTransactions+" WHERE t.id = $1 FOR UPDATE OF t", id)
}

func (r *Repository) findOne(ctx context.Context, query string, id int) (*domain.Transaction, error) {
	t, err := scanTransaction(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find transaction", zap.Error(err))
		return nil, err
	}
	return t, nil
}

func (r *Repository) Update(ctx context.Context, t *domain.Transaction) error {
	query := `
		UPDATE transactions
		SET proof = $1, status = $2, rejection_reason = $3, updated_at = $4
		WHERE id = $5
	`
	if _, err := r.db.Exec(ctx, query, t.Proof, t.Status, t.RejectionReason, t.UpdatedAt, t.ID); err != nil {
		zap.L().Error("can't update transaction", zap.Error(err))
		return err
	}
	return nil
}

func (r *Repository) FindByUserID(ctx context.Context, userID int) ([]domain.Transaction, error) {
	return r.query(ctx, "SELECT "+transactionColumns+fromTransactions+" WHERE t.user_id = $1 ORDER BY t.created_at DESC, t.id DESC", userID)
}

// List filters by search (user email, user name, package title), status and payment method.
func (r *Repository) List(ctx context.Context, q paging.Query) ([]domain.Transaction, int, error) {
	f := &paging.Filter{}
	f.Search(q.Search, "u.email", "u.full_name", "p.title").
		Equal("t.status", q.Filter("status")).
		Equal("t.payment_method", q.Filter("payment_method"))

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*)"+fromTransactions+f.Where(), f.Args()...).Scan(&total); err != nil {
		zap.L().Error("can't count transactions", zap.Error(err))
		return nil, 0, err
	}
	limit, args := f.Limit(q)
	items, err := r.query(ctx, "SELECT "+transactionColumns+fromTransactions+f.Where()+" ORDER BY t.created_at DESC, t.id DESC"+limit, args...)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *Repository) query(ctx context.Context, query string, args ...any) ([]domain.Transaction, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		zap.L().Error("can't get transactions", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var transactions []domain.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			zap.L().Error("can't scan transaction", zap.Error(err))
			return nil, err
		}
		transactions = append(transactions, *t)
	}
	return transactions, rows.Err()
}
