package withdrawalrepo

import (
	"context"
	"errors"

	"github.com/GlebRadaev/learnhub/internal/domain"
	"github.com/GlebRadaev/learnhub/internal/pg"
	"github.com/GlebRadaev/learnhub/pkg/paging"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const withdrawalColumns = `w.id, w.user_id, w.amount, w.method, w.status, w.account_name, w.account_number, w.bank_name,
	w.transaction_id, w.rejection_reason, w.created_at, w.updated_at, u.email, u.full_name`

const fromWithdrawals = ` FROM withdrawals w JOIN users u ON u.id = w.user_id`

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func scanWithdrawal(row pgx.Row) (*domain.Withdrawal, error) {
	var w domain.Withdrawal
	err := row.Scan(&w.ID, &w.UserID, &w.Amount, &w.Method, &w.Status, &w.AccountName, &w.AccountNumber, &w.BankName,
		&w.TransactionID, &w.RejectionReason, &w.CreatedAt, &w.UpdatedAt, &w.UserEmail, &w.UserName)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *Repository) CreateWithdrawal(ctx context.Context, withdrawal *domain.Withdrawal) (*domain.Withdrawal, error) {
	query := `
		INSERT INTO withdrawals (user_id, amount, method, status, account_name, account_number, bank_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, withdrawal.UserID, withdrawal.Amount, withdrawal.Method, withdrawal.Status,
		withdrawal.AccountName, withdrawal.AccountNumber, withdrawal.BankName).
		Scan(&withdrawal.ID, &withdrawal.CreatedAt, &withdrawal.UpdatedAt)
	if err != nil {
		zap.L().Error("can't save withdrawal", zap.Error(err))
		return nil, err
	}
	return withdrawal, nil
}

// GetForUpdate locks the withdrawal row until the surrounding transaction ends.
func (r *Repository) GetForUpdate(ctx context.Context, id int) (*domain.Withdrawal, error) {
	w, err := scanWithdrawal(r.db.QueryRow(ctx, "SELECT "+withdrawalColumns+fromWithdrawals+" WHERE w.id = $1 FOR UPDATE OF w", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("failed to fetch withdrawal", zap.Error(err))
		return nil, err
	}
	return w, nil
}

func (r *Repository) UpdateWithdrawal(ctx context.Context, w *domain.Withdrawal) error {
	query := `
		UPDATE withdrawals
		SET status = $1, transaction_id = $2, rejection_reason = $3, updated_at = $4
		WHERE id = $5
	`
	if _, err := r.db.Exec(ctx, query, w.Status, w.TransactionID, w.RejectionReason, w.UpdatedAt, w.ID); err != nil {
		zap.L().Error("can't update withdrawal", zap.Error(err))
		return err
	}
	return nil
}

func (r *Repository) GetWithdrawalsByUserID(ctx context.Context, userID int) ([]domain.Withdrawal, error) {
	query := "SELECT " + withdrawalColumns + fromWithdrawals + " WHERE w.user_id = $1 ORDER BY w.created_at DESC, w.id DESC"
	return r.query(ctx, query, userID)
}

// List filters by search (user email, user name, transaction id), status and method.
func (r *Repository) List(ctx context.Context, q paging.Query) ([]domain.Withdrawal, int, error) {
	f := &paging.Filter{}
	f.Search(q.Search, "u.email", "u.full_name", "w.transaction_id").
		Equal("w.status", q.Filter("status")).
		Equal("w.method", q.Filter("method"))

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*)"+fromWithdrawals+f.Where(), f.Args()...).Scan(&total); err != nil {
		zap.L().Error("failed to count withdrawals", zap.Error(err))
		return nil, 0, err
	}
	limit, args := f.Limit(q)
	items, err := r.query(ctx, "SELECT "+withdrawalColumns+fromWithdrawals+f.Where()+" ORDER BY w.created_at DESC, w.id DESC"+limit, args...)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *Repository) query(ctx context.Context, query string, args ...any) ([]domain.Withdrawal, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		zap.L().Error("failed to fetch withdrawals", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var withdrawals []domain.Withdrawal
	for rows.Next() {
		wd, err := scanWithdrawal(rows)
		if err != nil {
			zap.L().Error("failed to scan withdrawal row", zap.Error(err))
			return nil, err
		}
		withdrawals = append(withdrawals, *wd)
	}

	return withdrawals, rows.Err()
}
