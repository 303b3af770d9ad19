// Package balancerepo stores the ledger log and the per-user balance
// projection derived from it.
package balancerepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/GlebRadaev/learnhub/internal/domain"
	"github.com/GlebRadaev/learnhub/internal/pg"
	"go.uber.org/zap"
)

const (
	balanceColumns = `id, user_id, pending, processing, available, withdrawn, updated_at`
	entryColumns   = `id, user_id, bucket, amount, kind, ref_type, ref_id, note, created_at`
)

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func scanBalance(row pgx.Row) (*domain.Balance, error) {
	var b domain.Balance
	if err := row.Scan(&b.ID, &b.UserID, &b.Pending, &b.Processing, &b.Available, &b.Withdrawn, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *Repository) GetBalance(ctx context.Context, userID int) (*domain.Balance, error) {
	b, err := scanBalance(r.db.QueryRow(ctx, "SELECT "+balanceColumns+" FROM balances WHERE user_id = $1", userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("failed to get user balance", zap.Error(err))
		return nil, err
	}
	return b, nil
}

// LockBalance creates the projection row when missing and locks it for the
// rest of the surrounding transaction.
func (r *Repository) LockBalance(ctx context.Context, userID int) (*domain.Balance, error) {
	if _, err := r.db.Exec(ctx, "INSERT INTO balances (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING", userID); err != nil {
		zap.L().Error("failed to create user balance", zap.Error(err))
		return nil, err
	}
	b, err := scanBalance(r.db.QueryRow(ctx, "SELECT "+balanceColumns+" FROM balances WHERE user_id = $1 FOR UPDATE", userID))
	if err != nil {
		zap.L().Error("failed to lock user balance", zap.Error(err))
		return nil, err
	}
	return b, nil
}

func (r *Repository) SaveBalance(ctx context.Context, b *domain.Balance) error {
	query := `
		INSERT INTO balances (user_id, pending, processing, available, withdrawn)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE
		SET pending = EXCLUDED.pending, processing = EXCLUDED.processing,
			available = EXCLUDED.available, withdrawn = EXCLUDED.withdrawn, updated_at = NOW()
	`
	_, err := r.db.Exec(ctx, query, b.UserID, b.Pending, b.Processing, b.Available, b.Withdrawn)
	if err != nil {
		zap.L().Error("failed to save user balance", zap.Error(err))
		return err
	}
	return nil
}

// AppendEntries returns domain.ErrDuplicateMovement when the movement was
// already recorded.
func (r *Repository) AppendEntries(ctx context.Context, entries []domain.LedgerEntry) error {
	query := `
		INSERT INTO ledger_entries (user_id, bucket, amount, kind, ref_type, ref_id, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	for _, e := range entries {
		_, err := r.db.Exec(ctx, query, e.UserID, e.Bucket, e.Amount, e.Kind, e.RefType, e.RefID, e.Note, e.CreatedAt)
		if err != nil {
			if pg.IsUniqueViolation(err) {
				return domain.ErrDuplicateMovement
			}
			zap.L().Error("failed to append ledger entry", zap.Error(err))
			return err
		}
	}
	return nil
}

func (r *Repository) MovementExists(ctx context.Context, refType domain.RefType, refID int, kind domain.EntryKind) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM ledger_entries WHERE ref_type = $1 AND ref_id = $2 AND kind = $3)`
	if err := r.db.QueryRow(ctx, query, refType, refID, kind).Scan(&exists); err != nil {
		zap.L().Error("failed to check ledger movement", zap.Error(err))
		return false, err
	}
	return exists, nil
}

func (r *Repository) FindEntries(ctx context.Context, refType domain.RefType, refID int, kind domain.EntryKind) ([]domain.LedgerEntry, error) {
	query := "SELECT " + entryColumns + " FROM ledger_entries WHERE ref_type = $1 AND ref_id = $2 AND kind = $3 ORDER BY id"
	return r.queryEntries(ctx, query, refType, refID, kind)
}

func (r *Repository) ListEntries(ctx context.Context, userID int) ([]domain.LedgerEntry, error) {
	query := "SELECT " + entryColumns + " FROM ledger_entries WHERE user_id = $1 ORDER BY created_at DESC, id DESC"
	return r.queryEntries(ctx, query, userID)
}

func (r *Repository) queryEntries(ctx context.Context, query string, args ...any) ([]domain.LedgerEntry, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		zap.L().Error("failed to fetch ledger entries", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		var e domain.LedgerEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Bucket, &e.Amount, &e.Kind, &e.RefType, &e.RefID, &e.Note, &e.CreatedAt); err != nil {
			zap.L().Error("failed to scan ledger entry", zap.Error(err))
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// UserIDs lists every user that has a ledger entry or a balance row.
func (r *Repository) UserIDs(ctx context.Context) ([]int, error) {
	query := `
		SELECT user_id FROM ledger_entries
		UNION
		SELECT user_id FROM balances
		ORDER BY user_id
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		zap.L().Error("failed to list balance owners", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *Repository) NextAdjustmentRef(ctx context.Context) (int, error) {
	var ref int
	if err := r.db.QueryRow(ctx, "SELECT nextval('ledger_adjustment_seq')").Scan(&ref); err != nil {
		zap.L().Error("failed to allocate adjustment ref", zap.Error(err))
		return 0, err
	}
	return ref, nil
}

func (r *Repository) Overview(ctx context.Context) (*domain.BalanceOverview, error) {
	var o domain.BalanceOverview
	query := `
		SELECT COALESCE(SUM(pending), 0)::BIGINT, COALESCE(SUM(processing), 0)::BIGINT,
			COALESCE(SUM(available), 0)::BIGINT, COALESCE(SUM(withdrawn), 0)::BIGINT, COUNT(*)
		FROM balances
	`
	err := r.db.QueryRow(ctx, query).Scan(&o.Pending, &o.Processing, &o.Available, &o.Withdrawn, &o.Users)
	if err != nil {
		zap.L().Error("failed to sum balances", zap.Error(err))
		return nil, err
	}
	query = `
		SELECT COUNT(*), COALESCE(SUM(amount), 0)::BIGINT
		FROM withdrawals
		WHERE status IN ('pending', 'processing')
	`
	if err := r.db.QueryRow(ctx, query).Scan(&o.PendingWithdrawals, &o.PendingWithdrawalAmount); err != nil {
		zap.L().Error("failed to sum open withdrawals", zap.Error(err))
		return nil, err
	}
	return &o, nil
}
