package kycrepo

import (
	"context"
	"errors"

	"github.com/GlebRadaev/learnhub/internal/domain"
	"github.com/GlebRadaev/learnhub/internal/pg"
	"github.com/GlebRadaev/learnhub/pkg/paging"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const kycColumns = `k.id, k.user_id, k.document_type, k.document_number, k.full_name, k.date_of_birth, k.address, k.phone,
	k.document_front, k.document_back, k.selfie, k.status, k.rejection_reason, k.created_at, k.updated_at, u.email`

const fromKYC = ` FROM kyc_submissions k JOIN users u ON u.id = k.user_id`

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func scanKYC(row pgx.Row) (*domain.KYCSubmission, error) {
	var k domain.KYCSubmission
	err := row.Scan(&k.ID, &k.UserID, &k.DocumentType, &k.DocumentNumber, &k.FullName, &k.DateOfBirth, &k.Address, &k.Phone,
		&k.DocumentFront, &k.DocumentBack, &k.Selfie, &k.Status, &k.RejectionReason, &k.CreatedAt, &k.UpdatedAt, &k.UserEmail)
	if err != nil {
		return nil, err
	}
	return &k, nil
}

func (r *Repository) findOne(ctx context.Context, where string, arg int) (*domain.KYCSubmission, error) {
	k, err := scanKYC(r.db.QueryRow(ctx, "SELECT "+kycColumns+fromKYC+" WHERE "+where, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find kyc submission", zap.Error(err))
		return nil, err
	}
	return k, nil
}

func (r *Repository) FindByUserID(ctx context.Context, userID int) (*domain.KYCSubmission, error) {
	return r.findOne(ctx, "k.user_id = $1", userID)
}

func (r *Repository) FindByID(ctx context.Context, id int) (*domain.KYCSubmission, error) {
	return r.findOne(ctx, "k.id = $1", id)
}

// Save inserts the user's submission or replaces a rejected one, resetting
// the review fields. It returns nil when the stored submission is not
// rejected any more.
func (r *Repository) Save(ctx context.Context, k *domain.KYCSubmission) (*domain.KYCSubmission, error) {
	query := `
		INSERT INTO kyc_submissions (user_id, document_type, document_number, full_name, date_of_birth, address, phone,
			document_front, document_back, selfie, status, rejection_reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, '')
		ON CONFLICT (user_id) DO UPDATE
		SET document_type = EXCLUDED.document_type, document_number = EXCLUDED.document_number,
			full_name = EXCLUDED.full_name, date_of_birth = EXCLUDED.date_of_birth, address = EXCLUDED.address,
			phone = EXCLUDED.phone, document_front = EXCLUDED.document_front, document_back = EXCLUDED.document_back,
			selfie = EXCLUDED.selfie, status = EXCLUDED.status, rejection_reason = '', updated_at = NOW()
		WHERE kyc_submissions.status = $12
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, k.UserID, k.DocumentType, k.DocumentNumber, k.FullName, k.DateOfBirth, k.Address, k.Phone,
		k.DocumentFront, k.DocumentBack, k.Selfie, k.Status, domain.KYCRejected).
		Scan(&k.ID, &k.CreatedAt, &k.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't save kyc submission", zap.Error(err))
		return nil, err
	}
	return k, nil
}

// UpdateReview stores the decision on a pending submission. It reports
// false when the submission was reviewed concurrently.
func (r *Repository) UpdateReview(ctx context.Context, k *domain.KYCSubmission) (bool, error) {
	query := `
		UPDATE kyc_submissions
		SET status = $1, rejection_reason = $2, updated_at = $3
		WHERE id = $4 AND status = $5
	`
	tag, err := r.db.Exec(ctx, query, k.Status, k.RejectionReason, k.UpdatedAt, k.ID, domain.KYCPending)
	if err != nil {
		zap.L().Error("can't update kyc review", zap.Error(err))
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// List filters by search (user email, full name, document number), status and document type.
func (r *Repository) List(ctx context.Context, q paging.Query) ([]domain.KYCSubmission, int, error) {
	f := &paging.Filter{}
	f.Search(q.Search, "u.email", "k.full_name", "k.document_number").
		Equal("k.status", q.Filter("status")).
		Equal("k.document_type", q.Filter("document_type"))

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*)"+fromKYC+f.Where(), f.Args()...).Scan(&total); err != nil {
		zap.L().Error("can't count kyc submissions", zap.Error(err))
		return nil, 0, err
	}

	limit, args := f.Limit(q)
	rows, err := r.db.Query(ctx, "SELECT "+kycColumns+fromKYC+f.Where()+" ORDER BY k.updated_at DESC, k.id DESC"+limit, args...)
	if err != nil {
		zap.L().Error("can't list kyc submissions", zap.Error(err))
		return nil, 0, err
	}
	defer rows.Close()

	var items []domain.KYCSubmission
	for rows.Next() {
		k, err := scanKYC(rows)
		if err != nil {
			zap.L().Error("can't scan kyc submission", zap.Error(err))
			return nil, 0, err
		}
		items = append(items, *k)
	}
	return items, total, rows.Err()
}
