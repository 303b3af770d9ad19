package userrepo

import (
	"context"
	"errors"

	"github.com/GlebRadaev/learnhub/internal/domain"
	"github.com/GlebRadaev/learnhub/internal/pg"
	"github.com/GlebRadaev/learnhub/pkg/paging"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const userColumns = `id, email, full_name, password_hash, role, status, referral_code, created_at, updated_at`

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Email, &u.FullName, &u.PasswordHash, &u.Role, &u.Status, &u.ReferralCode, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (repo *Repository) findOne(ctx context.Context, where string, arg any) (*domain.User, error) {
	user, err := scanUser(repo.db.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE "+where, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find user", zap.Error(err))
		return nil, err
	}
	return user, nil
}

func (repo *Repository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return repo.findOne(ctx, "email = $1", email)
}

func (repo *Repository) FindByID(ctx context.Context, id int) (*domain.User, error) {
	return repo.findOne(ctx, "id = $1", id)
}

func (repo *Repository) FindByReferralCode(ctx context.Context, code string) (*domain.User, error) {
	return repo.findOne(ctx, "referral_code = $1", code)
}

// Create returns pg.ErrDuplicate when the email or referral code is taken.
func (repo *Repository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	query := `
		INSERT INTO users (email, full_name, password_hash, role, status, referral_code)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	err := repo.db.QueryRow(ctx, query, user.Email, user.FullName, user.PasswordHash, user.Role, user.Status, user.ReferralCode).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if pg.IsUniqueViolation(err) {
			return nil, pg.ErrDuplicate
		}
		zap.L().Error("can't save user", zap.Error(err))
		return nil, err
	}
	return user, nil
}

func (repo *Repository) Update(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET email = $1, full_name = $2, role = $3, status = $4, updated_at = NOW()
		WHERE id = $5
	`
	_, err := repo.db.Exec(ctx, query, user.Email, user.FullName, user.Role, user.Status, user.ID)
	if err != nil {
		if pg.IsUniqueViolation(err) {
			return pg.ErrDuplicate
		}
		zap.L().Error("can't update user", zap.Error(err))
		return err
	}
	return nil
}

func (repo *Repository) Delete(ctx context.Context, id int) (bool, error) {
	tag, err := repo.db.Exec(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		zap.L().Error("can't delete user", zap.Error(err))
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// List filters by search (email, full name), role and status.
func (repo *Repository) List(ctx context.Context, q paging.Query) ([]domain.User, int, error) {
	f := &paging.Filter{}
	f.Search(q.Search, "email", "full_name").
		Equal("role", q.Filter("role")).
		Equal("status", q.Filter("status"))

	var total int
	if err := repo.db.QueryRow(ctx, "SELECT COUNT(*) FROM users"+f.Where(), f.Args()...).Scan(&total); err != nil {
		zap.L().Error("can't count users", zap.Error(err))
		return nil, 0, err
	}

	limit, args := f.Limit(q)
	rows, err := repo.db.Query(ctx, "SELECT "+userColumns+" FROM users"+f.Where()+" ORDER BY created_at DESC, id DESC"+limit, args...)
	if err != nil {
		zap.L().Error("can't list users", zap.Error(err))
		return nil, 0, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			zap.L().Error("failed to scan user row", zap.Error(err))
			return nil, 0, err
		}
		users = append(users, *u)
	}
	return users, total, rows.Err()
}
