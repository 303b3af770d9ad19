package repo

import (
	"testing"

	"github.com/GlebRadaev/learnhub/internal/pg"
	balancerepo "github.com/GlebRadaev/learnhub/internal/repo/balance-repo"
	catalogrepo "github.com/GlebRadaev/learnhub/internal/repo/catalog-repo"
	contactrepo "github.com/GlebRadaev/learnhub/internal/repo/contact-repo"
	kycrepo "github.com/GlebRadaev/learnhub/internal/repo/kyc-repo"
	transactionrepo "github.com/GlebRadaev/learnhub/internal/repo/transaction-repo"
	userrepo "github.com/GlebRadaev/learnhub/internal/repo/user-repo"
	withdrawalrepo "github.com/GlebRadaev/learnhub/internal/repo/withdrawal-repo"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
)

func NewMock(t *testing.T) (*Repositories, pgxmock.PgxPoolIface) {
	mockDB, err := pgxmock.NewPool()
	assert.NoError(t, err)
	repo := New(pg.New(mockDB))
	defer mockDB.Close()

	return repo, mockDB
}

func TestNew(t *testing.T) {
	repo, mock := NewMock(t)

	assert.IsType(t, &userrepo.Repository{}, repo.UserRepo)
	assert.IsType(t, &balancerepo.Repository{}, repo.BalanceRepo)
	assert.IsType(t, &withdrawalrepo.Repository{}, repo.WithdrawalRepo)
	assert.IsType(t, &transactionrepo.Repository{}, repo.TransactionRepo)
	assert.IsType(t, &kycrepo.Repository{}, repo.KYCRepo)
	assert.IsType(t, &catalogrepo.Repository{}, repo.CatalogRepo)
	assert.IsType(t, &contactrepo.Repository{}, repo.ContactRepo)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unmet expectations: %v", err)
	}
}
