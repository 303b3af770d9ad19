package repo

import (
	"github.com/GlebRadaev/learnhub/internal/pg"
	balancerepo "github.com/GlebRadaev/learnhub/internal/repo/balance-repo"
	catalogrepo "github.com/GlebRadaev/learnhub/internal/repo/catalog-repo"
	contactrepo "github.com/GlebRadaev/learnhub/internal/repo/contact-repo"
	kycrepo "github.com/GlebRadaev/learnhub/internal/repo/kyc-repo"
	transactionrepo "github.com/GlebRadaev/learnhub/internal/repo/transaction-repo"
	userrepo "github.com/GlebRadaev/learnhub/internal/repo/user-repo"
	withdrawalrepo "github.com/GlebRadaev/learnhub/internal/repo/withdrawal-repo"
)

// Repositories are shared by several services, so they are kept concrete
// and each service narrows them to its own Repo interface.
type Repositories struct {
	UserRepo        *userrepo.Repository
	BalanceRepo     *balancerepo.Repository
	WithdrawalRepo  *withdrawalrepo.Repository
	TransactionRepo *transactionrepo.Repository
	KYCRepo         *kycrepo.Repository
	CatalogRepo     *catalogrepo.Repository
	ContactRepo     *contactrepo.Repository
}

func New(conn pg.Database) *Repositories {
	return &Repositories{
		UserRepo:        userrepo.New(conn),
		BalanceRepo:     balancerepo.New(conn),
		WithdrawalRepo:  withdrawalrepo.New(conn),
		TransactionRepo: transactionrepo.New(conn),
		KYCRepo:         kycrepo.New(conn),
		CatalogRepo:     catalogrepo.New(conn),
		ContactRepo:     contactrepo.New(conn),
	}
}
