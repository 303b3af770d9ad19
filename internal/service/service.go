package service

import (
	"github.com/GlebRadaev/learnhub/internal/balancesync"
	"github.com/GlebRadaev/learnhub/internal/config"
	"github.com/GlebRadaev/learnhub/internal/domain"
	"github.com/GlebRadaev/learnhub/internal/handlers/auth"
	"github.com/GlebRadaev/learnhub/internal/handlers/balance"
	"github.com/GlebRadaev/learnhub/internal/handlers/catalog"
	"github.com/GlebRadaev/learnhub/internal/handlers/contacts"
	"github.com/GlebRadaev/learnhub/internal/handlers/kyc"
	"github.com/GlebRadaev/learnhub/internal/handlers/payments"
	"github.com/GlebRadaev/learnhub/internal/handlers/users"
	"github.com/GlebRadaev/learnhub/internal/handlers/withdrawals"
	"github.com/GlebRadaev/learnhub/internal/pg"
	"github.com/GlebRadaev/learnhub/internal/repo"
	"github.com/GlebRadaev/learnhub/internal/service/authservice"
	"github.com/GlebRadaev/learnhub/internal/service/balanceservice"
	"github.com/GlebRadaev/learnhub/internal/service/catalogservice"
	"github.com/GlebRadaev/learnhub/internal/service/contactservice"
	"github.com/GlebRadaev/learnhub/internal/service/kycservice"
	"github.com/GlebRadaev/learnhub/internal/service/paymentservice"
	"github.com/GlebRadaev/learnhub/internal/service/userservice"
	"github.com/GlebRadaev/learnhub/internal/service/withdrawalservice"
	pkgauth "github.com/GlebRadaev/learnhub/pkg/auth"
	"github.com/GlebRadaev/learnhub/pkg/storage"
)

type Services struct {
	AuthService       auth.Service
	UserService       users.Service
	CatalogService    catalog.Service
	PaymentService    payments.Service
	KYCService        kyc.Service
	WithdrawalService withdrawals.Service
	BalanceService    balance.Service
	BalanceSync       balance.Syncer
	ContactService    contacts.Service
	Accounts          pkgauth.AccountLookup
}

// Deps are the infrastructure pieces services share.
type Deps struct {
	TXManager pg.TXManager
	Storage   storage.Storage
	Hash      pkgauth.HashServiceInterface
	JWT       pkgauth.JWTServiceInterface
}

func New(repo *repo.Repositories, deps Deps, cfg *config.Config) *Services {
	balanceService := balanceservice.New(repo.BalanceRepo, deps.TXManager)
	authService := authservice.New(repo.UserRepo, deps.Hash, deps.JWT, cfg.JWTTTL)
	userService := userservice.New(repo.UserRepo, authService)

	return &Services{
		AuthService:    authService,
		UserService:    userService,
		CatalogService: catalogservice.New(repo.CatalogRepo),
		PaymentService: paymentservice.New(
			repo.TransactionRepo, repo.CatalogRepo, repo.UserRepo,
			balanceService, deps.Storage, deps.TXManager, cfg.CommissionPct,
		),
		KYCService: kycservice.New(repo.KYCRepo, deps.Storage),
		WithdrawalService: withdrawalservice.New(
			repo.WithdrawalRepo, repo.KYCRepo, balanceService,
			deps.TXManager, domain.Rupees(cfg.MinWithdrawal),
		),
		BalanceService: balanceService,
		BalanceSync:    balancesync.New(balanceService, cfg.SyncWorkers),
		ContactService: contactservice.New(repo.ContactRepo),
		Accounts:       userService,
	}
}
