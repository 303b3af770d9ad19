package handlers

import (
	"net/http"
	"time"

	_ "github.com/GlebRadaev/learnhub/docs"
	authhandlers "github.com/GlebRadaev/learnhub/internal/handlers/auth"
	balancehandlers "github.com/GlebRadaev/learnhub/internal/handlers/balance"
	cataloghandlers "github.com/GlebRadaev/learnhub/internal/handlers/catalog"
	contacthandlers "github.com/GlebRadaev/learnhub/internal/handlers/contacts"
	kychandlers "github.com/GlebRadaev/learnhub/internal/handlers/kyc"
	paymenthandlers "github.com/GlebRadaev/learnhub/internal/handlers/payments"
	userhandlers "github.com/GlebRadaev/learnhub/internal/handlers/users"
	withdrawalhandlers "github.com/GlebRadaev/learnhub/internal/handlers/withdrawals"
	"github.com/GlebRadaev/learnhub/internal/service"
	"github.com/GlebRadaev/learnhub/pkg/auth"
	"github.com/GlebRadaev/learnhub/pkg/idempotency"
	pkgmiddleware "github.com/GlebRadaev/learnhub/pkg/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

//go:generate mockgen -source=handlers.go -destination=mock_handlers.go -package=handlers
type AuthHandler interface {
	Register(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
}

type UserHandler interface {
	Me(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	SetStatus(w http.ResponseWriter, r *http.Request)
	SetRole(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type CatalogHandler interface {
	Packages(w http.ResponseWriter, r *http.Request)
	Package(w http.ResponseWriter, r *http.Request)
	UserPackages(w http.ResponseWriter, r *http.Request)
	PaymentMethods(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type PaymentHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	UploadProof(w http.ResponseWriter, r *http.Request)
	ListOwn(w http.ResponseWriter, r *http.Request)
	ValidateReferral(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
}

type KYCHandler interface {
	Submit(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Review(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
}

type WithdrawalHandler interface {
	Request(w http.ResponseWriter, r *http.Request)
	ListOwn(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Process(w http.ResponseWriter, r *http.Request)
}

type BalanceHandler interface {
	GetBalance(w http.ResponseWriter, r *http.Request)
	Ledger(w http.ResponseWriter, r *http.Request)
	ReleaseCommission(w http.ResponseWriter, r *http.Request)
	Adjust(w http.ResponseWriter, r *http.Request)
	Overview(w http.ResponseWriter, r *http.Request)
	Sync(w http.ResponseWriter, r *http.Request)
}

type ContactHandler interface {
	Submit(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

// Options configure the HTTP surface. A nil Idempotency store disables
// response replay.
type Options struct {
	MaxUploadBytes int64
	UploadDir      string
	CORSOrigins    []string
	Idempotency    idempotency.Store
	IdempotencyTTL time.Duration
}

type Handlers struct {
	AuthHandler       AuthHandler
	UserHandler       UserHandler
	CatalogHandler    CatalogHandler
	PaymentHandler    PaymentHandler
	KYCHandler        KYCHandler
	WithdrawalHandler WithdrawalHandler
	BalanceHandler    BalanceHandler
	ContactHandler    ContactHandler

	jwt      auth.JWTServiceInterface
	accounts auth.AccountLookup
	opts     Options
}

func New(s *service.Services, jwt auth.JWTServiceInterface, opts Options) *Handlers {
	return &Handlers{
		AuthHandler:       authhandlers.New(s.AuthService),
		UserHandler:       userhandlers.New(s.UserService),
		CatalogHandler:    cataloghandlers.New(s.CatalogService),
		PaymentHandler:    paymenthandlers.New(s.PaymentService, opts.MaxUploadBytes),
		KYCHandler:        kychandlers.New(s.KYCService, opts.MaxUploadBytes),
		WithdrawalHandler: withdrawalhandlers.New(s.WithdrawalService),
		BalanceHandler:    balancehandlers.New(s.BalanceService, s.BalanceSync),
		ContactHandler:    contacthandlers.New(s.ContactService),
		jwt:               jwt,
		accounts:          s.Accounts,
		opts:              opts,
	}
}

func (h *Handlers) InitRoutes(r chi.Router) chi.Router {
	r.Use(
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		pkgmiddleware.CORS(h.opts.CORSOrigins),
	)
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("doc.json"),
	))

	idem := idempotency.Middleware(h.opts.Idempotency, h.opts.IdempotencyTTL)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", h.AuthHandler.Register)
		r.Post("/auth/login", h.AuthHandler.Login)
		r.Get("/packages", h.CatalogHandler.Packages)
		r.Get("/packages/{id}", h.CatalogHandler.Package)
		r.Get("/payment-methods", h.CatalogHandler.PaymentMethods)
		r.Get("/referral/validate", h.PaymentHandler.ValidateReferral)
		r.Post("/contact", h.ContactHandler.Submit)

		r.Group(func(r chi.Router) {
			r.Use(auth.AuthMiddleware(h.jwt, h.accounts))

			r.Get("/user/me", h.UserHandler.Me)
			r.Get("/user/packages", h.CatalogHandler.UserPackages)

			r.Route("/transactions", func(r chi.Router) {
				r.Get("/", h.PaymentHandler.ListOwn)
				r.Post("/", h.PaymentHandler.Create)
				r.Post("/{id}/proof", h.PaymentHandler.UploadProof)
			})
			r.Get("/kyc", h.KYCHandler.Get)
			r.Post("/kyc", h.KYCHandler.Submit)
			r.Route("/affiliate", func(r chi.Router) {
				r.Get("/balance", h.BalanceHandler.GetBalance)
				r.Get("/ledger", h.BalanceHandler.Ledger)
				r.Get("/withdrawals", h.WithdrawalHandler.ListOwn)
				r.Post("/withdrawals", h.WithdrawalHandler.Request)
			})

			r.Group(func(r chi.Router) {
				r.Use(auth.RequireAdmin)
				r.Patch("/kyc/{id}", h.KYCHandler.Review)
				r.Route("/admin", h.adminRoutes(idem))
			})
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.AuthMiddleware(h.jwt, h.accounts), auth.RequireAdmin)
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(h.opts.UploadDir))))
	})

	return r
}

func (h *Handlers) adminRoutes(idem func(http.Handler) http.Handler) func(r chi.Router) {
	return func(r chi.Router) {
		r.Get("/kyc", h.KYCHandler.List)

		r.Route("/users", func(r chi.Router) {
			r.Get("/", h.UserHandler.List)
			r.Post("/", h.UserHandler.Create)
			r.Get("/{id}", h.UserHandler.Get)
			r.Patch("/{id}", h.UserHandler.Update)
			r.Delete("/{id}", h.UserHandler.Delete)
			r.Patch("/{id}/status", h.UserHandler.SetStatus)
			r.Patch("/{id}/role", h.UserHandler.SetRole)
		})
		r.Route("/packages", func(r chi.Router) {
			r.Get("/", h.CatalogHandler.List)
			r.Post("/", h.CatalogHandler.Create)
			r.Patch("/{id}", h.CatalogHandler.Update)
			r.Delete("/{id}", h.CatalogHandler.Delete)
		})
		r.Route("/contacts", func(r chi.Router) {
			r.Get("/", h.ContactHandler.List)
			r.Get("/{id}", h.ContactHandler.Get)
			r.Patch("/{id}", h.ContactHandler.Update)
			r.Delete("/{id}", h.ContactHandler.Delete)
		})

		r.Get("/transactions", h.PaymentHandler.List)
		r.Get("/withdrawals", h.WithdrawalHandler.List)
		r.Get("/balance/overview", h.BalanceHandler.Overview)

		r.Group(func(r chi.Router) {
			r.Use(idem)
			r.Post("/transactions/approve", h.PaymentHandler.Approve)
			r.Post("/transactions/reject", h.PaymentHandler.Reject)
			r.Post("/withdrawals/process", h.WithdrawalHandler.Process)
			r.Post("/balance/release", h.BalanceHandler.ReleaseCommission)
			r.Post("/balance/adjust", h.BalanceHandler.Adjust)
			r.Post("/sync-balances", h.BalanceHandler.Sync)
		})
	}
}
