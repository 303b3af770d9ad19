package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/GlebRadaev/learnhub/internal/config"
	"github.com/GlebRadaev/learnhub/internal/handlers"
	"github.com/GlebRadaev/learnhub/internal/pg"
	"github.com/GlebRadaev/learnhub/internal/repo"
	"github.com/GlebRadaev/learnhub/internal/service"
	"github.com/GlebRadaev/learnhub/pkg/auth"
	"github.com/GlebRadaev/learnhub/pkg/idempotency"
	"github.com/GlebRadaev/learnhub/pkg/logger"
	"github.com/GlebRadaev/learnhub/pkg/storage"
)

type ApplicationI interface {
	Start(ctx context.Context) error
	Wait(ctx context.Context, cancel context.CancelFunc) error
}

type Application struct {
	cfg  *config.Config
	api  *handlers.Handlers
	srv  *service.Services
	repo *repo.Repositories

	errCh chan error
	wg    sync.WaitGroup
	ready bool
}

func New() *Application {
	return &Application{
		errCh: make(chan error),
	}
}

func (a *Application) Start(ctx context.Context) error {
	cfg := config.New()

	err := logger.InitLogger(cfg)
	if err != nil {
		return fmt.Errorf("can't init logger: %w", err)
	}

	pool, err := getPgxpool(ctx, cfg)
	if err != nil {
		zap.L().Error("build pgx pool failed: ", zap.Error(err))
		return fmt.Errorf("can't build pgx pool: %w", err)
	}
	if err := pg.RunMigrations(pool); err != nil {
		zap.L().Error("migrations failed: ", zap.Error(err))
		return fmt.Errorf("can't run migrations: %w", err)
	}
	txManager := pg.NewTXManager(pool)

	store, err := storage.NewLocal(cfg.UploadDir)
	if err != nil {
		return fmt.Errorf("can't prepare upload dir: %w", err)
	}

	idem, err := getIdempotencyStore(ctx, cfg)
	if err != nil {
		zap.L().Error("redis unavailable: ", zap.Error(err))
		return fmt.Errorf("can't connect to redis: %w", err)
	}

	jwtService := auth.NewJWTService(cfg.JWTSecret)

	a.cfg = cfg
	a.repo = repo.New(pg.New(pool))
	a.srv = service.New(a.repo, service.Deps{
		TXManager: txManager,
		Storage:   store,
		Hash:      auth.NewHashService(cfg.BcryptCost),
		JWT:       jwtService,
	}, cfg)
	a.api = handlers.New(a.srv, jwtService, handlers.Options{
		MaxUploadBytes: cfg.MaxUploadBytes,
		UploadDir:      store.Root(),
		CORSOrigins:    cfg.CORSOrigins,
		Idempotency:    idem,
		IdempotencyTTL: cfg.IdempotencyTTL,
	})

	a.closeOnDone(ctx, pool)

	if err = a.startHTTPServer(ctx); err != nil {
		return fmt.Errorf("can't start http server: %w", err)
	}

	a.ready = true
	zap.L().Info("all systems started successfully")
	return nil
}

func getPgxpool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	cfgpool, err := pgxpool.ParseConfig(cfg.Database)
	if err != nil {
		return nil, err
	}
	dbpool, err := pgxpool.NewWithConfig(ctx, cfgpool)
	if err != nil {
		return nil, err
	}
	if err = dbpool.Ping(ctx); err != nil {
		return nil, err
	}
	return dbpool, nil
}

// getIdempotencyStore returns nil when REDIS_ADDR is empty, which turns
// Idempotency-Key replay off.
func getIdempotencyStore(ctx context.Context, cfg *config.Config) (idempotency.Store, error) {
	if cfg.RedisAddr == "" {
		zap.L().Info("redis address is empty, idempotency keys disabled")
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	go func() {
		<-ctx.Done()
		client.Close()
	}()
	return idempotency.NewRedisStore(client), nil
}

func (a *Application) closeOnDone(ctx context.Context, pool *pgxpool.Pool) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		<-ctx.Done()
		pool.Close()
	}()
}

func (a *Application) startHTTPServer(ctx context.Context) error {
	router := chi.NewRouter()
	a.api.InitRoutes(router)
	server := http.Server{
		Addr:              a.cfg.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		<-ctx.Done()

		sCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(sCtx)
	}()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		zap.L().Info("starting http server on port", zap.String("port", a.cfg.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.errCh <- fmt.Errorf("http server exited with error: %w", err)
		}
	}()

	return nil
}

func (a *Application) Wait(ctx context.Context, cancel context.CancelFunc) error {
	var appErr error

	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()

		for err := range a.errCh {
			cancel()
			zap.L().Error(err.Error())
			appErr = err
		}
	}()

	<-ctx.Done()
	a.wg.Wait()
	close(a.errCh)
	wg.Wait()

	return appErr
}
