package service

import (
	"testing"

	"github.com/GlebRadaev/learnhub/internal/balancesync"
	"github.com/GlebRadaev/learnhub/internal/config"
	"github.com/GlebRadaev/learnhub/internal/pg"
	"github.com/GlebRadaev/learnhub/internal/repo"
	"github.com/GlebRadaev/learnhub/internal/service/authservice"
	"github.com/GlebRadaev/learnhub/internal/service/balanceservice"
	"github.com/GlebRadaev/learnhub/internal/service/withdrawalservice"
	"github.com/GlebRadaev/learnhub/pkg/auth"
	"github.com/GlebRadaev/learnhub/pkg/storage"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"
)

func TestNew(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDB, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockDB.Close()

	deps := Deps{
		TXManager: pg.NewMockTXManager(ctrl),
		Storage:   storage.NewMockStorage(ctrl),
		Hash:      auth.NewMockHashServiceInterface(ctrl),
		JWT:       auth.NewMockJWTServiceInterface(ctrl),
	}
	cfg := &config.Config{MinWithdrawal: 100, CommissionPct: 10, SyncWorkers: 4}

	services := New(repo.New(pg.New(mockDB)), deps, cfg)

	assert.IsType(t, &authservice.Service{}, services.AuthService)
	assert.IsType(t, &balanceservice.Service{}, services.BalanceService)
	assert.IsType(t, &withdrawalservice.Service{}, services.WithdrawalService)
	assert.IsType(t, &balancesync.Service{}, services.BalanceSync)
	assert.NotNil(t, services.UserService)
	assert.Same(t, services.UserService, services.Accounts)
	assert.NotNil(t, services.CatalogService)
	assert.NotNil(t, services.PaymentService)
	assert.NotNil(t, services.KYCService)
	assert.NotNil(t, services.ContactService)
}
