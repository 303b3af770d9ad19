package balance

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/GlebRadaev/learnhub/internal/balancesync"
	"github.com/GlebRadaev/learnhub/internal/domain"
	"github.com/GlebRadaev/learnhub/internal/service/balanceservice"
	"github.com/GlebRadaev/learnhub/pkg/auth"
	"github.com/GlebRadaev/learnhub/pkg/utils"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"
)

func NewMock(t *testing.T) (*BalanceHandler, *MockService, *MockSyncer) {
	ctrl := gomock.NewController(t)
	service := NewMockService(ctrl)
	syncer := NewMockSyncer(ctrl)
	handler := New(service, syncer)
	defer ctrl.Finish()
	return handler, service, syncer
}

func errorMessage(t *testing.T, rr *httptest.ResponseRecorder) string {
	var resp utils.Response
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	return resp.Message
}

func TestGetBalanceHandler(t *testing.T) {
	handler, service, _ := NewMock(t)
	ctx := context.WithValue(context.Background(), auth.UserIDKey, 1)

	tests := []struct {
		name          string
		prepareMock   func()
		expectedCode  int
		expectedError string
		expectedBody  string
	}{
		{
			name: "Successful retrieval",
			prepareMock: func() {
				service.EXPECT().
					GetBalance(ctx, 1).
					Return(&domain.Balance{
						UserID:     1,
						Pending:    domain.Rupees(250),
						Processing: domain.Rupees(500),
						Available:  domain.Rupees(1000) + 50,
						Withdrawn:  domain.Rupees(300),
					}, nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: `{"pending":"250","processing":"500","available":"1000.5","withdrawn":"300","total":"2050.5"}`,
		},
		{
			name: "Internal server error",
			prepareMock: func() {
				service.EXPECT().GetBalance(ctx, 1).Return(nil, errors.New("error"))
			},
			expectedCode:  http.StatusInternalServerError,
			expectedError: "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			req := httptest.NewRequest(http.MethodGet, "/api/affiliate/balance", nil).WithContext(ctx)
			rr := httptest.NewRecorder()
			handler.GetBalance(rr, req)

			assert.Equal(t, tt.expectedCode, rr.Code)
			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedError, errorMessage(t, rr))
			}
			if tt.expectedBody != "" {
				assert.JSONEq(t, tt.expectedBody, rr.Body.String())
			}
		})
	}
}

func TestLedgerHandler(t *testing.T) {
	handler, service, _ := NewMock(t)
	ctx := context.WithValue(context.Background(), auth.UserIDKey, 1)

	service.EXPECT().Ledger(ctx, 1).Return([]domain.LedgerEntry{
		{ID: 2, UserID: 1, Bucket: domain.BucketProcessing, Amount: domain.Rupees(500), Kind: domain.KindWithdrawalReserve, RefType: domain.RefWithdrawal, RefID: 4},
		{ID: 1, UserID: 1, Bucket: domain.BucketAvailable, Amount: -domain.Rupees(500), Kind: domain.KindWithdrawalReserve, RefType: domain.RefWithdrawal, RefID: 4},
	}, nil)

	rr := httptest.NewRecorder()
	handler.Ledger(rr, httptest.NewRequest(http.MethodGet, "/api/affiliate/ledger", nil).WithContext(ctx))

	assert.Equal(t, http.StatusOK, rr.Code)
	var body []map[string]any
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.Len(t, body, 2)
	assert.Equal(t, "-500", body[1]["amount"])
	assert.Equal(t, "available", body[1]["bucket"])
}

func TestReleaseCommissionHandler(t *testing.T) {
	handler, service, _ := NewMock(t)

	tests := []struct {
		name          string
		body          string
		prepareMock   func()
		expectedCode  int
		expectedError string
	}{
		{
			name: "Released",
			body: `{"transaction_id":12}`,
			prepareMock: func() {
				service.EXPECT().ReleaseCommission(gomock.Any(), 12).
					Return(&domain.Movement{UserID: 7, Amount: domain.Rupees(250)}, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name: "Released twice",
			body: `{"transaction_id":12}`,
			prepareMock: func() {
				service.EXPECT().ReleaseCommission(gomock.Any(), 12).Return(nil, balanceservice.ErrAlreadyReleased)
			},
			expectedCode:  http.StatusConflict,
			expectedError: "commission has already been released",
		},
		{
			name: "No commission",
			body: `{"transaction_id":13}`,
			prepareMock: func() {
				service.EXPECT().ReleaseCommission(gomock.Any(), 13).Return(nil, balanceservice.ErrCommissionNotFound)
			},
			expectedCode:  http.StatusNotFound,
			expectedError: "no commission was credited for this transaction",
		},
		{
			name:          "Missing transaction",
			body:          `{}`,
			prepareMock:   func() {},
			expectedCode:  http.StatusBadRequest,
			expectedError: "transactionid: is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			rr := httptest.NewRecorder()
			handler.ReleaseCommission(rr, httptest.NewRequest(http.MethodPost, "/api/admin/balance/release", strings.NewReader(tt.body)))

			assert.Equal(t, tt.expectedCode, rr.Code)
			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedError, errorMessage(t, rr))
			} else {
				assert.JSONEq(t, `{"user_id":7,"amount":"250"}`, rr.Body.String())
			}
		})
	}
}

func TestAdjustHandler(t *testing.T) {
	handler, service, _ := NewMock(t)

	tests := []struct {
		name          string
		body          string
		prepareMock   func()
		expectedCode  int
		expectedError string
	}{
		{
			name: "Credited",
			body: `{"user_id":7,"amount":"100","note":"March campaign"}`,
			prepareMock: func() {
				service.EXPECT().Adjust(gomock.Any(), 7, domain.Rupees(100), "March campaign").
					Return(&domain.Balance{UserID: 7, Available: domain.Rupees(100)}, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name: "Missing note",
			body: `{"user_id":7,"amount":"100"}`,
			prepareMock: func() {
				service.EXPECT().Adjust(gomock.Any(), 7, domain.Rupees(100), "").Return(nil, balanceservice.ErrNoteRequired)
			},
			expectedCode:  http.StatusBadRequest,
			expectedError: "adjustment note is required",
		},
		{
			name: "Unknown user",
			body: `{"user_id":70,"amount":"100","note":"x"}`,
			prepareMock: func() {
				service.EXPECT().Adjust(gomock.Any(), 70, domain.Rupees(100), "x").Return(nil, balanceservice.ErrUserNotFound)
			},
			expectedCode:  http.StatusNotFound,
			expectedError: "user not found",
		},
		{
			name:          "Negative amount",
			body:          `{"user_id":7,"amount":"-5","note":"x"}`,
			prepareMock:   func() {},
			expectedCode:  http.StatusBadRequest,
			expectedError: "amount must be positive with at most two decimal places",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			rr := httptest.NewRecorder()
			handler.Adjust(rr, httptest.NewRequest(http.MethodPost, "/api/admin/balance/adjust", strings.NewReader(tt.body)))

			assert.Equal(t, tt.expectedCode, rr.Code)
			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedError, errorMessage(t, rr))
			}
		})
	}
}

func TestOverviewHandler(t *testing.T) {
	handler, service, _ := NewMock(t)

	service.EXPECT().Overview(gomock.Any()).Return(&domain.BalanceOverview{
		Available:               domain.Rupees(1000),
		Users:                   3,
		PendingWithdrawals:      1,
		PendingWithdrawalAmount: domain.Rupees(500),
	}, nil)

	rr := httptest.NewRecorder()
	handler.Overview(rr, httptest.NewRequest(http.MethodGet, "/api/admin/balance/overview", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"pending":"0","processing":"0","available":"1000","withdrawn":"0","users":3,"pending_withdrawals":1,"pending_withdrawal_amount":"500"}`, rr.Body.String())
}

func TestSyncHandler(t *testing.T) {
	handler, _, syncer := NewMock(t)

	syncer.EXPECT().Sync(gomock.Any()).Return(&balancesync.Report{Scanned: 120, Corrected: 2, Duration: 85 * time.Millisecond}, nil)
	rr := httptest.NewRecorder()
	handler.Sync(rr, httptest.NewRequest(http.MethodPost, "/api/admin/sync-balances", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"scanned":120,"corrected":2,"failed":0,"duration_ms":85}`, rr.Body.String())

	syncer.EXPECT().Sync(gomock.Any()).Return(nil, balancesync.ErrSyncInProgress)
	rr = httptest.NewRecorder()
	handler.Sync(rr, httptest.NewRequest(http.MethodPost, "/api/admin/sync-balances", nil))
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "balance sync is already running", errorMessage(t, rr))
}
