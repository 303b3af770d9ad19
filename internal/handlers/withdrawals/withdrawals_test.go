package withdrawals

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/GlebRadaev/learnhub/internal/domain"
	"github.com/GlebRadaev/learnhub/internal/dto"
	"github.com/GlebRadaev/learnhub/internal/service/withdrawalservice"
	"github.com/GlebRadaev/learnhub/pkg/auth"
	"github.com/GlebRadaev/learnhub/pkg/paging"
	"github.com/GlebRadaev/learnhub/pkg/utils"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"
)

func NewMock(t *testing.T) (*WithdrawalHandler, *MockService) {
	ctrl := gomock.NewController(t)
	service := NewMockService(ctrl)
	handler := New(service)
	defer ctrl.Finish()
	return handler, service
}

func withUser(r *http.Request) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), auth.UserIDKey, 7))
}

func errorMessage(t *testing.T, rr *httptest.ResponseRecorder) string {
	var resp utils.Response
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	return resp.Message
}

func TestRequestHandler(t *testing.T) {
	handler, service := NewMock(t)

	bank := domain.PayoutDetails{AccountName: "Sita Sharma", AccountNumber: "0012345678901", BankName: "Nabil Bank"}
	const bankBody = `,"method":"bank_transfer","account_name":"Sita Sharma","account_number":"0012345678901","bank_name":"Nabil Bank"}`

	tests := []struct {
		name          string
		body          string
		prepareMock   func()
		expectedCode  int
		expectedError string
		expectedBody  string
	}{
		{
			name: "Accepted",
			body: `{"amount":"500"` + bankBody,
			prepareMock: func() {
				service.EXPECT().
					Request(gomock.Any(), withdrawalservice.Request{UserID: 7, Amount: domain.Rupees(500), Method: domain.PayoutBankTransfer, Details: bank}).
					Return(&domain.Withdrawal{ID: 4, UserID: 7, Amount: domain.Rupees(500), Method: domain.PayoutBankTransfer, Status: domain.WithdrawalPending, PayoutDetails: bank}, nil)
			},
			expectedCode: http.StatusCreated,
			expectedBody: `"status":"pending"`,
		},
		{
			name: "Below minimum",
			body: `{"amount":50` + bankBody,
			prepareMock: func() {
				service.EXPECT().Request(gomock.Any(), gomock.Any()).
					Return(nil, &withdrawalservice.MinimumError{Min: domain.Rupees(100)})
			},
			expectedCode:  http.StatusBadRequest,
			expectedError: "Minimum withdrawal amount is Rs. 100",
		},
		{
			name: "Exceeds balance",
			body: `{"amount":"500"` + bankBody,
			prepareMock: func() {
				service.EXPECT().Request(gomock.Any(), gomock.Any()).Return(nil, withdrawalservice.ErrExceedsBalance)
			},
			expectedCode:  http.StatusPaymentRequired,
			expectedError: "Withdrawal amount cannot exceed available balance",
		},
		{
			name: "KYC pending",
			body: `{"amount":"500"` + bankBody,
			prepareMock: func() {
				service.EXPECT().Request(gomock.Any(), gomock.Any()).Return(nil, withdrawalservice.ErrKYCPending)
			},
			expectedCode:  http.StatusForbidden,
			expectedError: "Your KYC verification is still under review",
		},
		{
			name: "Missing bank name",
			body: `{"amount":"500","method":"bank_transfer","account_name":"Sita","account_number":"1"}`,
			prepareMock: func() {
				service.EXPECT().Request(gomock.Any(), gomock.Any()).Return(nil, domain.ErrPayoutDetails)
			},
			expectedCode:  http.StatusBadRequest,
			expectedError: "incomplete payout details",
		},
		{
			name:          "Fractional paisa",
			body:          `{"amount":"10.005"` + bankBody,
			prepareMock:   func() {},
			expectedCode:  http.StatusBadRequest,
			expectedError: "amount must be positive with at most two decimal places",
		},
		{
			name:          "Missing method",
			body:          `{"amount":"500"}`,
			prepareMock:   func() {},
			expectedCode:  http.StatusBadRequest,
			expectedError: "method: is required",
		},
		{
			name:          "Malformed body",
			body:          `{"amount":`,
			prepareMock:   func() {},
			expectedCode:  http.StatusBadRequest,
			expectedError: "Invalid request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			rr := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/api/affiliate/withdrawals", strings.NewReader(tt.body))
			handler.Request(rr, withUser(r))

			assert.Equal(t, tt.expectedCode, rr.Code)
			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedError, errorMessage(t, rr))
			}
			if tt.expectedBody != "" {
				assert.Contains(t, rr.Body.String(), tt.expectedBody)
			}
		})
	}
}

func TestProcessHandler(t *testing.T) {
	handler, service := NewMock(t)

	tests := []struct {
		name          string
		body          string
		prepareMock   func()
		expectedCode  int
		expectedError string
	}{
		{
			name: "Approve passes transaction id",
			body: `{"withdrawal_id":4,"action":"approve","transaction_id":"TXN123","reason":"ignored"}`,
			prepareMock: func() {
				service.EXPECT().Process(gomock.Any(), 4, withdrawalservice.ActionApprove, "TXN123").
					Return(&domain.Withdrawal{ID: 4, Status: domain.WithdrawalCompleted, TransactionID: "TXN123"}, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name: "Reject passes reason",
			body: `{"withdrawal_id":4,"action":"reject","reason":"Wrong account"}`,
			prepareMock: func() {
				service.EXPECT().Process(gomock.Any(), 4, withdrawalservice.ActionReject, "Wrong account").
					Return(&domain.Withdrawal{ID: 4, Status: domain.WithdrawalRejected, RejectionReason: "Wrong account"}, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name: "Reject without reason",
			body: `{"withdrawal_id":4,"action":"reject"}`,
			prepareMock: func() {
				service.EXPECT().Process(gomock.Any(), 4, withdrawalservice.ActionReject, "").Return(nil, domain.ErrReasonRequired)
			},
			expectedCode:  http.StatusBadRequest,
			expectedError: "rejection reason is required",
		},
		{
			name: "Already finalized",
			body: `{"withdrawal_id":4,"action":"approve","transaction_id":"TXN124"}`,
			prepareMock: func() {
				service.EXPECT().Process(gomock.Any(), 4, withdrawalservice.ActionApprove, "TXN124").Return(nil, domain.ErrWithdrawalFinalized)
			},
			expectedCode:  http.StatusConflict,
			expectedError: "withdrawal is already finalized",
		},
		{
			name: "Unknown withdrawal",
			body: `{"withdrawal_id":99,"action":"process"}`,
			prepareMock: func() {
				service.EXPECT().Process(gomock.Any(), 99, withdrawalservice.ActionProcess, "").Return(nil, withdrawalservice.ErrWithdrawalNotFound)
			},
			expectedCode:  http.StatusNotFound,
			expectedError: "Withdrawal not found",
		},
		{
			name:          "Unknown action",
			body:          `{"withdrawal_id":4,"action":"cancel"}`,
			prepareMock:   func() {},
			expectedCode:  http.StatusBadRequest,
			expectedError: "action: must be one of process approve reject",
		},
		{
			name: "Unexpected failure",
			body: `{"withdrawal_id":4,"action":"process"}`,
			prepareMock: func() {
				service.EXPECT().Process(gomock.Any(), 4, withdrawalservice.ActionProcess, "").Return(nil, errors.New("db down"))
			},
			expectedCode:  http.StatusInternalServerError,
			expectedError: "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			rr := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/api/admin/withdrawals/process", strings.NewReader(tt.body))
			handler.Process(rr, withUser(r))

			assert.Equal(t, tt.expectedCode, rr.Code)
			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedError, errorMessage(t, rr))
			}
		})
	}
}

func TestListOwnHandler(t *testing.T) {
	handler, service := NewMock(t)

	service.EXPECT().ListOwn(gomock.Any(), 7).Return(nil, nil)
	rr := httptest.NewRecorder()
	handler.ListOwn(rr, withUser(httptest.NewRequest(http.MethodGet, "/api/affiliate/withdrawals", nil)))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())

	service.EXPECT().ListOwn(gomock.Any(), 7).Return([]domain.Withdrawal{{ID: 4, Amount: domain.Rupees(250), Status: domain.WithdrawalProcessing}}, nil)
	rr = httptest.NewRecorder()
	handler.ListOwn(rr, withUser(httptest.NewRequest(http.MethodGet, "/api/affiliate/withdrawals", nil)))
	var body []dto.WithdrawalResponseDTO
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.Len(t, body, 1)
	assert.Equal(t, "250", body[0].Amount.String())
	assert.Equal(t, "processing", body[0].Status)
}

func TestListHandler(t *testing.T) {
	handler, service := NewMock(t)

	service.EXPECT().
		List(gomock.Any(), paging.Query{Search: "sita", Page: 2, Filters: map[string]string{"status": "pending", "method": "esewa"}}).
		Return(paging.Page[domain.Withdrawal]{Items: []domain.Withdrawal{}, Total: 11, Page: 2, PageSize: 10, TotalPages: 2}, nil)
	rr := httptest.NewRecorder()
	handler.List(rr, withUser(httptest.NewRequest(http.MethodGet, "/api/admin/withdrawals?search=sita&status=pending&method=esewa&page=2", nil)))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"items":[],"total":11,"page":2,"page_size":10,"total_pages":2}`, rr.Body.String())
}
