package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/GlebRadaev/learnhub/internal/domain"
	"github.com/GlebRadaev/learnhub/internal/dto"
	"github.com/GlebRadaev/learnhub/internal/service/authservice"
	pkgauth "github.com/GlebRadaev/learnhub/pkg/auth"
	"github.com/GlebRadaev/learnhub/pkg/utils"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"
)

func NewMock(t *testing.T) (*AuthHandler, *MockService) {
	ctrl := gomock.NewController(t)
	service := NewMockService(ctrl)
	handler := New(service)
	defer ctrl.Finish()
	return handler, service
}

func TestRegisterHandler(t *testing.T) {
	handler, service := NewMock(t)
	user := &domain.User{ID: 1, Email: "sita@example.com", FullName: "Sita Sharma", Role: domain.RoleUser, Status: domain.UserActive, ReferralCode: "1234567897"}

	tests := []struct {
		name          string
		body          string
		prepareMock   func()
		expectedCode  int
		expectedError string
	}{
		{
			name: "Successful registration",
			body: `{"email":"sita@example.com","password":"password123","full_name":"Sita Sharma"}`,
			prepareMock: func() {
				service.EXPECT().Register(context.Background(), "sita@example.com", "password123", "Sita Sharma").Return(user, nil)
				service.EXPECT().GenerateToken(user).Return("some-jwt-token", nil)
			},
			expectedCode: http.StatusCreated,
		},
		{
			name: "Email already registered",
			body: `{"email":"sita@example.com","password":"password123","full_name":"Sita Sharma"}`,
			prepareMock: func() {
				service.EXPECT().Register(context.Background(), "sita@example.com", "password123", "Sita Sharma").Return(nil, authservice.ErrEmailTaken)
			},
			expectedCode:  http.StatusConflict,
			expectedError: "email already registered",
		},
		{
			name: "Password over bcrypt limit",
			body: `{"email":"sita@example.com","password":"पासवर्डपासवर्डपासवर्डपासवर्ड","full_name":"Sita Sharma"}`,
			prepareMock: func() {
				service.EXPECT().Register(context.Background(), "sita@example.com", "पासवर्डपासवर्डपासवर्डपासवर्ड", "Sita Sharma").Return(nil, pkgauth.ErrPasswordTooLong)
			},
			expectedCode:  http.StatusBadRequest,
			expectedError: "password must be at most 72 bytes",
		},
		{
			name:          "Invalid request body",
			body:          `{invalid json`,
			prepareMock:   func() {},
			expectedCode:  http.StatusBadRequest,
			expectedError: "Invalid request body",
		},
		{
			name:          "Short password",
			body:          `{"email":"sita@example.com","password":"short","full_name":"Sita Sharma"}`,
			prepareMock:   func() {},
			expectedCode:  http.StatusBadRequest,
			expectedError: "password: min 8",
		},
		{
			name: "Error generating token",
			body: `{"email":"sita@example.com","password":"password123","full_name":"Sita Sharma"}`,
			prepareMock: func() {
				service.EXPECT().Register(context.Background(), "sita@example.com", "password123", "Sita Sharma").Return(user, nil)
				service.EXPECT().GenerateToken(user).Return("", errors.New("token generation error"))
			},
			expectedCode:  http.StatusInternalServerError,
			expectedError: "Error generating token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			req := httptest.NewRequest("POST", "/api/auth/register", bytes.NewReader([]byte(tt.body)))
			rr := httptest.NewRecorder()

			handler.Register(rr, req)

			assert.Equal(t, tt.expectedCode, rr.Code)

			if tt.expectedError != "" {
				var resp utils.Response
				err := json.NewDecoder(rr.Body).Decode(&resp)
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedError, resp.Message)
				return
			}
			assert.Equal(t, "Bearer some-jwt-token", rr.Header().Get("Authorization"))
			var resp dto.AuthResponseDTO
			assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
			assert.Equal(t, "some-jwt-token", resp.Token)
			assert.Equal(t, "1234567897", resp.User.ReferralCode)
		})
	}
}

func TestLoginHandler(t *testing.T) {
	handler, service := NewMock(t)
	user := &domain.User{ID: 1, Email: "sita@example.com", Role: domain.RoleAdmin, Status: domain.UserActive}

	tests := []struct {
		name          string
		body          string
		prepareMock   func()
		expectedCode  int
		expectedError string
	}{
		{
			name: "Successful login",
			body: `{"email":"sita@example.com","password":"password123"}`,
			prepareMock: func() {
				service.EXPECT().
					Authenticate(context.Background(), "sita@example.com", "password123").
					Return(user, nil)
				service.EXPECT().
					GenerateToken(user).
					Return("some-jwt-token", nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name: "Invalid credentials",
			body: `{"email":"sita@example.com","password":"wrongpassword"}`,
			prepareMock: func() {
				service.EXPECT().
					Authenticate(context.Background(), "sita@example.com", "wrongpassword").
					Return(nil, authservice.ErrInvalidCredentials)
			},
			expectedCode:  http.StatusUnauthorized,
			expectedError: "Invalid credentials",
		},
		{
			name: "Suspended account",
			body: `{"email":"sita@example.com","password":"password123"}`,
			prepareMock: func() {
				service.EXPECT().
					Authenticate(context.Background(), "sita@example.com", "password123").
					Return(nil, authservice.ErrUserSuspended)
			},
			expectedCode:  http.StatusForbidden,
			expectedError: "Account is suspended",
		},
		{
			name: "Database down",
			body: `{"email":"sita@example.com","password":"password123"}`,
			prepareMock: func() {
				service.EXPECT().
					Authenticate(context.Background(), "sita@example.com", "password123").
					Return(nil, errors.New("connection refused"))
			},
			expectedCode:  http.StatusInternalServerError,
			expectedError: "Internal server error",
		},
		{
			name:          "Invalid request body",
			body:          `{invalid json`,
			prepareMock:   func() {},
			expectedCode:  http.StatusBadRequest,
			expectedError: "Invalid request body",
		},
		{
			name:          "Bad email",
			body:          `{"email":"nope","password":"password123"}`,
			prepareMock:   func() {},
			expectedCode:  http.StatusBadRequest,
			expectedError: "email: must be a valid email",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			req := httptest.NewRequest("POST", "/api/auth/login", bytes.NewReader([]byte(tt.body)))
			rr := httptest.NewRecorder()

			handler.Login(rr, req)

			assert.Equal(t, tt.expectedCode, rr.Code)

			if tt.expectedError != "" {
				var resp utils.Response
				err := json.NewDecoder(rr.Body).Decode(&resp)
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedError, resp.Message)
			}
		})
	}
}
