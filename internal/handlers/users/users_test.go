package users

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
	"github.com/GlebRadaev/learnhub/internal/service/authservice"
	"github.com/GlebRadaev/learnhub/internal/service/userservice"
	"github.com/GlebRadaev/learnhub/pkg/auth"
	"github.com/GlebRadaev/learnhub/pkg/paging"
	"github.com/GlebRadaev/learnhub/pkg/utils"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"
)

func NewMock(t *testing.T) (*UserHandler, *MockService) {
	ctrl := gomock.NewController(t)
	service := NewMockService(ctrl)
	handler := New(service)
	defer ctrl.Finish()
	return handler, service
}

func newRequest(method, target, body string, id string) *http.Request {
	r := httptest.NewRequest(method, target, strings.NewReader(body))
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	ctx := context.WithValue(r.Context(), auth.UserIDKey, 1)
	ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	return r.WithContext(ctx)
}

func errorMessage(t *testing.T, rr *httptest.ResponseRecorder) string {
	var resp utils.Response
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	return resp.Message
}

var student = &domain.User{ID: 5, Email: "ram@example.com", FullName: "Ram Thapa", Role: domain.RoleUser, Status: domain.UserActive}

func TestMeHandler(t *testing.T) {
	handler, service := NewMock(t)

	service.EXPECT().Get(gomock.Any(), 1).Return(&domain.User{ID: 1, Email: "admin@example.com", Role: domain.RoleAdmin}, nil)

	rr := httptest.NewRecorder()
	handler.Me(rr, newRequest(http.MethodGet, "/api/user/me", "", ""))

	assert.Equal(t, http.StatusOK, rr.Code)
	var body dto.UserResponseDTO
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.Equal(t, "admin", body.Role)
}

func TestListHandler(t *testing.T) {
	handler, service := NewMock(t)

	service.EXPECT().
		List(gomock.Any(), paging.Query{Search: "ram", Page: 2, Filters: map[string]string{"status": "suspended"}}).
		Return(paging.Page[domain.User]{Items: []domain.User{*student}, Total: 11, Page: 2, PageSize: 10, TotalPages: 2}, nil)

	rr := httptest.NewRecorder()
	handler.List(rr, newRequest(http.MethodGet, "/api/admin/users?search=ram&page=2&status=suspended", "", ""))

	assert.Equal(t, http.StatusOK, rr.Code)
	var body paging.Page[dto.UserResponseDTO]
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.Equal(t, 11, body.Total)
	assert.Equal(t, 2, body.TotalPages)
	assert.Len(t, body.Items, 1)
	assert.Equal(t, "ram@example.com", body.Items[0].Email)
}

func TestCreateHandler(t *testing.T) {
	handler, service := NewMock(t)

	tests := []struct {
		name          string
		body          string
		prepareMock   func()
		expectedCode  int
		expectedError string
	}{
		{
			name: "Defaults to user role",
			body: `{"email":"ram@example.com","password":"password123","full_name":"Ram Thapa"}`,
			prepareMock: func() {
				service.EXPECT().
					Create(gomock.Any(), authservice.NewUser{Email: "ram@example.com", Password: "password123", FullName: "Ram Thapa", Role: domain.RoleUser}).
					Return(student, nil)
			},
			expectedCode: http.StatusCreated,
		},
		{
			name: "Email taken",
			body: `{"email":"ram@example.com","password":"password123","full_name":"Ram Thapa","role":"admin"}`,
			prepareMock: func() {
				service.EXPECT().
					Create(gomock.Any(), authservice.NewUser{Email: "ram@example.com", Password: "password123", FullName: "Ram Thapa", Role: domain.RoleAdmin}).
					Return(nil, userservice.ErrEmailTaken)
			},
			expectedCode:  http.StatusConflict,
			expectedError: "email already registered",
		},
		{
			name: "Password over bcrypt limit",
			body: `{"email":"ram@example.com","password":"पासवर्डपासवर्डपासवर्डपासवर्ड","full_name":"Ram Thapa"}`,
			prepareMock: func() {
				service.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, auth.ErrPasswordTooLong)
			},
			expectedCode:  http.StatusBadRequest,
			expectedError: "password must be at most 72 bytes",
		},
		{
			name:          "Unknown role",
			body:          `{"email":"ram@example.com","password":"password123","full_name":"Ram Thapa","role":"root"}`,
			prepareMock:   func() {},
			expectedCode:  http.StatusBadRequest,
			expectedError: "role: must be one of user admin",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			rr := httptest.NewRecorder()
			handler.Create(rr, newRequest(http.MethodPost, "/api/admin/users", tt.body, ""))

			assert.Equal(t, tt.expectedCode, rr.Code)
			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedError, errorMessage(t, rr))
			}
		})
	}
}

func TestUpdateHandler(t *testing.T) {
	handler, service := NewMock(t)
	name := "Ram B. Thapa"
	suspended := domain.UserSuspended

	tests := []struct {
		name          string
		id            string
		body          string
		prepareMock   func()
		expectedCode  int
		expectedError string
	}{
		{
			name: "Rename and suspend",
			id:   "5",
			body: `{"full_name":"Ram B. Thapa","status":"suspended"}`,
			prepareMock: func() {
				service.EXPECT().
					Update(gomock.Any(), 1, 5, userservice.Patch{FullName: &name, Status: &suspended}).
					Return(student, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name: "Admin demoting themself",
			id:   "1",
			body: `{"role":"user"}`,
			prepareMock: func() {
				role := domain.RoleUser
				service.EXPECT().
					Update(gomock.Any(), 1, 1, userservice.Patch{Role: &role}).
					Return(nil, userservice.ErrSelfAction)
			},
			expectedCode:  http.StatusForbidden,
			expectedError: "you cannot demote, suspend or delete your own account",
		},
		{
			name:          "Bad id",
			id:            "x",
			body:          `{}`,
			prepareMock:   func() {},
			expectedCode:  http.StatusBadRequest,
			expectedError: "Invalid user id",
		},
		{
			name:          "Invalid email",
			id:            "5",
			body:          `{"email":"nope"}`,
			prepareMock:   func() {},
			expectedCode:  http.StatusBadRequest,
			expectedError: "email: must be a valid email",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			rr := httptest.NewRecorder()
			handler.Update(rr, newRequest(http.MethodPatch, "/api/admin/users/"+tt.id, tt.body, tt.id))

			assert.Equal(t, tt.expectedCode, rr.Code)
			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedError, errorMessage(t, rr))
			}
		})
	}
}

func TestSetStatusAndRoleHandlers(t *testing.T) {
	handler, service := NewMock(t)

	service.EXPECT().SetStatus(gomock.Any(), 1, 5, domain.UserSuspended).Return(student, nil)
	rr := httptest.NewRecorder()
	handler.SetStatus(rr, newRequest(http.MethodPatch, "/api/admin/users/5/status", `{"status":"suspended"}`, "5"))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	handler.SetStatus(rr, newRequest(http.MethodPatch, "/api/admin/users/5/status", `{"status":"banned"}`, "5"))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	service.EXPECT().SetRole(gomock.Any(), 1, 9, domain.RoleAdmin).Return(nil, userservice.ErrUserNotFound)
	rr = httptest.NewRecorder()
	handler.SetRole(rr, newRequest(http.MethodPatch, "/api/admin/users/9/role", `{"role":"admin"}`, "9"))
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "User not found", errorMessage(t, rr))
}

func TestDeleteHandler(t *testing.T) {
	handler, service := NewMock(t)

	tests := []struct {
		name         string
		id           string
		prepareMock  func()
		expectedCode int
	}{
		{
			name: "Deleted",
			id:   "5",
			prepareMock: func() {
				service.EXPECT().Delete(gomock.Any(), 1, 5).Return(nil)
			},
			expectedCode: http.StatusNoContent,
		},
		{
			name: "Self delete",
			id:   "1",
			prepareMock: func() {
				service.EXPECT().Delete(gomock.Any(), 1, 1).Return(userservice.ErrSelfAction)
			},
			expectedCode: http.StatusForbidden,
		},
		{
			name: "Database error",
			id:   "5",
			prepareMock: func() {
				service.EXPECT().Delete(gomock.Any(), 1, 5).Return(errors.New("db down"))
			},
			expectedCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			rr := httptest.NewRecorder()
			handler.Delete(rr, newRequest(http.MethodDelete, "/api/admin/users/"+tt.id, "", tt.id))
			assert.Equal(t, tt.expectedCode, rr.Code)
		})
	}
}
