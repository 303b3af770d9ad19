package contacts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/GlebRadaev/learnhub/internal/domain"
	"github.com/GlebRadaev/learnhub/internal/service/contactservice"
	"github.com/GlebRadaev/learnhub/pkg/paging"
	"github.com/GlebRadaev/learnhub/pkg/utils"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"
)

func NewMock(t *testing.T) (*ContactHandler, *MockService) {
	ctrl := gomock.NewController(t)
	service := NewMockService(ctrl)
	handler := New(service)
	defer ctrl.Finish()
	return handler, service
}

func withID(r *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func errorMessage(t *testing.T, rr *httptest.ResponseRecorder) string {
	var resp utils.Response
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	return resp.Message
}

func TestSubmitHandler(t *testing.T) {
	handler, service := NewMock(t)

	tests := []struct {
		name          string
		body          string
		prepareMock   func()
		expectedCode  int
		expectedError string
	}{
		{
			name: "Accepted",
			body: `{"name":"Hari Karki","email":"hari@example.com","subject":"Payment question","message":"Is eSewa supported?"}`,
			prepareMock: func() {
				service.EXPECT().Submit(gomock.Any(), "Hari Karki", "hari@example.com", "Payment question", "Is eSewa supported?").
					Return(&domain.ContactMessage{ID: 1, Status: domain.ContactUnread, Priority: domain.PriorityNormal}, nil)
			},
			expectedCode: http.StatusCreated,
		},
		{
			name:          "Invalid email",
			body:          `{"name":"Hari","email":"hari","subject":"Hi","message":"Hello"}`,
			prepareMock:   func() {},
			expectedCode:  http.StatusBadRequest,
			expectedError: "email: must be a valid email",
		},
		{
			name:          "Empty message",
			body:          `{"name":"Hari","email":"hari@example.com","subject":"Hi"}`,
			prepareMock:   func() {},
			expectedCode:  http.StatusBadRequest,
			expectedError: "message: is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			rr := httptest.NewRecorder()
			handler.Submit(rr, httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(tt.body)))

			assert.Equal(t, tt.expectedCode, rr.Code)
			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedError, errorMessage(t, rr))
			}
		})
	}
}

func TestGetHandler(t *testing.T) {
	handler, service := NewMock(t)

	service.EXPECT().Get(gomock.Any(), 1).Return(&domain.ContactMessage{ID: 1, Status: domain.ContactRead}, nil)
	rr := httptest.NewRecorder()
	handler.Get(rr, withID(httptest.NewRequest(http.MethodGet, "/api/admin/contacts/1", nil), "1"))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"status":"read"`)

	service.EXPECT().Get(gomock.Any(), 2).Return(nil, contactservice.ErrMessageNotFound)
	rr = httptest.NewRecorder()
	handler.Get(rr, withID(httptest.NewRequest(http.MethodGet, "/api/admin/contacts/2", nil), "2"))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = httptest.NewRecorder()
	handler.Get(rr, withID(httptest.NewRequest(http.MethodGet, "/api/admin/contacts/x", nil), "x"))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Invalid message id", errorMessage(t, rr))
}

func TestUpdateHandler(t *testing.T) {
	handler, service := NewMock(t)

	reply := "Yes, eSewa is supported."
	high := domain.PriorityHigh
	bogus := domain.ContactStatus("spam")

	tests := []struct {
		name          string
		body          string
		prepareMock   func()
		expectedCode  int
		expectedError string
	}{
		{
			name: "Reply and priority",
			body: `{"priority":"high","reply":"Yes, eSewa is supported."}`,
			prepareMock: func() {
				service.EXPECT().Update(gomock.Any(), 1, contactservice.Patch{Priority: &high, Reply: &reply}).
					Return(&domain.ContactMessage{ID: 1, Status: domain.ContactReplied, Priority: high, Reply: reply}, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name: "Invalid status",
			body: `{"status":"spam"}`,
			prepareMock: func() {
				service.EXPECT().Update(gomock.Any(), 1, contactservice.Patch{Status: &bogus}).
					Return(nil, contactservice.ErrInvalidStatus)
			},
			expectedCode:  http.StatusBadRequest,
			expectedError: "invalid contact status",
		},
		{
			name:          "Malformed body",
			body:          `{"status":`,
			prepareMock:   func() {},
			expectedCode:  http.StatusBadRequest,
			expectedError: "Invalid request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			rr := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPatch, "/api/admin/contacts/1", strings.NewReader(tt.body))
			handler.Update(rr, withID(r, "1"))

			assert.Equal(t, tt.expectedCode, rr.Code)
			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedError, errorMessage(t, rr))
			}
		})
	}
}

func TestDeleteHandler(t *testing.T) {
	handler, service := NewMock(t)

	service.EXPECT().Delete(gomock.Any(), 1).Return(nil)
	rr := httptest.NewRecorder()
	handler.Delete(rr, withID(httptest.NewRequest(http.MethodDelete, "/api/admin/contacts/1", nil), "1"))
	assert.Equal(t, http.StatusNoContent, rr.Code)

	service.EXPECT().Delete(gomock.Any(), 1).Return(contactservice.ErrMessageNotFound)
	rr = httptest.NewRecorder()
	handler.Delete(rr, withID(httptest.NewRequest(http.MethodDelete, "/api/admin/contacts/1", nil), "1"))
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Message not found", errorMessage(t, rr))
}

func TestListHandler(t *testing.T) {
	handler, service := NewMock(t)

	service.EXPECT().
		List(gomock.Any(), paging.Query{Page: 1, Filters: map[string]string{"priority": "high"}}).
		Return(paging.Page[domain.ContactMessage]{Items: []domain.ContactMessage{}, Page: 1, PageSize: 10}, nil)
	rr := httptest.NewRecorder()
	handler.List(rr, httptest.NewRequest(http.MethodGet, "/api/admin/contacts?priority=high&status=", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"items":[],"total":0,"page":1,"page_size":10,"total_pages":0}`, rr.Body.String())
}
