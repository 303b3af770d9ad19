package kyc

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/GlebRadaev/learnhub/internal/domain"
	"github.com/GlebRadaev/learnhub/internal/dto"
	"github.com/GlebRadaev/learnhub/internal/service/kycservice"
	"github.com/GlebRadaev/learnhub/pkg/auth"
	"github.com/GlebRadaev/learnhub/pkg/paging"
	"github.com/GlebRadaev/learnhub/pkg/storage"
	"github.com/GlebRadaev/learnhub/pkg/utils"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"
)

const maxUpload = 1 << 20

var (
	pngHeader  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	jpegHeader = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}
)

func NewMock(t *testing.T) (*KYCHandler, *MockService) {
	ctrl := gomock.NewController(t)
	service := NewMockService(ctrl)
	handler := New(service, maxUpload)
	defer ctrl.Finish()
	return handler, service
}

func withContext(r *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	ctx := context.WithValue(r.Context(), auth.UserIDKey, 7)
	ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	return r.WithContext(ctx)
}

func validFields() map[string]string {
	return map[string]string{
		"document_type":   "citizenship",
		"document_number": "27-01-75-01234",
		"full_name":       "Sita Sharma",
		"date_of_birth":   "1998-04-12",
		"address":         "Lalitpur-3",
		"phone":           "9800000000",
	}
}

func submitRequest(t *testing.T, fields map[string]string, files map[string][]byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for k, data := range files {
		part, err := mw.CreateFormFile(k, k+".img")
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, "/api/kyc", &body)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	return withContext(r, "")
}

func errorMessage(t *testing.T, rr *httptest.ResponseRecorder) string {
	var resp utils.Response
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	return resp.Message
}

func TestSubmitHandler(t *testing.T) {
	handler, service := NewMock(t)
	dob := time.Date(1998, 4, 12, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		fields        map[string]string
		files         map[string][]byte
		prepareMock   func()
		expectedCode  int
		expectedError string
	}{
		{
			name:   "Submitted without back side",
			fields: validFields(),
			files:  map[string][]byte{"document_front": pngHeader, "selfie": jpegHeader},
			prepareMock: func() {
				service.EXPECT().
					Submit(gomock.Any(), 7, kycservice.Submission{
						DocumentType:   domain.DocCitizenship,
						DocumentNumber: "27-01-75-01234",
						FullName:       "Sita Sharma",
						DateOfBirth:    dob,
						Address:        "Lalitpur-3",
						Phone:          "9800000000",
						Front:          &storage.File{Data: pngHeader, Ext: ".png"},
						Selfie:         &storage.File{Data: jpegHeader, Ext: ".jpg"},
					}).
					Return(&domain.KYCSubmission{ID: 3, UserID: 7, Status: domain.KYCPending, DateOfBirth: dob}, nil)
			},
			expectedCode: http.StatusCreated,
		},
		{
			name:   "Already under review",
			fields: validFields(),
			files:  map[string][]byte{"document_front": pngHeader, "selfie": pngHeader},
			prepareMock: func() {
				service.EXPECT().Submit(gomock.Any(), 7, gomock.Any()).Return(nil, kycservice.ErrAlreadySubmitted)
			},
			expectedCode:  http.StatusConflict,
			expectedError: "KYC verification is already under review",
		},
		{
			name:   "Missing selfie",
			fields: validFields(),
			files:  map[string][]byte{"document_front": pngHeader},
			prepareMock: func() {
				service.EXPECT().Submit(gomock.Any(), 7, gomock.Any()).Return(nil, kycservice.ErrDocumentsRequired)
			},
			expectedCode:  http.StatusBadRequest,
			expectedError: "document front and selfie are required",
		},
		{
			name: "Bad birth date",
			fields: func() map[string]string {
				f := validFields()
				f["date_of_birth"] = "12/04/1998"
				return f
			}(),
			files:         map[string][]byte{"document_front": pngHeader, "selfie": pngHeader},
			prepareMock:   func() {},
			expectedCode:  http.StatusBadRequest,
			expectedError: "dateofbirth: must be a date in 2006-01-02 format",
		},
		{
			name:          "Selfie is a text file",
			fields:        validFields(),
			files:         map[string][]byte{"document_front": pngHeader, "selfie": []byte("not an image")},
			prepareMock:   func() {},
			expectedCode:  http.StatusUnsupportedMediaType,
			expectedError: "Please upload a JPEG or PNG image",
		},
		{
			name:          "Front too large",
			fields:        validFields(),
			files:         map[string][]byte{"document_front": append(append([]byte{}, pngHeader...), make([]byte, maxUpload)...), "selfie": pngHeader},
			prepareMock:   func() {},
			expectedCode:  http.StatusRequestEntityTooLarge,
			expectedError: "Please upload an image smaller than 1MB",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			rr := httptest.NewRecorder()
			handler.Submit(rr, submitRequest(t, tt.fields, tt.files))

			assert.Equal(t, tt.expectedCode, rr.Code)
			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedError, errorMessage(t, rr))
			}
		})
	}
}

func TestGetHandler(t *testing.T) {
	handler, service := NewMock(t)

	service.EXPECT().Get(gomock.Any(), 7).Return(nil, nil)
	rr := httptest.NewRecorder()
	handler.Get(rr, withContext(httptest.NewRequest(http.MethodGet, "/api/kyc", nil), ""))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "null", strings.TrimSpace(rr.Body.String()))

	service.EXPECT().Get(gomock.Any(), 7).Return(&domain.KYCSubmission{
		ID:              3,
		UserID:          7,
		Status:          domain.KYCRejected,
		RejectionReason: "Blurry selfie",
		DateOfBirth:     time.Date(1998, 4, 12, 0, 0, 0, 0, time.UTC),
	}, nil)
	rr = httptest.NewRecorder()
	handler.Get(rr, withContext(httptest.NewRequest(http.MethodGet, "/api/kyc", nil), ""))
	var body dto.KYCResponseDTO
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.Equal(t, "rejected", body.Status)
	assert.Equal(t, "Blurry selfie", body.RejectionReason)
	assert.Equal(t, "1998-04-12", body.DateOfBirth)
}

func TestReviewHandler(t *testing.T) {
	handler, service := NewMock(t)

	tests := []struct {
		name          string
		id            string
		body          string
		prepareMock   func()
		expectedCode  int
		expectedError string
	}{
		{
			name: "Approved",
			id:   "3",
			body: `{"status":"approved"}`,
			prepareMock: func() {
				service.EXPECT().Review(gomock.Any(), 3, domain.KYCApproved, "").
					Return(&domain.KYCSubmission{ID: 3, Status: domain.KYCApproved}, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name: "Rejected without reason",
			id:   "3",
			body: `{"status":"rejected"}`,
			prepareMock: func() {
				service.EXPECT().Review(gomock.Any(), 3, domain.KYCRejected, "").Return(nil, domain.ErrReasonRequired)
			},
			expectedCode:  http.StatusBadRequest,
			expectedError: "rejection reason is required",
		},
		{
			name: "Already reviewed",
			id:   "3",
			body: `{"status":"approved"}`,
			prepareMock: func() {
				service.EXPECT().Review(gomock.Any(), 3, domain.KYCApproved, "").Return(nil, kycservice.ErrNotPending)
			},
			expectedCode:  http.StatusConflict,
			expectedError: "kyc submission has already been reviewed",
		},
		{
			name: "Unknown submission",
			id:   "99",
			body: `{"status":"approved"}`,
			prepareMock: func() {
				service.EXPECT().Review(gomock.Any(), 99, domain.KYCApproved, "").Return(nil, kycservice.ErrKYCNotFound)
			},
			expectedCode:  http.StatusNotFound,
			expectedError: "KYC submission not found",
		},
		{
			name:          "Missing status",
			id:            "3",
			body:          `{}`,
			prepareMock:   func() {},
			expectedCode:  http.StatusBadRequest,
			expectedError: "status: is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			rr := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPatch, "/api/kyc/"+tt.id, strings.NewReader(tt.body))
			handler.Review(rr, withContext(r, tt.id))

			assert.Equal(t, tt.expectedCode, rr.Code)
			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedError, errorMessage(t, rr))
			}
		})
	}
}

func TestListHandler(t *testing.T) {
	handler, service := NewMock(t)

	service.EXPECT().
		List(gomock.Any(), paging.Query{Page: 1, Filters: map[string]string{"status": "pending"}}).
		Return(paging.Page[domain.KYCSubmission]{Items: []domain.KYCSubmission{{ID: 3, UserEmail: "sita@example.com"}}, Total: 1, Page: 1, PageSize: 10, TotalPages: 1}, nil)
	rr := httptest.NewRecorder()
	handler.List(rr, withContext(httptest.NewRequest(http.MethodGet, "/api/admin/kyc?status=pending", nil), ""))

	assert.Equal(t, http.StatusOK, rr.Code)
	var body paging.Page[dto.KYCResponseDTO]
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.Equal(t, "sita@example.com", body.Items[0].UserEmail)
}
