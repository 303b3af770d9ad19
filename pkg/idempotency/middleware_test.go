package idempotency

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/GlebRadaev/learnhub/pkg/auth"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"
)

const scopedKey = "idem:5:POST:/api/admin/withdrawals/process:abc"

func TestMiddleware(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := NewMockStore(ctrl)

	tests := []struct {
		name           string
		key            string
		prepareMock    func()
		expectedCalls  int
		expectedCode   int
		expectedBody   string
		expectedReplay bool
	}{
		{
			name:          "No key passes through",
			expectedCalls: 1,
			expectedCode:  http.StatusOK,
			expectedBody:  `{"status":"completed"}`,
		},
		{
			name: "First request is stored",
			key:  "abc",
			prepareMock: func() {
				store.EXPECT().Get(gomock.Any(), scopedKey).Return(nil, nil)
				store.EXPECT().Lock(gomock.Any(), scopedKey, lockTTL).Return(true, nil)
				store.EXPECT().Save(gomock.Any(), scopedKey, &Record{
					Status:      http.StatusOK,
					ContentType: "application/json",
					Body:        []byte(`{"status":"completed"}`),
				}, time.Hour).Return(nil)
				store.EXPECT().Unlock(gomock.Any(), scopedKey).Return(nil)
			},
			expectedCalls: 1,
			expectedCode:  http.StatusOK,
			expectedBody:  `{"status":"completed"}`,
		},
		{
			name: "Repeated request is replayed",
			key:  "abc",
			prepareMock: func() {
				store.EXPECT().Get(gomock.Any(), scopedKey).Return(&Record{
					Status:      http.StatusOK,
					ContentType: "application/json",
					Body:        []byte(`{"status":"completed"}`),
				}, nil)
			},
			expectedCalls:  0,
			expectedCode:   http.StatusOK,
			expectedBody:   `{"status":"completed"}`,
			expectedReplay: true,
		},
		{
			name: "Concurrent duplicate",
			key:  "abc",
			prepareMock: func() {
				store.EXPECT().Get(gomock.Any(), scopedKey).Return(nil, nil)
				store.EXPECT().Lock(gomock.Any(), scopedKey, lockTTL).Return(false, nil)
			},
			expectedCalls: 0,
			expectedCode:  http.StatusConflict,
			expectedBody:  `{"message":"A request with this Idempotency-Key is already in progress"}`,
		},
		{
			name: "Store down does not block",
			key:  "abc",
			prepareMock: func() {
				store.EXPECT().Get(gomock.Any(), scopedKey).Return(nil, errors.New("connection refused"))
			},
			expectedCalls: 1,
			expectedCode:  http.StatusOK,
			expectedBody:  `{"status":"completed"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.prepareMock != nil {
				tt.prepareMock()
			}
			calls := 0
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte(`{"status":"completed"}`))
			})

			req := httptest.NewRequest(http.MethodPost, "/api/admin/withdrawals/process", nil)
			req = req.WithContext(context.WithValue(req.Context(), auth.UserIDKey, 5))
			if tt.key != "" {
				req.Header.Set(Header, tt.key)
			}
			rec := httptest.NewRecorder()
			Middleware(store, time.Hour)(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedCalls, calls)
			assert.Equal(t, tt.expectedCode, rec.Code)
			assert.JSONEq(t, tt.expectedBody, rec.Body.String())
			assert.Equal(t, tt.expectedReplay, rec.Header().Get(ReplayHeader) == "true")
		})
	}
}

func TestMiddlewareSkipsServerErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := NewMockStore(ctrl)
	store.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, nil)
	store.EXPECT().Lock(gomock.Any(), gomock.Any(), lockTTL).Return(true, nil)
	store.EXPECT().Unlock(gomock.Any(), gomock.Any()).Return(nil)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	req := httptest.NewRequest(http.MethodPost, "/api/admin/transactions/approve", nil)
	req.Header.Set(Header, "k1")
	rec := httptest.NewRecorder()
	Middleware(store, time.Hour)(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
