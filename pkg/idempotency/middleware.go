// Package idempotency replays the stored response of a mutation when a client
// repeats it with the same Idempotency-Key header.
package idempotency

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/GlebRadaev/learnhub/pkg/auth"
	"github.com/GlebRadaev/learnhub/pkg/utils"
	"go.uber.org/zap"
)

const (
	Header       = "Idempotency-Key"
	ReplayHeader = "Idempotent-Replayed"
	lockTTL      = 30 * time.Second
)

type recorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (r *recorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *recorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

// Middleware caches responses per user, route and key for ttl. Requests
// without the header pass through. Store failures never block the request.
func Middleware(store Store, ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(Header)
			if key == "" || store == nil {
				next.ServeHTTP(w, r)
				return
			}
			userID, _ := auth.UserID(r.Context())
			scoped := fmt.Sprintf("idem:%d:%s:%s:%s", userID, r.Method, r.URL.Path, key)
			ctx := r.Context()

			rec, err := store.Get(ctx, scoped)
			if err != nil {
				zap.L().Warn("idempotency lookup failed", zap.String("key", scoped), zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			if rec != nil {
				replay(w, rec)
				return
			}

			locked, err := store.Lock(ctx, scoped, lockTTL)
			if err != nil {
				zap.L().Warn("idempotency lock failed", zap.String("key", scoped), zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			if !locked {
				utils.RespondWithError(w, http.StatusConflict, "A request with this Idempotency-Key is already in progress")
				return
			}
			defer func() {
				if err := store.Unlock(context.WithoutCancel(ctx), scoped); err != nil {
					zap.L().Warn("idempotency unlock failed", zap.String("key", scoped), zap.Error(err))
				}
			}()

			rw := &recorder{ResponseWriter: w}
			next.ServeHTTP(rw, r)
			if rw.status == 0 || rw.status >= http.StatusInternalServerError {
				return
			}
			saved := &Record{Status: rw.status, ContentType: rw.Header().Get("Content-Type"), Body: rw.body.Bytes()}
			if err := store.Save(context.WithoutCancel(ctx), scoped, saved, ttl); err != nil {
				zap.L().Warn("idempotency save failed", zap.String("key", scoped), zap.Error(err))
			}
		})
	}
}

func replay(w http.ResponseWriter, rec *Record) {
	if rec.ContentType != "" {
		w.Header().Set("Content-Type", rec.ContentType)
	}
	w.Header().Set(ReplayHeader, "true")
	w.WriteHeader(rec.Status)
	_, _ = w.Write(rec.Body)
}
