package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/GlebRadaev/learnhub/pkg/utils"
	"go.uber.org/zap"
)

type ContextKey string

const (
	UserIDKey ContextKey = "userID"
	RoleKey   ContextKey = "role"
)

const RoleAdmin = "admin"

// Account is the current state of a token's user.
type Account struct {
	Role   string
	Active bool
}

//go:generate mockgen -source=middleware.go -destination=mock_middleware.go -package=auth
type AccountLookup interface {
	// Account returns nil when the user no longer exists.
	Account(ctx context.Context, userID int) (*Account, error)
}

// AuthMiddleware validates the bearer token, loads the token's user and
// stores the user id and current role in the request context. Deleted users
// are rejected and suspended users are refused.
func AuthMiddleware(jwtService JWTServiceInterface, accounts AccountLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
				utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")
			claims, err := jwtService.ValidateToken(token)
			if err != nil {
				utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			account, err := accounts.Account(r.Context(), claims.UserID)
			if err != nil {
				zap.L().Error("can't load account", zap.Int("user_id", claims.UserID), zap.Error(err))
				utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
				return
			}
			if account == nil {
				utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			if !account.Active {
				utils.RespondWithError(w, http.StatusForbidden, "Account suspended")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
			ctx = context.WithValue(ctx, RoleKey, account.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin must run after AuthMiddleware.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if role, _ := r.Context().Value(RoleKey).(string); role != RoleAdmin {
			utils.RespondWithError(w, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func UserID(ctx context.Context) (int, bool) {
	id, ok := ctx.Value(UserIDKey).(int)
	return id, ok
}
