package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/futig/docqa-backend/internal/entity"
	"github.com/futig/docqa-backend/internal/pkg/response"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
)

// BearerAuth rejects requests whose Authorization header is not "Bearer <token>"
func BearerAuth(token string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scheme, credentials, ok := strings.Cut(r.Header.Get("Authorization"), " ")
			if !ok || !strings.EqualFold(scheme, "bearer") ||
				subtle.ConstantTimeCompare([]byte(credentials), []byte(token)) != 1 {
				ctxzap.Warn(r.Context(), "rejected unauthenticated request")
				response.ErrorWithMessage(w, http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized), entity.ErrUnauthorized.Error())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
