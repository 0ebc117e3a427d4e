package middleware

import (
	"context"
	"net/http"

	"github.com/nazh/votelink/internal/handlers/render"
)

type authService interface {
	// Auth returns nil if the request carries a valid operator token
	Auth(ctx context.Context, r *http.Request) error
}

func AuthMiddleware(as authService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := as.Auth(r.Context(), r); err != nil {
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
