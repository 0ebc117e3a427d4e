package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/nazh/votelink/internal/apperrors"
	"github.com/nazh/votelink/internal/handlers/render"
	"github.com/nazh/votelink/internal/logger"
)

func handleLogin(auth authService, l logger.Logger) http.Handler {
	type request struct {
		Password string `json:"password" validate:"required"`
	}

	type response struct {
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expires_at"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		token, expiresAt, err := auth.Login(r.Context(), req.Password)

		switch {
		case err == nil:
			render.JSON(w, response{Token: token, ExpiresAt: expiresAt})
		case errors.Is(err, apperrors.ErrOperatorUnauthorized):
			render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
		default:
			l.Error("Failed to login operator", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleListTokens(reports reportService, l logger.Logger) http.Handler {
	type token struct {
		ID          string     `json:"id"`
		Identity    string     `json:"identity"`
		ExternalRef int64      `json:"external_ref"`
		Secret      string     `json:"secret"`
		Status      string     `json:"status"`
		CreatedAt   time.Time  `json:"created_at"`
		ExpiresAt   time.Time  `json:"expires_at"`
		UsedAt      *time.Time `json:"used_at,omitempty"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		list, err := reports.ListTokens(r.Context())
		if err != nil {
			l.Error("Failed to list tokens", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		resp := make([]token, 0, len(list))
		for _, t := range list {
			resp = append(resp, token{
				ID:          t.ID.String(),
				Identity:    t.Identity,
				ExternalRef: t.ExternalRef,
				Secret:      t.Secret,
				Status:      string(t.Status),
				CreatedAt:   t.CreatedAt,
				ExpiresAt:   t.ExpiresAt,
				UsedAt:      t.UsedAt,
			})
		}
		render.JSON(w, resp)
	})
}

func handleListSubmissions(reports reportService, l logger.Logger) http.Handler {
	type submission struct {
		ID           string    `json:"id"`
		TokenID      string    `json:"token_id"`
		Identity     string    `json:"identity"`
		PlatformID   int64     `json:"platform_id"`
		PlatformName string    `json:"platform_name"`
		ExternalRef  int64     `json:"external_ref"`
		CreatedAt    time.Time `json:"created_at"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		list, err := reports.ListSubmissions(r.Context())
		if err != nil {
			l.Error("Failed to list submissions", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		resp := make([]submission, 0, len(list))
		for _, s := range list {
			resp = append(resp, submission{
				ID:           s.ID.String(),
				TokenID:      s.TokenID.String(),
				Identity:     s.Identity,
				PlatformID:   s.PlatformID,
				PlatformName: s.PlatformName,
				ExternalRef:  s.ExternalRef,
				CreatedAt:    s.CreatedAt,
			})
		}
		render.JSON(w, resp)
	})
}

func handleTotals(reports reportService, l logger.Logger) http.Handler {
	type total struct {
		PlatformID   int64  `json:"platform_id"`
		PlatformName string `json:"platform_name"`
		Votes        int64  `json:"votes"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		totals, err := reports.TotalsByPlatform(r.Context())
		if err != nil {
			l.Error("Failed to aggregate totals", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		resp := make([]total, 0, len(totals))
		for _, t := range totals {
			resp = append(resp, total(t))
		}
		render.JSON(w, resp)
	})
}
