package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/nazh/votelink/internal/apperrors"
	"github.com/nazh/votelink/internal/handlers/render"
	"github.com/nazh/votelink/internal/logger"
)

// The gate answers the same way for unknown, expired and used secrets
// so callers cannot probe which tokens ever existed
const gateDeniedMessage = "This page is available only through a valid one-time link."

type platformResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func handleGate(votes voteService, platforms platformService, l logger.Logger) http.Handler {
	type response struct {
		Identity  string             `json:"identity"`
		ExpiresAt time.Time          `json:"expires_at"`
		Platforms []platformResponse `json:"platforms"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		secret := r.URL.Query().Get("token")
		if secret == "" {
			render.ServiceError(w, gateDeniedMessage, http.StatusNotFound)
			return
		}

		token, err := votes.Gate(r.Context(), secret)

		switch {
		case err == nil:
			// allowed, render the page data below
		case errors.Is(err, apperrors.ErrTokenNotFound),
			errors.Is(err, apperrors.ErrTokenExpired),
			errors.Is(err, apperrors.ErrTokenUsed):
			render.ServiceError(w, gateDeniedMessage, http.StatusNotFound)
			return
		default:
			l.Error("Failed to check token", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		list, err := platforms.ListPublished(r.Context())
		if err != nil {
			l.Error("Failed to list platforms", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		resp := response{
			Identity:  token.Identity,
			ExpiresAt: token.ExpiresAt,
			Platforms: make([]platformResponse, 0, len(list)),
		}
		for _, p := range list {
			resp.Platforms = append(resp.Platforms, platformResponse{ID: p.ID, Name: p.Name})
		}

		render.JSON(w, resp)
	})
}

func handleCast(votes voteService, l logger.Logger) http.Handler {
	type request struct {
		Token      string `json:"token" validate:"required"`
		PlatformID int64  `json:"platform_id" validate:"required"`
	}

	type response struct {
		Message      string    `json:"message"`
		PlatformName string    `json:"platform_name"`
		RecordedAt   time.Time `json:"recorded_at"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		vote, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		sub, err := votes.Cast(r.Context(), vote.Token, vote.PlatformID)

		switch {
		case err == nil:
			render.JSON(w, response{
				Message:      "Your vote has been recorded. Thank you! This link can't be used again.",
				PlatformName: sub.PlatformName,
				RecordedAt:   sub.CreatedAt,
			})
		case errors.Is(err, apperrors.ErrTokenNotFound):
			render.ServiceError(w, "Invalid token.", http.StatusNotFound)
		case errors.Is(err, apperrors.ErrTokenExpired):
			render.ServiceError(w, "This link has expired.", http.StatusGone)
		case errors.Is(err, apperrors.ErrTokenUsed):
			render.ServiceError(w, "This link has already been used.", http.StatusConflict)
		case errors.Is(err, apperrors.ErrPlatformNotFound), errors.Is(err, apperrors.ErrPlatformUnpublished):
			render.ServiceError(w, "Invalid platform.", http.StatusUnprocessableEntity)
		default:
			l.Error("Failed to cast vote", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}
