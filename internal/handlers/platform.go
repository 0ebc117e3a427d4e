package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/nazh/votelink/internal/apperrors"
	"github.com/nazh/votelink/internal/handlers/render"
	"github.com/nazh/votelink/internal/logger"
)

func handleListPlatforms(platforms platformService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		list, err := platforms.ListPublished(r.Context())
		if err != nil {
			l.Error("Failed to list platforms", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		resp := make([]platformResponse, 0, len(list))
		for _, p := range list {
			resp = append(resp, platformResponse{ID: p.ID, Name: p.Name})
		}
		render.JSON(w, resp)
	})
}

// The operator sees unpublished platforms too
func handleListAllPlatforms(platforms platformService, l logger.Logger) http.Handler {
	type platformRow struct {
		ID        int64     `json:"id"`
		Name      string    `json:"name"`
		Published bool      `json:"published"`
		CreatedAt time.Time `json:"created_at"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		list, err := platforms.ListAll(r.Context())
		if err != nil {
			l.Error("Failed to list platforms", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		resp := make([]platformRow, 0, len(list))
		for _, p := range list {
			resp = append(resp, platformRow{ID: p.ID, Name: p.Name, Published: p.Published, CreatedAt: p.CreatedAt})
		}
		render.JSON(w, resp)
	})
}

func handleCreatePlatform(platforms platformService, l logger.Logger) http.Handler {
	type request struct {
		Name      string `json:"name" validate:"required,min=1"`
		Published bool   `json:"published"`
	}

	type response struct {
		ID        int64  `json:"id"`
		Name      string `json:"name"`
		Published bool   `json:"published"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		platform, err := platforms.Create(r.Context(), req.Name, req.Published)
		if err != nil {
			l.Error("Failed to create platform", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSONWithStatus(w, response{
			ID:        platform.ID,
			Name:      platform.Name,
			Published: platform.Published,
		}, http.StatusCreated)
	})
}

func handleSetPlatformPublished(platforms platformService, l logger.Logger) http.Handler {
	type request struct {
		Published bool `json:"published"`
	}

	type response struct {
		ID        int64  `json:"id"`
		Name      string `json:"name"`
		Published bool   `json:"published"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			render.ServiceError(w, "Invalid platform id", http.StatusBadRequest)
			return
		}

		req, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		platform, err := platforms.SetPublished(r.Context(), id, req.Published)

		switch {
		case err == nil:
			render.JSON(w, response{
				ID:        platform.ID,
				Name:      platform.Name,
				Published: platform.Published,
			})
		case errors.Is(err, apperrors.ErrPlatformNotFound):
			render.ServiceError(w, "Platform not found", http.StatusNotFound)
		default:
			l.Error("Failed to update platform", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}
