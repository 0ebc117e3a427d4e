package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nazh/votelink/internal/apperrors"
	"github.com/nazh/votelink/internal/handlers/render"
	"github.com/nazh/votelink/internal/logger"
)

// LinkConfig describes how issued tokens turn into one-time links
type LinkConfig struct {
	// Absolute URL of the protected vote page, the secret is appended
	// as the 'token' query parameter
	VotePageURL string

	// How long issued tokens stay valid
	ExpiryWindow time.Duration

	// Orders below this total are acknowledged without a token.
	// Zero means every completed order qualifies.
	MinOrderTotal decimal.Decimal
}

func handleOrderCompleted(issuer issuerService, notifier linkNotifier, cfg LinkConfig, l logger.Logger) http.Handler {
	type request struct {
		OrderID      int64           `json:"order_id" validate:"required"`
		Email        string          `json:"email" validate:"required,email"`
		CustomerName string          `json:"customer_name"`
		Total        decimal.Decimal `json:"total"`
	}

	type response struct {
		Message string `json:"message"`
		Issued  bool   `json:"issued"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		if order.Total.LessThan(cfg.MinOrderTotal) {
			render.JSON(w, response{Message: "Order total below voting threshold", Issued: false})
			return
		}

		token, err := issuer.Issue(r.Context(), order.Email, order.OrderID, cfg.ExpiryWindow)

		switch {
		case err == nil:
			// created, deliver the link below
		case errors.Is(err, apperrors.ErrIdentityEmpty), errors.Is(err, apperrors.ErrExpiryInvalid):
			render.ServiceError(w, "Invalid order payload", http.StatusUnprocessableEntity)
			return
		default:
			l.Error("Failed to issue token", "error", err, "order_id", order.OrderID)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		link, err := buildVoteLink(cfg.VotePageURL, token.Secret)
		if err != nil {
			l.Error("Failed to build vote link", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		// The token row is committed; a failed mail must not fail the hook
		err = notifier.SendVoteLink(r.Context(), order.Email, order.CustomerName, order.OrderID, link, cfg.ExpiryWindow)
		if err != nil {
			l.Warn("Failed to send vote link", "error", err, "order_id", order.OrderID)
		}

		render.JSONWithStatus(w, response{Message: "One-time voting link issued", Issued: true}, http.StatusCreated)
	})
}

func buildVoteLink(pageURL string, secret string) (string, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return "", err
	}

	q := u.Query()
	q.Set("token", secret)
	u.RawQuery = q.Encode()

	return u.String(), nil
}
