package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/nazh/votelink/internal/handlers/middleware"
	"github.com/nazh/votelink/internal/logger"
	"github.com/nazh/votelink/internal/models"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

func NewRouter(
	issuerService issuerService,
	linkNotifier linkNotifier,
	voteService voteService,
	platformService platformService,
	reportService reportService,
	authService authService,
	linkConfig LinkConfig,
	logger logger.Logger,
) http.Handler {
	authMiddleware := middleware.AuthMiddleware(authService)
	withAuth := func(h http.Handler) http.Handler {
		return authMiddleware(h)
	}

	api := http.NewServeMux()

	// Trigger source: the commerce system reports completed orders.
	// Trusted caller, so it authenticates like the operator does.
	api.Handle("POST /hooks/order-completed", withAuth(handleOrderCompleted(issuerService, linkNotifier, linkConfig, logger)))

	// Bearer-facing surface: gate and vote
	api.Handle("GET /platforms", handleListPlatforms(platformService, logger))
	api.Handle("GET /vote/gate", handleGate(voteService, platformService, logger))
	api.Handle("POST /vote", handleCast(voteService, logger))

	// Operator surface
	api.Handle("POST /admin/login", handleLogin(authService, logger))
	api.Handle("GET /admin/tokens", withAuth(handleListTokens(reportService, logger)))
	api.Handle("GET /admin/submissions", withAuth(handleListSubmissions(reportService, logger)))
	api.Handle("GET /admin/totals", withAuth(handleTotals(reportService, logger)))
	api.Handle("GET /admin/platforms", withAuth(handleListAllPlatforms(platformService, logger)))
	api.Handle("POST /admin/platforms", withAuth(handleCreatePlatform(platformService, logger)))
	api.Handle("POST /admin/platforms/{id}/publish", withAuth(handleSetPlatformPublished(platformService, logger)))

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))

	handler := chain(root,
		middleware.LoggerMiddleware(logger),
	)

	return handler
}

type issuerService interface {
	// Issue a single-use token bound to (identity, externalRef)
	// Has to return apperrors.ErrIdentityEmpty or apperrors.ErrExpiryInvalid
	// on constraint violations
	Issue(ctx context.Context, identity string, externalRef int64, window time.Duration) (models.Token, error)
}

type linkNotifier interface {
	// Deliver the one-time link to the buyer, best effort
	SendVoteLink(ctx context.Context, to string, customerName string, orderID int64, link string, window time.Duration) error
}

type voteService interface {
	// Gate decides if the secret may see the protected page
	// Nil error means allow; callers must respond identically for
	// every failure kind
	Gate(ctx context.Context, secret string) (models.Token, error)

	// Cast spends the token on the platform
	// Errors: apperrors.{ErrTokenNotFound, ErrTokenExpired, ErrTokenUsed,
	// ErrPlatformNotFound, ErrPlatformUnpublished}
	Cast(ctx context.Context, secret string, platformID int64) (models.Submission, error)
}

type platformService interface {
	Create(ctx context.Context, name string, published bool) (models.Platform, error)
	SetPublished(ctx context.Context, id int64, published bool) (models.Platform, error)
	ListPublished(ctx context.Context) ([]models.Platform, error)
	ListAll(ctx context.Context) ([]models.Platform, error)
}

type reportService interface {
	ListTokens(ctx context.Context) ([]models.Token, error)
	ListSubmissions(ctx context.Context) ([]models.Submission, error)
	TotalsByPlatform(ctx context.Context) ([]models.PlatformTotal, error)
}

type authService interface {
	// Login the operator with a password
	// Has to return apperrors.ErrOperatorUnauthorized on a wrong one
	Login(ctx context.Context, password string) (token string, expiresAt time.Time, err error)

	// Auth returns nil if the request carries a valid operator token
	Auth(ctx context.Context, r *http.Request) error
}
