package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/nazh/votelink/internal/db"
	"github.com/nazh/votelink/internal/handlers"
	"github.com/nazh/votelink/internal/logger"
	"github.com/nazh/votelink/internal/repository/postgres"
	"github.com/nazh/votelink/internal/service/auth"
	"github.com/nazh/votelink/internal/service/notifier"
	"github.com/nazh/votelink/internal/service/platform"
	"github.com/nazh/votelink/internal/service/report"
	"github.com/nazh/votelink/internal/service/token"
	"github.com/nazh/votelink/internal/service/vote"
)

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	// Initialize logger
	log, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	// Connect to the database and run migrations
	pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}

	// Initialize repositories
	storage := postgres.NewStorage(pool)

	// Initialize services
	tokenService := token.NewService(storage.Tokens())
	notifierService := notifier.New(notifier.Config{
		Templates:       c.MailTemplates,
		OperatorEnabled: c.OperatorNotifyEnabled,
		OperatorEmail:   c.OperatorEmail,
	}, &notifier.LogMailer{Logger: log})
	voteService := vote.NewService(storage, tokenService, notifierService, log)
	platformService := platform.NewService(storage.Platforms())
	reportService := report.NewService(storage.Tokens(), storage.Submissions())

	authService, err := auth.NewService(auth.Config{
		SecretKey:    c.SecretKey,
		PasswordHash: c.OperatorPasswordHash,
	})
	if err != nil {
		return nil, fmt.Errorf("error while creating auth service. Err: %w", err)
	}

	mux := handlers.NewRouter(
		tokenService,
		notifierService,
		voteService,
		platformService,
		reportService,
		authService,
		handlers.LinkConfig{
			VotePageURL:   c.VotePageURL,
			ExpiryWindow:  c.TokenExpiry,
			MinOrderTotal: c.MinOrderTotal,
		},
		log,
	)

	return &ServerApp{
		ListenAddr: c.ListenAddr,
		Handler:    mux,
	}, nil
}

// Run starts http server and closes gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.ListenAddr,
		Handler: s.Handler,
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); err == context.DeadlineExceeded {
			slog.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		slog.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	slog.Info("Starting server")
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed

	return err
}
