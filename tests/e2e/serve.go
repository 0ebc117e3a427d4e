package e2e

import (
	"context"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/stretchr/testify/require"

	"github.com/nazh/votelink/internal/handlers"
	"github.com/nazh/votelink/internal/logger"
	"github.com/nazh/votelink/internal/repository"
	"github.com/nazh/votelink/internal/repository/postgres"
	"github.com/nazh/votelink/internal/service/auth"
	"github.com/nazh/votelink/internal/service/notifier"
	"github.com/nazh/votelink/internal/service/platform"
	"github.com/nazh/votelink/internal/service/report"
	"github.com/nazh/votelink/internal/service/token"
	"github.com/nazh/votelink/internal/service/vote"
	"github.com/nazh/votelink/internal/testutil"
)

// OperatorPassword authenticates the operator in served tests
const OperatorPassword = "StrongEnoughPassword"

// Mail is a captured outgoing message
type Mail struct {
	To      string
	Subject string
	Body    string
}

// CaptureMailer keeps outgoing mail in memory.
// Sends happen on the vote goroutine too, so access is synchronized.
type CaptureMailer struct {
	mu   sync.Mutex
	mail []Mail
}

func (m *CaptureMailer) Send(ctx context.Context, to string, subject string, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mail = append(m.mail, Mail{To: to, Subject: subject, Body: body})
	return nil
}

// Sent returns a copy of everything captured so far
func (m *CaptureMailer) Sent() []Mail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Mail(nil), m.mail...)
}

// WaitFor polls until a message to the recipient arrives or the timeout hits
func (m *CaptureMailer) WaitFor(t *testing.T, to string) Mail {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		for _, mail := range m.Sent() {
			if mail.To == to {
				return mail
			}
		}
		time.Sleep(10 * time.Millisecond)
	}

	t.Fatalf("no mail was delivered to %s", to)
	return Mail{}
}

type Services struct {
	Storage     repository.Storage
	TokenSvc    *token.Service
	VoteSvc     *vote.Service
	PlatformSvc *platform.PlatformService
	ReportSvc   *report.ReportService
	AuthSvc     *auth.Service
	Mailer      *CaptureMailer
}

// Create db transaction and run server with that connection (one connection cause one transaction)
// The created transaction passed to inner function: so, you can safely use testutil.WithTx with it
func ServeWithTx(dbpool *pgxpool.Pool, t *testing.T, fn func(tx pgx.Tx, srvURL string, services Services)) {
	testutil.WithTx(dbpool, t, func(tx pgx.Tx) {
		storage := postgres.NewStorage(tx)

		hash, err := auth.DefaultHasher.Hash(OperatorPassword)
		require.NoError(t, err)

		as, err := auth.NewService(auth.Config{SecretKey: "test-secret", PasswordHash: hash})
		require.NoError(t, err, "auth service starting error", err)

		mailer := &CaptureMailer{}
		ns := notifier.New(notifier.Config{
			OperatorEnabled: true,
			OperatorEmail:   "ops@example.com",
		}, mailer)

		ts := token.NewService(storage.Tokens())
		vs := vote.NewService(storage, ts, ns, logger.NewNoOp())
		ps := platform.NewService(storage.Platforms())
		rs := report.NewService(storage.Tokens(), storage.Submissions())

		router := handlers.NewRouter(ts, ns, vs, ps, rs, as, handlers.LinkConfig{
			VotePageURL:   "https://shop.example/vote",
			ExpiryWindow:  48 * time.Hour,
			MinOrderTotal: decimal.NewFromInt(10),
		}, logger.NewNoOp())

		// Run http server with the router in transaction
		srv := httptest.NewServer(router)
		defer srv.Close()

		fn(tx, srv.URL, Services{
			Storage:     storage,
			TokenSvc:    ts,
			VoteSvc:     vs,
			PlatformSvc: ps,
			ReportSvc:   rs,
			AuthSvc:     as,
			Mailer:      mailer,
		})
	})
}
