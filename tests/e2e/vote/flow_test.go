package vote

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nazh/votelink/internal/testutil"
	"github.com/nazh/votelink/tests/e2e"
)

const (
	LoginURL   = "/api/admin/login"
	HookURL    = "/api/hooks/order-completed"
	GateURL    = "/api/vote/gate"
	CastURL    = "/api/vote"
	TotalsURL  = "/api/admin/totals"
	CreatePURL = "/api/admin/platforms"
)

func Test_VoteFlow(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	e2e.ServeWithTx(pg.Pool, t, func(tx pgx.Tx, srvURL string, s e2e.Services) {
		send := func(t *testing.T, method string, path string, bearer string, payload string) (*http.Response, string) {
			t.Helper()

			var reader io.Reader
			if payload != "" {
				reader = strings.NewReader(payload)
			}
			req, err := http.NewRequest(method, srvURL+path, reader)
			require.NoError(t, err, "failed to create request")
			req.Header.Set("Content-Type", "application/json")
			if bearer != "" {
				req.Header.Set("Authorization", bearer)
			}

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err, "failed to send request")
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err, "failed to read response body")
			defer resp.Body.Close() // nolint:errcheck

			return resp, string(body)
		}

		login := func(t *testing.T) string {
			t.Helper()

			resp, body := send(t, http.MethodPost, LoginURL, "", fmt.Sprintf(`{"password": %q}`, e2e.OperatorPassword))
			require.Equalf(t, http.StatusOK, resp.StatusCode, "operator login failed. Body: %s", body)

			var payload struct {
				Token string `json:"token"`
			}
			require.NoError(t, json.Unmarshal([]byte(body), &payload))
			return "Bearer " + payload.Token
		}

		// tokenFromMail digs the one-time secret out of the delivered link
		tokenFromMail := func(t *testing.T, mail e2e.Mail) string {
			t.Helper()

			idx := strings.Index(mail.Body, "https://shop.example/vote?")
			require.GreaterOrEqual(t, idx, 0, "mail must contain the vote link. Body: %s", mail.Body)

			link := mail.Body[idx:]
			if end := strings.IndexAny(link, " \n"); end >= 0 {
				link = link[:end]
			}

			u, err := url.Parse(link)
			require.NoError(t, err, "vote link must be a valid URL")
			secret := u.Query().Get("token")
			require.NotEmpty(t, secret, "vote link must carry the token")
			return secret
		}

		t.Run("purchase to counted vote", func(t *testing.T) {
			testutil.WithTx(tx, t, func(_ pgx.Tx) {
				bearer := login(t)

				// Operator publishes a platform
				resp, body := send(t, http.MethodPost, CreatePURL, bearer, `{"name": "Trustpilot", "published": true}`)
				require.Equalf(t, http.StatusCreated, resp.StatusCode, "platform create failed. Body: %s", body)
				var created struct {
					ID int64 `json:"id"`
				}
				require.NoError(t, json.Unmarshal([]byte(body), &created))

				// Commerce reports a completed order, buyer gets a link
				resp, body = send(t, http.MethodPost, HookURL, bearer,
					`{"order_id": 731, "email": "buyer@example.com", "customer_name": "Alice", "total": "49.90"}`)
				require.Equalf(t, http.StatusCreated, resp.StatusCode, "hook failed. Body: %s", body)

				mail := s.Mailer.WaitFor(t, "buyer@example.com")
				secret := tokenFromMail(t, mail)

				// Link opens the gate
				resp, body = send(t, http.MethodGet, GateURL+"?token="+secret, "", "")
				require.Equalf(t, http.StatusOK, resp.StatusCode, "gate refused a fresh link. Body: %s", body)
				assert.Contains(t, body, "Trustpilot")

				// Buyer casts the vote
				resp, body = send(t, http.MethodPost, CastURL, "",
					fmt.Sprintf(`{"token": %q, "platform_id": %d}`, secret, created.ID))
				require.Equalf(t, http.StatusOK, resp.StatusCode, "cast failed. Body: %s", body)

				var cast struct {
					Message      string    `json:"message"`
					PlatformName string    `json:"platform_name"`
					RecordedAt   time.Time `json:"recorded_at"`
				}
				require.NoError(t, json.Unmarshal([]byte(body), &cast))
				assert.Equal(t, "Trustpilot", cast.PlatformName)
				assert.WithinDuration(t, time.Now(), cast.RecordedAt, 5*time.Second)

				// The buyer gets a confirmation, the operator a notice.
				// The notice arrives last, so once it is in the
				// confirmation is too.
				notice := s.Mailer.WaitFor(t, "ops@example.com")
				assert.Contains(t, notice.Body, "Trustpilot")

				confirmed := false
				for _, mail := range s.Mailer.Sent() {
					if mail.To == "buyer@example.com" && strings.Contains(mail.Subject, "Vote received") {
						confirmed = true
					}
				}
				assert.True(t, confirmed, "buyer must receive a confirmation mail")

				// The spent link no longer opens the gate
				resp, body = send(t, http.MethodGet, GateURL+"?token="+secret, "", "")
				require.Equalf(t, http.StatusNotFound, resp.StatusCode, "gate must refuse a spent link. Body: %s", body)

				// Re-casting conflicts
				resp, body = send(t, http.MethodPost, CastURL, "",
					fmt.Sprintf(`{"token": %q, "platform_id": %d}`, secret, created.ID))
				require.Equalf(t, http.StatusConflict, resp.StatusCode, "second cast must conflict. Body: %s", body)
				require.JSONEq(t, `{
					"error": "service_error",
					"message": "This link has already been used."
				}`, body)

				// The vote shows up in the totals
				resp, body = send(t, http.MethodGet, TotalsURL, bearer, "")
				require.Equalf(t, http.StatusOK, resp.StatusCode, "totals failed. Body: %s", body)
				require.JSONEq(t, fmt.Sprintf(`[{
					"platform_id": %d,
					"platform_name": "Trustpilot",
					"votes": 1
				}]`, created.ID), body)
			})
		})

		t.Run("cheap order earns no link", func(t *testing.T) {
			testutil.WithTx(tx, t, func(_ pgx.Tx) {
				bearer := login(t)

				resp, body := send(t, http.MethodPost, HookURL, bearer,
					`{"order_id": 732, "email": "cheap@example.com", "total": "3.50"}`)

				require.Equalf(t, http.StatusOK, resp.StatusCode, "hook failed. Body: %s", body)
				require.JSONEq(t, `{
					"message": "Order total below voting threshold",
					"issued": false
				}`, body)

				for _, mail := range s.Mailer.Sent() {
					assert.NotEqual(t, "cheap@example.com", mail.To, "no link may be mailed for a below-threshold order")
				}
			})
		})

		t.Run("guessing secrets reveals nothing", func(t *testing.T) {
			testutil.WithTx(tx, t, func(_ pgx.Tx) {
				resp, body := send(t, http.MethodGet, GateURL+"?token=deadbeefdeadbeefdeadbeefdeadbeef", "", "")

				require.Equal(t, http.StatusNotFound, resp.StatusCode)
				require.JSONEq(t, `{
					"error": "service_error",
					"message": "This page is available only through a valid one-time link."
				}`, body)
			})
		})
	})
}
